package config

import (
	"path/filepath"

	"github.com/keshon/kvc/internal/hashing"
)

const (
	MetaDir    = ".kvc"
	ObjectsDir = "objects"
	RefsDir    = "refs/heads"
	CommitsDir = "commits"
	HeadFile   = "HEAD"
	IndexFile  = "index.json"
	LockFile   = "lock"
	ConfigFile = "config.toml"
	IgnoreFile = ".kvcignore"
)

const (
	DefaultBranch     = "main"
	DefaultTrackedDir = "domains"
	DefaultHash       = hashing.SHA256
	DefaultMaxTokens  = 100000
	DefaultAgentName  = "agent"
	DefaultLockWait   = "5s"

	// DetachedLog names the commit log that receives commits made while
	// HEAD is detached.
	DetachedLog = "_detached"
)

// VaultConfig resolves the on-disk layout of one vault.
type VaultConfig struct {
	Root     string
	Settings *Settings
}

// NewVaultConfig returns the layout for the vault at root with default settings.
func NewVaultConfig(root string) *VaultConfig {
	return &VaultConfig{Root: root, Settings: Defaults()}
}

func (c *VaultConfig) MetaDir() string    { return filepath.Join(c.Root, MetaDir) }
func (c *VaultConfig) ObjectsDir() string { return filepath.Join(c.MetaDir(), ObjectsDir) }
func (c *VaultConfig) RefsDir() string    { return filepath.Join(c.MetaDir(), filepath.FromSlash(RefsDir)) }
func (c *VaultConfig) CommitsDir() string { return filepath.Join(c.MetaDir(), CommitsDir) }
func (c *VaultConfig) HeadFile() string   { return filepath.Join(c.MetaDir(), HeadFile) }
func (c *VaultConfig) IndexFile() string  { return filepath.Join(c.MetaDir(), IndexFile) }
func (c *VaultConfig) LockFile() string   { return filepath.Join(c.MetaDir(), LockFile) }
func (c *VaultConfig) ConfigFile() string { return filepath.Join(c.MetaDir(), ConfigFile) }
func (c *VaultConfig) IgnoreFile() string { return filepath.Join(c.Root, IgnoreFile) }

// TrackedDir is the directory whose documents are versioned.
func (c *VaultConfig) TrackedDir() string {
	dir := DefaultTrackedDir
	if c.Settings != nil && c.Settings.Core.TrackedDir != "" {
		dir = c.Settings.Core.TrackedDir
	}
	return filepath.Join(c.Root, filepath.FromSlash(dir))
}

// RefFile is the ref file of the named branch.
func (c *VaultConfig) RefFile(branch string) string {
	return filepath.Join(c.RefsDir(), branch)
}

// LogFile is the append-only commit log of the named branch.
func (c *VaultConfig) LogFile(branch string) string {
	return filepath.Join(c.CommitsDir(), branch+".jsonl")
}
