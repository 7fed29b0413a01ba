package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/keshon/kvc/internal/fs"
)

// Settings is the content of .kvc/config.toml. The engine only reads it.
type Settings struct {
	Core    CoreSettings    `mapstructure:"core" toml:"core"`
	Context ContextSettings `mapstructure:"context" toml:"context"`
	Agent   AgentSettings   `mapstructure:"agent" toml:"agent"`
	Pins    PinSettings     `mapstructure:"pins" toml:"pins"`
}

type CoreSettings struct {
	VaultName     string `mapstructure:"vault_name" toml:"vault_name"`
	DefaultBranch string `mapstructure:"default_branch" toml:"default_branch"`
	Hash          string `mapstructure:"hash" toml:"hash"`
	TrackedDir    string `mapstructure:"tracked_dir" toml:"tracked_dir"`
	LockTimeout   string `mapstructure:"lock_timeout" toml:"lock_timeout"`
	CreatedAt     string `mapstructure:"created_at" toml:"created_at"`
}

type ContextSettings struct {
	MaxTokens         int  `mapstructure:"max_tokens" toml:"max_tokens"`
	AutoCommit        bool `mapstructure:"auto_commit" toml:"auto_commit"`
	CompressSnapshots bool `mapstructure:"compress_snapshots" toml:"compress_snapshots"`
}

type AgentSettings struct {
	DefaultAuthor string `mapstructure:"default_author" toml:"default_author"`
	ModelHint     string `mapstructure:"model_hint" toml:"model_hint,omitempty"`
}

// Model is the model recorded on agent commits that name none: the model
// hint when set, the default author otherwise.
func (a AgentSettings) Model() string {
	if a.ModelHint != "" {
		return a.ModelHint
	}
	return a.DefaultAuthor
}

// PinSettings are applied on top of the index when the active set is read.
type PinSettings struct {
	AlwaysLoad []string `mapstructure:"always_load" toml:"always_load"`
	NeverLoad  []string `mapstructure:"never_load" toml:"never_load"`
}

// Defaults returns the settings of a freshly initialised vault.
func Defaults() *Settings {
	return &Settings{
		Core: CoreSettings{
			DefaultBranch: DefaultBranch,
			Hash:          DefaultHash,
			TrackedDir:    DefaultTrackedDir,
			LockTimeout:   DefaultLockWait,
		},
		Context: ContextSettings{
			MaxTokens:         DefaultMaxTokens,
			CompressSnapshots: true,
		},
		Agent: AgentSettings{DefaultAuthor: DefaultAgentName},
		Pins: PinSettings{
			AlwaysLoad: []string{},
			NeverLoad:  []string{DefaultTrackedDir + "/archive/**"},
		},
	}
}

// LockWait parses the configured lock timeout, falling back to the default.
func (c CoreSettings) LockWait() time.Duration {
	if d, err := time.ParseDuration(c.LockTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultLockWait)
	return d
}

func setDefaults(v *viper.Viper, d *Settings) {
	v.SetDefault("core.vault_name", d.Core.VaultName)
	v.SetDefault("core.default_branch", d.Core.DefaultBranch)
	v.SetDefault("core.hash", d.Core.Hash)
	v.SetDefault("core.tracked_dir", d.Core.TrackedDir)
	v.SetDefault("core.lock_timeout", d.Core.LockTimeout)
	v.SetDefault("core.created_at", d.Core.CreatedAt)
	v.SetDefault("context.max_tokens", d.Context.MaxTokens)
	v.SetDefault("context.auto_commit", d.Context.AutoCommit)
	v.SetDefault("context.compress_snapshots", d.Context.CompressSnapshots)
	v.SetDefault("agent.default_author", d.Agent.DefaultAuthor)
	v.SetDefault("agent.model_hint", d.Agent.ModelHint)
	v.SetDefault("pins.always_load", d.Pins.AlwaysLoad)
	v.SetDefault("pins.never_load", d.Pins.NeverLoad)
}

// LoadSettings reads path and applies KVC_* environment overrides
// (KVC_CONTEXT_MAX_TOKENS, KVC_CORE_LOCK_TIMEOUT, ...). A missing file yields
// the defaults.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix("KVC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Defaults())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, os.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	s := &Settings{}
	if err := v.Unmarshal(s); err != nil {
		return nil, fmt.Errorf("decode config %q: %w", path, err)
	}
	return s, nil
}

// WriteSettings stores s as TOML, atomically.
func WriteSettings(fsys fs.FS, path string, s *Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return fs.WriteFileAtomic(fsys, path, data, 0o644)
}
