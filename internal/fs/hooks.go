package fs

import "os"

// Hooks are the os calls behind OSFS. Tests swap them to inject faults.
type Hooks struct {
	Open       func(string) (*os.File, error)
	ReadFile   func(string) ([]byte, error)
	WriteFile  func(string, []byte, os.FileMode) error
	Stat       func(string) (os.FileInfo, error)
	ReadDir    func(string) ([]os.DirEntry, error)
	Remove     func(string) error
	Rename     func(string, string) error
	CreateTemp func(string, string) (*os.File, error)
	MkdirAll   func(string, os.FileMode) error
	IsNotExist func(error) bool
}

func osHooks() Hooks {
	return Hooks{
		Open:       os.Open,
		ReadFile:   os.ReadFile,
		WriteFile:  os.WriteFile,
		Stat:       os.Stat,
		ReadDir:    os.ReadDir,
		Remove:     os.Remove,
		Rename:     os.Rename,
		CreateTemp: os.CreateTemp,
		MkdirAll:   os.MkdirAll,
		IsNotExist: os.IsNotExist,
	}
}

var hooks = osHooks()

// SetHooks installs the non-nil members of h and returns a func that puts
// the previous set back. Not safe for concurrent use with OSFS calls.
func SetHooks(h Hooks) (restore func()) {
	prev := hooks
	if h.Open != nil {
		hooks.Open = h.Open
	}
	if h.ReadFile != nil {
		hooks.ReadFile = h.ReadFile
	}
	if h.WriteFile != nil {
		hooks.WriteFile = h.WriteFile
	}
	if h.Stat != nil {
		hooks.Stat = h.Stat
	}
	if h.ReadDir != nil {
		hooks.ReadDir = h.ReadDir
	}
	if h.Remove != nil {
		hooks.Remove = h.Remove
	}
	if h.Rename != nil {
		hooks.Rename = h.Rename
	}
	if h.CreateTemp != nil {
		hooks.CreateTemp = h.CreateTemp
	}
	if h.MkdirAll != nil {
		hooks.MkdirAll = h.MkdirAll
	}
	if h.IsNotExist != nil {
		hooks.IsNotExist = h.IsNotExist
	}
	return func() { hooks = prev }
}
