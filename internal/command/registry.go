package command

import (
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = map[string]Command{}
	ordered  []Command
)

// RegisterCommand adds a command under its name, aliases and short name.
func RegisterCommand(cmd Command) {
	mu.Lock()
	defer mu.Unlock()
	names := append([]string{cmd.Name()}, cmd.Aliases()...)
	if short := cmd.Short(); short != "" {
		names = append(names, short)
	}
	for _, n := range names {
		registry[n] = cmd
	}
	ordered = append(ordered, cmd)
}

// GetCommand returns a command by name or alias.
func GetCommand(name string) (Command, bool) {
	mu.RLock()
	defer mu.RUnlock()
	cmd, ok := registry[name]
	return cmd, ok
}

// AllCommands returns every registered command sorted by name.
func AllCommands() []Command {
	mu.RLock()
	list := append([]Command(nil), ordered...)
	mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}
