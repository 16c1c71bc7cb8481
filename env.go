package rasteroid

import (
	"os"
	"runtime"
	"strings"
)

// envKeys are the environment variables captured by an EnvIdentifiers snapshot.
var envKeys = []string{
	"TERM",
	"TERM_PROGRAM",
	"LC_TERMINAL",
	"VIM_TERMINAL",
	"KITTY_WINDOW_ID",
	"KONSOLE_VERSION",
	"WT_PROFILE_ID",
	"TMUX",
}

// termNameKeys are the variables searched by TermContains.
var termNameKeys = []string{"TERM_PROGRAM", "TERM", "LC_TERMINAL"}

// EnvIdentifiers is an immutable, lower-cased snapshot of the terminal
// identification variables plus the OS name (stored under "OS").
type EnvIdentifiers struct {
	data map[string]string
}

// NewEnvIdentifiers snapshots the current process environment.
func NewEnvIdentifiers() *EnvIdentifiers {
	return NewEnvIdentifiersFrom(os.LookupEnv)
}

// NewEnvIdentifiersFrom builds a snapshot from an arbitrary lookup function.
func NewEnvIdentifiersFrom(lookup func(string) (string, bool)) *EnvIdentifiers {
	data := make(map[string]string, len(envKeys)+1)
	for _, key := range envKeys {
		if value, ok := lookup(key); ok {
			data[key] = strings.ToLower(value)
		}
	}
	data["OS"] = runtime.GOOS
	return &EnvIdentifiers{data: data}
}

// EnvFromMap builds a snapshot from a fixed map, mostly useful in tests.
// An "OS" entry in the map overrides the runtime value.
func EnvFromMap(vars map[string]string) *EnvIdentifiers {
	env := NewEnvIdentifiersFrom(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
	if osName, ok := vars["OS"]; ok {
		env.data["OS"] = strings.ToLower(osName)
	}
	return env
}

// Has reports whether key was present in the environment.
func (e *EnvIdentifiers) Has(key string) bool {
	_, ok := e.data[key]
	return ok
}

// Get returns the lower-cased value of key.
func (e *EnvIdentifiers) Get(key string) string {
	return e.data[key]
}

// Contains reports whether the value of key contains substr.
func (e *EnvIdentifiers) Contains(key, substr string) bool {
	v, ok := e.data[key]
	return ok && strings.Contains(v, substr)
}

// TermContains reports whether any of the terminal-name fields contain substr.
func (e *EnvIdentifiers) TermContains(substr string) bool {
	for _, key := range termNameKeys {
		if e.Contains(key, substr) {
			return true
		}
	}
	return false
}

// Vars returns a copy of the captured variables.
func (e *EnvIdentifiers) Vars() map[string]string {
	out := make(map[string]string, len(e.data))
	for k, v := range e.data {
		out[k] = v
	}
	return out
}
