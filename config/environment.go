package config

import (
	"os"
	"strings"
)

const (
	// DefaultEnvKey is the process variable read by FromEnv.
	DefaultEnvKey = "APP_ENV"
	// DefaultEnvironment is used when no environment is configured.
	DefaultEnvironment = "development"
)

// Environment resolves the deployment environment name. It selects the
// overlay layer (<name>.json) during bootstrap.
type Environment interface {
	Current() string
}

// EnvVarEnvironment reads the environment name from a process variable,
// falling back to Fallback when it is unset or blank.
type EnvVarEnvironment struct {
	Key      string
	Fallback string
}

// FromEnv returns an Environment reading APP_ENV with a "development" fallback.
func FromEnv() EnvVarEnvironment {
	return EnvVarEnvironment{Key: DefaultEnvKey, Fallback: DefaultEnvironment}
}

// Current returns the canonical environment name. It reads the process
// environment on every call and has no side effects.
func (e EnvVarEnvironment) Current() string {
	key := e.Key
	if key == "" {
		key = DefaultEnvKey
	}
	if v := Canonical(os.Getenv(key)); v != "" {
		return v
	}
	if v := Canonical(e.Fallback); v != "" {
		return v
	}
	return DefaultEnvironment
}

// StaticEnvironment always resolves to the same name.
type StaticEnvironment string

func (s StaticEnvironment) Current() string {
	if v := Canonical(string(s)); v != "" {
		return v
	}
	return DefaultEnvironment
}

// EnvironmentFunc adapts a plain function to Environment.
type EnvironmentFunc func() string

func (f EnvironmentFunc) Current() string { return Canonical(f()) }

var environmentAliases = map[string]string{
	"dev":   "development",
	"prod":  "production",
	"stage": "staging",
	"test":  "testing",
}

// Canonical trims and lower-cases an environment name and expands the
// common short aliases (dev, prod, stage, test).
func Canonical(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if full, ok := environmentAliases[name]; ok {
		return full
	}
	return name
}
