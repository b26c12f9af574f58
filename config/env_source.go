package config

import (
	"context"
	"os"
	"sort"
	"strings"
)

// EnvSource turns prefixed process environment variables into a layer.
// With prefix "COSY", COSY_APP_PORT=4000 becomes {"app":{"port":"4000"}}.
// A single underscore separates path segments; a double underscore stands
// for a literal underscore (COSY_DB__HOST is "db_host"). Values stay
// strings; the typed getters convert them.
type EnvSource struct {
	Prefix string
	// Environ defaults to os.Environ.
	Environ func() []string
}

// NewEnvSource returns an EnvSource reading the process environment.
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{Prefix: prefix}
}

func (s *EnvSource) Name() string { return "env:" + strings.ToUpper(s.Prefix) }

func (s *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	environ := s.Environ
	if environ == nil {
		environ = os.Environ
	}
	prefix := strings.ToUpper(strings.TrimSuffix(s.Prefix, "_")) + "_"

	vars := environ()
	sort.Strings(vars)

	tree := make(map[string]any)
	for _, kv := range vars {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(strings.ToUpper(key), prefix) {
			continue
		}
		path := envKeyPath(key[len(prefix):])
		if len(path) == 0 {
			continue
		}
		setPath(tree, path, value)
	}
	return tree, nil
}

func envKeyPath(key string) []string {
	const placeholder = "\x00"
	key = strings.ReplaceAll(strings.ToLower(key), "__", placeholder)
	var path []string
	for _, seg := range strings.Split(key, "_") {
		if seg == "" {
			return nil
		}
		path = append(path, strings.ReplaceAll(seg, placeholder, "_"))
	}
	return path
}
