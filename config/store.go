package config

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/validation"
)

// Store holds the merged configuration tree of one application. It is
// mutated only through Load; reads are safe from any goroutine.
type Store struct {
	mu        sync.RWMutex
	tree      map[string]any
	overrides map[string]any
	view      map[string]any
	index     *viper.Viper
	layers    []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		tree:      make(map[string]any),
		overrides: make(map[string]any),
		view:      make(map[string]any),
		index:     viper.New(),
	}
}

// Load invokes src and deep-merges its tree over the current one. Errors
// from the source are returned unchanged and leave the store untouched.
func (s *Store) Load(ctx context.Context, src Source) error {
	tree, err := src.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.layers = append(s.layers, src.Name())
	if len(tree) == 0 {
		return nil
	}
	mergeTree(s.tree, normalize(tree).(map[string]any))
	s.reindex()
	return nil
}

// Set assigns value at path above every loaded layer. Sources loaded
// afterwards do not replace it.
func (s *Store) Set(path string, value any) {
	segs := strings.Split(strings.ToLower(path), ".")
	for _, seg := range segs {
		if seg == "" {
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	setPath(s.overrides, segs, normalize(value))
	s.reindex()
}

// reindex rebuilds the effective view and the viper instance used for path
// lookup and section decoding. Merging is done by mergeTree so that a layer
// may change a value's type; viper only ever sees one finished map.
func (s *Store) reindex() {
	view := copyValue(s.tree).(map[string]any)
	mergeTree(view, s.overrides)
	s.view = view

	v := viper.New()
	_ = v.MergeConfigMap(copyValue(view).(map[string]any))
	s.index = v
}

// Get returns the value at a dotted path such as "app.port", or nil when
// any segment is missing. Objects and arrays are returned as copies.
func (s *Store) Get(path string) any {
	v, _ := s.Lookup(path)
	return v
}

// Lookup is Get with an explicit presence flag. A path holding null is
// reported as absent.
func (s *Store) Lookup(path string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if path == "" || !s.index.IsSet(path) {
		return nil, false
	}
	return copyValue(s.index.Get(path)), true
}

// Has reports whether path resolves to a value.
func (s *Store) Has(path string) bool {
	_, ok := s.Lookup(path)
	return ok
}

// GetString returns the value at path converted to a string, "" if absent.
func (s *Store) GetString(path string) string {
	return cast.ToString(s.Get(path))
}

// GetInt returns the value at path converted to an int, 0 if absent or not
// numeric. Use GetIntE to tell those cases apart.
func (s *Store) GetInt(path string) int {
	return cast.ToInt(s.Get(path))
}

// GetIntE returns the value at path as an int. ok is false when the path is
// absent; err is set when the value cannot be converted.
func (s *Store) GetIntE(path string) (n int, ok bool, err error) {
	v, ok := s.Lookup(path)
	if !ok || v == nil {
		return 0, false, nil
	}
	n, err = cast.ToIntE(v)
	return n, true, err
}

// GetBool returns the value at path converted to a bool.
func (s *Store) GetBool(path string) bool {
	return cast.ToBool(s.Get(path))
}

// GetDuration returns the value at path as a time.Duration. Strings use
// time.ParseDuration syntax; numbers are nanoseconds.
func (s *Store) GetDuration(path string) time.Duration {
	return cast.ToDuration(s.Get(path))
}

// GetStringSlice returns the value at path as a []string.
func (s *Store) GetStringSlice(path string) []string {
	return cast.ToStringSlice(s.Get(path))
}

// All returns a copy of the full merged tree.
func (s *Store) All() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyValue(s.view).(map[string]any)
}

// Layers returns the names of the sources merged so far, in load order.
func (s *Store) Layers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.layers))
	copy(out, s.layers)
	return out
}

// Unmarshal decodes the section at path (the whole tree when path is empty)
// into out using mapstructure tags, then validates out's `validate` tags.
// Fields absent from the section keep their current values, so callers
// apply defaults first. Failures are INVALID_CONFIG errors.
func (s *Store) Unmarshal(path string, out any) error {
	s.mu.RLock()
	var err error
	if path == "" {
		err = s.index.Unmarshal(out)
	} else {
		err = s.index.UnmarshalKey(path, out)
	}
	s.mu.RUnlock()

	key := path
	if key == "" {
		key = "<root>"
	}
	if err != nil {
		return errors.InvalidConfig(key, "cannot decode section").WithCause(err)
	}

	if isStruct(out) {
		if err := validation.Validate(out); err != nil {
			return errors.InvalidConfig(key, "validation failed").WithCause(err)
		}
	}
	return nil
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
