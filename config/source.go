package config

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/cosyframework/cosy/errors"
)

// Supported file formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatYML  = "yml"
	FormatTOML = "toml"
)

// Source produces a partial configuration tree. Implementations are
// stateless and safe to call repeatedly.
type Source interface {
	// Name identifies the layer in logs and Store.Layers.
	Name() string
	// Load returns the layer's tree. A nil or empty map is a valid result.
	Load(ctx context.Context) (map[string]any, error)
}

// FileSource decodes a single configuration file. It assumes the file
// exists; callers that treat a missing file as an empty layer must check
// first (see LoadLayers).
type FileSource struct {
	Path string
	// Format is one of json, yaml, yml or toml. Empty infers it from the extension.
	Format string
	// FS defaults to the operating system.
	FS FileSystem
}

// NewFileSource returns a FileSource reading path from the OS filesystem.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string { return s.Path }

// Load reads and decodes the file. Malformed content yields a
// CONFIG_PARSE_ERROR carrying the path.
func (s *FileSource) Load(ctx context.Context) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fs := s.FS
	if fs == nil {
		fs = OSFileSystem{}
	}
	data, err := fs.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.Path, err)
	}

	format := s.Format
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(s.Path)), ".")
	}

	tree, err := decode(format, data)
	if err != nil {
		return nil, errors.ConfigParse(s.Path, err)
	}
	return tree, nil
}

func decode(format string, data []byte) (map[string]any, error) {
	// An empty YAML or TOML document is an empty layer; JSON has no empty
	// document.
	if len(bytes.TrimSpace(data)) == 0 {
		switch format {
		case FormatYAML, FormatYML, FormatTOML:
			return map[string]any{}, nil
		case FormatJSON:
			return nil, fmt.Errorf("empty JSON document")
		}
	}

	var raw any
	switch format {
	case FormatJSON:
		// Unmarshal rejects trailing data after the top-level value, which
		// the streaming decoder silently leaves unread.
		var doc json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		dec := json.NewDecoder(bytes.NewReader(doc))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	case FormatYAML, FormatYML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}

	tree, ok := normalize(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value must be an object, got %T", raw)
	}
	return tree, nil
}

// MapSource is an in-memory layer, used for caller-supplied overrides.
type MapSource struct {
	Label  string
	Values map[string]any
}

// NewMapSource returns a MapSource labelled name.
func NewMapSource(name string, values map[string]any) *MapSource {
	return &MapSource{Label: name, Values: values}
}

func (s *MapSource) Name() string {
	if s.Label == "" {
		return "memory"
	}
	return s.Label
}

// Load returns a normalized copy of Values; the caller's map is never shared
// with the store.
func (s *MapSource) Load(ctx context.Context) (map[string]any, error) {
	if s.Values == nil {
		return map[string]any{}, nil
	}
	return normalize(s.Values).(map[string]any), nil
}
