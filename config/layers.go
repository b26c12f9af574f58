package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/logger"
)

const (
	// DefaultDir is the directory searched when none is configured.
	DefaultDir = "./config"
	// BaseLayer is the file stem of the layer loaded for every environment.
	BaseLayer = "app"
)

// LayerOptions controls LoadLayers.
type LayerOptions struct {
	// Dir is searched for layer files; defaults to DefaultDir.
	Dir string
	// Environment names the overlay layer. Empty loads the base layer only.
	Environment string
	// Formats lists file extensions tried for each layer, in order.
	// Defaults to json only.
	Formats []string
	FS      FileSystem
	Logger  *logger.Logger
}

func (o *LayerOptions) applyDefaults() {
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.FS == nil {
		o.FS = OSFileSystem{}
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
}

// LayerFiles returns the candidate files in load order: every format of the
// base layer, then every format of the environment layer.
func LayerFiles(opts LayerOptions) ([]string, error) {
	opts.applyDefaults()

	stems := []string{BaseLayer}
	if opts.Environment != "" {
		if strings.ContainsAny(opts.Environment, `/\`) || strings.Contains(opts.Environment, "..") {
			return nil, errors.InvalidConfig("environment", fmt.Sprintf("%q cannot be used as a file name", opts.Environment))
		}
		if opts.Environment != BaseLayer {
			stems = append(stems, opts.Environment)
		}
	}

	files := make([]string, 0, len(stems)*len(opts.Formats))
	for _, stem := range stems {
		for _, format := range opts.Formats {
			format = strings.TrimPrefix(strings.ToLower(format), ".")
			files = append(files, filepath.Join(opts.Dir, stem+"."+format))
		}
	}
	return files, nil
}

// LoadLayers merges the base and environment layers from opts.Dir into
// store. Missing files (and a missing directory) are skipped without error;
// a file that exists but is malformed aborts with CONFIG_PARSE_ERROR. It
// returns the files that were loaded.
func LoadLayers(ctx context.Context, store *Store, opts LayerOptions) ([]string, error) {
	opts.applyDefaults()

	files, err := LayerFiles(opts)
	if err != nil {
		return nil, err
	}

	var loaded []string
	for _, path := range files {
		if !opts.FS.Exists(path) {
			opts.Logger.Debug("Config layer not found, skipping", logger.Fields(logger.FieldLayer, path))
			continue
		}
		src := &FileSource{Path: path, FS: opts.FS}
		if err := store.Load(ctx, src); err != nil {
			return loaded, err
		}
		opts.Logger.Info("Config layer loaded", logger.Fields(logger.FieldLayer, path))
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// LoadEnvFile loads a dotenv file into the process environment if it
// exists. It reports whether the file was found.
func LoadEnvFile(fs FileSystem, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if fs == nil {
		fs = OSFileSystem{}
	}
	if !fs.Exists(path) {
		return false, nil
	}
	if err := fs.LoadEnv(path); err != nil {
		return true, errors.ConfigParse(path, err)
	}
	return true, nil
}
