package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	cosyerrors "github.com/cosyframework/cosy/errors"
)

type mockFS struct {
	files   map[string]string
	envErr  error
	envSeen []string
}

func (m *mockFS) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockFS) ReadFile(path string) ([]byte, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(content), nil
}

func (m *mockFS) LoadEnv(path string) error {
	m.envSeen = append(m.envSeen, path)
	return m.envErr
}

func TestLayerFilesOrder(t *testing.T) {
	files, err := LayerFiles(LayerOptions{
		Dir:         "cfg",
		Environment: "production",
		Formats:     []string{"json", ".yaml"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{
		filepath.Join("cfg", "app.json"),
		filepath.Join("cfg", "app.yaml"),
		filepath.Join("cfg", "production.json"),
		filepath.Join("cfg", "production.yaml"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("unexpected order:\n got %v\nwant %v", files, want)
	}
}

func TestLayerFilesDefaults(t *testing.T) {
	files, _ := LayerFiles(LayerOptions{})
	if len(files) != 1 || files[0] != filepath.Join(DefaultDir, "app.json") {
		t.Errorf("unexpected default files %v", files)
	}
}

func TestLayerFilesRejectsPathLikeEnvironment(t *testing.T) {
	for _, env := range []string{"../secrets", "a/b", `a\b`} {
		if _, err := LayerFiles(LayerOptions{Environment: env}); !cosyerrors.IsInvalidConfig(err) {
			t.Errorf("expected INVALID_CONFIG for %q, got %v", env, err)
		}
	}
}

func TestLoadLayersBaseOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.json", `{"app":{"port":3000}}`)

	store := NewStore()
	loaded, err := LoadLayers(context.Background(), store, LayerOptions{Dir: dir, Environment: "production"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 1 {
		t.Errorf("expected one layer, got %v", loaded)
	}
	if store.Get("app.port") != 3000 {
		t.Errorf("expected 3000, got %v", store.Get("app.port"))
	}
}

func TestLoadLayersOverlayWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.json", `{"app":{"port":3000,"name":"cosy"}}`)
	writeFile(t, dir, "development.json", `{"app":{"port":4000}}`)

	store := NewStore()
	if _, err := LoadLayers(context.Background(), store, LayerOptions{Dir: dir, Environment: "development"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Get("app.port") != 4000 {
		t.Errorf("expected overlay 4000, got %v", store.Get("app.port"))
	}
	if store.Get("app.name") != "cosy" {
		t.Errorf("expected base name, got %v", store.Get("app.name"))
	}
}

func TestLoadLayersMissingDirectory(t *testing.T) {
	store := NewStore()
	loaded, err := LoadLayers(context.Background(), store, LayerOptions{
		Dir:         filepath.Join(t.TempDir(), "does-not-exist"),
		Environment: "production",
	})
	if err != nil {
		t.Fatalf("missing directory must not fail: %v", err)
	}
	if len(loaded) != 0 || len(store.All()) != 0 {
		t.Errorf("expected empty store, got %v", store.All())
	}
}

func TestLoadLayersMalformedBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "app.json", `{"app": `)
	writeFile(t, dir, "production.json", `{"app":{"port":4000}}`)

	store := NewStore()
	_, err := LoadLayers(context.Background(), store, LayerOptions{Dir: dir, Environment: "production"})
	if !cosyerrors.IsConfigParse(err) {
		t.Fatalf("expected CONFIG_PARSE_ERROR, got %v", err)
	}
	if store.Has("app.port") {
		t.Error("overlay must not load after a failed base layer")
	}
}

func TestLoadLayersMixedFormats(t *testing.T) {
	fs := &mockFS{files: map[string]string{
		"cfg/app.json":        `{"app":{"port":3000,"name":"json"}}`,
		"cfg/app.yaml":        "app:\n  name: yaml\n",
		"cfg/production.toml": "[app]\nport = 8080\n",
	}}
	store := NewStore()
	loaded, err := LoadLayers(context.Background(), store, LayerOptions{
		Dir:         "cfg",
		Environment: "production",
		Formats:     []string{"json", "yaml", "toml"},
		FS:          fs,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded) != 3 {
		t.Errorf("expected 3 layers, got %v", loaded)
	}
	if store.Get("app.name") != "yaml" || store.Get("app.port") != 8080 {
		t.Errorf("unexpected tree %v", store.All())
	}
}

func TestLoadEnvFile(t *testing.T) {
	fs := &mockFS{files: map[string]string{".env": "A=1"}}

	found, err := LoadEnvFile(fs, ".env")
	if err != nil || !found {
		t.Fatalf("expected env file loaded, got found=%v err=%v", found, err)
	}
	if len(fs.envSeen) != 1 {
		t.Errorf("expected LoadEnv to be called once, got %v", fs.envSeen)
	}

	found, err = LoadEnvFile(fs, "missing.env")
	if err != nil || found {
		t.Errorf("missing env file must be skipped, got found=%v err=%v", found, err)
	}

	fs.envErr = errors.New("bad line")
	if _, err := LoadEnvFile(fs, ".env"); !cosyerrors.IsConfigParse(err) {
		t.Errorf("expected CONFIG_PARSE_ERROR, got %v", err)
	}
}

func TestLoadEnvFileFromDisk(t *testing.T) {
	path := writeFile(t, t.TempDir(), ".env", "COSY_DOTENV_PROBE=loaded\n")
	// godotenv never overrides a variable that is already set.
	t.Setenv("COSY_DOTENV_PROBE", "")
	os.Unsetenv("COSY_DOTENV_PROBE")

	if _, err := LoadEnvFile(OSFileSystem{}, path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("COSY_DOTENV_PROBE"); got != "loaded" {
		t.Errorf("expected loaded, got %q", got)
	}
}
