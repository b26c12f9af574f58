package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cosyframework/cosy/application"
	"github.com/cosyframework/cosy/config"
	"github.com/cosyframework/cosy/di"
	apperrors "github.com/cosyframework/cosy/errors"
	"github.com/cosyframework/cosy/logger"
	"github.com/cosyframework/cosy/server"
)

// fakeServer implements application.Server without binding a socket.
type fakeServer struct {
	port     int
	serves   int
	shutdown bool
}

func (s *fakeServer) Serve(ctx context.Context, port int) error {
	s.serves++
	s.port = port
	return nil
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	s.shutdown = true
	return nil
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func testOptions(dir, env string, srv application.Server) Options {
	return Options{
		ConfigPath:  dir,
		Environment: config.StaticEnvironment(env),
		EnvFile:     "-",
		Server:      srv,
		Logger:      logger.Nop(),
	}
}

func TestStartUsesBaseLayerPort(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000}}`)
	srv := &fakeServer{}

	app, err := Run(context.Background(), testOptions(dir, "development", srv))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if srv.port != 3000 {
		t.Errorf("port = %d, want 3000", srv.port)
	}
	if app.State() != application.StateStarted {
		t.Errorf("state = %v, want started", app.State())
	}
	if app.Environment() != "development" {
		t.Errorf("environment = %q", app.Environment())
	}
}

func TestStartEnvironmentOverlayWins(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000,"name":"svc"}}`)
	writeConfig(t, dir, "production.json", `{"app":{"port":4000}}`)
	srv := &fakeServer{}

	app, err := Run(context.Background(), testOptions(dir, "production", srv))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if srv.port != 4000 {
		t.Errorf("port = %d, want 4000", srv.port)
	}
	if got := app.Config("app.name"); got != "svc" {
		t.Errorf("app.name = %v, want base value kept", got)
	}
}

func TestStartWithoutConfigDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")

	t.Run("no port is fatal", func(t *testing.T) {
		b := New(testOptions(dir, "development", &fakeServer{}))
		_, err := b.Start(context.Background())
		if !apperrors.IsInvalidConfig(err) {
			t.Fatalf("err = %v, want invalid config", err)
		}
		if b.State() != StateBooted {
			t.Errorf("state = %v, want booted", b.State())
		}
	})

	t.Run("initial config supplies port", func(t *testing.T) {
		opts := testOptions(dir, "development", &fakeServer{})
		opts.Config = map[string]any{"app": map[string]any{"port": 8080}}
		srv := opts.Server.(*fakeServer)

		if _, err := Run(context.Background(), opts); err != nil {
			t.Fatalf("run: %v", err)
		}
		if srv.port != 8080 {
			t.Errorf("port = %d, want 8080", srv.port)
		}
	})
}

func TestInitialConfigIsBelowFiles(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000}}`)
	opts := testOptions(dir, "development", &fakeServer{})
	opts.Config = map[string]any{"app": map[string]any{"port": 1, "name": "initial"}}

	b := New(opts)
	if got := b.Store().GetInt("app.port"); got != 1 {
		t.Errorf("before start app.port = %d, want 1", got)
	}
	app, err := b.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if app.Port() != 3000 {
		t.Errorf("port = %d, want 3000", app.Port())
	}
	if app.Config("app.name") != "initial" {
		t.Errorf("app.name = %v", app.Config("app.name"))
	}
}

func TestMalformedBaseLayerAbortsBeforeProviders(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated", `{"app": {"port": `},
		{"trailing value", `{"app":{"port":3000}}, "oops"`},
		{"extra brace", `{"app":{"port":3000}}}`},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "app.json", tc.content)
			writeConfig(t, dir, "development.json", `{"app":{"port":4000}}`)

			called := 0
			srv := &fakeServer{}
			opts := testOptions(dir, "development", srv)
			opts.Providers = []application.Factory{
				func() application.Provider {
					called++
					return &application.ProviderFuncs{ID: "never"}
				},
			}

			b := New(opts)
			app, err := b.Start(context.Background())
			if !apperrors.IsConfigParse(err) {
				t.Fatalf("err = %v, want config parse error", err)
			}
			if app != nil || b.Application() != nil {
				t.Error("application should not have been created")
			}
			if called != 0 {
				t.Errorf("factory called %d times", called)
			}
			if b.State() != StateCreated {
				t.Errorf("state = %v, want created", b.State())
			}
			if b.Store().Has("app.port") {
				t.Error("a layer was loaded despite the parse failure")
			}
			if srv.serves != 0 {
				t.Error("server was started")
			}
		})
	}
}

func TestProvidersRegisterThenBoot(t *testing.T) {
	var events []string
	provider := func(name string) application.Factory {
		return func() application.Provider {
			events = append(events, name+".new")
			return &application.ProviderFuncs{
				ID: name,
				OnRegister: func(context.Context, *application.Application) error {
					events = append(events, name+".register")
					return nil
				},
				OnBoot: func(context.Context, *application.Application) error {
					events = append(events, name+".boot")
					return nil
				},
			}
		}
	}

	opts := testOptions(t.TempDir(), "development", &fakeServer{})
	opts.Config = map[string]any{"app": map[string]any{"port": 3000}}
	opts.Providers = []application.Factory{provider("a"), provider("b")}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	want := []string{"a.new", "a.register", "b.new", "b.register", "a.boot", "b.boot"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestProviderFailureStopsStart(t *testing.T) {
	srv := &fakeServer{}
	opts := testOptions(t.TempDir(), "development", srv)
	opts.Config = map[string]any{"app": map[string]any{"port": 3000}}
	opts.Providers = []application.Factory{
		func() application.Provider {
			return &application.ProviderFuncs{
				ID:     "db",
				OnBoot: func(context.Context, *application.Application) error { return errors.New("unreachable") },
			}
		},
	}

	b := New(opts)
	_, err := b.Start(context.Background())
	if !apperrors.IsProviderFailure(err) {
		t.Fatalf("err = %v, want provider failure", err)
	}
	if b.State() != StateProvidersRegistered {
		t.Errorf("state = %v, want providers registered", b.State())
	}
	if srv.serves != 0 {
		t.Error("server started despite boot failure")
	}
}

func TestNilFactory(t *testing.T) {
	opts := testOptions(t.TempDir(), "development", &fakeServer{})
	opts.Providers = []application.Factory{
		func() application.Provider { return nil },
	}
	if _, err := Run(context.Background(), opts); !apperrors.IsProviderFailure(err) {
		t.Errorf("err = %v, want provider failure", err)
	}
}

func TestStartTwice(t *testing.T) {
	opts := testOptions(t.TempDir(), "development", &fakeServer{})
	opts.Config = map[string]any{"app": map[string]any{"port": 3000}}

	b := Create(opts)
	if _, err := b.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Start(context.Background()); !apperrors.IsLifecycleOrder(err) {
		t.Errorf("err = %v, want lifecycle order error", err)
	}
}

func TestHooksInstalled(t *testing.T) {
	var events []string
	hook := func(name string) application.Hook {
		return func(context.Context, *application.Application) error {
			events = append(events, name)
			return nil
		}
	}
	opts := testOptions(t.TempDir(), "development", &fakeServer{})
	opts.Config = map[string]any{"app": map[string]any{"port": 3000}}
	opts.Hooks = &application.Hooks{
		BeforeBoot: []application.Hook{hook("before boot")},
		AfterStart: []application.Hook{hook("after start")},
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	want := []string{"before boot", "after start"}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestEnvPrefixOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000}}`)
	t.Setenv("COSYTEST_APP_PORT", "5000")

	srv := &fakeServer{}
	opts := testOptions(dir, "development", srv)
	opts.EnvPrefix = "COSYTEST"

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	if srv.port != 5000 {
		t.Errorf("port = %d, want 5000", srv.port)
	}
}

func TestEnvFileSelectsEnvironment(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000}}`)
	writeConfig(t, dir, "staging.json", `{"app":{"port":3500}}`)
	envFile := filepath.Join(dir, "test.env")
	writeConfig(t, dir, "test.env", "COSYTEST_ENV=stage\n")
	t.Setenv("COSYTEST_ENV", "")
	os.Unsetenv("COSYTEST_ENV")

	srv := &fakeServer{}
	opts := testOptions(dir, "", srv)
	opts.Environment = config.EnvVarEnvironment{Key: "COSYTEST_ENV", Fallback: config.DefaultEnvironment}
	opts.EnvFile = envFile

	app, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if app.Environment() != "staging" || srv.port != 3500 {
		t.Errorf("environment = %q port = %d, want staging on 3500", app.Environment(), srv.port)
	}
}

func TestServerBoundInContainer(t *testing.T) {
	srv := &fakeServer{}
	opts := testOptions(t.TempDir(), "development", srv)
	opts.Config = map[string]any{"app": map[string]any{"port": 3000}}

	app, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := di.TryResolve[application.Server](app.Container(), di.Names.HTTPServer)
	if !ok || got != srv {
		t.Error("server not bound under the http server key")
	}
}

func TestContainerVisibleToProviders(t *testing.T) {
	c := di.NewContainer()
	if err := c.Instance("greeting", "hello"); err != nil {
		t.Fatal(err)
	}
	opts := testOptions(t.TempDir(), "development", &fakeServer{})
	opts.Config = map[string]any{"app": map[string]any{"port": 3000}}
	opts.Container = c

	var seen string
	opts.Providers = []application.Factory{
		func() application.Provider {
			return &application.ProviderFuncs{
				ID: "greeter",
				OnRegister: func(ctx context.Context, app *application.Application) error {
					v, err := di.Resolve[string](app.Container(), "greeting")
					seen = v
					return err
				},
			}
		},
	}

	app, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if seen != "hello" {
		t.Errorf("provider saw %q", seen)
	}
	if app.Container() != c {
		t.Error("application did not use the supplied container")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	_, port, _ := net.SplitHostPort(ln.Addr().String())
	n, _ := strconv.Atoi(port)
	return n
}

func TestDefaultHTTPServer(t *testing.T) {
	port := freePort(t)
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{
		"app": {"name": "demo", "port": `+strconv.Itoa(port)+`},
		"server": {"host": "127.0.0.1", "shutdown_timeout": "1s"}
	}`)

	opts := testOptions(dir, "development", nil)
	app, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	defer app.Stop(context.Background())

	if _, ok := di.TryResolve[*server.Server](app.Container(), di.Names.HTTPServer); !ok {
		t.Fatal("built-in server not bound")
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}

	if err := app.Stop(context.Background()); err != nil {
		t.Errorf("stop: %v", err)
	}
}

func TestInvalidServerSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000},"server":{"read_timeout":"-1s"}}`)

	_, err := Run(context.Background(), testOptions(dir, "development", nil))
	if !apperrors.IsInvalidConfig(err) {
		t.Errorf("err = %v, want invalid config", err)
	}
}

func TestLoggerFromLoggingSection(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"port":3000},"logging":{"level":"verbose"}}`)

	opts := testOptions(dir, "development", &fakeServer{})
	opts.Logger = nil
	_, err := Run(context.Background(), opts)
	if !apperrors.IsInvalidConfig(err) {
		t.Errorf("err = %v, want invalid config", err)
	}
}

func TestSummaryOutput(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app.json", `{"app":{"name":"demo","port":3000}}`)

	var buf bytes.Buffer
	opts := testOptions(dir, "development", &fakeServer{})
	opts.SummaryOutput = &buf
	opts.Providers = []application.Factory{
		func() application.Provider { return &application.ProviderFuncs{ID: "cache"} },
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"demo", "port=3000", "app.json", "cache"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
