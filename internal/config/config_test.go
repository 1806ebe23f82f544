package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 3000 {
		t.Fatalf("expected 0.0.0.0:3000, got %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
	if got := cfg.Addr(); got != "0.0.0.0:3000" {
		t.Fatalf("expected addr 0.0.0.0:3000, got %s", got)
	}
	if !cfg.Browser.Enabled || !cfg.Browser.NoSandbox || cfg.Browser.GLBackend != "egl" {
		t.Fatalf("unexpected browser defaults: %+v", cfg.Browser)
	}
	if cfg.Browser.ExecutablePath != "" {
		t.Fatalf("expected no executable override, got %q", cfg.Browser.ExecutablePath)
	}
	if cfg.Browser.WindowWidth != 800 || cfg.Browser.WindowHeight != 600 {
		t.Fatalf("expected 800x600 window, got %dx%d", cfg.Browser.WindowWidth, cfg.Browser.WindowHeight)
	}
	if cfg.ReadHeaderTimeout() != 5*time.Second || cfg.ShutdownTimeout() != 10*time.Second ||
		cfg.TeardownTimeout() != 15*time.Second {
		t.Fatalf("unexpected server timeouts: %+v", cfg.Server)
	}
	if cfg.Logging.Level != "info" || cfg.Telemetry.ServiceName != "webshot" {
		t.Fatalf("unexpected ambient defaults: %+v %+v", cfg.Logging, cfg.Telemetry)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  host: 127.0.0.1
  port: 9090
  read_header_timeout_seconds: 2
  shutdown_timeout_seconds: 30
browser:
  enabled: false
  executable_path: /opt/chrome/chrome
  gl_backend: swiftshader
  no_sandbox: false
  window_width: 1280
  window_height: 720
logging:
  development: true
  level: debug
telemetry:
  enabled: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Addr() != "127.0.0.1:9090" {
		t.Fatalf("expected 127.0.0.1:9090, got %s", cfg.Addr())
	}
	if cfg.ShutdownTimeout() != 30*time.Second {
		t.Fatalf("expected 30s shutdown, got %v", cfg.ShutdownTimeout())
	}
	want := BrowserConfig{
		Enabled:        false,
		ExecutablePath: "/opt/chrome/chrome",
		GLBackend:      "swiftshader",
		NoSandbox:      false,
		WindowWidth:    1280,
		WindowHeight:   720,
	}
	if cfg.Browser != want {
		t.Fatalf("expected browser %+v, got %+v", want, cfg.Browser)
	}
	if !cfg.Logging.Development || cfg.Logging.Level != "debug" || cfg.Telemetry.Enabled {
		t.Fatalf("expected ambient overrides to apply: %+v %+v", cfg.Logging, cfg.Telemetry)
	}
}

func TestLoadLegacyEnvironment(t *testing.T) {
	t.Setenv("HOST", "localhost")
	t.Setenv("PORT", "4000")
	t.Setenv("CHROME_EXECUTABLE", "/usr/bin/chromium")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr() != "localhost:4000" {
		t.Fatalf("expected localhost:4000, got %s", cfg.Addr())
	}
	if cfg.Browser.ExecutablePath != "/usr/bin/chromium" {
		t.Fatalf("expected CHROME_EXECUTABLE to apply, got %q", cfg.Browser.ExecutablePath)
	}
}

func TestLoadPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("PORT", "4000")
	t.Setenv("WEBSHOT_SERVER_PORT", "5000")
	t.Setenv("WEBSHOT_BROWSER_WINDOW_WIDTH", "1024")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 5000 {
		t.Fatalf("expected prefixed port 5000, got %d", cfg.Server.Port)
	}
	if cfg.Browser.WindowWidth != 1024 {
		t.Fatalf("expected window width 1024, got %d", cfg.Browser.WindowWidth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 3000, ReadHeaderTimeoutSeconds: 5},
		Browser: BrowserConfig{
			WindowWidth:  800,
			WindowHeight: 600,
		},
		Logging:   LoggingConfig{Level: "info"},
		Telemetry: TelemetryConfig{Enabled: true, ServiceName: "webshot"},
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected base config to be valid, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "port out of range",
			cfg: func() Config {
				c := base
				c.Server.Port = 70000
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid read header timeout",
			cfg: func() Config {
				c := base
				c.Server.ReadHeaderTimeoutSeconds = 0
				return c
			}(),
			want: "server.read_header_timeout_seconds",
		},
		{
			name: "negative shutdown timeout",
			cfg: func() Config {
				c := base
				c.Server.ShutdownTimeoutSeconds = -1
				return c
			}(),
			want: "server.shutdown_timeout_seconds",
		},
		{
			name: "negative teardown timeout",
			cfg: func() Config {
				c := base
				c.Server.TeardownTimeoutSeconds = -1
				return c
			}(),
			want: "server.teardown_timeout_seconds",
		},
		{
			name: "zero window",
			cfg: func() Config {
				c := base
				c.Browser.WindowHeight = 0
				return c
			}(),
			want: "browser.window_width",
		},
		{
			name: "unknown log level",
			cfg: func() Config {
				c := base
				c.Logging.Level = "loud"
				return c
			}(),
			want: "logging.level",
		},
		{
			name: "telemetry without service name",
			cfg: func() Config {
				c := base
				c.Telemetry.ServiceName = ""
				return c
			}(),
			want: "telemetry.service_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
