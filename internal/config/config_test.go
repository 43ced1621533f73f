package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formstate/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "formstate.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(config.Default(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9000
store:
  driver: sqlite
  dsn: file:test.db
button:
  reset_delay: 500ms
log:
  level: debug
  format: console
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := config.Default()
	want.Server.Addr = "127.0.0.1:9000"
	want.Store.Driver = config.DriverSQLite
	want.Store.DSN = "file:test.db"
	want.Button.ResetDelay = 500 * time.Millisecond
	want.Log.Level = "debug"
	want.Log.Format = "console"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FORMSTATE_ADDR", ":9999")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"driver": "store:\n  driver: postgres\n",
		"delay":  "button:\n  reset_delay: 0s\n",
		"format": "log:\n  format: xml\n",
		"dsn":    "store:\n  driver: sqlite\n  dsn: \"\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, body))
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoad_ParseError(t *testing.T) {
	_, err := config.Load(writeConfig(t, "server: [unterminated"))
	if err == nil || errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected a parse error, got %v", err)
	}
}
