package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `server:
  host: 10.0.0.5
  port: 25575
  password: hunter2
timeouts:
  connect: 3s
  read: 2s
poll_interval: 10s
data_dir: testdata
locations:
  spawn: {x: 0, y: 64, z: 0}
  arena: {x: 120.5, y: 70, z: -33}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr() != "10.0.0.5:25575" {
		t.Errorf("unexpected addr: %s", cfg.Server.Addr())
	}
	if cfg.Timeouts.Connect != 3*time.Second || cfg.Timeouts.Read != 2*time.Second {
		t.Errorf("unexpected timeouts: %+v", cfg.Timeouts)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("unexpected poll interval: %s", cfg.PollInterval)
	}
	if len(cfg.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(cfg.Locations))
	}
	if arena := cfg.Locations["arena"]; arena.X != 120.5 || arena.Z != -33 {
		t.Errorf("unexpected arena location: %+v", arena)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server: {host: localhost, port: 25575, password: pw}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Timeouts.Connect != DefaultConnectTimeout {
		t.Errorf("expected default connect timeout, got %s", cfg.Timeouts.Connect)
	}
	if cfg.Timeouts.Read != DefaultReadTimeout {
		t.Errorf("expected default read timeout, got %s", cfg.Timeouts.Read)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("expected default poll interval, got %s", cfg.PollInterval)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("expected default data dir, got %s", cfg.DataDir)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPrefix+"HOST", "override.example.com")
	t.Setenv(EnvPrefix+"PORT", "2000")
	t.Setenv(EnvPrefix+"PASSWORD", "fromenv")

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Host != "override.example.com" {
		t.Errorf("host not overridden: %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 2000 {
		t.Errorf("port not overridden: %d", cfg.Server.Port)
	}
	if cfg.Server.Password != "fromenv" {
		t.Errorf("password not overridden")
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing_host",
			content: "server: {port: 25575, password: pw}\n",
			wantErr: "host",
		},
		{
			name:    "bad_port",
			content: "server: {host: localhost, port: 70000, password: pw}\n",
			wantErr: "port",
		},
		{
			name:    "missing_password",
			content: "server: {host: localhost, port: 25575}\n",
			wantErr: "password",
		},
		{
			name:    "tiny_poll_interval",
			content: "server: {host: localhost, port: 25575, password: pw}\npoll_interval: 100ms\n",
			wantErr: "poll_interval",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got: %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig[Config]("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for non-existent file, got nil")
	}
	if !strings.Contains(err.Error(), "read config file") {
		t.Errorf("expected error to contain 'read config file', got: %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig[Config](writeConfig(t, "server: [invalid yaml\nport: not closed"))
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "parse config") {
		t.Errorf("expected error to contain 'parse config', got: %v", err)
	}
}
