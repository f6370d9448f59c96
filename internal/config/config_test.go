package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

func TestValidateDetectsInvalidConfigurations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name: "missing server id",
			mutate: func(cfg *Config) {
				cfg.Server.ID = ""
			},
			wantErr: "server.id must be set",
		},
		{
			name: "missing listen address",
			mutate: func(cfg *Config) {
				cfg.Server.ListenHTTP = ""
			},
			wantErr: "server.listenHttp must be set",
		},
		{
			name: "non positive chunk size",
			mutate: func(cfg *Config) {
				cfg.World.ChunkSize = 0
			},
			wantErr: "world tile and chunk sizes must be positive",
		},
		{
			name: "non positive world dimensions",
			mutate: func(cfg *Config) {
				cfg.World.WidthTiles = -64
			},
			wantErr: "world dimensions must be positive",
		},
		{
			name: "negative view radius",
			mutate: func(cfg *Config) {
				cfg.World.ViewRadius = -1
			},
			wantErr: "world.viewRadius cannot be negative",
		},
		{
			name: "zero noise scale",
			mutate: func(cfg *Config) {
				cfg.Noise.MoistureScale = 0
			},
			wantErr: "noise scales must be positive",
		},
		{
			name: "tree density out of range",
			mutate: func(cfg *Config) {
				cfg.Features.TreeDensity = 1.5
			},
			wantErr: "features.treeDensity must be within [0,1]",
		},
		{
			name: "negative border depth",
			mutate: func(cfg *Config) {
				cfg.Border.FadeDepth = -1
			},
			wantErr: "border depths cannot be negative",
		},
		{
			name: "start hour out of range",
			mutate: func(cfg *Config) {
				cfg.Environment.StartHour = 24
			},
			wantErr: "environment.startHour must be within [0,23]",
		},
		{
			name: "non positive time pacing",
			mutate: func(cfg *Config) {
				cfg.Environment.MinutesPerSecond = 0
			},
			wantErr: "environment.minutesPerSecond must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected an error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("unexpected error: got %q want %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load default config: %v", err)
	}
	if want := Default(); !reflect.DeepEqual(cfg, want) {
		t.Fatalf("default configuration mismatch:\nwant: %#v\n got: %#v", want, cfg)
	}
}

func TestLoadReadsJSONFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.Server.Description = "custom description"
	cfg.World.ViewRadius = 3

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadReadsYAMLFileAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.World.ChunkSize = 32
	cfg.Features.TreeDensity = 0.25

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Fatalf("loaded configuration mismatch:\nwant: %#v\n got: %#v", cfg, got)
	}
}

func TestLoadInvalidConfiguration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := Default()
	cfg.World.ChunkSize = 0

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err = Load(path)
	if err == nil {
		t.Fatalf("expected load to fail")
	}
	if !strings.Contains(err.Error(), "validate config: world tile and chunk sizes must be positive") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDurationUnmarshalShapes(t *testing.T) {
	var cfg struct {
		A Duration `json:"a" yaml:"a"`
		B Duration `json:"b" yaml:"b"`
	}
	if err := json.Unmarshal([]byte(`{"a":"250ms","b":1000000}`), &cfg); err != nil {
		t.Fatalf("unmarshal json durations: %v", err)
	}
	if cfg.A.Duration().Milliseconds() != 250 {
		t.Fatalf("string duration mismatch: %v", cfg.A.Duration())
	}
	if cfg.B.Duration().Milliseconds() != 1 {
		t.Fatalf("numeric duration mismatch: %v", cfg.B.Duration())
	}

	if err := yaml.Unmarshal([]byte("a: 3s\nb: 1500000000\n"), &cfg); err != nil {
		t.Fatalf("unmarshal yaml durations: %v", err)
	}
	if cfg.A.Duration().Seconds() != 3 {
		t.Fatalf("yaml string duration mismatch: %v", cfg.A.Duration())
	}
	if cfg.B.Duration().Milliseconds() != 1500 {
		t.Fatalf("yaml numeric duration mismatch: %v", cfg.B.Duration())
	}
}
