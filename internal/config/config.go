package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a JSON/YAML-friendly wrapper around time.Duration that accepts
// human readable strings such as "150ms" in configuration files while still
// allowing numeric representations when necessary.
type Duration time.Duration

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// MarshalJSON encodes the duration using the canonical string representation.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON decodes a duration from either a string (e.g. "250ms") or a
// numeric value representing nanoseconds. Empty strings and null values decode
// to zero.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("duration: empty value")
	}
	if string(b) == "null" {
		*d = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("duration: decode string: %w", err)
		}
		return d.set(s)
	}
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	return fmt.Errorf("duration: invalid value %s", string(b))
}

// MarshalYAML mirrors MarshalJSON for YAML documents.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON. Numeric decoding is
// attempted first because YAML happily coerces plain scalars into strings.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(time.Duration(n))
		return nil
	}
	var f float64
	if err := value.Decode(&f); err == nil {
		*d = Duration(time.Duration(f))
		return nil
	}
	var s string
	if err := value.Decode(&s); err == nil {
		return d.set(s)
	}
	return fmt.Errorf("duration: invalid value %q", value.Value)
}

func (d *Duration) set(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration: parse %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config captures the tunable parameters needed to bootstrap a world server.
type Config struct {
	Server      ServerConfig      `json:"server" yaml:"server"`
	World       WorldConfig       `json:"world" yaml:"world"`
	Noise       NoiseConfig       `json:"noise" yaml:"noise"`
	Biomes      BiomeConfig       `json:"biomes" yaml:"biomes"`
	Features    FeatureConfig     `json:"features" yaml:"features"`
	Border      BorderConfig      `json:"border" yaml:"border"`
	Environment EnvironmentConfig `json:"environment" yaml:"environment"`
	Snapshot    SnapshotConfig    `json:"snapshot" yaml:"snapshot"`
}

type ServerConfig struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description" yaml:"description"`
	ListenHTTP  string   `json:"listenHttp" yaml:"listenHttp"` // ":9100"
	TickRate    Duration `json:"tickRate" yaml:"tickRate"`     // e.g. "50ms"
	WriteWait   Duration `json:"writeWait" yaml:"writeWait"`   // per-message websocket deadline
}

// WorldConfig describes the playable grid and the streaming window.
type WorldConfig struct {
	TileSize    int `json:"tileSize" yaml:"tileSize"`       // pixels per tile
	ChunkSize   int `json:"chunkSize" yaml:"chunkSize"`     // tiles per chunk edge
	WidthTiles  int `json:"widthTiles" yaml:"widthTiles"`   // playable width
	HeightTiles int `json:"heightTiles" yaml:"heightTiles"` // playable height
	ViewRadius  int `json:"viewRadius" yaml:"viewRadius"`   // loaded window radius in chunks
}

type NoiseConfig struct {
	ElevationScale   float64 `json:"elevationScale" yaml:"elevationScale"`
	TemperatureScale float64 `json:"temperatureScale" yaml:"temperatureScale"`
	MoistureScale    float64 `json:"moistureScale" yaml:"moistureScale"`
	FeatureScale     float64 `json:"featureScale" yaml:"featureScale"`
}

// BiomeConfig holds the classifier thresholds. The priority order of the
// classification chain itself is fixed.
type BiomeConfig struct {
	MountainElevation float64 `json:"mountainElevation" yaml:"mountainElevation"`
	VolcanicTemp      float64 `json:"volcanicTemp" yaml:"volcanicTemp"`
	TundraTemp        float64 `json:"tundraTemp" yaml:"tundraTemp"`
	DesertTemp        float64 `json:"desertTemp" yaml:"desertTemp"`
	DesertMoisture    float64 `json:"desertMoisture" yaml:"desertMoisture"`
	SwampMoisture     float64 `json:"swampMoisture" yaml:"swampMoisture"`
	ForestMoisture    float64 `json:"forestMoisture" yaml:"forestMoisture"`
}

type FeatureConfig struct {
	TreeDensity    float64 `json:"treeDensity" yaml:"treeDensity"`
	RockDensity    float64 `json:"rockDensity" yaml:"rockDensity"`
	NoiseThreshold float64 `json:"noiseThreshold" yaml:"noiseThreshold"`
}

// BorderConfig controls the perimeter forest wall. Depths are measured in
// tiles from the playable edge.
type BorderConfig struct {
	CoreDepth     int `json:"coreDepth" yaml:"coreDepth"`
	FadeDepth     int `json:"fadeDepth" yaml:"fadeDepth"`
	ExtendedDepth int `json:"extendedDepth" yaml:"extendedDepth"`
}

type EnvironmentConfig struct {
	StartHour          int      `json:"startHour" yaml:"startHour"`
	MinutesPerSecond   float64  `json:"minutesPerSecond" yaml:"minutesPerSecond"` // in-game pacing
	WeatherMinDuration Duration `json:"weatherMinDuration" yaml:"weatherMinDuration"`
	WeatherMaxDuration Duration `json:"weatherMaxDuration" yaml:"weatherMaxDuration"`
	StormChance        float64  `json:"stormChance" yaml:"stormChance"`
	RainChance         float64  `json:"rainChance" yaml:"rainChance"`
	WindBase           float64  `json:"windBase" yaml:"windBase"`
	WindVariance       float64  `json:"windVariance" yaml:"windVariance"`
}

type SnapshotConfig struct {
	Dir     string `json:"dir" yaml:"dir"` // empty disables eviction snapshots
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Load reads configuration from a JSON or YAML file, selected by extension.
// An empty path returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ID:          "world-server-0",
			Description: "local development world server",
			ListenHTTP:  ":9100",
			TickRate:    Duration(50 * time.Millisecond),
			WriteWait:   Duration(5 * time.Second),
		},
		World: WorldConfig{
			TileSize:    32,
			ChunkSize:   16,
			WidthTiles:  64,
			HeightTiles: 64,
			ViewRadius:  2,
		},
		Noise: NoiseConfig{
			ElevationScale:   50.0,
			TemperatureScale: 75.0,
			MoistureScale:    60.0,
			FeatureScale:     25.0,
		},
		Biomes: BiomeConfig{
			MountainElevation: 0.6,
			VolcanicTemp:      0.7,
			TundraTemp:        -0.5,
			DesertTemp:        0.5,
			DesertMoisture:    -0.3,
			SwampMoisture:     0.6,
			ForestMoisture:    0.3,
		},
		Features: FeatureConfig{
			TreeDensity:    0.15,
			RockDensity:    0.05,
			NoiseThreshold: 0.4,
		},
		Border: BorderConfig{
			CoreDepth:     8,
			FadeDepth:     4,
			ExtendedDepth: 8,
		},
		Environment: EnvironmentConfig{
			StartHour:          8,
			MinutesPerSecond:   1.0,
			WeatherMinDuration: Duration(2 * time.Minute),
			WeatherMaxDuration: Duration(5 * time.Minute),
			StormChance:        0.15,
			RainChance:         0.35,
			WindBase:           3.0,
			WindVariance:       5.0,
		},
		Snapshot: SnapshotConfig{
			Dir:     "snapshots",
			Enabled: false,
		},
	}
}

func (c *Config) Validate() error {
	if c.Server.ID == "" {
		return errors.New("server.id must be set")
	}
	if c.Server.ListenHTTP == "" {
		return errors.New("server.listenHttp must be set")
	}
	if c.World.TileSize <= 0 || c.World.ChunkSize <= 0 {
		return errors.New("world tile and chunk sizes must be positive")
	}
	if c.World.WidthTiles <= 0 || c.World.HeightTiles <= 0 {
		return errors.New("world dimensions must be positive")
	}
	if c.World.ViewRadius < 0 {
		return errors.New("world.viewRadius cannot be negative")
	}
	if c.Noise.ElevationScale <= 0 || c.Noise.TemperatureScale <= 0 ||
		c.Noise.MoistureScale <= 0 || c.Noise.FeatureScale <= 0 {
		return errors.New("noise scales must be positive")
	}
	if c.Features.TreeDensity < 0 || c.Features.TreeDensity > 1 {
		return errors.New("features.treeDensity must be within [0,1]")
	}
	if c.Features.RockDensity < 0 || c.Features.RockDensity > 1 {
		return errors.New("features.rockDensity must be within [0,1]")
	}
	if c.Border.CoreDepth < 0 || c.Border.FadeDepth < 0 || c.Border.ExtendedDepth < 0 {
		return errors.New("border depths cannot be negative")
	}
	if c.Environment.StartHour < 0 || c.Environment.StartHour > 23 {
		return errors.New("environment.startHour must be within [0,23]")
	}
	if c.Environment.MinutesPerSecond <= 0 {
		return errors.New("environment.minutesPerSecond must be positive")
	}
	if c.Environment.WeatherMaxDuration > 0 && c.Environment.WeatherMaxDuration < c.Environment.WeatherMinDuration {
		return errors.New("environment.weatherMaxDuration must be >= weatherMinDuration")
	}
	if c.Environment.StormChance < 0 || c.Environment.RainChance < 0 {
		return errors.New("environment storm/rain chances cannot be negative")
	}
	if c.Environment.StormChance+c.Environment.RainChance > 1.0 {
		return errors.New("environment storm+rain chance must be <= 1")
	}
	return nil
}
