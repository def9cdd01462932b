package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Environment variables recognised by the server and CLI.
const (
	EnvAllowedDirs  = "MCPCELLAR_ALLOWED_DIRS"
	EnvEnableWrites = "MCPCELLAR_ENABLE_WRITES"
	EnvConfigPath   = "MCPCELLAR_CONFIG"
)

// Config is the file-backed configuration. Zero sections fall back to defaults.
type Config struct {
	Thresholds ThresholdConfig `toml:"thresholds"`
	Layout     LayoutConfig    `toml:"layout"`
	Export     ExportConfig    `toml:"export"`
	Limits     LimitsConfig    `toml:"limits"`
}

// ThresholdConfig holds ABC and XYZ cut points.
type ThresholdConfig struct {
	A float64 `toml:"abc_a"`
	B float64 `toml:"abc_b"`
	X float64 `toml:"xyz_x"`
	Y float64 `toml:"xyz_y"`
}

// LayoutConfig describes where the header row of each export sits.
type LayoutConfig struct {
	DishSheet        string `toml:"dish_sheet"`
	DishHeaderRow    int    `toml:"dish_header_row"`
	CatalogSheet     string `toml:"catalog_sheet"`
	CatalogHeaderRow int    `toml:"catalog_header_row"`
}

// ExportConfig controls opt-in report persistence.
type ExportConfig struct {
	Dir string `toml:"dir"`
}

// LimitsConfig overrides runtime guardrails.
type LimitsConfig struct {
	MaxConcurrentRequests int `toml:"max_concurrent_requests"`
	MaxLoadedDatasets     int `toml:"max_loaded_datasets"`
	MaxRowsPerSheet       int `toml:"max_rows_per_sheet"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Thresholds: ThresholdConfig{
			A: DefaultABCThresholdA,
			B: DefaultABCThresholdB,
			X: DefaultXYZThresholdX,
			Y: DefaultXYZThresholdY,
		},
		Layout: LayoutConfig{
			DishHeaderRow:    DefaultDishHeaderRow,
			CatalogHeaderRow: DefaultCatalogHeaderRow,
		},
		Export: ExportConfig{Dir: DefaultExportDir},
		Limits: LimitsConfig{
			MaxConcurrentRequests: DefaultMaxConcurrentRequests,
			MaxLoadedDatasets:     DefaultMaxLoadedDatasets,
			MaxRowsPerSheet:       DefaultMaxRowsPerSheet,
		},
	}
}

// Load reads a TOML file on top of the defaults. An empty path or a missing
// file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %q: %w", path, err)
	}
	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("config: parse %q: %w", path, err)
	}
	cfg.merge(file)
	return cfg, nil
}

// LoadEnv loads a .env file into the process environment when present.
// Variables already set take precedence.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// WritesEnabled reports whether write/export tools are enabled via env.
func WritesEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvEnableWrites)))
	return v == "1" || v == "true" || v == "yes"
}

func (c *Config) merge(f Config) {
	if f.Thresholds.A > 0 {
		c.Thresholds.A = f.Thresholds.A
	}
	if f.Thresholds.B > 0 {
		c.Thresholds.B = f.Thresholds.B
	}
	if f.Thresholds.X > 0 {
		c.Thresholds.X = f.Thresholds.X
	}
	if f.Thresholds.Y > 0 {
		c.Thresholds.Y = f.Thresholds.Y
	}
	if f.Layout.DishSheet != "" {
		c.Layout.DishSheet = f.Layout.DishSheet
	}
	if f.Layout.DishHeaderRow > 0 {
		c.Layout.DishHeaderRow = f.Layout.DishHeaderRow
	}
	if f.Layout.CatalogSheet != "" {
		c.Layout.CatalogSheet = f.Layout.CatalogSheet
	}
	if f.Layout.CatalogHeaderRow > 0 {
		c.Layout.CatalogHeaderRow = f.Layout.CatalogHeaderRow
	}
	if f.Export.Dir != "" {
		c.Export.Dir = f.Export.Dir
	}
	if f.Limits.MaxConcurrentRequests > 0 {
		c.Limits.MaxConcurrentRequests = f.Limits.MaxConcurrentRequests
	}
	if f.Limits.MaxLoadedDatasets > 0 {
		c.Limits.MaxLoadedDatasets = f.Limits.MaxLoadedDatasets
	}
	if f.Limits.MaxRowsPerSheet > 0 {
		c.Limits.MaxRowsPerSheet = f.Limits.MaxRowsPerSheet
	}
}
