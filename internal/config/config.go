package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ironsheep/collage-mcp/internal/collage"
	"github.com/ironsheep/collage-mcp/internal/imaging"
)

// EnvPrefix is prepended to environment overrides, e.g. COLLAGE_COLLAGE_CELL_SIZE.
const EnvPrefix = "COLLAGE"

// Config represents the complete collage-mcp configuration
type Config struct {
	Collage CollageConfig `mapstructure:"collage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CollageConfig controls how collages are laid out, decoded and exported
type CollageConfig struct {
	// CellSize is the side of each square grid cell in pixels (default: 300)
	CellSize int `mapstructure:"cell_size"`
	// Columns is the number of cells per row (default: 2)
	Columns int `mapstructure:"columns"`
	// DecodeTimeout bounds each image decode (default: 10s, must be positive)
	DecodeTimeout time.Duration `mapstructure:"decode_timeout"`
	// Format is the export encoding: "jpeg", "png" or "bmp" (default: "jpeg")
	Format string `mapstructure:"format"`
	// Quality is the JPEG quality 1-100 (default: 92)
	Quality int `mapstructure:"quality"`
	// Background is the canvas colour behind empty or transparent cells (default: "#000000")
	Background string `mapstructure:"background"`
	// Resample is the scaling filter: lanczos, catmullrom, linear, box, nearest
	Resample string `mapstructure:"resample"`
	// OnDecodeError is "abort" (fail the build) or "skip" (leave the cell empty)
	OnDecodeError string `mapstructure:"on_decode_error"`
	// ParallelDecode decodes images concurrently; cells are still drawn in order
	ParallelDecode bool `mapstructure:"parallel_decode"`
	// MaxParallel bounds concurrent decodes when ParallelDecode is set (default: 4)
	MaxParallel int `mapstructure:"max_parallel"`
	// MaxSurfacePixels caps the canvas area (default: 64,000,000)
	MaxSurfacePixels int `mapstructure:"max_surface_pixels"`
}

// LoggingConfig controls diagnostic output on stderr
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default: "info")
	Level string `mapstructure:"level"`
	// Format is "text" or "json" (default: "text")
	Format string `mapstructure:"format"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Collage: CollageConfig{
			CellSize:         300,
			Columns:          2,
			DecodeTimeout:    10 * time.Second,
			Format:           string(imaging.FormatJPEG),
			Quality:          imaging.DefaultQuality,
			Background:       "#000000",
			Resample:         "lanczos",
			OnDecodeError:    string(collage.AbortOnError),
			ParallelDecode:   false,
			MaxParallel:      4,
			MaxSurfacePixels: 64_000_000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// SetDefaults registers every default with viper so env and file overrides
// can be layered on top.
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("collage.cell_size", defaults.Collage.CellSize)
	viper.SetDefault("collage.columns", defaults.Collage.Columns)
	viper.SetDefault("collage.decode_timeout", defaults.Collage.DecodeTimeout)
	viper.SetDefault("collage.format", defaults.Collage.Format)
	viper.SetDefault("collage.quality", defaults.Collage.Quality)
	viper.SetDefault("collage.background", defaults.Collage.Background)
	viper.SetDefault("collage.resample", defaults.Collage.Resample)
	viper.SetDefault("collage.on_decode_error", defaults.Collage.OnDecodeError)
	viper.SetDefault("collage.parallel_decode", defaults.Collage.ParallelDecode)
	viper.SetDefault("collage.max_parallel", defaults.Collage.MaxParallel)
	viper.SetDefault("collage.max_surface_pixels", defaults.Collage.MaxSurfacePixels)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// AssemblerOptions converts the collage section into assembler options.
// The config must have passed Validate.
func (c *Config) AssemblerOptions() collage.Options {
	format, _ := imaging.ParseFormat(c.Collage.Format)
	bg, _ := imaging.ParseColor(c.Collage.Background)

	return collage.Options{
		Layout: collage.Layout{
			CellSize: c.Collage.CellSize,
			Columns:  c.Collage.Columns,
		},
		DecodeTimeout:    c.Collage.DecodeTimeout,
		Format:           format,
		Quality:          c.Collage.Quality,
		Background:       bg,
		Resample:         c.Collage.Resample,
		OnDecodeError:    collage.DecodePolicy(c.Collage.OnDecodeError),
		ParallelDecode:   c.Collage.ParallelDecode,
		MaxParallel:      c.Collage.MaxParallel,
		MaxSurfacePixels: c.Collage.MaxSurfacePixels,
	}
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "collage-mcp")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".collage-mcp"
	}
	return filepath.Join(home, ".config", "collage-mcp")
}
