package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ironsheep/collage-mcp/internal/imaging"
	"github.com/ironsheep/collage-mcp/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "collage.cell_size")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidDecodePolicies returns the accepted collage.on_decode_error values
func ValidDecodePolicies() []string {
	return []string{"abort", "skip"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	cc := c.Collage

	if cc.CellSize <= 0 {
		errors = append(errors, ValidationError{"collage.cell_size", cc.CellSize, "must be greater than 0"})
	}
	if cc.Columns < 1 {
		errors = append(errors, ValidationError{"collage.columns", cc.Columns, "must be at least 1"})
	}
	if cc.DecodeTimeout <= 0 {
		errors = append(errors, ValidationError{"collage.decode_timeout", cc.DecodeTimeout, "must be greater than 0"})
	}
	if _, err := imaging.ParseFormat(cc.Format); err != nil {
		errors = append(errors, ValidationError{"collage.format", cc.Format, "must be one of jpeg, png, bmp"})
	}
	if cc.Quality < 1 || cc.Quality > 100 {
		errors = append(errors, ValidationError{"collage.quality", cc.Quality, "must be between 1 and 100"})
	}
	if _, err := imaging.ParseColor(cc.Background); err != nil {
		errors = append(errors, ValidationError{"collage.background", cc.Background, "must be a hex color like #000000"})
	}
	if !slices.Contains(imaging.FilterNames(), strings.ToLower(cc.Resample)) {
		errors = append(errors, ValidationError{"collage.resample", cc.Resample,
			"must be one of " + strings.Join(imaging.FilterNames(), ", ")})
	}
	if !slices.Contains(ValidDecodePolicies(), cc.OnDecodeError) {
		errors = append(errors, ValidationError{"collage.on_decode_error", cc.OnDecodeError, "must be abort or skip"})
	}
	if cc.MaxParallel < 1 {
		errors = append(errors, ValidationError{"collage.max_parallel", cc.MaxParallel, "must be at least 1"})
	}
	if cc.MaxSurfacePixels <= 0 {
		errors = append(errors, ValidationError{"collage.max_surface_pixels", cc.MaxSurfacePixels, "must be greater than 0"})
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errors = append(errors, ValidationError{"logging.level", c.Logging.Level,
			"must be one of " + strings.Join(logging.ValidLevels(), ", ")})
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		errors = append(errors, ValidationError{"logging.format", c.Logging.Format, "must be text or json"})
	}

	return errors
}
