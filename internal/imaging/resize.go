package imaging

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// filters maps configuration names to resampling filters.
var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

// FilterNames lists the accepted resample filter names.
func FilterNames() []string {
	return []string{"lanczos", "catmullrom", "linear", "box", "nearest"}
}

// ParseFilter resolves a resample filter by name (case-insensitive).
// The empty string selects Lanczos.
func ParseFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return imaging.Lanczos, nil
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown resample filter: %s", name)
	}
	return f, nil
}

// Stretch resizes img to exactly size × size pixels.
//
// The aspect ratio is not preserved: wide and tall images are squashed to
// fill the square cell completely.
func Stretch(img image.Image, size int, filter imaging.ResampleFilter) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, size, size, filter)
}
