package imaging

import (
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStretch(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"wide", 400, 100},
		{"tall", 50, 300},
		{"smaller than cell", 10, 10},
		{"exact", 120, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := createInMemoryImage(tt.width, tt.height, color.RGBA{0, 200, 0, 255})
			out := Stretch(src, 120, imaging.Lanczos)
			assert.Equal(t, 120, out.Bounds().Dx())
			assert.Equal(t, 120, out.Bounds().Dy())
		})
	}
}

func TestStretch_FillsWholeCell(t *testing.T) {
	// A wide image must reach every corner: no letterboxing.
	src := createInMemoryImage(300, 60, color.RGBA{255, 0, 0, 255})
	out := Stretch(src, 50, imaging.Linear)

	for _, p := range [][2]int{{0, 0}, {49, 0}, {0, 49}, {49, 49}} {
		c, err := SampleColor(out, p[0], p[1])
		require.NoError(t, err)
		assert.Equal(t, uint8(255), c.RGBA.A, "corner %v transparent", p)
		assert.True(t, Close(c.RGB, RGBColor{255, 0, 0}, 2), "corner %v got %s", p, c.Hex)
	}
}

func TestParseFilter(t *testing.T) {
	for _, name := range FilterNames() {
		_, err := ParseFilter(name)
		assert.NoError(t, err, name)
	}

	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.Equal(t, imaging.Lanczos.Support, f.Support)

	_, err = ParseFilter("bicubic-ish")
	assert.Error(t, err)
}
