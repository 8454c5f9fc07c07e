package collage

import (
	"bytes"
	"image"
	"time"

	imgutil "github.com/ironsheep/collage-mcp/internal/imaging"
)

// SkippedCell records a cell left at the background colour because its
// image failed to decode under the skip policy.
type SkippedCell struct {
	Index  int    `json:"index"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Result is an exported collage. It is immutable; a later build produces a
// new Result rather than modifying this one.
type Result struct {
	ID        string
	Grid      imgutil.Grid
	Format    imgutil.Format
	CreatedAt time.Time
	Elapsed   time.Duration
	Skipped   []SkippedCell

	data []byte
}

// Width is the collage width in pixels.
func (r *Result) Width() int { return r.Grid.Width() }

// Height is the collage height in pixels.
func (r *Result) Height() int { return r.Grid.Height() }

// MimeType is the content type of the encoded bytes.
func (r *Result) MimeType() string { return r.Format.MimeType() }

// Size is the encoded length in bytes.
func (r *Result) Size() int { return len(r.data) }

// Bytes returns a copy of the encoded image.
func (r *Result) Bytes() []byte { return bytes.Clone(r.data) }

// DataURL returns the result as a data: URL for direct display.
func (r *Result) DataURL() string {
	return imgutil.DataURL(r.MimeType(), r.data)
}

// Decode decodes the encoded bytes back into an image.
func (r *Result) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(r.data))
	return img, err
}

// Info is the JSON-friendly summary of a Result, without the pixel data.
type Info struct {
	ID        string        `json:"id"`
	Width     int           `json:"width"`
	Height    int           `json:"height"`
	Columns   int           `json:"columns"`
	Rows      int           `json:"rows"`
	CellSize  int           `json:"cell_size"`
	Images    int           `json:"images"`
	MimeType  string        `json:"mime_type"`
	SizeBytes int           `json:"size_bytes"`
	CreatedAt time.Time     `json:"created_at"`
	ElapsedMs int64         `json:"elapsed_ms"`
	Skipped   []SkippedCell `json:"skipped,omitempty"`
}

// Info summarizes the result.
func (r *Result) Info() Info {
	return Info{
		ID:        r.ID,
		Width:     r.Width(),
		Height:    r.Height(),
		Columns:   r.Grid.Columns,
		Rows:      r.Grid.Rows,
		CellSize:  r.Grid.CellSize,
		Images:    r.Grid.Count,
		MimeType:  r.MimeType(),
		SizeBytes: r.Size(),
		CreatedAt: r.CreatedAt,
		ElapsedMs: r.Elapsed.Milliseconds(),
		Skipped:   r.Skipped,
	}
}
