package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
)

// Format is an output encoding for collage results.
type Format string

const (
	// FormatJPEG is lossy and the default for exported collages.
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
)

// DefaultQuality matches the quality browsers use for canvas JPEG export.
const DefaultQuality = 92

// ErrBadDataURL is returned by DecodeDataURL for malformed input.
var ErrBadDataURL = errors.New("malformed data URL")

// ParseFormat resolves an output format by name. "jpg" is accepted as an
// alias for "jpeg" and the empty string selects JPEG.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", name)
	}
}

// MimeType returns the content type produced by the format.
func (f Format) MimeType() string {
	switch f {
	case FormatPNG:
		return "image/png"
	case FormatBMP:
		return "image/bmp"
	default:
		return "image/jpeg"
	}
}

func (f Format) encoder(quality int) imgio.Encoder {
	switch f {
	case FormatPNG:
		return imgio.PNGEncoder()
	case FormatBMP:
		return imgio.BMPEncoder()
	default:
		if quality < 1 || quality > 100 {
			quality = DefaultQuality
		}
		return imgio.JPEGEncoder(quality)
	}
}

// Encode serializes img in the given format. Quality only applies to JPEG;
// values outside 1-100 fall back to DefaultQuality.
func Encode(img image.Image, format Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := format.encoder(quality)(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return buf.Bytes(), nil
}

// DataURL renders encoded image bytes as a data: URL suitable for direct
// use as an image source.
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL parses a base64 data: URL produced by DataURL and decodes
// the image it carries. It returns the image and its MIME type.
func DecodeDataURL(s string) (image.Image, string, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing data: prefix", ErrBadDataURL)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("%w: missing payload", ErrBadDataURL)
	}
	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return nil, "", fmt.Errorf("%w: only base64 payloads are supported", ErrBadDataURL)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrBadDataURL, err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, mimeType, nil
}
