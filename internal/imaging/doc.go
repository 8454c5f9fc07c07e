// Package imaging provides the image primitives the collage assembler is
// built from.
//
// It covers the full path of a picture through a collage build:
//
//   - Source: an immutable, MIME-filtered handle to selected image bytes
//   - DecodeSource: a decode bounded by a timeout and a context
//   - ImageCache: decoded bitmaps keyed by content digest
//   - Grid: row-major cell arithmetic for a fixed cell size
//   - Stretch: resize to fill a square cell exactly
//   - Encode and DataURL: serialization of the finished surface
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner.
// X increases rightward and Y increases downward. Cell i of a grid with C
// columns and cell size S has its origin at ((i mod C)*S, floor(i/C)*S).
//
// # Supported Formats
//
// PNG, JPEG and GIF decode through the standard library; WebP, BMP and TIFF
// through golang.org/x/image. Output is JPEG (default), PNG or BMP.
//
// # Thread Safety
//
// Source values are immutable and ImageCache is safe for concurrent use.
// The remaining functions are stateless.
package imaging
