package imaging

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrNotImage is returned when a source's content is not an image/* type.
	ErrNotImage = errors.New("not an image")

	// ErrDecodeTimeout is returned when a decode does not finish within its deadline.
	ErrDecodeTimeout = errors.New("decode timed out")
)

// extensionTypes covers image extensions that mime.TypeByExtension does not
// know on every platform.
var extensionTypes = map[string]string{
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// Source is an immutable handle to user-selected image data.
//
// The bytes are copied on construction and never exposed for writing, so a
// Source can be shared between builds and goroutines.
type Source struct {
	name     string
	mimeType string
	key      string
	data     []byte
}

// NewSource wraps raw image bytes as a Source.
//
// The MIME type is sniffed from the content, falling back to the file
// extension of name. Anything that is not image/* is rejected with
// ErrNotImage.
func NewSource(name string, data []byte) (Source, error) {
	if len(data) == 0 {
		return Source{}, fmt.Errorf("%s: %w: empty content", name, ErrNotImage)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = typeByExtension(name)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Source{}, fmt.Errorf("%s: %w (detected %s)", name, ErrNotImage, mimeType)
	}

	sum := sha256.Sum256(data)
	return Source{
		name:     name,
		mimeType: mimeType,
		key:      hex.EncodeToString(sum[:]),
		data:     bytes.Clone(data),
	}, nil
}

// LoadSource reads an image file from disk into a Source.
func LoadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read image: %w", err)
	}
	return NewSource(path, data)
}

// LoadSources reads every path in order. The first failure aborts the load.
func LoadSources(paths []string) ([]Source, error) {
	sources := make([]Source, 0, len(paths))
	for _, p := range paths {
		src, err := LoadSource(p)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	return sources, nil
}

func typeByExtension(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		// Strip parameters such as "; charset=utf-8".
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = strings.TrimSpace(t[:i])
		}
		return t
	}
	return "application/octet-stream"
}

// Name returns the name the source was selected under (usually its path).
func (s Source) Name() string { return s.name }

// MIMEType returns the detected image/* type.
func (s Source) MIMEType() string { return s.mimeType }

// Key returns the hex SHA-256 of the content. Identical bytes share a key.
func (s Source) Key() string { return s.key }

// Size returns the content length in bytes.
func (s Source) Size() int { return len(s.data) }

// Reader returns a fresh reader over the source bytes.
func (s Source) Reader() io.Reader { return bytes.NewReader(s.data) }

// DecodeFunc turns encoded bytes into a bitmap.
type DecodeFunc func(r io.Reader) (image.Image, error)

// Decode is the default DecodeFunc. EXIF orientation is applied so phone
// photos land upright in their cell.
func Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r, imaging.AutoOrientation(true))
}

// DecodeSource decodes src with fn, giving up after timeout or when ctx is
// done, whichever comes first. A timeout of zero or less means no deadline
// beyond ctx.
//
// The decode runs on its own goroutine; if it is abandoned the goroutine
// finishes in the background and its result is dropped.
func DecodeSource(ctx context.Context, src Source, timeout time.Duration, fn DecodeFunc) (image.Image, error) {
	if fn == nil {
		fn = Decode
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	type decoded struct {
		img image.Image
		err error
	}
	done := make(chan decoded, 1)
	go func() {
		img, err := fn(src.Reader())
		done <- decoded{img: img, err: err}
	}()

	select {
	case d := <-done:
		if d.err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", d.err)
		}
		if d.img == nil {
			return nil, errors.New("failed to decode image: decoder returned no image")
		}
		return d.img, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrDecodeTimeout, timeout)
		}
		return nil, ctx.Err()
	}
}

// ImageCache provides thread-safe caching of decoded images to avoid
// decoding the same content twice.
//
// Entries are keyed by Source.Key, so rebuilding the same selection with a
// different layout reuses the bitmaps. Cached images remain in memory until
// removed via Evict, Retain or Clear.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Get returns the cached bitmap for key, if any.
func (c *ImageCache) Get(key string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[key]
	return img, ok
}

// Put stores a decoded bitmap under key.
func (c *ImageCache) Put(key string, img image.Image) {
	c.mu.Lock()
	c.images[key] = img
	c.mu.Unlock()
}

// Load returns the cached bitmap for src or decodes it with DecodeSource and
// caches the result. Failed decodes are not cached.
func (c *ImageCache) Load(ctx context.Context, src Source, timeout time.Duration, fn DecodeFunc) (image.Image, error) {
	if img, ok := c.Get(src.Key()); ok {
		return img, nil
	}
	img, err := DecodeSource(ctx, src, timeout, fn)
	if err != nil {
		return nil, err
	}
	c.Put(src.Key(), img)
	return img, nil
}

// Retain evicts every entry whose key is not in keep.
func (c *ImageCache) Retain(keep []string) {
	set := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	c.mu.Lock()
	for k := range c.images {
		if _, ok := set[k]; !ok {
			delete(c.images, k)
		}
	}
	c.mu.Unlock()
}

// Len reports the number of cached bitmaps.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its key.
func (c *ImageCache) Evict(key string) {
	c.mu.Lock()
	delete(c.images, key)
	c.mu.Unlock()
}

// ImageInfo contains metadata about a candidate image file.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder name: "png", "jpeg", "gif", "webp", "bmp" or "tiff".
	Format string `json:"format"`

	// MimeType is the detected content type.
	MimeType string `json:"mime_type"`

	// FileSizeBytes is the size of the image file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// ReadInfo inspects an image file without fully decoding it.
//
// Only the header is parsed (image.DecodeConfig), so this is cheap even for
// large photos. Files that are not image/* are rejected with ErrNotImage.
func ReadInfo(path string) (*ImageInfo, error) {
	src, err := LoadSource(path)
	if err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(src.Reader())
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}

	return &ImageInfo{
		Width:         cfg.Width,
		Height:        cfg.Height,
		Format:        format,
		MimeType:      src.MIMEType(),
		FileSizeBytes: int64(src.Size()),
	}, nil
}
