package collage

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	imgutil "github.com/ironsheep/collage-mcp/internal/imaging"
)

// State is the assembler lifecycle state.
type State int

const (
	// StateIdle means no result is available.
	StateIdle State = iota
	// StateBuilding means a build owns the canvas.
	StateBuilding
	// StateReady means the last build produced a result.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DecodePolicy decides what a build does when an image fails to decode.
type DecodePolicy string

const (
	// AbortOnError fails the whole build with a *DecodeError.
	AbortOnError DecodePolicy = "abort"
	// SkipFailed leaves the cell at the background colour and continues.
	SkipFailed DecodePolicy = "skip"
)

// Layout is the cell geometry of a build.
type Layout struct {
	CellSize int
	Columns  int
}

// Options configures an Assembler. Zero fields take the defaults from
// DefaultOptions.
type Options struct {
	Layout Layout

	// DecodeTimeout bounds each image decode. Zero or negative selects the
	// default; there is no way to disable the deadline.
	DecodeTimeout time.Duration

	Format     imgutil.Format
	Quality    int
	Background color.Color

	// Resample names the scaling filter (see imaging.FilterNames). Unknown
	// names fall back to Lanczos.
	Resample string

	OnDecodeError DecodePolicy

	// ParallelDecode decodes up to MaxParallel images at once. Cells are
	// still drawn in index order.
	ParallelDecode bool
	MaxParallel    int

	// MaxSurfacePixels caps the canvas area. Larger grids fail with
	// ErrSurfaceUnavailable.
	MaxSurfacePixels int

	Decode imgutil.DecodeFunc
	Sink   Sink
	Logger *slog.Logger
}

// DefaultOptions returns the stock configuration: 300px cells, two columns,
// JPEG at browser-default quality on a black background.
func DefaultOptions() Options {
	return Options{
		Layout:           Layout{CellSize: 300, Columns: 2},
		DecodeTimeout:    10 * time.Second,
		Format:           imgutil.FormatJPEG,
		Quality:          imgutil.DefaultQuality,
		Background:       color.NRGBA{A: 255},
		Resample:         "lanczos",
		OnDecodeError:    AbortOnError,
		MaxParallel:      4,
		MaxSurfacePixels: 64_000_000,
		Decode:           imgutil.Decode,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Layout.CellSize == 0 {
		o.Layout.CellSize = d.Layout.CellSize
	}
	if o.Layout.Columns == 0 {
		o.Layout.Columns = d.Layout.Columns
	}
	if o.DecodeTimeout <= 0 {
		o.DecodeTimeout = d.DecodeTimeout
	}
	if o.Format == "" {
		o.Format = d.Format
	}
	if o.Quality == 0 {
		o.Quality = d.Quality
	}
	if o.Background == nil {
		o.Background = d.Background
	}
	if o.Resample == "" {
		o.Resample = d.Resample
	}
	if o.OnDecodeError == "" {
		o.OnDecodeError = d.OnDecodeError
	}
	if o.MaxParallel < 1 {
		o.MaxParallel = d.MaxParallel
	}
	if o.MaxSurfacePixels <= 0 {
		o.MaxSurfacePixels = d.MaxSurfacePixels
	}
	if o.Decode == nil {
		o.Decode = d.Decode
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Sink == nil {
		o.Sink = LogSink{Logger: o.Logger}
	}
	return o
}

// Assembler owns a selection, a canvas and the latest collage result.
//
// All methods are safe for concurrent use. Only one build runs at a time:
// Build, Select and Reset return ErrBusy while another build is in flight.
type Assembler struct {
	opts   Options
	log    *slog.Logger
	filter imaging.ResampleFilter
	cache  *imgutil.ImageCache

	mu        sync.Mutex
	state     State
	selection []imgutil.Source
	canvas    *Canvas
	result    *Result
	lastErr   error
}

// New creates an idle Assembler.
func New(opts Options) *Assembler {
	opts = opts.withDefaults()
	filter, err := imgutil.ParseFilter(opts.Resample)
	if err != nil {
		opts.Logger.Warn("falling back to lanczos", "error", err)
		filter = imaging.Lanczos
	}
	return &Assembler{
		opts:   opts,
		log:    opts.Logger,
		filter: filter,
		cache:  imgutil.NewImageCache(),
		canvas: NewCanvas(),
	}
}

// Layout returns the configured default layout.
func (a *Assembler) Layout() Layout { return a.opts.Layout }

// Select replaces the current selection, preserving order.
//
// An empty selection is rejected with ErrNoSelection and the previous
// selection is kept. Cached bitmaps for images that are no longer selected
// are dropped. The current result, if any, is left in place until the next
// build supersedes it.
func (a *Assembler) Select(sources []imgutil.Source) error {
	if len(sources) == 0 {
		return ErrNoSelection
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateBuilding {
		return ErrBusy
	}

	a.selection = append([]imgutil.Source(nil), sources...)
	keys := make([]string, len(sources))
	for i, s := range sources {
		keys[i] = s.Key()
	}
	a.cache.Retain(keys)

	a.log.Debug("selection replaced", "images", len(sources))
	return nil
}

// Selection returns a copy of the current selection.
func (a *Assembler) Selection() []imgutil.Source {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]imgutil.Source(nil), a.selection...)
}

// BuildSelection builds the current selection with the configured layout.
func (a *Assembler) BuildSelection(ctx context.Context) (*Result, error) {
	return a.Build(ctx, a.Selection(), a.opts.Layout)
}

// Build composites sources into a grid and exports it.
//
// Image i is stretched into the cell at ((i mod columns)*cellSize,
// (i / columns)*cellSize) on a canvas of cellSize*columns by
// cellSize*ceil(n/columns) pixels. An empty sources slice returns
// ErrNoSelection without touching any state. On any other failure the
// assembler returns to StateIdle and the previous result is discarded.
func (a *Assembler) Build(ctx context.Context, sources []imgutil.Source, layout Layout) (*Result, error) {
	if len(sources) == 0 {
		return nil, ErrNoSelection
	}
	grid, err := imgutil.NewGrid(len(sources), layout.Columns, layout.CellSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}

	a.mu.Lock()
	if a.state == StateBuilding {
		a.mu.Unlock()
		return nil, ErrBusy
	}
	a.state = StateBuilding
	a.mu.Unlock()

	start := time.Now()
	a.log.Info("collage build started",
		"images", grid.Count, "columns", grid.Columns, "rows", grid.Rows, "cell_size", grid.CellSize)

	res, err := a.build(ctx, sources, grid)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = StateIdle
		a.result = nil
		a.lastErr = err
		a.log.Warn("collage build failed", "error", err, "elapsed", time.Since(start))
		return nil, err
	}
	res.Elapsed = time.Since(start)
	a.state = StateReady
	a.result = res
	a.lastErr = nil
	a.log.Info("collage build finished",
		"id", res.ID, "width", res.Width(), "height", res.Height(),
		"bytes", res.Size(), "skipped", len(res.Skipped), "elapsed", res.Elapsed)
	return res, nil
}

// build runs with the Building state held, so the canvas has no other writer.
func (a *Assembler) build(ctx context.Context, sources []imgutil.Source, grid imgutil.Grid) (*Result, error) {
	if a.canvas == nil {
		return nil, ErrSurfaceUnavailable
	}
	px, err := grid.Pixels()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	if grid.CellSize > a.opts.MaxSurfacePixels/grid.CellSize {
		return nil, fmt.Errorf("%w: %dx%d cell exceeds %d pixels",
			ErrSurfaceUnavailable, grid.CellSize, grid.CellSize, a.opts.MaxSurfacePixels)
	}
	if px > a.opts.MaxSurfacePixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrSurfaceUnavailable, grid.Width(), grid.Height(), a.opts.MaxSurfacePixels)
	}

	a.canvas.Reset(grid.Width(), grid.Height(), a.opts.Background)

	var skipped []SkippedCell
	if a.opts.ParallelDecode && len(sources) > 1 {
		skipped, err = a.drawParallel(ctx, sources, grid)
	} else {
		skipped, err = a.drawSequential(ctx, sources, grid)
	}
	if err != nil {
		return nil, err
	}

	data, err := imgutil.Encode(a.canvas.Image(), a.opts.Format, a.opts.Quality)
	if err != nil {
		return nil, err
	}

	return &Result{
		ID:        uuid.NewString(),
		Grid:      grid,
		Format:    a.opts.Format,
		CreatedAt: time.Now(),
		Skipped:   skipped,
		data:      data,
	}, nil
}

// drawSequential decodes and draws one image at a time in index order.
func (a *Assembler) drawSequential(ctx context.Context, sources []imgutil.Source, grid imgutil.Grid) ([]SkippedCell, error) {
	var skipped []SkippedCell
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := a.load(ctx, src)
		if err != nil {
			cell, err := a.decodeFailed(ctx, i, src, err)
			if err != nil {
				return nil, err
			}
			skipped = append(skipped, cell)
			continue
		}
		a.canvas.DrawCell(img, grid.Cell(i), a.filter)
	}
	return skipped, nil
}

// drawParallel decodes concurrently and then draws in index order.
func (a *Assembler) drawParallel(ctx context.Context, sources []imgutil.Source, grid imgutil.Grid) ([]SkippedCell, error) {
	images := make([]image.Image, len(sources))
	failures := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxParallel)
	for i, src := range sources {
		g.Go(func() error {
			img, err := a.load(gctx, src)
			if err != nil {
				failures[i] = err
				if a.opts.OnDecodeError != SkipFailed {
					return &DecodeError{Index: i, Name: src.Name(), Err: err}
				}
				return nil
			}
			images[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		a.log.Warn("image decode failed", "error", err)
		return nil, err
	}

	var skipped []SkippedCell
	for i, img := range images {
		if img == nil {
			cell, err := a.decodeFailed(ctx, i, sources[i], failures[i])
			if err != nil {
				return nil, err
			}
			skipped = append(skipped, cell)
			continue
		}
		a.canvas.DrawCell(img, grid.Cell(i), a.filter)
	}
	return skipped, nil
}

func (a *Assembler) load(ctx context.Context, src imgutil.Source) (image.Image, error) {
	return a.cache.Load(ctx, src, a.opts.DecodeTimeout, a.opts.Decode)
}

// decodeFailed applies the decode policy. It returns the skipped cell when
// the build may continue and an error when it must stop.
func (a *Assembler) decodeFailed(ctx context.Context, i int, src imgutil.Source, cause error) (SkippedCell, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return SkippedCell{}, ctxErr
	}
	derr := &DecodeError{Index: i, Name: src.Name(), Err: cause}
	a.log.Warn("image decode failed", "index", i, "name", src.Name(), "error", cause, "policy", string(a.opts.OnDecodeError))
	if a.opts.OnDecodeError != SkipFailed {
		return SkippedCell{}, derr
	}
	return SkippedCell{Index: i, Name: src.Name(), Reason: cause.Error()}, nil
}

// Result returns the latest collage, or nil if there is none.
func (a *Assembler) Result() *Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result
}

// ExportForCast hands the current result to the cast sink and returns the
// result it handed over. With no result it does nothing and returns nil.
func (a *Assembler) ExportForCast(ctx context.Context) (*Result, error) {
	res := a.Result()
	if res == nil {
		return nil, nil
	}
	if err := a.opts.Sink.Cast(ctx, res); err != nil {
		return res, fmt.Errorf("cast failed: %w", err)
	}
	return res, nil
}

// Snapshot returns a copy of the canvas as last drawn, or nil while a build
// is running or before the first build.
func (a *Assembler) Snapshot() *image.NRGBA {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateBuilding {
		return nil
	}
	return a.canvas.Snapshot()
}

// Reset drops the selection, the result and all cached bitmaps.
func (a *Assembler) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == StateBuilding {
		return ErrBusy
	}
	a.selection = nil
	a.result = nil
	a.lastErr = nil
	a.state = StateIdle
	a.cache.Clear()
	return nil
}

// Status is a point-in-time view of the assembler.
type Status struct {
	State     string `json:"state"`
	Selected  int    `json:"selected"`
	Cached    int    `json:"cached"`
	Result    *Info  `json:"result,omitempty"`
	LastError string `json:"last_error,omitempty"`
}

// Status reports the current state.
func (a *Assembler) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := Status{
		State:    a.state.String(),
		Selected: len(a.selection),
		Cached:   a.cache.Len(),
	}
	if a.result != nil {
		info := a.result.Info()
		st.Result = &info
	}
	if a.lastErr != nil {
		st.LastError = a.lastErr.Error()
	}
	return st
}

// IsDecodeError reports whether err carries a *DecodeError.
func IsDecodeError(err error) bool {
	var derr *DecodeError
	return errors.As(err, &derr)
}
