package collage

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSelection is returned when a build or selection has no images.
	// Nothing is changed.
	ErrNoSelection = errors.New("no images selected")

	// ErrBusy is returned when a build is already in progress. Builds are
	// rejected rather than queued so the canvas only ever has one writer.
	ErrBusy = errors.New("collage build already in progress")

	// ErrSurfaceUnavailable is returned when the drawing surface cannot be
	// allocated for the requested grid.
	ErrSurfaceUnavailable = errors.New("drawing surface unavailable")

	// ErrInvalidLayout is returned for a cell size <= 0 or columns < 1.
	ErrInvalidLayout = errors.New("invalid collage layout")
)

// DecodeError reports an image that could not be decoded in time.
type DecodeError struct {
	// Index is the position of the image in the selection.
	Index int

	// Name is the source name, usually its file path.
	Name string

	// Err is the decoder failure or imaging.ErrDecodeTimeout.
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("image %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
