package renderer

import "fmt"

// Kind classifies a frame failure.
type Kind int

const (
	// KindAllocate means the pixel buffer could not be set up, e.g. the
	// requested dimensions are invalid or unreasonably large.
	KindAllocate Kind = iota
	// KindRasterize means the scene document could not be drawn.
	KindRasterize
	// KindPersist means the frame file could not be written.
	KindPersist
)

func (k Kind) String() string {
	switch k {
	case KindAllocate:
		return "allocation"
	case KindRasterize:
		return "rasterization"
	case KindPersist:
		return "persistence"
	default:
		return "unknown"
	}
}

// FrameError reports a failure of a single frame, tagged with its index.
// Frame failures are not retried; the pipeline treats any of them as fatal.
type FrameError struct {
	Frame int
	Kind  Kind
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %s failure: %v", e.Frame, e.Kind, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func frameErr(frame int, kind Kind, err error) *FrameError {
	return &FrameError{Frame: frame, Kind: kind, Err: err}
}
