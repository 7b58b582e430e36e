package video

import "fmt"

// ConcatRequest asks for an ordered list of video files to be joined into
// one. Input order is the output playback order.
type ConcatRequest struct {
	Inputs     []string
	StreamCopy bool
}

// Validate checks that the concat request is well-formed.
func (r *ConcatRequest) Validate() error {
	if len(r.Inputs) == 0 {
		return fmt.Errorf("at least one input file is required")
	}
	for i, in := range r.Inputs {
		if in == "" {
			return fmt.Errorf("input %d has an empty path", i)
		}
	}
	return nil
}

// ComposeLayout selects how camera views are arranged by a Compositor.
type ComposeLayout string

const (
	// LayoutHorizontal places all views side by side in one row.
	LayoutHorizontal ComposeLayout = "horizontal"
	// LayoutGrid places views in a 2x2 grid, padding with black.
	LayoutGrid ComposeLayout = "grid"
)

// ComposeRequest asks for several synchronized views to be combined into a
// single video.
type ComposeRequest struct {
	Inputs []string // one video per camera view, same length
	Layout ComposeLayout
}

// Validate checks that the compose request is well-formed.
func (r *ComposeRequest) Validate() error {
	if len(r.Inputs) < 2 {
		return fmt.Errorf("at least two input views are required")
	}
	if r.Layout != LayoutHorizontal && r.Layout != LayoutGrid {
		return fmt.Errorf("unknown layout %q", r.Layout)
	}
	for i, in := range r.Inputs {
		if in == "" {
			return fmt.Errorf("input %d has an empty path", i)
		}
	}
	return nil
}
