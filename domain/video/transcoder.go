package video

import "context"

// Trimmer cuts a time window out of a video file.
// This is a port implemented by the ffmpeg infrastructure adapter.
type Trimmer interface {
	// Trim extracts the requested window and writes it to outputPath.
	Trim(ctx context.Context, req *TrimRequest, outputPath string) error
}

// Concatenator joins an ordered list of video files into one.
type Concatenator interface {
	// Concat writes the concatenation of the request's inputs to outputPath.
	Concat(ctx context.Context, req *ConcatRequest, outputPath string) error
}

// Prober inspects a video file.
type Prober interface {
	// Probe returns the file's measured properties. Duration is the
	// authoritative value for all offset bookkeeping.
	Probe(ctx context.Context, path string) (*ProbeInfo, error)
}

// Compositor combines several synchronized camera views into one frame.
type Compositor interface {
	// Compose renders the request's inputs side by side (or in a grid)
	// into outputPath, re-encoding.
	Compose(ctx context.Context, req *ComposeRequest, outputPath string) error
}

// FileChecker reports whether a produced file actually exists. Used to catch
// transcoder runs that exit zero but write nothing.
type FileChecker interface {
	// Exists returns true if the file exists.
	Exists(path string) bool
	// Size returns the file size in bytes, 0 when unknown.
	Size(path string) int64
}

// ProbeInfo holds measured properties of a video file.
type ProbeInfo struct {
	Duration  float64 // seconds
	Width     int
	Height    int
	FrameRate float64
}
