package video

import "fmt"

// TrimRequest asks for a time window of a source video.
//
// StreamCopy requests the fast no-re-encode path; it can fail when the window
// does not align with the source's seek points, in which case callers retry
// with StreamCopy unset.
type TrimRequest struct {
	SourcePath string
	Start      float64 // seconds into the source video
	End        float64 // seconds, exclusive
	StreamCopy bool
}

// Duration returns the requested window length in seconds. The produced
// segment's real duration can differ; only a probe of the output is
// authoritative.
func (r *TrimRequest) Duration() float64 {
	return r.End - r.Start
}

// Validate checks that the trim request is well-formed.
func (r *TrimRequest) Validate() error {
	if r.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}
	if r.Start < 0 {
		return fmt.Errorf("start time %.3f must not be negative", r.Start)
	}
	if r.End <= r.Start {
		return fmt.Errorf("end time %.3f must be after start time %.3f", r.End, r.Start)
	}
	return nil
}
