package dataset

// CumulativeTimeline tracks where the next episode's segment begins inside a
// camera's concatenated output video.
//
// Offsets must be advanced by each segment's measured duration, never the
// requested one: an inexact cut then shifts the start of the following
// segment instead of corrupting its own window.
type CumulativeTimeline struct {
	offset float64
}

// Offset returns the current running position in seconds.
func (t *CumulativeTimeline) Offset() float64 {
	return t.offset
}

// Advance records one segment of measuredDuration seconds and returns its
// window inside the concatenated video.
func (t *CumulativeTimeline) Advance(measuredDuration float64) TimeRange {
	r := TimeRange{Start: t.offset, End: t.offset + measuredDuration}
	t.offset = r.End
	return r
}
