package dataset

import "fmt"

// TimeRange is a half-open window of seconds [Start, End).
type TimeRange struct {
	Start float64
	End   float64
}

// Duration returns the requested length of the range in seconds.
func (r TimeRange) Duration() float64 {
	return r.End - r.Start
}

// Contains reports whether t falls inside the half-open range.
func (r TimeRange) Contains(t float64) bool {
	return t >= r.Start && t < r.End
}

// Shift returns the range moved forward by offset seconds.
func (r TimeRange) Shift(offset float64) TimeRange {
	return TimeRange{Start: r.Start + offset, End: r.End + offset}
}

// Validate checks that the range is well-formed.
func (r TimeRange) Validate() error {
	if r.Start < 0 {
		return fmt.Errorf("start time %.3f must not be negative", r.Start)
	}
	if r.End <= r.Start {
		return fmt.Errorf("end time %.3f must be after start time %.3f", r.End, r.Start)
	}
	return nil
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%.2fs, %.2fs)", r.Start, r.End)
}
