package dataset

import (
	"math"
	"testing"
)

func TestTimelineUsesMeasuredDurations(t *testing.T) {
	// Requested durations were 3.00s and 2.00s but the transcoder produced
	// 3.05s and 1.98s. Offsets must follow the measured values.
	var tl CumulativeTimeline

	first := tl.Advance(3.05)
	if first.Start != 0 || math.Abs(first.End-3.05) > 1e-9 {
		t.Errorf("first window = %v, want [0.00s, 3.05s)", first)
	}

	second := tl.Advance(1.98)
	if math.Abs(second.Start-3.05) > 1e-9 {
		t.Errorf("second start = %f, want 3.05 (previous measured end)", second.Start)
	}
	if math.Abs(second.End-5.03) > 1e-9 {
		t.Errorf("second end = %f, want 5.03", second.End)
	}

	if math.Abs(tl.Offset()-5.03) > 1e-9 {
		t.Errorf("Offset() = %f, want 5.03", tl.Offset())
	}
}

func TestTimelineWindowsAreContiguous(t *testing.T) {
	var tl CumulativeTimeline
	durations := []float64{1.5, 0.73, 2.001, 4.2}

	var prevEnd float64
	for _, d := range durations {
		w := tl.Advance(d)
		if w.Start != prevEnd {
			t.Errorf("window start = %f, want previous end %f", w.Start, prevEnd)
		}
		if math.Abs(w.Duration()-d) > 1e-9 {
			t.Errorf("window duration = %f, want %f", w.Duration(), d)
		}
		prevEnd = w.End
	}
}
