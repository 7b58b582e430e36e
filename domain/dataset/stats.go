package dataset

import "math"

// ColumnStats holds elementwise summary statistics over a vector payload
// column across one episode's frames.
type ColumnStats struct {
	Min  []float64
	Max  []float64
	Mean []float64
	Std  []float64
}

// ComputeStats calculates per-column statistics for every payload column
// whose values are float vectors of a consistent width. Scalar columns and
// ragged columns are skipped.
func ComputeStats(frames []FrameRecord) map[string]ColumnStats {
	stats := make(map[string]ColumnStats)
	for _, col := range PayloadColumns(frames) {
		vectors := collectVectors(frames, col)
		if vectors == nil {
			continue
		}
		stats[col] = vectorStats(vectors)
	}
	return stats
}

// collectVectors gathers the column's values as float vectors, returning nil
// unless every frame carries a vector of the same width.
func collectVectors(frames []FrameRecord, col string) [][]float64 {
	var width int
	vectors := make([][]float64, 0, len(frames))
	for _, f := range frames {
		raw, ok := f.Payload[col]
		if !ok {
			return nil
		}
		vec, ok := asFloatVector(raw)
		if !ok {
			return nil
		}
		if len(vectors) == 0 {
			width = len(vec)
		} else if len(vec) != width {
			return nil
		}
		vectors = append(vectors, vec)
	}
	if len(vectors) == 0 || width == 0 {
		return nil
	}
	return vectors
}

func asFloatVector(v any) ([]float64, bool) {
	switch vec := v.(type) {
	case []float64:
		return vec, true
	case []float32:
		out := make([]float64, len(vec))
		for i, x := range vec {
			out[i] = float64(x)
		}
		return out, true
	case []any:
		out := make([]float64, len(vec))
		for i, x := range vec {
			switch n := x.(type) {
			case float64:
				out[i] = n
			case float32:
				out[i] = float64(n)
			case int64:
				out[i] = float64(n)
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

func vectorStats(vectors [][]float64) ColumnStats {
	width := len(vectors[0])
	n := float64(len(vectors))

	s := ColumnStats{
		Min:  make([]float64, width),
		Max:  make([]float64, width),
		Mean: make([]float64, width),
		Std:  make([]float64, width),
	}
	for d := 0; d < width; d++ {
		s.Min[d] = math.Inf(1)
		s.Max[d] = math.Inf(-1)
	}

	for _, vec := range vectors {
		for d, x := range vec {
			if x < s.Min[d] {
				s.Min[d] = x
			}
			if x > s.Max[d] {
				s.Max[d] = x
			}
			s.Mean[d] += x
		}
	}
	for d := 0; d < width; d++ {
		s.Mean[d] /= n
	}
	for _, vec := range vectors {
		for d, x := range vec {
			diff := x - s.Mean[d]
			s.Std[d] += diff * diff
		}
	}
	for d := 0; d < width; d++ {
		s.Std[d] = math.Sqrt(s.Std[d] / n)
	}
	return s
}
