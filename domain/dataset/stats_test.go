package dataset

import (
	"math"
	"testing"
)

func TestComputeStatsVectors(t *testing.T) {
	frames := []FrameRecord{
		{Payload: map[string]any{"action": []float64{1, 10}}},
		{Payload: map[string]any{"action": []float64{3, 20}}},
		{Payload: map[string]any{"action": []float64{5, 30}}},
	}

	stats := ComputeStats(frames)
	s, ok := stats["action"]
	if !ok {
		t.Fatal("missing stats for action column")
	}

	wantMin := []float64{1, 10}
	wantMax := []float64{5, 30}
	wantMean := []float64{3, 20}
	// population std
	wantStd := []float64{math.Sqrt(8.0 / 3.0), math.Sqrt(200.0 / 3.0)}

	for d := 0; d < 2; d++ {
		if s.Min[d] != wantMin[d] {
			t.Errorf("Min[%d] = %f, want %f", d, s.Min[d], wantMin[d])
		}
		if s.Max[d] != wantMax[d] {
			t.Errorf("Max[%d] = %f, want %f", d, s.Max[d], wantMax[d])
		}
		if math.Abs(s.Mean[d]-wantMean[d]) > 1e-9 {
			t.Errorf("Mean[%d] = %f, want %f", d, s.Mean[d], wantMean[d])
		}
		if math.Abs(s.Std[d]-wantStd[d]) > 1e-9 {
			t.Errorf("Std[%d] = %f, want %f", d, s.Std[d], wantStd[d])
		}
	}
}

func TestComputeStatsSkipsNonVectorColumns(t *testing.T) {
	frames := []FrameRecord{
		{Payload: map[string]any{"note": "a", "state": []float64{1}}},
		{Payload: map[string]any{"note": "b", "state": []float64{2}}},
	}

	stats := ComputeStats(frames)
	if _, ok := stats["note"]; ok {
		t.Error("scalar string column should not get stats")
	}
	if _, ok := stats["state"]; !ok {
		t.Error("vector column should get stats")
	}
}

func TestComputeStatsSkipsRaggedColumns(t *testing.T) {
	frames := []FrameRecord{
		{Payload: map[string]any{"state": []float64{1, 2}}},
		{Payload: map[string]any{"state": []float64{1}}},
	}

	if stats := ComputeStats(frames); len(stats) != 0 {
		t.Errorf("ragged column produced stats: %v", stats)
	}
}

func TestComputeStatsFloat32Vectors(t *testing.T) {
	frames := []FrameRecord{
		{Payload: map[string]any{"state": []float32{2}}},
		{Payload: map[string]any{"state": []float32{4}}},
	}

	stats := ComputeStats(frames)
	s, ok := stats["state"]
	if !ok {
		t.Fatal("float32 vectors should get stats")
	}
	if s.Mean[0] != 3 {
		t.Errorf("Mean[0] = %f, want 3", s.Mean[0])
	}
}
