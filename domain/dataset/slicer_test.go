package dataset

import (
	"errors"
	"testing"
)

func sourceFrames() []FrameRecord {
	// Two source episodes, five frames each at 10 fps.
	var frames []FrameRecord
	idx := int64(0)
	for ep := int64(0); ep < 2; ep++ {
		for i := int64(0); i < 5; i++ {
			frames = append(frames, FrameRecord{
				EpisodeIndex: ep,
				FrameIndex:   i,
				Timestamp:    float64(i) * 0.1,
				Index:        idx,
				Payload:      map[string]any{"action": []float64{float64(ep), float64(i)}},
			})
			idx++
		}
	}
	return frames
}

func TestSliceRenumbersAndRebases(t *testing.T) {
	resolved := ResolvedEpisode{
		Request:       EpisodeRequest{Range: TimeRange{Start: 0.1, End: 0.4}},
		NewIndex:      7,
		OriginalIndex: 1,
	}

	result, err := Slice(sourceFrames(), resolved, 100)
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	if result.UsedFallback {
		t.Error("UsedFallback = true, want false")
	}
	if len(result.Frames) != 3 {
		t.Fatalf("len(Frames) = %d, want 3 (half-open range excludes end)", len(result.Frames))
	}

	for i, f := range result.Frames {
		if f.EpisodeIndex != 7 {
			t.Errorf("frame %d EpisodeIndex = %d, want 7", i, f.EpisodeIndex)
		}
		if f.FrameIndex != int64(i) {
			t.Errorf("frame %d FrameIndex = %d, want %d", i, f.FrameIndex, i)
		}
		if f.Index != 100+int64(i) {
			t.Errorf("frame %d Index = %d, want %d", i, f.Index, 100+i)
		}
		if f.TaskIndex != 0 {
			t.Errorf("frame %d TaskIndex = %d, want 0 before task registration", i, f.TaskIndex)
		}
	}
	if result.Frames[0].Timestamp != 0 {
		t.Errorf("first timestamp = %f, want 0", result.Frames[0].Timestamp)
	}
}

func TestSliceTimestampFallback(t *testing.T) {
	resolved := ResolvedEpisode{
		Request:       EpisodeRequest{Range: TimeRange{Start: 0.0, End: 0.2}},
		NewIndex:      0,
		OriginalIndex: -1,
	}

	result, err := Slice(sourceFrames(), resolved, 0)
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback = false, want true without an original episode")
	}
	// Both source episodes contribute rows in the fallback.
	if len(result.Frames) != 4 {
		t.Errorf("len(Frames) = %d, want 4", len(result.Frames))
	}
}

func TestSliceEmptySelection(t *testing.T) {
	resolved := ResolvedEpisode{
		Request:       EpisodeRequest{Range: TimeRange{Start: 50.0, End: 60.0}},
		OriginalIndex: 0,
	}

	_, err := Slice(sourceFrames(), resolved, 0)
	if !errors.Is(err, ErrEmptySelection) {
		t.Errorf("Slice() error = %v, want ErrEmptySelection", err)
	}
}

func TestSliceDoesNotAliasPayload(t *testing.T) {
	frames := sourceFrames()
	resolved := ResolvedEpisode{
		Request:       EpisodeRequest{Range: TimeRange{Start: 0.0, End: 0.5}},
		OriginalIndex: 0,
	}

	result, err := Slice(frames, resolved, 0)
	if err != nil {
		t.Fatalf("Slice() error = %v", err)
	}
	result.Frames[0].Payload["action"] = "mutated"
	if _, ok := frames[0].Payload["action"].([]float64); !ok {
		t.Error("source payload was mutated through the sliced copy")
	}
}
