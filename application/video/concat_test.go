package video

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/domain/video"
)

// mockConcatenator implements video.Concatenator for testing
type mockConcatenator struct {
	copyErr     error
	reencodeErr error
	calls       []video.ConcatRequest
	onSuccess   func(outputPath string)
}

func (m *mockConcatenator) Concat(ctx context.Context, req *video.ConcatRequest, outputPath string) error {
	m.calls = append(m.calls, *req)
	if req.StreamCopy {
		if m.copyErr != nil {
			return m.copyErr
		}
	} else if m.reencodeErr != nil {
		return m.reencodeErr
	}
	if m.onSuccess != nil {
		m.onSuccess(outputPath)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newBuilderFixture() (*CameraBuilder, *mockTrimmer, *mockProber, *mockConcatenator, *mockChecker) {
	trimmer := &mockTrimmer{}
	prober := &mockProber{durations: map[string]float64{}}
	checker := &mockChecker{sizes: map[string]int64{}}
	trimmer.onSuccess = func(outputPath string) {
		checker.sizes[outputPath] = 2048
	}
	concat := &mockConcatenator{onSuccess: func(outputPath string) {
		checker.sizes[outputPath] = 4096
	}}
	segments := NewSegmentService(trimmer, prober, checker)
	return NewCameraBuilder(segments, concat, checker, discardLogger()), trimmer, prober, concat, checker
}

func buildInput(tempDir string, episodes ...EpisodeSegment) CameraBuildInput {
	return CameraBuildInput{
		Camera:     "top",
		SourcePath: "/src/top.mp4",
		Episodes:   episodes,
		TempDir:    tempDir,
		OutputPath: filepath.Join(tempDir, "file-000.mp4"),
	}
}

func TestBuildRebasesOnMeasuredDurations(t *testing.T) {
	builder, _, prober, _, _ := newBuilderFixture()
	tempDir := t.TempDir()

	// Requested durations 3.00s and 2.00s, measured 3.05s and 1.98s.
	input := buildInput(tempDir,
		EpisodeSegment{EpisodeIndex: 0, SourceWindow: dataset.TimeRange{Start: 10, End: 13}},
		EpisodeSegment{EpisodeIndex: 1, SourceWindow: dataset.TimeRange{Start: 20, End: 22}},
	)
	prober.durations[filepath.Join(tempDir, "segment_000.mp4")] = 3.05
	prober.durations[filepath.Join(tempDir, "segment_001.mp4")] = 1.98

	result, err := builder.Build(context.Background(), input)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(result.Offsets) != 2 {
		t.Fatalf("len(Offsets) = %d, want 2", len(result.Offsets))
	}

	first, second := result.Offsets[0], result.Offsets[1]
	if first.Window.Start != 0 || math.Abs(first.Window.End-3.05) > 1e-9 {
		t.Errorf("first window = %v, want [0.00s, 3.05s)", first.Window)
	}
	if math.Abs(second.Window.Start-3.05) > 1e-9 || math.Abs(second.Window.End-5.03) > 1e-9 {
		t.Errorf("second window = %v, want [3.05s, 5.03s)", second.Window)
	}
}

func TestBuildSkipsFailedEpisodes(t *testing.T) {
	builder, trimmer, prober, _, checker := newBuilderFixture()
	tempDir := t.TempDir()

	// The second episode fails both attempts; its neighbours still land
	// back to back on the timeline.
	fail := filepath.Join(tempDir, "segment_001.mp4")
	trimmer.onSuccess = func(outputPath string) {
		if outputPath != fail {
			checker.sizes[outputPath] = 2048
		}
	}
	prober.durations[filepath.Join(tempDir, "segment_000.mp4")] = 1.0
	prober.durations[filepath.Join(tempDir, "segment_002.mp4")] = 2.0

	input := buildInput(tempDir,
		EpisodeSegment{EpisodeIndex: 0, SourceWindow: dataset.TimeRange{Start: 0, End: 1}},
		EpisodeSegment{EpisodeIndex: 1, SourceWindow: dataset.TimeRange{Start: 5, End: 6}},
		EpisodeSegment{EpisodeIndex: 2, SourceWindow: dataset.TimeRange{Start: 8, End: 10}},
	)

	result, err := builder.Build(context.Background(), input)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != 1 {
		t.Errorf("Skipped = %v, want [1]", result.Skipped)
	}
	if result.Offsets[1].Extracted {
		t.Error("failed episode should not be marked extracted")
	}
	third := result.Offsets[2]
	if third.Window.Start != 1.0 || third.Window.End != 3.0 {
		t.Errorf("third window = %v, want [1.00s, 3.00s)", third.Window)
	}
}

func TestBuildConcatFallsBackToReencode(t *testing.T) {
	builder, _, prober, concat, _ := newBuilderFixture()
	tempDir := t.TempDir()
	concat.copyErr = errors.New("container mismatch")
	prober.durations[filepath.Join(tempDir, "segment_000.mp4")] = 1.0

	input := buildInput(tempDir,
		EpisodeSegment{EpisodeIndex: 0, SourceWindow: dataset.TimeRange{Start: 0, End: 1}},
	)

	result, err := builder.Build(context.Background(), input)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !result.Reencoded {
		t.Error("Reencoded = false, want true after concat fallback")
	}
	if len(concat.calls) != 2 {
		t.Errorf("concat attempts = %d, want 2", len(concat.calls))
	}
}

func TestBuildConcatBothAttemptsFail(t *testing.T) {
	builder, _, prober, concat, _ := newBuilderFixture()
	tempDir := t.TempDir()
	concat.copyErr = errors.New("copy boom")
	concat.reencodeErr = errors.New("reencode boom")
	prober.durations[filepath.Join(tempDir, "segment_000.mp4")] = 1.0

	input := buildInput(tempDir,
		EpisodeSegment{EpisodeIndex: 0, SourceWindow: dataset.TimeRange{Start: 0, End: 1}},
	)

	if _, err := builder.Build(context.Background(), input); err == nil {
		t.Fatal("Build() should fail when both concat attempts fail")
	}
}

func TestBuildAllEpisodesFailed(t *testing.T) {
	builder, trimmer, _, concat, _ := newBuilderFixture()
	trimmer.copyErr = errors.New("copy boom")
	trimmer.reencodeErr = errors.New("reencode boom")

	input := buildInput(t.TempDir(),
		EpisodeSegment{EpisodeIndex: 0, SourceWindow: dataset.TimeRange{Start: 0, End: 1}},
	)

	if _, err := builder.Build(context.Background(), input); err == nil {
		t.Fatal("Build() should fail when no segment could be extracted")
	}
	if len(concat.calls) != 0 {
		t.Error("concat should not run without segments")
	}
}
