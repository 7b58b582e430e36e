package video

import (
	"context"
	"errors"
	"math"
	"testing"

	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/domain/video"
)

// mockTrimmer implements video.Trimmer for testing
type mockTrimmer struct {
	copyErr     error
	reencodeErr error
	calls       []video.TrimRequest
	onSuccess   func(outputPath string)
}

func (m *mockTrimmer) Trim(ctx context.Context, req *video.TrimRequest, outputPath string) error {
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

// mockProber implements video.Prober for testing
type mockProber struct {
	durations map[string]float64
	err       error
}

func (m *mockProber) Probe(ctx context.Context, path string) (*video.ProbeInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &video.ProbeInfo{Duration: m.durations[path]}, nil
}

// mockChecker implements video.FileChecker for testing
type mockChecker struct {
	sizes map[string]int64
}

func (m *mockChecker) Exists(path string) bool {
	_, ok := m.sizes[path]
	return ok
}

func (m *mockChecker) Size(path string) int64 {
	return m.sizes[path]
}

func newSegmentFixture() (*SegmentService, *mockTrimmer, *mockProber, *mockChecker) {
	trimmer := &mockTrimmer{}
	prober := &mockProber{durations: map[string]float64{}}
	checker := &mockChecker{sizes: map[string]int64{}}
	trimmer.onSuccess = func(outputPath string) {
		checker.sizes[outputPath] = 1024
	}
	return NewSegmentService(trimmer, prober, checker), trimmer, prober, checker
}

func TestExtractStreamCopySuccess(t *testing.T) {
	svc, trimmer, prober, _ := newSegmentFixture()
	prober.durations["/tmp/seg.mp4"] = 3.05

	result, err := svc.Extract(context.Background(), "/src.mp4", dataset.TimeRange{Start: 10, End: 13}, "/tmp/seg.mp4")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !result.StreamCopied {
		t.Error("StreamCopied = false, want true")
	}
	if !result.DurationMeasured {
		t.Error("DurationMeasured = false, want true")
	}
	if math.Abs(result.Duration-3.05) > 1e-9 {
		t.Errorf("Duration = %f, want measured 3.05 not requested 3.00", result.Duration)
	}
	if len(trimmer.calls) != 1 || !trimmer.calls[0].StreamCopy {
		t.Errorf("expected a single stream-copy attempt, got %+v", trimmer.calls)
	}
}

func TestExtractFallsBackToReencode(t *testing.T) {
	svc, trimmer, prober, _ := newSegmentFixture()
	trimmer.copyErr = errors.New("keyframe misalignment")
	prober.durations["/tmp/seg.mp4"] = 2.5

	result, err := svc.Extract(context.Background(), "/src.mp4", dataset.TimeRange{Start: 0, End: 2.5}, "/tmp/seg.mp4")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.StreamCopied {
		t.Error("StreamCopied = true, want false after fallback")
	}
	if len(trimmer.calls) != 2 {
		t.Fatalf("attempts = %d, want 2", len(trimmer.calls))
	}
	if !trimmer.calls[0].StreamCopy || trimmer.calls[1].StreamCopy {
		t.Error("expected copy attempt then re-encode attempt")
	}
}

func TestExtractBothAttemptsFail(t *testing.T) {
	svc, trimmer, _, _ := newSegmentFixture()
	trimmer.copyErr = errors.New("copy boom")
	trimmer.reencodeErr = errors.New("reencode boom")

	_, err := svc.Extract(context.Background(), "/src.mp4", dataset.TimeRange{Start: 0, End: 1}, "/tmp/seg.mp4")
	var extractErr *ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatalf("error = %v, want *ExtractError", err)
	}
	if extractErr.CopyErr == nil || extractErr.ReencodeErr == nil {
		t.Error("ExtractError should carry both attempt errors")
	}
}

func TestExtractEmptyOutputIsFailure(t *testing.T) {
	svc, trimmer, _, checker := newSegmentFixture()
	// Transcoder exits cleanly but writes an empty file.
	trimmer.onSuccess = func(outputPath string) {
		checker.sizes[outputPath] = 0
	}

	_, err := svc.Extract(context.Background(), "/src.mp4", dataset.TimeRange{Start: 0, End: 1}, "/tmp/seg.mp4")
	if err == nil {
		t.Fatal("Extract() should fail when the output file is empty")
	}
}

func TestExtractProbeFailureUsesRequestedDuration(t *testing.T) {
	svc, _, prober, _ := newSegmentFixture()
	prober.err = errors.New("probe broken")

	result, err := svc.Extract(context.Background(), "/src.mp4", dataset.TimeRange{Start: 1, End: 4}, "/tmp/seg.mp4")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.DurationMeasured {
		t.Error("DurationMeasured = true, want false when probe fails")
	}
	if math.Abs(result.Duration-3.0) > 1e-9 {
		t.Errorf("Duration = %f, want requested 3.0", result.Duration)
	}
}

func TestExtractRejectsInvalidWindow(t *testing.T) {
	svc, trimmer, _, _ := newSegmentFixture()

	_, err := svc.Extract(context.Background(), "/src.mp4", dataset.TimeRange{Start: 5, End: 5}, "/tmp/seg.mp4")
	if err == nil {
		t.Fatal("Extract() should reject an empty window")
	}
	if len(trimmer.calls) != 0 {
		t.Error("no transcoder call expected for an invalid window")
	}
}
