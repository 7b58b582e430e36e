package video

import (
	"context"
	"fmt"

	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/domain/video"
)

// SegmentResult describes one successfully extracted segment.
type SegmentResult struct {
	OutputPath string
	// Duration is the measured duration of the produced file. It can
	// differ from the requested window because of seek imprecision and
	// keyframe alignment; all offset bookkeeping must use this value.
	Duration float64
	// StreamCopied is false when the fast path failed and the segment was
	// re-encoded.
	StreamCopied bool
	// DurationMeasured is false when the duration probe failed and
	// Duration fell back to the requested window length.
	DurationMeasured bool
}

// ExtractError carries the outcome of both extraction attempts.
type ExtractError struct {
	CopyErr     error
	ReencodeErr error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("segment extraction failed: copy: %v; re-encode: %v", e.CopyErr, e.ReencodeErr)
}

// SegmentService extracts single-episode segments from source camera videos.
type SegmentService struct {
	trimmer video.Trimmer
	prober  video.Prober
	checker video.FileChecker
}

// NewSegmentService creates a new segment extraction service.
func NewSegmentService(trimmer video.Trimmer, prober video.Prober, checker video.FileChecker) *SegmentService {
	return &SegmentService{
		trimmer: trimmer,
		prober:  prober,
		checker: checker,
	}
}

// Extract cuts the absolute source-video window out of sourcePath into
// outputPath. The stream-copy path is tried first; on failure the segment is
// re-encoded. A run that exits cleanly but leaves a missing or empty output
// file counts as a failure.
//
// On success the produced file's duration is probed independently. When the
// probe itself fails the requested duration is used as a last resort.
func (s *SegmentService) Extract(ctx context.Context, sourcePath string, window dataset.TimeRange, outputPath string) (*SegmentResult, error) {
	req := &video.TrimRequest{
		SourcePath: sourcePath,
		Start:      window.Start,
		End:        window.End,
		StreamCopy: true,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	copyErr := s.attempt(ctx, req, outputPath)
	if copyErr == nil {
		return s.finish(ctx, req, outputPath, true)
	}

	reencode := *req
	reencode.StreamCopy = false
	reencodeErr := s.attempt(ctx, &reencode, outputPath)
	if reencodeErr == nil {
		return s.finish(ctx, req, outputPath, false)
	}

	return nil, &ExtractError{CopyErr: copyErr, ReencodeErr: reencodeErr}
}

func (s *SegmentService) attempt(ctx context.Context, req *video.TrimRequest, outputPath string) error {
	if err := s.trimmer.Trim(ctx, req, outputPath); err != nil {
		return err
	}
	if !s.checker.Exists(outputPath) || s.checker.Size(outputPath) == 0 {
		return fmt.Errorf("transcoder wrote no output to %s", outputPath)
	}
	return nil
}

func (s *SegmentService) finish(ctx context.Context, req *video.TrimRequest, outputPath string, streamCopied bool) (*SegmentResult, error) {
	duration := req.Duration()
	measured := false
	if info, err := s.prober.Probe(ctx, outputPath); err == nil {
		duration = info.Duration
		measured = true
	}
	return &SegmentResult{
		OutputPath:       outputPath,
		Duration:         duration,
		StreamCopied:     streamCopied,
		DurationMeasured: measured,
	}, nil
}
