package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/domain/video"
)

// EpisodeSegment names one episode's absolute window inside a camera's
// source video, in output-episode order.
type EpisodeSegment struct {
	EpisodeIndex int64
	SourceWindow dataset.TimeRange
}

// CameraBuildInput describes one camera's video reconstruction job.
type CameraBuildInput struct {
	Camera     string
	SourcePath string
	Episodes   []EpisodeSegment
	TempDir    string
	OutputPath string
}

// EpisodeOffsets is one episode's window inside the concatenated output
// video. Extracted is false when both extraction attempts failed; such
// episodes keep their fallback offsets and are absent from the output video.
type EpisodeOffsets struct {
	EpisodeIndex int64
	Window       dataset.TimeRange
	Extracted    bool
}

// CameraBuildResult describes one camera's reconstructed video.
type CameraBuildResult struct {
	OutputPath string
	Offsets    []EpisodeOffsets
	Skipped    []int64
	Reencoded  bool
}

// CameraBuilder extracts per-episode segments and concatenates them into one
// output video per camera, rebasing every episode's timestamps onto the
// concatenated stream.
type CameraBuilder struct {
	segments *SegmentService
	concat   video.Concatenator
	checker  video.FileChecker
	logger   *slog.Logger
}

// NewCameraBuilder creates a new camera video builder.
func NewCameraBuilder(segments *SegmentService, concat video.Concatenator, checker video.FileChecker, logger *slog.Logger) *CameraBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CameraBuilder{
		segments: segments,
		concat:   concat,
		checker:  checker,
		logger:   logger,
	}
}

// Build runs one camera's extraction and concatenation.
//
// The cumulative offset is a left-to-right fold over measured segment
// durations: each episode's window starts where the previous measured segment
// ended, so an inexact cut shifts later starts instead of corrupting its own
// window. Episodes whose extraction fails twice are skipped and logged; the
// remaining segments are still concatenated.
func (b *CameraBuilder) Build(ctx context.Context, input CameraBuildInput) (*CameraBuildResult, error) {
	if err := os.MkdirAll(input.TempDir, 0755); err != nil {
		return nil, fmt.Errorf("create segment directory: %w", err)
	}

	result := &CameraBuildResult{OutputPath: input.OutputPath}
	var tl dataset.CumulativeTimeline
	var segmentFiles []string

	for _, ep := range input.Episodes {
		segPath := filepath.Join(input.TempDir, fmt.Sprintf("segment_%03d.mp4", ep.EpisodeIndex))
		seg, err := b.segments.Extract(ctx, input.SourcePath, ep.SourceWindow, segPath)
		if err != nil {
			b.logger.Warn("segment extraction failed, episode will be missing from this camera's video",
				"camera", input.Camera, "episode_index", ep.EpisodeIndex,
				"window", ep.SourceWindow.String(), "error", err)
			result.Offsets = append(result.Offsets, EpisodeOffsets{
				EpisodeIndex: ep.EpisodeIndex,
			})
			result.Skipped = append(result.Skipped, ep.EpisodeIndex)
			continue
		}
		if !seg.StreamCopied {
			b.logger.Warn("stream copy failed, segment was re-encoded",
				"camera", input.Camera, "episode_index", ep.EpisodeIndex)
		}
		if !seg.DurationMeasured {
			b.logger.Warn("duration probe failed, using requested duration",
				"camera", input.Camera, "episode_index", ep.EpisodeIndex)
		}
		segmentFiles = append(segmentFiles, seg.OutputPath)
		result.Offsets = append(result.Offsets, EpisodeOffsets{
			EpisodeIndex: ep.EpisodeIndex,
			Window:       tl.Advance(seg.Duration),
			Extracted:    true,
		})
	}

	if len(segmentFiles) == 0 {
		b.cleanupTemp(input.TempDir, segmentFiles)
		return nil, fmt.Errorf("no segments extracted for camera %s", input.Camera)
	}

	if err := b.concatenate(ctx, segmentFiles, input.OutputPath, result); err != nil {
		// Do not leave a half-written video claiming to be the output.
		os.Remove(input.OutputPath)
		b.cleanupTemp(input.TempDir, segmentFiles)
		return nil, err
	}

	b.cleanupTemp(input.TempDir, segmentFiles)
	return result, nil
}

func (b *CameraBuilder) concatenate(ctx context.Context, inputs []string, outputPath string, result *CameraBuildResult) error {
	req := &video.ConcatRequest{Inputs: inputs, StreamCopy: true}
	copyErr := b.attemptConcat(ctx, req, outputPath)
	if copyErr == nil {
		return nil
	}

	b.logger.Warn("stream-copy concat failed, retrying with re-encode", "error", copyErr)
	reencode := &video.ConcatRequest{Inputs: inputs}
	if reencodeErr := b.attemptConcat(ctx, reencode, outputPath); reencodeErr != nil {
		return fmt.Errorf("concat failed: copy: %v; re-encode: %v", copyErr, reencodeErr)
	}
	result.Reencoded = true
	return nil
}

func (b *CameraBuilder) attemptConcat(ctx context.Context, req *video.ConcatRequest, outputPath string) error {
	if err := b.concat.Concat(ctx, req, outputPath); err != nil {
		return err
	}
	if !b.checker.Exists(outputPath) || b.checker.Size(outputPath) == 0 {
		return fmt.Errorf("transcoder wrote no output to %s", outputPath)
	}
	return nil
}

func (b *CameraBuilder) cleanupTemp(tempDir string, segmentFiles []string) {
	for _, f := range segmentFiles {
		os.Remove(f)
	}
	os.Remove(tempDir)
}
