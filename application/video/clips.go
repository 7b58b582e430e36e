package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"robot-dataset-curator/domain/dataset"
)

// ClipSource is one source episode's cut boundary for the clips command:
// the window inside a specific camera video file.
type ClipSource struct {
	EpisodeIndex int64
	Window       dataset.TimeRange
	ChunkIndex   int64
	FileIndex    int64
	HasLocation  bool
}

// ClipServiceInput describes one clip-cutting run.
type ClipServiceInput struct {
	DatasetRoot string
	Camera      string
	OutputDir   string
	Episodes    []ClipSource
}

// ClipResult summarizes a clip-cutting run.
type ClipResult struct {
	Created []string
	Failed  []int64
}

// ClipService cuts one review clip per source episode, named so the episode
// ordinal can be recovered later from the clip name (episode_NNN.mp4).
type ClipService struct {
	segments *SegmentService
	logger   *slog.Logger
	output   io.Writer
}

// NewClipService creates a new clip-cutting service.
func NewClipService(segments *SegmentService, logger *slog.Logger, output io.Writer) *ClipService {
	if logger == nil {
		logger = slog.Default()
	}
	if output == nil {
		output = io.Discard
	}
	return &ClipService{segments: segments, logger: logger, output: output}
}

// CreateClips cuts every episode's clip for one camera. Episodes carrying a
// recorded (chunk, file) location are cut from that file; the rest fall back
// to the camera's first video file. Per-episode failures are reported and do
// not stop the run.
func (s *ClipService) CreateClips(ctx context.Context, input ClipServiceInput) (*ClipResult, error) {
	if err := os.MkdirAll(input.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create clips directory: %w", err)
	}

	fallback, err := FindCameraVideo(input.DatasetRoot, input.Camera, -1, -1)
	if err != nil {
		return nil, err
	}

	result := &ClipResult{}
	for _, ep := range input.Episodes {
		sourcePath := fallback
		if ep.HasLocation {
			if p, err := FindCameraVideo(input.DatasetRoot, input.Camera, ep.ChunkIndex, ep.FileIndex); err == nil {
				sourcePath = p
			}
		}

		clipPath := filepath.Join(input.OutputDir, fmt.Sprintf("episode_%03d.mp4", ep.EpisodeIndex))
		fmt.Fprintf(s.output, "  Episode %d: %s (%.2fs) -> %s\n",
			ep.EpisodeIndex, ep.Window, ep.Window.Duration(), filepath.Base(clipPath))

		if _, err := s.segments.Extract(ctx, sourcePath, ep.Window, clipPath); err != nil {
			s.logger.Warn("clip creation failed",
				"camera", input.Camera, "episode_index", ep.EpisodeIndex, "error", err)
			result.Failed = append(result.Failed, ep.EpisodeIndex)
			continue
		}
		result.Created = append(result.Created, clipPath)
	}

	return result, nil
}

// FindCameraVideo locates a camera video file in a dataset. With
// non-negative chunk and file indices the exact file is required to exist;
// otherwise the first video file found in chunk order is returned.
func FindCameraVideo(root, camera string, chunk, file int64) (string, error) {
	videoDir := dataset.CameraVideoDir(root, camera)

	if chunk >= 0 && file >= 0 {
		exact := dataset.ChunkFilePath(videoDir, chunk, file, ".mp4")
		if _, err := os.Stat(exact); err == nil {
			return exact, nil
		}
		return "", fmt.Errorf("video file not found: %s", exact)
	}

	chunks, err := filepath.Glob(filepath.Join(videoDir, "chunk-*"))
	if err != nil {
		return "", err
	}
	for _, chunkDir := range chunks {
		files, err := filepath.Glob(filepath.Join(chunkDir, "file-*.mp4"))
		if err != nil {
			return "", err
		}
		if len(files) > 0 {
			return files[0], nil
		}
	}
	return "", fmt.Errorf("no video file found for camera %s", camera)
}
