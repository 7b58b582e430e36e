package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"robot-dataset-curator/domain/video"
)

// GridInput describes one multi-view preview run: for each episode, the
// per-camera clips to combine into a single video.
type GridInput struct {
	ClipsByCamera map[string][]string // camera -> clip paths, episode order
	Cameras       []string            // combination order, e.g. side|top|front
	OutputDir     string
	Layout        video.ComposeLayout
}

// GridResult summarizes a preview-combination run.
type GridResult struct {
	Created []string
	Failed  []string
}

// GridService combines synchronized per-camera clips into multi-view preview
// videos for episode review.
type GridService struct {
	compositor video.Compositor
	logger     *slog.Logger
	output     io.Writer
}

// NewGridService creates a new grid preview service.
func NewGridService(compositor video.Compositor, logger *slog.Logger, output io.Writer) *GridService {
	if logger == nil {
		logger = slog.Default()
	}
	if output == nil {
		output = io.Discard
	}
	return &GridService{compositor: compositor, logger: logger, output: output}
}

// Combine renders one multi-view video per episode. Episodes missing a clip
// for any camera are skipped with a warning; per-episode failures do not stop
// the run.
func (s *GridService) Combine(ctx context.Context, input GridInput) (*GridResult, error) {
	if len(input.Cameras) < 2 {
		return nil, fmt.Errorf("at least two cameras are required, got %d", len(input.Cameras))
	}
	if err := os.MkdirAll(input.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	count := 0
	for _, camera := range input.Cameras {
		if n := len(input.ClipsByCamera[camera]); count == 0 || n < count {
			count = n
		}
	}

	result := &GridResult{}
	for i := 0; i < count; i++ {
		inputs := make([]string, 0, len(input.Cameras))
		complete := true
		for _, camera := range input.Cameras {
			clip := input.ClipsByCamera[camera][i]
			if _, err := os.Stat(clip); err != nil {
				s.logger.Warn("clip missing, skipping episode preview", "camera", camera, "clip", clip)
				complete = false
				break
			}
			inputs = append(inputs, clip)
		}
		if !complete {
			continue
		}

		name := filepath.Base(inputs[0])
		outputPath := filepath.Join(input.OutputDir, name)
		fmt.Fprintf(s.output, "  Combining %d views -> %s\n", len(inputs), name)

		req := &video.ComposeRequest{Inputs: inputs, Layout: input.Layout}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		if err := s.compositor.Compose(ctx, req, outputPath); err != nil {
			s.logger.Warn("view combination failed", "output", name, "error", err)
			result.Failed = append(result.Failed, name)
			continue
		}
		result.Created = append(result.Created, outputPath)
	}

	return result, nil
}
