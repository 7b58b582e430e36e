package ffmpeg

import (
	"context"
	"fmt"
	"time"

	"robot-dataset-curator/domain/video"
)

// Trimmer implements video.Trimmer using ffmpeg
type Trimmer struct {
	ffmpegPath string
	preset     string
	timeout    time.Duration
	runner     CommandRunner
}

// TrimmerOption is a functional option for configuring Trimmer
type TrimmerOption func(*Trimmer)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TrimmerOption {
	return func(t *Trimmer) {
		t.ffmpegPath = path
	}
}

// WithPreset sets the x264 preset used when re-encoding
func WithPreset(preset string) TrimmerOption {
	return func(t *Trimmer) {
		t.preset = preset
	}
}

// WithTimeout bounds each ffmpeg invocation
func WithTimeout(timeout time.Duration) TrimmerOption {
	return func(t *Trimmer) {
		t.timeout = timeout
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TrimmerOption {
	return func(t *Trimmer) {
		t.runner = runner
	}
}

// NewTrimmer creates a new FFmpeg-based trimmer
func NewTrimmer(opts ...TrimmerOption) *Trimmer {
	t := &Trimmer{
		ffmpegPath: "ffmpeg",
		preset:     "fast",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Trim implements video.Trimmer. With StreamCopy set the cut reuses the
// source packets, which only lands exactly on a keyframe; without it the
// window is re-encoded frame-accurately.
func (t *Trimmer) Trim(ctx context.Context, req *video.TrimRequest, outputPath string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	args := []string{
		"-ss", formatSeconds(req.Start),
		"-i", req.SourcePath,
		"-t", formatSeconds(req.Duration()),
	}
	if req.StreamCopy {
		args = append(args,
			"-c", "copy",
			"-avoid_negative_ts", "make_zero",
		)
	} else {
		args = append(args,
			"-c:v", "libx264",
			"-preset", t.preset,
			"-c:a", "aac",
		)
	}
	args = append(args, "-y", outputPath)

	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	if err := t.runner.Run(ctx, t.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg trim failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (t *Trimmer) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Trimmer implements video.Trimmer
var _ video.Trimmer = (*Trimmer)(nil)
