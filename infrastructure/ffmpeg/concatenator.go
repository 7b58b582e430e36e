package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"robot-dataset-curator/domain/video"
)

// Concatenator implements video.Concatenator using ffmpeg's concat demuxer
type Concatenator struct {
	ffmpegPath string
	preset     string
	timeout    time.Duration
	runner     CommandRunner
}

// ConcatenatorOption is a functional option for configuring Concatenator
type ConcatenatorOption func(*Concatenator)

// WithConcatFFmpegPath sets a custom ffmpeg executable path
func WithConcatFFmpegPath(path string) ConcatenatorOption {
	return func(c *Concatenator) {
		c.ffmpegPath = path
	}
}

// WithConcatPreset sets the x264 preset used when re-encoding
func WithConcatPreset(preset string) ConcatenatorOption {
	return func(c *Concatenator) {
		c.preset = preset
	}
}

// WithConcatTimeout bounds each ffmpeg invocation
func WithConcatTimeout(timeout time.Duration) ConcatenatorOption {
	return func(c *Concatenator) {
		c.timeout = timeout
	}
}

// WithConcatCommandRunner sets a custom command runner (for testing)
func WithConcatCommandRunner(runner CommandRunner) ConcatenatorOption {
	return func(c *Concatenator) {
		c.runner = runner
	}
}

// NewConcatenator creates a new FFmpeg-based concatenator
func NewConcatenator(opts ...ConcatenatorOption) *Concatenator {
	c := &Concatenator{
		ffmpegPath: "ffmpeg",
		preset:     "fast",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Concat implements video.Concatenator. The concat demuxer needs a list file
// naming the inputs in playback order; it is written to a temp file and
// removed when the run finishes.
func (c *Concatenator) Concat(ctx context.Context, req *video.ConcatRequest, outputPath string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	listPath, err := writeConcatList(req.Inputs)
	if err != nil {
		return err
	}
	defer os.Remove(listPath)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}
	if req.StreamCopy {
		args = append(args, "-c", "copy")
	} else {
		args = append(args,
			"-c:v", "libx264",
			"-preset", c.preset,
			"-c:a", "aac",
		)
	}
	args = append(args, "-y", outputPath)

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.runner.Run(ctx, c.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (c *Concatenator) VerifyInstalled(ctx context.Context) error {
	_, err := c.runner.Output(ctx, c.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// writeConcatList writes a concat demuxer list file and returns its path.
// Single quotes in paths are escaped per the demuxer's quoting rules.
func writeConcatList(inputs []string) (string, error) {
	f, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}

	var b strings.Builder
	for _, in := range inputs {
		escaped := strings.ReplaceAll(in, "'", `'\''`)
		fmt.Fprintf(&b, "file '%s'\n", escaped)
	}

	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close concat list: %w", err)
	}

	return f.Name(), nil
}

// Ensure Concatenator implements video.Concatenator
var _ video.Concatenator = (*Concatenator)(nil)
