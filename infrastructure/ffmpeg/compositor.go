package ffmpeg

import (
	"context"
	"fmt"
	"strings"
	"time"

	"robot-dataset-curator/domain/video"
)

// Compositor implements video.Compositor using ffmpeg filter graphs
type Compositor struct {
	ffmpegPath string
	preset     string
	timeout    time.Duration
	runner     CommandRunner
}

// CompositorOption is a functional option for configuring Compositor
type CompositorOption func(*Compositor)

// WithCompositorFFmpegPath sets a custom ffmpeg executable path
func WithCompositorFFmpegPath(path string) CompositorOption {
	return func(c *Compositor) {
		c.ffmpegPath = path
	}
}

// WithCompositorPreset sets the x264 preset used for the re-encode
func WithCompositorPreset(preset string) CompositorOption {
	return func(c *Compositor) {
		c.preset = preset
	}
}

// WithCompositorTimeout bounds each ffmpeg invocation
func WithCompositorTimeout(timeout time.Duration) CompositorOption {
	return func(c *Compositor) {
		c.timeout = timeout
	}
}

// WithCompositorCommandRunner sets a custom command runner (for testing)
func WithCompositorCommandRunner(runner CommandRunner) CompositorOption {
	return func(c *Compositor) {
		c.runner = runner
	}
}

// NewCompositor creates a new FFmpeg-based view compositor
func NewCompositor(opts ...CompositorOption) *Compositor {
	c := &Compositor{
		ffmpegPath: "ffmpeg",
		preset:     "fast",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Compose implements video.Compositor. Combining views always re-encodes;
// there is no packet-copy path through a filter graph.
func (c *Compositor) Compose(ctx context.Context, req *video.ComposeRequest, outputPath string) error {
	if err := req.Validate(); err != nil {
		return err
	}

	var args []string
	for _, in := range req.Inputs {
		args = append(args, "-i", in)
	}
	args = append(args,
		"-filter_complex", filterGraph(req.Layout, len(req.Inputs)),
		"-c:v", "libx264",
		"-preset", c.preset,
		"-an",
		"-y", outputPath,
	)

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.runner.Run(ctx, c.ffmpegPath, args...); err != nil {
		return fmt.Errorf("ffmpeg compose failed: %w", err)
	}

	return nil
}

// filterGraph builds the filter expression arranging n input views.
func filterGraph(layout video.ComposeLayout, n int) string {
	if n == 2 || layout == video.LayoutHorizontal {
		return fmt.Sprintf("hstack=inputs=%d", n)
	}
	return fmt.Sprintf("xstack=inputs=%d:layout=%s:fill=black", n, gridLayout(n))
}

// gridLayout returns the xstack layout string for n views in a two-column
// grid, row-major.
func gridLayout(n int) string {
	positions := make([]string, n)
	for i := 0; i < n; i++ {
		col, row := i%2, i/2
		x, y := "0", "0"
		if col == 1 {
			x = "w0"
		}
		if row > 0 {
			y = fmt.Sprintf("h0*%d", row)
			if row == 1 {
				y = "h0"
			}
		}
		positions[i] = x + "_" + y
	}
	return strings.Join(positions, "|")
}

// VerifyInstalled checks that ffmpeg is available
func (c *Compositor) VerifyInstalled(ctx context.Context) error {
	_, err := c.runner.Output(ctx, c.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Compositor implements video.Compositor
var _ video.Compositor = (*Compositor)(nil)
