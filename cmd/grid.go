package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	appvideo "robot-dataset-curator/application/video"
	"robot-dataset-curator/domain/video"
	"robot-dataset-curator/infrastructure/ffmpeg"
	"robot-dataset-curator/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	gridCameras []string
	gridLayout  string
)

var gridCmd = &cobra.Command{
	Use:   "grid <clips-root> <output-dir>",
	Short: "Combine per-camera clips into multi-view preview videos",
	Long: `Combine the per-camera review clips of each episode into one multi-view
video. Expects the clips of every camera under <clips-root>/<camera>/, as
written by the clips command, and pairs them up by clip name.

Two clips are placed side by side; more use a grid layout unless
--layout horizontal is given.

Example:
  robot-dataset-curator grid ./clips ./clips/combined --camera side --camera top`,
	Args: cobra.ExactArgs(2),
	RunE: runGrid,
}

func init() {
	rootCmd.AddCommand(gridCmd)
	gridCmd.Flags().StringArrayVar(&gridCameras, "camera", nil, "Cameras to combine, in display order (at least two)")
	gridCmd.Flags().StringVar(&gridLayout, "layout", "grid", "Layout: horizontal or grid")
	gridCmd.MarkFlagRequired("camera")
}

func runGrid(cmd *cobra.Command, args []string) error {
	cfg := configOrDefault()
	logger := logging.NewLogger(logLevel)

	compositor := ffmpeg.NewCompositor(
		ffmpeg.WithCompositorFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithCompositorPreset(cfg.FFmpeg.Preset),
		ffmpeg.WithCompositorTimeout(time.Duration(cfg.FFmpeg.TimeoutSeconds)*time.Second),
	)
	gridService := appvideo.NewGridService(compositor, logger, os.Stdout)

	return RunGridWithDependencies(cmd.Context(), gridService, GridCmdInput{
		ClipsRoot: args[0],
		OutputDir: args[1],
		Cameras:   gridCameras,
		Layout:    gridLayout,
	}, os.Stdout)
}

// GridCmdInput contains the input parameters for the grid command
type GridCmdInput struct {
	ClipsRoot string
	OutputDir string
	Cameras   []string
	Layout    string
}

// RunGridWithDependencies runs the grid command with injected dependencies (for testing)
func RunGridWithDependencies(
	ctx context.Context,
	gridService *appvideo.GridService,
	input GridCmdInput,
	output io.Writer,
) error {
	layout, err := parseLayout(input.Layout)
	if err != nil {
		return err
	}

	clipsByCamera := make(map[string][]string, len(input.Cameras))
	for _, camera := range input.Cameras {
		clips, err := filepath.Glob(filepath.Join(input.ClipsRoot, camera, "*.mp4"))
		if err != nil {
			return err
		}
		if len(clips) == 0 {
			return fmt.Errorf("no clips found for camera %s under %s", camera, input.ClipsRoot)
		}
		sort.Strings(clips)
		clipsByCamera[camera] = clips
	}

	result, err := gridService.Combine(ctx, appvideo.GridInput{
		ClipsByCamera: clipsByCamera,
		Cameras:       input.Cameras,
		OutputDir:     input.OutputDir,
		Layout:        layout,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "\nCombined %d episodes into %s\n", len(result.Created), input.OutputDir)
	if len(result.Failed) > 0 {
		fmt.Fprintf(output, "Failed: %v\n", result.Failed)
	}
	return nil
}

func parseLayout(name string) (video.ComposeLayout, error) {
	switch name {
	case "horizontal":
		return video.LayoutHorizontal, nil
	case "grid", "":
		return video.LayoutGrid, nil
	}
	return "", fmt.Errorf("unknown layout %q (use horizontal or grid)", name)
}
