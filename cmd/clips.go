package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	appextract "robot-dataset-curator/application/extract"
	appvideo "robot-dataset-curator/application/video"
	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/infrastructure/ffmpeg"
	"robot-dataset-curator/infrastructure/filesystem"
	"robot-dataset-curator/infrastructure/logging"
	"robot-dataset-curator/infrastructure/parquet"

	"github.com/spf13/cobra"
)

var clipsCamera string

var clipsCmd = &cobra.Command{
	Use:   "clips <source-dataset> <output-dir>",
	Short: "Cut one review clip per episode for a camera",
	Long: `Cut one preview clip per source episode from a camera's videos, so episodes
can be reviewed before authoring an extraction request list.

Clips are named episode_NNN.mp4, so each clip name carries the source episode
index it was cut from. Episodes with recorded video offsets are cut at those
offsets; episodes without them fall back to the frame table's timestamps.

Example:
  robot-dataset-curator clips ./aloha-towels ./clips/top --camera top`,
	Args: cobra.ExactArgs(2),
	RunE: runClips,
}

func init() {
	rootCmd.AddCommand(clipsCmd)
	clipsCmd.Flags().StringVar(&clipsCamera, "camera", "", "Camera to cut clips from (required)")
	clipsCmd.MarkFlagRequired("camera")
}

func runClips(cmd *cobra.Command, args []string) error {
	cfg := configOrDefault()
	logger := logging.NewLogger(logLevel)
	timeout := time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second

	trimmer := ffmpeg.NewTrimmer(
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithPreset(cfg.FFmpeg.Preset),
		ffmpeg.WithTimeout(timeout),
	)
	prober := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath))
	segments := appvideo.NewSegmentService(trimmer, prober, filesystem.NewChecker())
	clipService := appvideo.NewClipService(segments, logger, os.Stdout)
	loader := appextract.NewLoader(parquet.NewFrameStore(), parquet.NewEpisodeStore())

	return RunClipsWithDependencies(cmd.Context(), clipService, loader, ClipsInput{
		SourceRoot: args[0],
		Camera:     clipsCamera,
		OutputDir:  args[1],
	}, os.Stdout)
}

// ClipsInput contains the input parameters for the clips command
type ClipsInput struct {
	SourceRoot string
	Camera     string
	OutputDir  string
}

// RunClipsWithDependencies runs the clips command with injected dependencies (for testing)
func RunClipsWithDependencies(
	ctx context.Context,
	clipService *appvideo.ClipService,
	loader *appextract.Loader,
	input ClipsInput,
	output io.Writer,
) error {
	if err := appextract.EnsureSourceExists(input.SourceRoot); err != nil {
		return err
	}

	sources, err := collectClipSources(loader, input.SourceRoot, input.Camera)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no episodes found in %s", input.SourceRoot)
	}

	fmt.Fprintf(output, "Cutting %d clips for camera %s...\n", len(sources), input.Camera)
	result, err := clipService.CreateClips(ctx, appvideo.ClipServiceInput{
		DatasetRoot: input.SourceRoot,
		Camera:      input.Camera,
		OutputDir:   input.OutputDir,
		Episodes:    sources,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(output, "\nCreated %d clips in %s\n", len(result.Created), input.OutputDir)
	if len(result.Failed) > 0 {
		fmt.Fprintf(output, "Failed episodes: %v\n", result.Failed)
	}
	return nil
}

// collectClipSources builds the per-episode cut windows. Episode metadata
// offsets win; episodes the metadata does not cover for this camera get their
// window from the frame table instead.
func collectClipSources(loader *appextract.Loader, root, camera string) ([]appvideo.ClipSource, error) {
	episodes, err := loader.LoadSourceEpisodes(root)
	if err != nil {
		return nil, err
	}

	var sources []appvideo.ClipSource
	covered := make(map[int64]bool)
	for _, ep := range episodes {
		loc, ok := ep.Videos[camera]
		if !ok {
			continue
		}
		covered[ep.EpisodeIndex] = true
		sources = append(sources, appvideo.ClipSource{
			EpisodeIndex: ep.EpisodeIndex,
			Window:       dataset.TimeRange{Start: loc.FromTimestamp, End: loc.ToTimestamp},
			ChunkIndex:   loc.ChunkIndex,
			FileIndex:    loc.FileIndex,
			HasLocation:  true,
		})
	}

	missing := len(episodes) == 0
	for _, ep := range episodes {
		if !covered[ep.EpisodeIndex] {
			missing = true
		}
	}
	if missing {
		fallback, err := frameWindows(loader, root, covered)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fallback...)
	}

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].EpisodeIndex < sources[j].EpisodeIndex
	})
	return sources, nil
}

// frameWindows derives each uncovered episode's window from the frame table.
func frameWindows(loader *appextract.Loader, root string, covered map[int64]bool) ([]appvideo.ClipSource, error) {
	frames, err := loader.LoadFrames(root)
	if err != nil {
		return nil, err
	}

	windows := make(map[int64]dataset.TimeRange)
	for _, f := range frames {
		if covered[f.EpisodeIndex] {
			continue
		}
		w, ok := windows[f.EpisodeIndex]
		if !ok {
			windows[f.EpisodeIndex] = dataset.TimeRange{Start: f.Timestamp, End: f.Timestamp}
			continue
		}
		if f.Timestamp < w.Start {
			w.Start = f.Timestamp
		}
		if f.Timestamp > w.End {
			w.End = f.Timestamp
		}
		windows[f.EpisodeIndex] = w
	}

	sources := make([]appvideo.ClipSource, 0, len(windows))
	for idx, w := range windows {
		sources = append(sources, appvideo.ClipSource{
			EpisodeIndex: idx,
			Window:       w,
		})
	}
	return sources, nil
}
