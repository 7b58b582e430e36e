package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	appextract "robot-dataset-curator/application/extract"
	appvideo "robot-dataset-curator/application/video"
	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/infrastructure/ffmpeg"
	"robot-dataset-curator/infrastructure/filesystem"
	"robot-dataset-curator/infrastructure/logging"
	"robot-dataset-curator/infrastructure/parquet"
	"robot-dataset-curator/infrastructure/requests"
	"robot-dataset-curator/infrastructure/sidecar"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var extractCameras []string

var extractCmd = &cobra.Command{
	Use:   "extract <source-dataset> <requests.csv> <output-dataset>",
	Short: "Extract requested episodes into a new curated dataset",
	Long: `Extract the episodes listed in a CSV request file from a source dataset
and assemble them into a new dataset:

1. Load the source frame table and episode metadata
2. Cut each requested time window, renumber indices, rebase timestamps
3. Cut and concatenate the per-camera videos, measuring real durations
4. Write the new table, episode metadata, task registry and sidecars
5. Publish the finished tree atomically

Request rows that match no frames are dropped with a warning; cameras whose
video cannot be rebuilt keep their source-relative offsets.

Example:
  robot-dataset-curator extract ./aloha-towels requests.csv ./towel-folding-v2 \
    --camera top --camera wrist.left`,
	Args: cobra.ExactArgs(3),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringArrayVar(&extractCameras, "camera", nil, "Camera(s) to rebuild videos for (defaults to all discovered)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := configOrDefault()
	ctx := cmd.Context()
	logger := logging.NewLogger(logLevel)
	timeout := time.Duration(cfg.FFmpeg.TimeoutSeconds) * time.Second

	trimmer := ffmpeg.NewTrimmer(
		ffmpeg.WithFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithPreset(cfg.FFmpeg.Preset),
		ffmpeg.WithTimeout(timeout),
	)
	prober := ffmpeg.NewProber(ffmpeg.WithFFprobePath(cfg.FFmpeg.FFprobePath))
	concatenator := ffmpeg.NewConcatenator(
		ffmpeg.WithConcatFFmpegPath(cfg.FFmpeg.FFmpegPath),
		ffmpeg.WithConcatPreset(cfg.FFmpeg.Preset),
		ffmpeg.WithConcatTimeout(timeout),
	)
	checker := filesystem.NewChecker()

	verifyCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := trimmer.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Errorf("ffmpeg verification failed: %w", err)
	}

	segments := appvideo.NewSegmentService(trimmer, prober, checker)
	builder := appvideo.NewCameraBuilder(segments, concatenator, checker, logger)

	frameStore := parquet.NewFrameStore()
	episodeStore := parquet.NewEpisodeStore()
	loader := appextract.NewLoader(frameStore, episodeStore)
	assembler := appextract.NewAssembler(frameStore, episodeStore, parquet.NewTaskStore(), sidecar.NewStore(), logger, os.Stdout)
	service := appextract.NewService(loader, assembler, builder, filesystem.NewStager(), logger, os.Stdout)

	cameras := extractCameras
	if len(cameras) == 0 {
		cameras = cfg.Cameras
	}

	return RunExtractWithDependencies(ctx, service, requests.NewCSVReader(), ExtractInput{
		SourceRoot:   args[0],
		RequestsPath: args[1],
		OutputRoot:   args[2],
		Cameras:      cameras,
	}, os.Stdout)
}

// RequestReader reads an episode request list from a file
type RequestReader interface {
	Read(path string) ([]dataset.EpisodeRequest, error)
}

// ExtractInput contains the input parameters for the extract command
type ExtractInput struct {
	SourceRoot   string
	RequestsPath string
	OutputRoot   string
	Cameras      []string
}

// RunExtractWithDependencies runs the extract command with injected dependencies (for testing)
func RunExtractWithDependencies(
	ctx context.Context,
	service *appextract.Service,
	reader RequestReader,
	input ExtractInput,
	output io.Writer,
) error {
	if err := appextract.EnsureSourceExists(input.SourceRoot); err != nil {
		return err
	}

	reqs, err := reader.Read(input.RequestsPath)
	if err != nil {
		return fmt.Errorf("failed to read request list: %w", err)
	}

	result, err := service.Run(ctx, appextract.Input{
		SourceRoot: input.SourceRoot,
		OutputRoot: input.OutputRoot,
		Requests:   reqs,
		Cameras:    input.Cameras,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(output)
	writeExtractSummary(output, input.OutputRoot, result)
	return nil
}

func writeExtractSummary(output io.Writer, outputRoot string, result *appextract.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(output)
	t.SetStyle(table.StyleLight)
	t.AppendRow(table.Row{"Output", outputRoot})
	t.AppendRow(table.Row{"Episodes", result.Episodes})
	t.AppendRow(table.Row{"Frames", result.Frames})
	t.AppendRow(table.Row{"Tasks", result.Tasks})
	if len(result.Dropped) > 0 {
		t.AppendRow(table.Row{"Dropped requests", formatInts(result.Dropped)})
	}
	if len(result.FailedCameras) > 0 {
		t.AppendRow(table.Row{"Failed cameras", strings.Join(result.FailedCameras, ", ")})
	}
	t.Render()
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, ", ")
}
