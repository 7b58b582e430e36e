//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	appextract "robot-dataset-curator/application/extract"
	appvideo "robot-dataset-curator/application/video"
	"robot-dataset-curator/cmd"
	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/infrastructure/filesystem"
	"robot-dataset-curator/infrastructure/parquet"
	"robot-dataset-curator/infrastructure/requests"
	"robot-dataset-curator/infrastructure/sidecar"

	"github.com/cucumber/godog"
)

// mockCameraBuilder stands in for the ffmpeg-backed camera video builder,
// reporting each episode's requested window as its measured one.
type mockCameraBuilder struct {
	builds []appvideo.CameraBuildInput
}

func (m *mockCameraBuilder) Build(ctx context.Context, input appvideo.CameraBuildInput) (*appvideo.CameraBuildResult, error) {
	m.builds = append(m.builds, input)

	if err := os.MkdirAll(filepath.Dir(input.OutputPath), 0755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(input.OutputPath, []byte("mp4"), 0644); err != nil {
		return nil, err
	}

	offsets := make([]appvideo.EpisodeOffsets, len(input.Episodes))
	cursor := 0.0
	for i, ep := range input.Episodes {
		duration := ep.SourceWindow.Duration()
		offsets[i] = appvideo.EpisodeOffsets{
			EpisodeIndex: ep.EpisodeIndex,
			Window:       dataset.TimeRange{Start: cursor, End: cursor + duration},
			Extracted:    true,
		}
		cursor += duration
	}
	return &appvideo.CameraBuildResult{OutputPath: input.OutputPath, Offsets: offsets}, nil
}

// extractContext holds test state for extraction scenarios
type extractContext struct {
	tempDir     string
	sourceRoot  string
	outputRoot  string
	requestRows []string
	builder     *mockCameraBuilder
	output      *bytes.Buffer
	err         error
}

var SharedExtractContext = &extractContext{}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedExtractContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.sourceRoot = filepath.Join(tempDir, "source")
		testCtx.outputRoot = filepath.Join(tempDir, "curated")
		testCtx.requestRows = nil
		testCtx.builder = &mockCameraBuilder{}
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedExtractContext = &extractContext{}
		return c, nil
	})

	ctx.Step(`^a source dataset with (\d+) episodes of (\d+) frames each$`, testCtx.aSourceDataset)
	ctx.Step(`^a request for episode (\d+) from (\d+\.\d+) to (\d+\.\d+) with task "([^"]*)"$`, testCtx.aRequest)
	ctx.Step(`^I run the extraction$`, testCtx.iRunTheExtraction)
	ctx.Step(`^the extraction should succeed$`, testCtx.theExtractionShouldSucceed)
	ctx.Step(`^the extraction should fail$`, testCtx.theExtractionShouldFail)
	ctx.Step(`^the curated dataset should contain (\d+) episodes?$`, testCtx.theCuratedDatasetShouldContainEpisodes)
	ctx.Step(`^the curated dataset should contain (\d+) frames$`, testCtx.theCuratedDatasetShouldContainFrames)
	ctx.Step(`^the curated dataset episode (\d+) should start at timestamp (\d+\.\d+)$`, testCtx.episodeShouldStartAtTimestamp)
	ctx.Step(`^the task table should contain "([^"]*)"$`, testCtx.theTaskTableShouldContain)
	ctx.Step(`^the task table should contain exactly (\d+) tasks?$`, testCtx.theTaskTableShouldContainExactly)
	ctx.Step(`^the dataset info should report (\d+) episodes$`, testCtx.theDatasetInfoShouldReport)
	ctx.Step(`^the output should mention a skipped request$`, testCtx.theOutputShouldMentionSkippedRequest)
	ctx.Step(`^no curated dataset should be published$`, testCtx.noCuratedDatasetShouldBePublished)
}

// aSourceDataset writes a complete source tree: frame table, episode
// metadata, one camera video file and the info sidecar. Frames run at one
// per second, timestamps restarting every episode.
func (c *extractContext) aSourceDataset(episodes, frames int) error {
	var table []dataset.FrameRecord
	var meta []dataset.OutputEpisodeMeta
	global := int64(0)
	for ep := 0; ep < episodes; ep++ {
		for i := 0; i < frames; i++ {
			table = append(table, dataset.FrameRecord{
				EpisodeIndex: int64(ep),
				FrameIndex:   int64(i),
				Timestamp:    float64(i),
				Index:        global,
				TaskIndex:    0,
				Payload: map[string]any{
					"observation.state": []float64{float64(global), 0.5},
				},
			})
			global++
		}
		meta = append(meta, dataset.OutputEpisodeMeta{
			EpisodeIndex:     int64(ep),
			Tasks:            []string{"source task"},
			Length:           int64(frames),
			DatasetFromIndex: int64(ep * frames),
			DatasetToIndex:   int64(ep*frames + frames),
			Videos: map[string]dataset.VideoLocation{
				"top": {
					ChunkIndex:    0,
					FileIndex:     0,
					FromTimestamp: float64(ep * frames),
					ToTimestamp:   float64(ep*frames + frames),
				},
			},
		})
	}

	framesPath := dataset.ChunkFilePath(dataset.DataDir(c.sourceRoot), 0, 0, ".parquet")
	if err := os.MkdirAll(filepath.Dir(framesPath), 0755); err != nil {
		return err
	}
	if err := parquet.NewFrameStore().WriteFrames(framesPath, table); err != nil {
		return err
	}

	metaPath := dataset.ChunkFilePath(dataset.EpisodesDir(c.sourceRoot), 0, 0, ".parquet")
	if err := os.MkdirAll(filepath.Dir(metaPath), 0755); err != nil {
		return err
	}
	if err := parquet.NewEpisodeStore().WriteEpisodes(metaPath, meta, []string{"top"}); err != nil {
		return err
	}

	videoPath := dataset.ChunkFilePath(dataset.CameraVideoDir(c.sourceRoot, "top"), 0, 0, ".mp4")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(videoPath, []byte("mp4"), 0644); err != nil {
		return err
	}

	return sidecar.NewStore().Write(dataset.InfoPath(c.sourceRoot), map[string]any{
		"total_episodes": episodes,
		"total_frames":   episodes * frames,
		"total_tasks":    1,
		"fps":            1,
		"splits":         map[string]any{"train": fmt.Sprintf("0:%d", episodes)},
	})
}

func (c *extractContext) aRequest(episode int, start, end, task string) error {
	c.requestRows = append(c.requestRows,
		fmt.Sprintf("episode_%03d,%s,%s,%s", episode, start, end, task))
	return nil
}

func (c *extractContext) iRunTheExtraction() error {
	requestsPath := filepath.Join(c.tempDir, "requests.csv")
	content := "clip_name,start_time,end_time,task\n" + strings.Join(c.requestRows, "\n") + "\n"
	if err := os.WriteFile(requestsPath, []byte(content), 0644); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	frameStore := parquet.NewFrameStore()
	episodeStore := parquet.NewEpisodeStore()
	loader := appextract.NewLoader(frameStore, episodeStore)
	assembler := appextract.NewAssembler(frameStore, episodeStore, parquet.NewTaskStore(), sidecar.NewStore(), logger, c.output)
	service := appextract.NewService(loader, assembler, c.builder, filesystem.NewStager(), logger, c.output)

	c.err = cmd.RunExtractWithDependencies(context.Background(), service, requests.NewCSVReader(), cmd.ExtractInput{
		SourceRoot:   c.sourceRoot,
		RequestsPath: requestsPath,
		OutputRoot:   c.outputRoot,
		Cameras:      []string{"top"},
	}, c.output)
	return nil
}

func (c *extractContext) theExtractionShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("extraction failed: %v\noutput:\n%s", c.err, c.output.String())
	}
	return nil
}

func (c *extractContext) theExtractionShouldFail() error {
	if c.err == nil {
		return fmt.Errorf("expected extraction to fail")
	}
	return nil
}

func (c *extractContext) outputEpisodes() ([]dataset.SourceEpisode, error) {
	path := dataset.ChunkFilePath(dataset.EpisodesDir(c.outputRoot), 0, 0, ".parquet")
	return parquet.NewEpisodeStore().ReadEpisodes(path)
}

func (c *extractContext) outputFrames() ([]dataset.FrameRecord, error) {
	path := dataset.ChunkFilePath(dataset.DataDir(c.outputRoot), 0, 0, ".parquet")
	return parquet.NewFrameStore().ReadFrames(path)
}

func (c *extractContext) theCuratedDatasetShouldContainEpisodes(count int) error {
	episodes, err := c.outputEpisodes()
	if err != nil {
		return err
	}
	if len(episodes) != count {
		return fmt.Errorf("expected %d episodes, got %d", count, len(episodes))
	}
	return nil
}

func (c *extractContext) theCuratedDatasetShouldContainFrames(count int) error {
	frames, err := c.outputFrames()
	if err != nil {
		return err
	}
	if len(frames) != count {
		return fmt.Errorf("expected %d frames, got %d", count, len(frames))
	}
	return nil
}

func (c *extractContext) episodeShouldStartAtTimestamp(episode int, ts string) error {
	frames, err := c.outputFrames()
	if err != nil {
		return err
	}
	for _, f := range frames {
		if f.EpisodeIndex == int64(episode) {
			if fmt.Sprintf("%.1f", f.Timestamp) != ts {
				return fmt.Errorf("episode %d starts at %.3f, expected %s", episode, f.Timestamp, ts)
			}
			return nil
		}
	}
	return fmt.Errorf("episode %d not found in output table", episode)
}

func (c *extractContext) readTasks() ([]string, error) {
	rows, err := parquet.NewTaskStore().ReadTasks(dataset.TasksPath(c.outputRoot))
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *extractContext) theTaskTableShouldContain(task string) error {
	tasks, err := c.readTasks()
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t == task {
			return nil
		}
	}
	return fmt.Errorf("task %q not found in %v", task, tasks)
}

func (c *extractContext) theTaskTableShouldContainExactly(count int) error {
	tasks, err := c.readTasks()
	if err != nil {
		return err
	}
	if len(tasks) != count {
		return fmt.Errorf("expected %d tasks, got %v", count, tasks)
	}
	return nil
}

func (c *extractContext) theDatasetInfoShouldReport(episodes int) error {
	info, err := sidecar.NewStore().Read(dataset.InfoPath(c.outputRoot))
	if err != nil {
		return err
	}
	if got, ok := info["total_episodes"].(float64); !ok || int(got) != episodes {
		return fmt.Errorf("info total_episodes = %v, expected %d", info["total_episodes"], episodes)
	}
	return nil
}

func (c *extractContext) theOutputShouldMentionSkippedRequest() error {
	if !strings.Contains(c.output.String(), "skipped") {
		return fmt.Errorf("output does not mention a skipped request:\n%s", c.output.String())
	}
	return nil
}

func (c *extractContext) noCuratedDatasetShouldBePublished() error {
	if _, err := os.Stat(c.outputRoot); err == nil {
		return fmt.Errorf("output root %s exists", c.outputRoot)
	}
	return nil
}
