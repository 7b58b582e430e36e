package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	appvideo "robot-dataset-curator/application/video"
	"robot-dataset-curator/domain/dataset"
)

// VideoBuilder reconstructs one camera's concatenated output video.
// Implemented by application/video.CameraBuilder; mocked in tests.
type VideoBuilder interface {
	Build(ctx context.Context, input appvideo.CameraBuildInput) (*appvideo.CameraBuildResult, error)
}

// Stager provides a staging location for the output dataset and publishes it
// atomically once complete. Implemented by the filesystem adapter.
type Stager interface {
	// Begin prepares a staging directory for the eventual finalPath.
	Begin(finalPath string) (stagingPath string, err error)
	// Commit publishes the staged tree at finalPath.
	Commit(stagingPath, finalPath string) error
	// Abort discards the staged tree.
	Abort(stagingPath string)
}

// Service orchestrates the episode extraction and dataset reconstruction
// pipeline.
type Service struct {
	loader    *Loader
	assembler *Assembler
	builder   VideoBuilder
	stager    Stager
	logger    *slog.Logger
	output    io.Writer
}

// NewService creates a new extraction service.
func NewService(loader *Loader, assembler *Assembler, builder VideoBuilder, stager Stager, logger *slog.Logger, output io.Writer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if output == nil {
		output = io.Discard
	}
	return &Service{
		loader:    loader,
		assembler: assembler,
		builder:   builder,
		stager:    stager,
		logger:    logger,
		output:    output,
	}
}

// Input contains all input parameters for an extraction run.
type Input struct {
	SourceRoot string
	OutputRoot string
	Requests   []dataset.EpisodeRequest
	// Cameras overrides discovery from the source videos directory.
	Cameras []string
}

// Result contains the results of a successful extraction run.
type Result struct {
	OutputRoot    string
	Episodes      int
	Frames        int
	Tasks         int
	Dropped       []int    // request row numbers that matched zero frames
	FailedCameras []string // cameras whose output video could not be built
}

// episodeBuild carries one surviving episode through the pipeline stages.
type episodeBuild struct {
	resolved dataset.ResolvedEpisode
	frames   []dataset.FrameRecord
	meta     dataset.OutputEpisodeMeta
}

// Run executes the whole pipeline: load, resolve, slice, rebuild videos,
// assemble, publish. The output dataset is written to a staging location and
// only published once every stage finished, so a failed run never leaves a
// tree that looks complete.
func (s *Service) Run(ctx context.Context, input Input) (*Result, error) {
	if len(input.Requests) == 0 {
		return nil, fmt.Errorf("request list is empty")
	}

	// Step 1: load the source dataset.
	fmt.Fprintf(s.output, "[1/6] Loading source dataset...\n")
	frames, err := s.loader.LoadFrames(input.SourceRoot)
	if err != nil {
		return nil, err
	}
	sourceEpisodes, err := s.loader.LoadSourceEpisodes(input.SourceRoot)
	if err != nil {
		return nil, err
	}
	if sourceEpisodes == nil {
		s.logger.Warn("no source episode metadata, video offsets degrade to raw request times")
	}

	cameras := input.Cameras
	if len(cameras) == 0 {
		if cameras, err = DiscoverCameras(input.SourceRoot); err != nil {
			return nil, err
		}
	}
	fmt.Fprintf(s.output, "      %d frames, %d source episodes, %d cameras\n\n",
		len(frames), len(sourceEpisodes), len(cameras))

	// Step 2: resolve and slice every requested episode.
	fmt.Fprintf(s.output, "[2/6] Slicing %d requested episodes...\n", len(input.Requests))
	builds, dropped, registry, outFrames := s.sliceAll(input.Requests, frames, sourceEpisodes, cameras)
	if len(builds) == 0 {
		return nil, dataset.ErrNoEpisodes
	}
	fmt.Fprintf(s.output, "      Kept %d episodes (%d frames), dropped %d\n\n",
		len(builds), len(outFrames), len(dropped))

	staging, err := s.stager.Begin(input.OutputRoot)
	if err != nil {
		return nil, err
	}
	defer s.stager.Abort(staging)

	// Step 3: write the renumbered table.
	fmt.Fprintf(s.output, "[3/6] Writing frame table...\n")
	if err := s.assembler.WriteTable(staging, outFrames); err != nil {
		return nil, err
	}
	if err := s.assembler.WriteTasks(staging, registry.Labels()); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      %d rows\n\n", len(outFrames))

	// Step 4: rebuild one concatenated video per camera.
	fmt.Fprintf(s.output, "[4/6] Rebuilding %d camera videos...\n", len(cameras))
	failedCameras := s.buildVideos(ctx, input.SourceRoot, staging, cameras, builds)
	fmt.Fprintln(s.output)

	// Step 5: write episode metadata with final video offsets.
	fmt.Fprintf(s.output, "[5/6] Writing episode metadata...\n")
	metas := make([]dataset.OutputEpisodeMeta, len(builds))
	for i, b := range builds {
		metas[i] = b.meta
	}
	if err := s.assembler.WriteEpisodes(staging, metas, cameras); err != nil {
		return nil, err
	}
	if err := s.assembler.UpdateInfo(input.SourceRoot, staging, len(builds), len(outFrames), registry.Len()); err != nil {
		return nil, err
	}
	if err := s.assembler.UpdateStats(input.SourceRoot, staging, len(builds)); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      %d episodes, %d tasks\n\n", len(metas), registry.Len())

	// Step 6: publish.
	fmt.Fprintf(s.output, "[6/6] Publishing dataset...\n")
	if err := s.stager.Commit(staging, input.OutputRoot); err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      %s\n", input.OutputRoot)

	return &Result{
		OutputRoot:    input.OutputRoot,
		Episodes:      len(builds),
		Frames:        len(outFrames),
		Tasks:         registry.Len(),
		Dropped:       dropped,
		FailedCameras: failedCameras,
	}, nil
}

// sliceAll resolves and slices every request, renumbering indices across the
// surviving episodes. Requests matching zero rows are dropped with a warning
// and do not consume an output episode index.
func (s *Service) sliceAll(requests []dataset.EpisodeRequest, frames []dataset.FrameRecord, sourceEpisodes []dataset.SourceEpisode, cameras []string) ([]episodeBuild, []int, *dataset.TaskRegistry, []dataset.FrameRecord) {
	registry := dataset.NewTaskRegistry()
	var builds []episodeBuild
	var dropped []int
	var outFrames []dataset.FrameRecord
	nextIndex := int64(0)

	for row, req := range requests {
		newIndex := int64(len(builds))
		resolved := dataset.Resolve(req, newIndex, sourceEpisodes, cameras)
		if resolved.Degraded {
			s.logger.Warn("request degraded to raw timestamps, offsets may be wrong when one video packs several episodes",
				"request_row", row, "clip_name", req.ClipName)
		}

		sliced, err := dataset.Slice(frames, resolved, nextIndex)
		if err != nil {
			s.logger.Warn("request matched no frames, dropping episode",
				"request_row", row, "range", req.Range.String(), "task", req.Task)
			fmt.Fprintf(s.output, "      Warning: request %d matched no frames, skipped\n", row)
			dropped = append(dropped, row)
			continue
		}
		if sliced.UsedFallback {
			s.logger.Warn("selected frames by timestamp alone, no source episode match",
				"request_row", row, "range", req.Range.String())
		}

		// Tasks are registered only for surviving episodes so a dropped
		// request never claims a task index.
		taskIndex := registry.GetOrAssign(req.Task)
		for i := range sliced.Frames {
			sliced.Frames[i].TaskIndex = taskIndex
		}

		count := int64(len(sliced.Frames))
		meta := dataset.OutputEpisodeMeta{
			EpisodeIndex:     newIndex,
			Tasks:            []string{req.Task},
			Length:           count,
			DatasetFromIndex: nextIndex,
			DatasetToIndex:   nextIndex + count,
			Videos:           make(map[string]dataset.VideoLocation, len(cameras)),
			Stats:            dataset.ComputeStats(sliced.Frames),
		}
		// Offsets start as absolute source windows and are rebased onto
		// the concatenated output video once extraction succeeds.
		for _, camera := range cameras {
			window := resolved.VideoRange(camera)
			meta.Videos[camera] = dataset.VideoLocation{
				FromTimestamp: window.Start,
				ToTimestamp:   window.End,
			}
		}

		builds = append(builds, episodeBuild{resolved: resolved, frames: sliced.Frames, meta: meta})
		outFrames = append(outFrames, sliced.Frames...)
		nextIndex += count
	}

	return builds, dropped, registry, outFrames
}

// buildVideos rebuilds every camera's concatenated video and rebases the
// surviving episodes' offsets. Camera failures are isolated: the affected
// episodes keep their fallback offsets and the run continues.
func (s *Service) buildVideos(ctx context.Context, sourceRoot, staging string, cameras []string, builds []episodeBuild) []string {
	var failed []string
	for _, camera := range cameras {
		sourcePath, err := appvideo.FindCameraVideo(sourceRoot, camera, -1, -1)
		if err != nil {
			s.logger.Warn("no source video for camera, skipping", "camera", camera, "error", err)
			fmt.Fprintf(s.output, "      Warning: no video found for camera %s\n", camera)
			failed = append(failed, camera)
			continue
		}

		fmt.Fprintf(s.output, "      %s: extracting %d segments\n", camera, len(builds))
		videoDir := filepath.Join(dataset.CameraVideoDir(staging, camera), dataset.ChunkDirName(0))
		episodes := make([]appvideo.EpisodeSegment, len(builds))
		for i, b := range builds {
			episodes[i] = appvideo.EpisodeSegment{
				EpisodeIndex: b.meta.EpisodeIndex,
				SourceWindow: b.resolved.VideoRange(camera),
			}
		}

		result, err := s.builder.Build(ctx, appvideo.CameraBuildInput{
			Camera:     camera,
			SourcePath: sourcePath,
			Episodes:   episodes,
			TempDir:    filepath.Join(videoDir, "temp_segments"),
			OutputPath: filepath.Join(videoDir, dataset.FileName(0, ".mp4")),
		})
		if err != nil {
			s.logger.Warn("camera video build failed, keeping fallback offsets",
				"camera", camera, "error", err)
			fmt.Fprintf(s.output, "      Warning: %s video failed: %v\n", camera, err)
			failed = append(failed, camera)
			continue
		}

		for i, off := range result.Offsets {
			if !off.Extracted {
				continue
			}
			loc := builds[i].meta.Videos[camera]
			loc.ChunkIndex = 0
			loc.FileIndex = 0
			loc.FromTimestamp = off.Window.Start
			loc.ToTimestamp = off.Window.End
			builds[i].meta.Videos[camera] = loc
		}
		for _, idx := range result.Skipped {
			fmt.Fprintf(s.output, "      Warning: %s episode %d missing from output video\n", camera, idx)
		}
	}
	return failed
}

// EnsureSourceExists validates the source dataset root before a run.
func EnsureSourceExists(root string) error {
	if _, err := os.Stat(root); err != nil {
		return fmt.Errorf("source dataset not found: %s", root)
	}
	return nil
}
