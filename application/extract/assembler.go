package extract

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"robot-dataset-curator/domain/dataset"
)

// SidecarStore reads and writes JSON sidecar documents with unknown fields
// preserved.
type SidecarStore interface {
	Read(path string) (map[string]any, error)
	Write(path string, doc map[string]any) error
}

// Assembler writes the new dataset's table, episode metadata, task table and
// sidecars into a staging root.
type Assembler struct {
	frames   dataset.FrameStore
	episodes dataset.EpisodeStore
	tasks    dataset.TaskStore
	sidecars SidecarStore
	logger   *slog.Logger
	output   io.Writer
}

// NewAssembler creates a new dataset assembler.
func NewAssembler(frames dataset.FrameStore, episodes dataset.EpisodeStore, tasks dataset.TaskStore, sidecars SidecarStore, logger *slog.Logger, output io.Writer) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if output == nil {
		output = io.Discard
	}
	return &Assembler{
		frames:   frames,
		episodes: episodes,
		tasks:    tasks,
		sidecars: sidecars,
		logger:   logger,
		output:   output,
	}
}

// WriteTable writes the renumbered per-frame table as a single chunk file.
func (a *Assembler) WriteTable(stagingRoot string, frames []dataset.FrameRecord) error {
	path := dataset.ChunkFilePath(dataset.DataDir(stagingRoot), 0, 0, ".parquet")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	if err := a.frames.WriteFrames(path, frames); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// WriteEpisodes writes the per-episode metadata as a single chunk file.
func (a *Assembler) WriteEpisodes(stagingRoot string, episodes []dataset.OutputEpisodeMeta, cameras []string) error {
	path := dataset.ChunkFilePath(dataset.EpisodesDir(stagingRoot), 0, 0, ".parquet")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create episodes directory: %w", err)
	}
	if err := a.episodes.WriteEpisodes(path, episodes, cameras); err != nil {
		return fmt.Errorf("write episode metadata: %w", err)
	}
	return nil
}

// WriteTasks writes the task label table.
func (a *Assembler) WriteTasks(stagingRoot string, labels []string) error {
	path := dataset.TasksPath(stagingRoot)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create meta directory: %w", err)
	}
	if err := a.tasks.WriteTasks(path, labels); err != nil {
		return fmt.Errorf("write tasks: %w", err)
	}
	return nil
}

// UpdateInfo copies the source info sidecar with recomputed totals and a
// default single train split over the full episode range. A missing source
// sidecar is skipped with a warning.
func (a *Assembler) UpdateInfo(sourceRoot, stagingRoot string, episodes, frames, tasks int) error {
	info, err := a.sidecars.Read(dataset.InfoPath(sourceRoot))
	if err != nil {
		a.logger.Warn("source info sidecar not readable, skipping", "error", err)
		fmt.Fprintf(a.output, "      Warning: source %s not found, not produced\n", dataset.InfoFileName)
		return nil
	}

	info["total_episodes"] = episodes
	info["total_frames"] = frames
	info["total_tasks"] = tasks
	info["splits"] = map[string]any{"train": fmt.Sprintf("0:%d", episodes)}

	if err := a.sidecars.Write(dataset.InfoPath(stagingRoot), info); err != nil {
		return fmt.Errorf("write info sidecar: %w", err)
	}
	return nil
}

// UpdateStats copies the source statistics sidecar, recomputing the episode
// count and passing every other field through unchanged. A missing source
// sidecar is skipped with a warning.
func (a *Assembler) UpdateStats(sourceRoot, stagingRoot string, episodes int) error {
	stats, err := a.sidecars.Read(dataset.StatsPath(sourceRoot))
	if err != nil {
		a.logger.Warn("source stats sidecar not readable, skipping", "error", err)
		fmt.Fprintf(a.output, "      Warning: source %s not found, not produced\n", dataset.StatsFileName)
		return nil
	}

	if _, ok := stats["num_episodes"]; ok {
		stats["num_episodes"] = episodes
	}

	if err := a.sidecars.Write(dataset.StatsPath(stagingRoot), stats); err != nil {
		return fmt.Errorf("write stats sidecar: %w", err)
	}
	return nil
}
