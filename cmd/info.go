package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	appextract "robot-dataset-curator/application/extract"
	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/infrastructure/parquet"
	"robot-dataset-curator/infrastructure/sidecar"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <dataset>",
	Short: "Summarize a dataset",
	Long: `Print a summary of a dataset: totals from meta/info.json and a per-episode
table of length, duration and tasks from the episode metadata.

Example:
  robot-dataset-curator info ./towel-folding-v2`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	loader := appextract.NewLoader(parquet.NewFrameStore(), parquet.NewEpisodeStore())
	return RunInfoWithDependencies(loader, sidecar.NewStore(), args[0], os.Stdout)
}

// SidecarReader reads a JSON sidecar document
type SidecarReader interface {
	Read(path string) (map[string]any, error)
}

// RunInfoWithDependencies runs the info command with injected dependencies (for testing)
func RunInfoWithDependencies(loader *appextract.Loader, sidecars SidecarReader, root string, output io.Writer) error {
	if err := appextract.EnsureSourceExists(root); err != nil {
		return err
	}

	episodes, err := loader.LoadSourceEpisodes(root)
	if err != nil {
		return err
	}

	info, err := sidecars.Read(dataset.InfoPath(root))
	if err != nil {
		info = nil
	}

	cameras := cameraSet(episodes)

	summary := table.NewWriter()
	summary.SetOutputMirror(output)
	summary.SetStyle(table.StyleLight)
	summary.AppendRow(table.Row{"Dataset", root})
	summary.AppendRow(table.Row{"Episodes", infoCount(info, "total_episodes", len(episodes))})
	summary.AppendRow(table.Row{"Frames", infoCount(info, "total_frames", sumLengths(episodes))})
	summary.AppendRow(table.Row{"Tasks", infoCount(info, "total_tasks", countTasks(episodes))})
	summary.AppendRow(table.Row{"Cameras", strings.Join(cameras, ", ")})
	summary.Render()

	if len(episodes) == 0 {
		return nil
	}

	fmt.Fprintln(output)
	t := table.NewWriter()
	t.SetOutputMirror(output)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Episode", "Frames", "Duration", "Tasks"})
	for _, ep := range episodes {
		t.AppendRow(table.Row{
			ep.EpisodeIndex,
			ep.Length,
			formatDuration(ep, cameras),
			strings.Join(ep.Tasks, ", "),
		})
	}
	t.Render()
	return nil
}

// formatDuration reports the episode's span in its first camera video.
func formatDuration(ep dataset.SourceEpisode, cameras []string) string {
	for _, camera := range cameras {
		if loc, ok := ep.Videos[camera]; ok {
			return fmt.Sprintf("%.2fs", loc.ToTimestamp-loc.FromTimestamp)
		}
	}
	return "-"
}

func cameraSet(episodes []dataset.SourceEpisode) []string {
	seen := make(map[string]bool)
	for _, ep := range episodes {
		for camera := range ep.Videos {
			seen[camera] = true
		}
	}
	cameras := make([]string, 0, len(seen))
	for camera := range seen {
		cameras = append(cameras, camera)
	}
	sort.Strings(cameras)
	return cameras
}

func sumLengths(episodes []dataset.SourceEpisode) int {
	total := 0
	for _, ep := range episodes {
		total += int(ep.Length)
	}
	return total
}

func countTasks(episodes []dataset.SourceEpisode) int {
	seen := make(map[string]bool)
	for _, ep := range episodes {
		for _, task := range ep.Tasks {
			seen[task] = true
		}
	}
	return len(seen)
}

// infoCount prefers the sidecar's recorded totals over derived counts.
func infoCount(info map[string]any, key string, fallback int) int {
	if info == nil {
		return fallback
	}
	switch v := info[key].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return fallback
}
