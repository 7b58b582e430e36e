package parquet

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"robot-dataset-curator/domain/dataset"
)

// Episode metadata column names. Per-camera and per-statistic columns are
// flat leaves whose names encode the nesting with slashes, matching the
// on-disk convention of the source datasets.
const (
	colEpisodeIndex     = "episode_index"
	colTasks            = "tasks"
	colLength           = "length"
	colDataChunkIndex   = "data/chunk_index"
	colDataFileIndex    = "data/file_index"
	colDatasetFromIndex = "dataset_from_index"
	colDatasetToIndex   = "dataset_to_index"

	videoColPrefix = dataset.VideosDirName + "/"
	statsColPrefix = "stats/"

	fieldChunkIndex    = "chunk_index"
	fieldFileIndex     = "file_index"
	fieldFromTimestamp = "from_timestamp"
	fieldToTimestamp   = "to_timestamp"
)

// EpisodeStore implements dataset.EpisodeStore on parquet files
type EpisodeStore struct{}

// NewEpisodeStore creates a new parquet-backed episode metadata store
func NewEpisodeStore() *EpisodeStore {
	return &EpisodeStore{}
}

// ReadEpisodes reads a source dataset's episode metadata file.
func (s *EpisodeStore) ReadEpisodes(path string) ([]dataset.SourceEpisode, error) {
	rows, err := readAllRows(path)
	if err != nil {
		return nil, err
	}

	episodes := make([]dataset.SourceEpisode, 0, len(rows))
	for _, row := range rows {
		episodes = append(episodes, episodeFromRow(row))
	}
	return episodes, nil
}

func episodeFromRow(row map[string]any) dataset.SourceEpisode {
	ep := dataset.SourceEpisode{
		Videos: make(map[string]dataset.VideoLocation),
		Extra:  make(map[string]any),
	}

	for name, value := range row {
		switch name {
		case colEpisodeIndex:
			ep.EpisodeIndex = asInt64(value)
		case colLength:
			ep.Length = asInt64(value)
		case colTasks:
			ep.Tasks = asStrings(value)
		default:
			if camera, field, ok := splitVideoColumn(name); ok {
				loc := ep.Videos[camera]
				switch field {
				case fieldChunkIndex:
					loc.ChunkIndex = asInt64(value)
				case fieldFileIndex:
					loc.FileIndex = asInt64(value)
				case fieldFromTimestamp:
					loc.FromTimestamp, _ = asFloat64(value)
				case fieldToTimestamp:
					loc.ToTimestamp, _ = asFloat64(value)
				}
				ep.Videos[camera] = loc
				continue
			}
			ep.Extra[name] = normalizeValue(value)
		}
	}
	return ep
}

// splitVideoColumn decomposes "videos/<camera key>/<field>" column names.
func splitVideoColumn(name string) (camera, field string, ok bool) {
	if !strings.HasPrefix(name, videoColPrefix) {
		return "", "", false
	}
	rest := name[len(videoColPrefix):]
	key, field, found := strings.Cut(rest, "/")
	if !found {
		return "", "", false
	}
	camera, ok = dataset.CameraFromKey(key)
	if !ok {
		return "", "", false
	}
	return camera, field, true
}

// WriteEpisodes writes output episode metadata as one parquet file. cameras
// fixes the per-camera column set; the statistics column set is the union
// over all episodes so every row deconstructs against one schema.
func (s *EpisodeStore) WriteEpisodes(path string, episodes []dataset.OutputEpisodeMeta, cameras []string) error {
	if len(episodes) == 0 {
		return fmt.Errorf("no episodes to write")
	}

	statCols := statColumns(episodes)
	schema := episodeSchema(cameras, statCols)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := parquet.NewWriter(f, schema)
	for i, ep := range episodes {
		row := schema.Deconstruct(nil, episodeToMap(ep, cameras, statCols))
		if _, err := w.WriteRows([]parquet.Row{row}); err != nil {
			return fmt.Errorf("write episode %d: %w", i, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close writer: %w", err)
	}
	return f.Close()
}

func episodeSchema(cameras []string, statCols []string) *parquet.Schema {
	group := parquet.Group{
		colEpisodeIndex:     parquet.Int(64),
		colTasks:            parquet.List(parquet.String()),
		colLength:           parquet.Int(64),
		colDataChunkIndex:   parquet.Int(64),
		colDataFileIndex:    parquet.Int(64),
		colDatasetFromIndex: parquet.Int(64),
		colDatasetToIndex:   parquet.Int(64),
	}
	for _, camera := range cameras {
		group[dataset.EpisodeMetaColumn(camera, fieldChunkIndex)] = parquet.Int(64)
		group[dataset.EpisodeMetaColumn(camera, fieldFileIndex)] = parquet.Int(64)
		group[dataset.EpisodeMetaColumn(camera, fieldFromTimestamp)] = parquet.Leaf(parquet.DoubleType)
		group[dataset.EpisodeMetaColumn(camera, fieldToTimestamp)] = parquet.Leaf(parquet.DoubleType)
	}
	for _, col := range statCols {
		group[col] = parquet.Optional(parquet.List(parquet.Leaf(parquet.DoubleType)))
	}
	return parquet.NewSchema("episode", group)
}

// statColumns returns the sorted union of statistics column names across
// all episodes.
func statColumns(episodes []dataset.OutputEpisodeMeta) []string {
	seen := make(map[string]struct{})
	for _, ep := range episodes {
		for col := range ep.Stats {
			for _, agg := range []string{"min", "max", "mean", "std"} {
				seen[statsColPrefix+col+"/"+agg] = struct{}{}
			}
		}
	}
	cols := make([]string, 0, len(seen))
	for col := range seen {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func episodeToMap(ep dataset.OutputEpisodeMeta, cameras []string, statCols []string) map[string]any {
	m := map[string]any{
		colEpisodeIndex:     ep.EpisodeIndex,
		colTasks:            ep.Tasks,
		colLength:           ep.Length,
		colDataChunkIndex:   ep.DataChunkIndex,
		colDataFileIndex:    ep.DataFileIndex,
		colDatasetFromIndex: ep.DatasetFromIndex,
		colDatasetToIndex:   ep.DatasetToIndex,
	}
	for _, camera := range cameras {
		loc := ep.Videos[camera]
		m[dataset.EpisodeMetaColumn(camera, fieldChunkIndex)] = loc.ChunkIndex
		m[dataset.EpisodeMetaColumn(camera, fieldFileIndex)] = loc.FileIndex
		m[dataset.EpisodeMetaColumn(camera, fieldFromTimestamp)] = loc.FromTimestamp
		m[dataset.EpisodeMetaColumn(camera, fieldToTimestamp)] = loc.ToTimestamp
	}
	for _, col := range statCols {
		m[col] = statValue(ep.Stats, col)
	}
	return m
}

// statValue resolves one "stats/<column>/<aggregate>" cell, nil when the
// episode has no statistics for that column.
func statValue(stats map[string]dataset.ColumnStats, col string) any {
	rest := strings.TrimPrefix(col, statsColPrefix)
	idx := strings.LastIndex(rest, "/")
	if idx < 0 {
		return nil
	}
	name, agg := rest[:idx], rest[idx+1:]
	cs, ok := stats[name]
	if !ok {
		return nil
	}
	switch agg {
	case "min":
		return cs.Min
	case "max":
		return cs.Max
	case "mean":
		return cs.Mean
	case "std":
		return cs.Std
	}
	return nil
}

// Ensure EpisodeStore implements dataset.EpisodeStore
var _ dataset.EpisodeStore = (*EpisodeStore)(nil)
