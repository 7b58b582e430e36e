package dataset

import "sort"

// Reserved column names of the per-frame table. Every other column is treated
// as payload and passed through unmodified.
const (
	ColEpisodeIndex = "episode_index"
	ColFrameIndex   = "frame_index"
	ColTimestamp    = "timestamp"
	ColIndex        = "index"
	ColTaskIndex    = "task_index"
)

// FrameRecord is one row of the per-frame table.
//
// Timestamp is episode-relative: it starts at 0 for every episode. Index is
// the globally unique row ordinal across the whole dataset.
type FrameRecord struct {
	EpisodeIndex int64
	FrameIndex   int64
	Timestamp    float64
	Index        int64
	TaskIndex    int64
	Payload      map[string]any
}

// IsReservedColumn reports whether name is one of the fixed table columns
// managed by the pipeline rather than payload.
func IsReservedColumn(name string) bool {
	switch name {
	case ColEpisodeIndex, ColFrameIndex, ColTimestamp, ColIndex, ColTaskIndex:
		return true
	}
	return false
}

// SortFramesByTimestamp orders frames by their timestamp, preserving the
// relative order of equal timestamps.
func SortFramesByTimestamp(frames []FrameRecord) {
	sort.SliceStable(frames, func(i, j int) bool {
		return frames[i].Timestamp < frames[j].Timestamp
	})
}

// PayloadColumns returns the sorted set of payload column names present in
// any of the given frames.
func PayloadColumns(frames []FrameRecord) []string {
	seen := make(map[string]struct{})
	for _, f := range frames {
		for name := range f.Payload {
			seen[name] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for name := range seen {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}
