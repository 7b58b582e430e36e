package dataset

// FrameStore reads and writes per-frame table files. The concrete columnar
// format lives behind this port.
type FrameStore interface {
	ReadFrames(path string) ([]FrameRecord, error)
	WriteFrames(path string, frames []FrameRecord) error
}

// EpisodeStore reads source episode metadata files and writes output episode
// metadata files. cameras fixes the column set so every row carries the same
// per-camera fields.
type EpisodeStore interface {
	ReadEpisodes(path string) ([]SourceEpisode, error)
	WriteEpisodes(path string, episodes []OutputEpisodeMeta, cameras []string) error
}

// TaskStore persists the task label table.
type TaskStore interface {
	WriteTasks(path string, labels []string) error
}
