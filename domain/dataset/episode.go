package dataset

// VideoLocation addresses one episode's span inside a camera's video file:
// which physical file (chunk/file indices) and where in its timeline.
type VideoLocation struct {
	ChunkIndex    int64
	FileIndex     int64
	FromTimestamp float64
	ToTimestamp   float64
}

// SourceEpisode is one row of the source dataset's episode metadata table.
// Videos holds per-camera locations keyed by camera name (e.g. "top").
// Extra carries any further columns untouched.
type SourceEpisode struct {
	EpisodeIndex int64
	Tasks        []string
	Length       int64
	Videos       map[string]VideoLocation
	Extra        map[string]any
}

// EpisodeRequest is one row of the human-authored request list. Times are
// seconds relative to the named clip when ClipName is set, otherwise relative
// to the raw dataset.
type EpisodeRequest struct {
	ClipName string
	Range    TimeRange
	Task     string
}

// ResolvedEpisode is an EpisodeRequest mapped back onto the source dataset.
type ResolvedEpisode struct {
	Request  EpisodeRequest
	NewIndex int64

	// OriginalIndex is the episode's identity in the source dataset,
	// recovered from the clip name. -1 when no match was found.
	OriginalIndex int64

	// VideoRanges holds, per camera, the absolute window inside that
	// camera's source video. When the source metadata carried no offset
	// for a camera the raw request times are used instead and Degraded
	// is set.
	VideoRanges map[string]TimeRange
	Degraded    bool
}

// HasOriginal reports whether the request was matched to a source episode.
func (r *ResolvedEpisode) HasOriginal() bool {
	return r.OriginalIndex >= 0
}

// VideoRange returns the absolute source-video window for the camera,
// falling back to the raw request range when the camera is unknown.
func (r *ResolvedEpisode) VideoRange(camera string) TimeRange {
	if tr, ok := r.VideoRanges[camera]; ok {
		return tr
	}
	return r.Request.Range
}

// OutputEpisodeMeta is the new dataset's per-episode metadata record. Video
// offsets are cumulative positions inside the newly concatenated per-camera
// output video, not the source video.
type OutputEpisodeMeta struct {
	EpisodeIndex     int64
	Tasks            []string
	Length           int64
	DataChunkIndex   int64
	DataFileIndex    int64
	DatasetFromIndex int64
	DatasetToIndex   int64
	Videos           map[string]VideoLocation
	Stats            map[string]ColumnStats
}
