package extract

import (
	"fmt"
	"os"
	"path/filepath"

	"robot-dataset-curator/domain/dataset"
)

// Loader reads a source dataset's table and episode metadata files through
// the columnar store ports.
type Loader struct {
	frames   dataset.FrameStore
	episodes dataset.EpisodeStore
}

// NewLoader creates a new dataset loader.
func NewLoader(frames dataset.FrameStore, episodes dataset.EpisodeStore) *Loader {
	return &Loader{frames: frames, episodes: episodes}
}

// LoadFrames reads every per-frame table chunk of the dataset into one
// sequence ordered by timestamp.
func (l *Loader) LoadFrames(root string) ([]dataset.FrameRecord, error) {
	dataDir := dataset.DataDir(root)
	if _, err := os.Stat(dataDir); err != nil {
		return nil, fmt.Errorf("data directory not found: %s", dataDir)
	}

	files, err := chunkedFiles(dataDir, "file-*.parquet")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, dataset.ErrNoData
	}

	var all []dataset.FrameRecord
	for _, f := range files {
		frames, err := l.frames.ReadFrames(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		all = append(all, frames...)
	}

	dataset.SortFramesByTimestamp(all)
	return all, nil
}

// LoadSourceEpisodes reads the dataset's episode metadata table. A missing
// metadata directory is not an error: resolution then degrades to raw
// request times, which the caller reports.
func (l *Loader) LoadSourceEpisodes(root string) ([]dataset.SourceEpisode, error) {
	episodesDir := dataset.EpisodesDir(root)
	if _, err := os.Stat(episodesDir); err != nil {
		return nil, nil
	}

	files, err := chunkedFiles(episodesDir, "file-*.parquet")
	if err != nil {
		return nil, err
	}

	var all []dataset.SourceEpisode
	for _, f := range files {
		episodes, err := l.episodes.ReadEpisodes(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		all = append(all, episodes...)
	}
	return all, nil
}

// DiscoverCameras lists the camera names present under the dataset's videos
// directory, in sorted order.
func DiscoverCameras(root string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, dataset.VideosDirName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var cameras []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if camera, ok := dataset.CameraFromKey(e.Name()); ok {
			cameras = append(cameras, camera)
		}
	}
	return cameras, nil
}

// chunkedFiles globs pattern inside every chunk-* directory of dir, in
// chunk then file order.
func chunkedFiles(dir, pattern string) ([]string, error) {
	chunks, err := filepath.Glob(filepath.Join(dir, "chunk-*"))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, chunkDir := range chunks {
		matches, err := filepath.Glob(filepath.Join(chunkDir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}
