package extract

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"robot-dataset-curator/domain/dataset"
)

type pathFrameStore struct {
	byPath map[string][]dataset.FrameRecord
	reads  []string
}

func (s *pathFrameStore) ReadFrames(path string) ([]dataset.FrameRecord, error) {
	s.reads = append(s.reads, path)
	return s.byPath[path], nil
}

func (s *pathFrameStore) WriteFrames(path string, frames []dataset.FrameRecord) error {
	return nil
}

type pathEpisodeStore struct {
	byPath map[string][]dataset.SourceEpisode
	reads  []string
}

func (s *pathEpisodeStore) ReadEpisodes(path string) ([]dataset.SourceEpisode, error) {
	s.reads = append(s.reads, path)
	return s.byPath[path], nil
}

func (s *pathEpisodeStore) WriteEpisodes(path string, episodes []dataset.OutputEpisodeMeta, cameras []string) error {
	return nil
}

// touchChunkFile creates an empty placeholder at dir/chunk-CCC/file-FFF.parquet.
func touchChunkFile(t *testing.T, dir string, chunk, file int64) string {
	t.Helper()
	path := dataset.ChunkFilePath(dir, chunk, file, ".parquet")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFramesMergesChunksInOrder(t *testing.T) {
	root := t.TempDir()
	dataDir := dataset.DataDir(root)
	first := touchChunkFile(t, dataDir, 0, 0)
	second := touchChunkFile(t, dataDir, 0, 1)
	third := touchChunkFile(t, dataDir, 1, 0)

	frames := &pathFrameStore{byPath: map[string][]dataset.FrameRecord{
		// Timestamps deliberately out of order across chunks.
		first:  {{EpisodeIndex: 0, Timestamp: 5}},
		second: {{EpisodeIndex: 0, Timestamp: 1}},
		third:  {{EpisodeIndex: 1, Timestamp: 3}},
	}}
	loader := NewLoader(frames, &pathEpisodeStore{})

	got, err := loader.LoadFrames(root)
	if err != nil {
		t.Fatalf("LoadFrames() error = %v", err)
	}

	if want := []string{first, second, third}; !reflect.DeepEqual(frames.reads, want) {
		t.Errorf("read order = %v, want %v", frames.reads, want)
	}
	timestamps := make([]float64, len(got))
	for i, f := range got {
		timestamps[i] = f.Timestamp
	}
	if want := []float64{1, 3, 5}; !reflect.DeepEqual(timestamps, want) {
		t.Errorf("timestamps = %v, want sorted %v", timestamps, want)
	}
}

func TestLoadFramesMissingDataDir(t *testing.T) {
	loader := NewLoader(&pathFrameStore{}, &pathEpisodeStore{})
	if _, err := loader.LoadFrames(t.TempDir()); err == nil {
		t.Fatal("expected error for missing data directory")
	}
}

func TestLoadFramesEmptyDataDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(dataset.DataDir(root), 0o755); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(&pathFrameStore{}, &pathEpisodeStore{})
	if _, err := loader.LoadFrames(root); err != dataset.ErrNoData {
		t.Fatalf("error = %v, want ErrNoData", err)
	}
}

func TestLoadSourceEpisodesMissingDirIsNotAnError(t *testing.T) {
	loader := NewLoader(&pathFrameStore{}, &pathEpisodeStore{})
	episodes, err := loader.LoadSourceEpisodes(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSourceEpisodes() error = %v", err)
	}
	if episodes != nil {
		t.Errorf("expected nil episodes, got %v", episodes)
	}
}

func TestLoadSourceEpisodes(t *testing.T) {
	root := t.TempDir()
	path := touchChunkFile(t, dataset.EpisodesDir(root), 0, 0)

	episodes := &pathEpisodeStore{byPath: map[string][]dataset.SourceEpisode{
		path: {{EpisodeIndex: 0, Length: 10}, {EpisodeIndex: 1, Length: 20}},
	}}
	loader := NewLoader(&pathFrameStore{}, episodes)

	got, err := loader.LoadSourceEpisodes(root)
	if err != nil {
		t.Fatalf("LoadSourceEpisodes() error = %v", err)
	}
	if len(got) != 2 || got[1].Length != 20 {
		t.Errorf("episodes = %v", got)
	}
}

func TestDiscoverCameras(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"observation.images.top",
		"observation.images.wrist.left",
		"not-a-camera",
	} {
		if err := os.MkdirAll(filepath.Join(root, dataset.VideosDirName, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	cameras, err := DiscoverCameras(root)
	if err != nil {
		t.Fatalf("DiscoverCameras() error = %v", err)
	}
	if want := []string{"top", "wrist.left"}; !reflect.DeepEqual(cameras, want) {
		t.Errorf("cameras = %v, want %v", cameras, want)
	}
}

func TestDiscoverCamerasNoVideosDir(t *testing.T) {
	cameras, err := DiscoverCameras(t.TempDir())
	if err != nil {
		t.Fatalf("DiscoverCameras() error = %v", err)
	}
	if cameras != nil {
		t.Errorf("expected nil, got %v", cameras)
	}
}
