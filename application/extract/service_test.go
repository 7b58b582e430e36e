package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	appvideo "robot-dataset-curator/application/video"
	"robot-dataset-curator/domain/dataset"
)

type mockFrameStore struct {
	frames  []dataset.FrameRecord
	readErr error

	writtenPath   string
	writtenFrames []dataset.FrameRecord
	writeErr      error
}

func (m *mockFrameStore) ReadFrames(path string) ([]dataset.FrameRecord, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	return m.frames, nil
}

func (m *mockFrameStore) WriteFrames(path string, frames []dataset.FrameRecord) error {
	m.writtenPath = path
	m.writtenFrames = frames
	return m.writeErr
}

type mockEpisodeStore struct {
	episodes []dataset.SourceEpisode

	writtenPath    string
	writtenMetas   []dataset.OutputEpisodeMeta
	writtenCameras []string
}

func (m *mockEpisodeStore) ReadEpisodes(path string) ([]dataset.SourceEpisode, error) {
	return m.episodes, nil
}

func (m *mockEpisodeStore) WriteEpisodes(path string, episodes []dataset.OutputEpisodeMeta, cameras []string) error {
	m.writtenPath = path
	m.writtenMetas = episodes
	m.writtenCameras = cameras
	return nil
}

type mockTaskStore struct {
	writtenLabels []string
}

func (m *mockTaskStore) WriteTasks(path string, labels []string) error {
	m.writtenLabels = labels
	return nil
}

type mockSidecarStore struct {
	docs    map[string]map[string]any
	written map[string]map[string]any
}

func newMockSidecarStore() *mockSidecarStore {
	return &mockSidecarStore{
		docs:    make(map[string]map[string]any),
		written: make(map[string]map[string]any),
	}
}

func (m *mockSidecarStore) Read(path string) (map[string]any, error) {
	doc, ok := m.docs[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return doc, nil
}

func (m *mockSidecarStore) Write(path string, doc map[string]any) error {
	m.written[path] = doc
	return nil
}

type mockBuilder struct {
	inputs   []appvideo.CameraBuildInput
	buildFn  func(input appvideo.CameraBuildInput) (*appvideo.CameraBuildResult, error)
	buildErr error
}

func (m *mockBuilder) Build(ctx context.Context, input appvideo.CameraBuildInput) (*appvideo.CameraBuildResult, error) {
	m.inputs = append(m.inputs, input)
	if m.buildErr != nil {
		return nil, m.buildErr
	}
	if m.buildFn != nil {
		return m.buildFn(input)
	}
	offsets := make([]appvideo.EpisodeOffsets, len(input.Episodes))
	for i, ep := range input.Episodes {
		offsets[i] = appvideo.EpisodeOffsets{
			EpisodeIndex: ep.EpisodeIndex,
			Window:       dataset.TimeRange{Start: float64(i) * 10, End: float64(i)*10 + ep.SourceWindow.Duration()},
			Extracted:    true,
		}
	}
	return &appvideo.CameraBuildResult{OutputPath: input.OutputPath, Offsets: offsets}, nil
}

type mockStager struct {
	dir      string
	beginErr error

	began     string
	committed string
	aborted   int
}

func (m *mockStager) Begin(finalPath string) (string, error) {
	if m.beginErr != nil {
		return "", m.beginErr
	}
	m.began = m.dir
	return m.dir, nil
}

func (m *mockStager) Commit(stagingPath, finalPath string) error {
	m.committed = finalPath
	return nil
}

func (m *mockStager) Abort(stagingPath string) {
	m.aborted++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeSourceTree creates the on-disk shape the loader globs over. Content
// is irrelevant because the stores are mocked.
func writeSourceTree(t *testing.T, cameras ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range []string{
		filepath.Join(dataset.DataDir(root), "chunk-000"),
		filepath.Join(dataset.EpisodesDir(root), "chunk-000"),
	} {
		if err := os.MkdirAll(p, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(p, "file-000.parquet"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	for _, camera := range cameras {
		dir := filepath.Join(dataset.CameraVideoDir(root, camera), "chunk-000")
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, "file-000.mp4"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func sourceFrames(episode int64, timestamps ...float64) []dataset.FrameRecord {
	frames := make([]dataset.FrameRecord, len(timestamps))
	for i, ts := range timestamps {
		frames[i] = dataset.FrameRecord{
			EpisodeIndex: episode,
			FrameIndex:   int64(i),
			Timestamp:    ts,
			Index:        int64(i),
			Payload:      map[string]any{"action": []float64{ts}},
		}
	}
	return frames
}

func newTestService(frames *mockFrameStore, episodes *mockEpisodeStore, tasks *mockTaskStore, sidecars *mockSidecarStore, builder *mockBuilder, stager *mockStager) *Service {
	logger := discardLogger()
	loader := NewLoader(frames, episodes)
	assembler := NewAssembler(frames, episodes, tasks, sidecars, logger, io.Discard)
	return NewService(loader, assembler, builder, stager, logger, &bytes.Buffer{})
}

func TestServiceRun(t *testing.T) {
	source := writeSourceTree(t, "front")

	frames := &mockFrameStore{}
	frames.frames = append(sourceFrames(2, 0, 1, 2, 3), sourceFrames(5, 0, 1, 2)...)
	episodes := &mockEpisodeStore{
		episodes: []dataset.SourceEpisode{
			{EpisodeIndex: 2, Videos: map[string]dataset.VideoLocation{
				"front": {FromTimestamp: 100, ToTimestamp: 104},
			}},
			{EpisodeIndex: 5, Videos: map[string]dataset.VideoLocation{
				"front": {FromTimestamp: 200, ToTimestamp: 203},
			}},
		},
	}
	tasks := &mockTaskStore{}
	sidecars := newMockSidecarStore()
	sidecars.docs[dataset.InfoPath(source)] = map[string]any{
		"codebase_version": "v3.0",
		"fps":              30,
	}
	sidecars.docs[dataset.StatsPath(source)] = map[string]any{"num_episodes": 9}
	builder := &mockBuilder{}
	stager := &mockStager{dir: t.TempDir()}

	svc := newTestService(frames, episodes, tasks, sidecars, builder, stager)
	result, err := svc.Run(context.Background(), Input{
		SourceRoot: source,
		OutputRoot: filepath.Join(t.TempDir(), "out"),
		Requests: []dataset.EpisodeRequest{
			{ClipName: "episode_002.mp4", Range: dataset.TimeRange{Start: 1, End: 3}, Task: "fold towel"},
			{ClipName: "episode_005.mp4", Range: dataset.TimeRange{Start: 0, End: 2}, Task: "fold towel"},
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Episodes != 2 || result.Frames != 4 || result.Tasks != 1 {
		t.Errorf("result = %d episodes, %d frames, %d tasks, want 2, 4, 1",
			result.Episodes, result.Frames, result.Tasks)
	}
	if len(result.Dropped) != 0 || len(result.FailedCameras) != 0 {
		t.Errorf("unexpected drops %v or failed cameras %v", result.Dropped, result.FailedCameras)
	}

	// Renumbered table: episode 2 frames [1,3) then episode 5 frames [0,2).
	if len(frames.writtenFrames) != 4 {
		t.Fatalf("wrote %d frames, want 4", len(frames.writtenFrames))
	}
	wantEpisode := []int64{0, 0, 1, 1}
	wantIndex := []int64{0, 1, 2, 3}
	wantTimestamp := []float64{0, 1, 0, 1}
	for i, f := range frames.writtenFrames {
		if f.EpisodeIndex != wantEpisode[i] || f.Index != wantIndex[i] || f.Timestamp != wantTimestamp[i] {
			t.Errorf("frame %d = (ep %d, idx %d, ts %v), want (ep %d, idx %d, ts %v)",
				i, f.EpisodeIndex, f.Index, f.Timestamp, wantEpisode[i], wantIndex[i], wantTimestamp[i])
		}
	}

	// Builder receives absolute windows shifted by the recorded video start.
	if len(builder.inputs) != 1 {
		t.Fatalf("builder called %d times, want 1", len(builder.inputs))
	}
	got := builder.inputs[0].Episodes[0].SourceWindow
	if got.Start != 101 || got.End != 103 {
		t.Errorf("episode 0 source window = %v, want [101.00, 103.00)", got)
	}

	// Episode metadata carries the rebased offsets from the builder.
	if len(episodes.writtenMetas) != 2 {
		t.Fatalf("wrote %d episode metas, want 2", len(episodes.writtenMetas))
	}
	loc := episodes.writtenMetas[1].Videos["front"]
	if loc.FromTimestamp != 10 {
		t.Errorf("episode 1 from_timestamp = %v, want 10", loc.FromTimestamp)
	}
	if episodes.writtenMetas[1].DatasetFromIndex != 2 || episodes.writtenMetas[1].DatasetToIndex != 4 {
		t.Errorf("episode 1 dataset range = [%d, %d), want [2, 4)",
			episodes.writtenMetas[1].DatasetFromIndex, episodes.writtenMetas[1].DatasetToIndex)
	}

	if len(tasks.writtenLabels) != 1 || tasks.writtenLabels[0] != "fold towel" {
		t.Errorf("task labels = %v, want [fold towel]", tasks.writtenLabels)
	}

	info := sidecars.written[dataset.InfoPath(stager.dir)]
	if info == nil {
		t.Fatal("info sidecar not written")
	}
	if info["total_episodes"] != 2 || info["total_frames"] != 4 {
		t.Errorf("info totals = %v/%v, want 2/4", info["total_episodes"], info["total_frames"])
	}
	splits, _ := info["splits"].(map[string]any)
	if splits["train"] != "0:2" {
		t.Errorf("train split = %v, want 0:2", splits["train"])
	}
	stats := sidecars.written[dataset.StatsPath(stager.dir)]
	if stats == nil || stats["num_episodes"] != 2 {
		t.Errorf("stats sidecar = %v, want num_episodes 2", stats)
	}

	if stager.committed == "" {
		t.Error("staged dataset was not published")
	}
}

func TestServiceRunDropsEmptyRequests(t *testing.T) {
	source := writeSourceTree(t, "front")

	frames := &mockFrameStore{frames: sourceFrames(0, 0, 1, 2)}
	episodes := &mockEpisodeStore{}
	tasks := &mockTaskStore{}
	stager := &mockStager{dir: t.TempDir()}
	svc := newTestService(frames, episodes, tasks, newMockSidecarStore(), &mockBuilder{}, stager)

	result, err := svc.Run(context.Background(), Input{
		SourceRoot: source,
		OutputRoot: filepath.Join(t.TempDir(), "out"),
		Requests: []dataset.EpisodeRequest{
			{Range: dataset.TimeRange{Start: 50, End: 60}, Task: "open drawer"},
			{Range: dataset.TimeRange{Start: 0, End: 2}, Task: "pick cup"},
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Episodes != 1 {
		t.Errorf("episodes = %d, want 1", result.Episodes)
	}
	if len(result.Dropped) != 1 || result.Dropped[0] != 0 {
		t.Errorf("dropped = %v, want [0]", result.Dropped)
	}
	// The surviving request takes index 0 despite being the second row.
	if len(episodes.writtenMetas) != 1 || episodes.writtenMetas[0].EpisodeIndex != 0 {
		t.Errorf("written metas = %+v, want one episode with index 0", episodes.writtenMetas)
	}
	// The dropped request's task never reaches the registry: only the
	// surviving "pick cup" is written, at index 0.
	if result.Tasks != 1 {
		t.Errorf("tasks = %d, want 1", result.Tasks)
	}
	if len(tasks.writtenLabels) != 1 || tasks.writtenLabels[0] != "pick cup" {
		t.Errorf("task table = %v, want [pick cup]", tasks.writtenLabels)
	}
	for i, f := range frames.writtenFrames {
		if f.TaskIndex != 0 {
			t.Errorf("frame %d task_index = %d, want 0", i, f.TaskIndex)
		}
	}
}

func TestServiceRunAllRequestsEmpty(t *testing.T) {
	source := writeSourceTree(t, "front")

	frames := &mockFrameStore{frames: sourceFrames(0, 0, 1)}
	stager := &mockStager{dir: t.TempDir()}
	svc := newTestService(frames, &mockEpisodeStore{}, &mockTaskStore{}, newMockSidecarStore(), &mockBuilder{}, stager)

	_, err := svc.Run(context.Background(), Input{
		SourceRoot: source,
		OutputRoot: filepath.Join(t.TempDir(), "out"),
		Requests: []dataset.EpisodeRequest{
			{Range: dataset.TimeRange{Start: 90, End: 99}, Task: "wave"},
		},
	})
	if !errors.Is(err, dataset.ErrNoEpisodes) {
		t.Errorf("Run() error = %v, want ErrNoEpisodes", err)
	}
	if stager.began != "" {
		t.Error("staging began before any episode survived")
	}
}

func TestServiceRunCameraFailureKeepsFallbackOffsets(t *testing.T) {
	source := writeSourceTree(t, "front")

	frames := &mockFrameStore{frames: sourceFrames(0, 0, 1, 2)}
	episodes := &mockEpisodeStore{
		episodes: []dataset.SourceEpisode{
			{EpisodeIndex: 0, Videos: map[string]dataset.VideoLocation{
				"front": {FromTimestamp: 40, ToTimestamp: 43},
			}},
		},
	}
	builder := &mockBuilder{buildErr: errors.New("concat failed")}
	stager := &mockStager{dir: t.TempDir()}
	svc := newTestService(frames, episodes, &mockTaskStore{}, newMockSidecarStore(), builder, stager)

	result, err := svc.Run(context.Background(), Input{
		SourceRoot: source,
		OutputRoot: filepath.Join(t.TempDir(), "out"),
		Requests: []dataset.EpisodeRequest{
			{ClipName: "episode_000.mp4", Range: dataset.TimeRange{Start: 1, End: 3}, Task: "wipe table"},
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.FailedCameras) != 1 || result.FailedCameras[0] != "front" {
		t.Errorf("failed cameras = %v, want [front]", result.FailedCameras)
	}
	// Fallback offsets are the absolute source window.
	loc := episodes.writtenMetas[0].Videos["front"]
	if loc.FromTimestamp != 41 || loc.ToTimestamp != 43 {
		t.Errorf("fallback offsets = [%v, %v), want [41, 43)", loc.FromTimestamp, loc.ToTimestamp)
	}
	if stager.committed == "" {
		t.Error("run should still publish when a camera fails")
	}
}

func TestServiceRunMissingDataDir(t *testing.T) {
	svc := newTestService(&mockFrameStore{}, &mockEpisodeStore{}, &mockTaskStore{}, newMockSidecarStore(), &mockBuilder{}, &mockStager{dir: t.TempDir()})

	_, err := svc.Run(context.Background(), Input{
		SourceRoot: t.TempDir(),
		OutputRoot: filepath.Join(t.TempDir(), "out"),
		Requests:   []dataset.EpisodeRequest{{Range: dataset.TimeRange{Start: 0, End: 1}, Task: "t"}},
	})
	if err == nil {
		t.Fatal("Run() expected error for missing data directory")
	}
}
