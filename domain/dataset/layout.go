package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Directory layout of a dataset, shared by source and output.
const (
	DataDirName     = "data"
	MetaDirName     = "meta"
	EpisodesDirName = "episodes"
	VideosDirName   = "videos"

	TasksFileName = "tasks.parquet"
	InfoFileName  = "info.json"
	StatsFileName = "stats.json"

	// CameraKeyPrefix prefixes camera names in video directory names and
	// in episode metadata columns.
	CameraKeyPrefix = "observation.images."
)

// DataDir returns the per-frame table directory of a dataset root.
func DataDir(root string) string {
	return filepath.Join(root, DataDirName)
}

// EpisodesDir returns the episode metadata directory.
func EpisodesDir(root string) string {
	return filepath.Join(root, MetaDirName, EpisodesDirName)
}

// TasksPath returns the task table path.
func TasksPath(root string) string {
	return filepath.Join(root, MetaDirName, TasksFileName)
}

// InfoPath returns the info sidecar path.
func InfoPath(root string) string {
	return filepath.Join(root, MetaDirName, InfoFileName)
}

// StatsPath returns the statistics sidecar path.
func StatsPath(root string) string {
	return filepath.Join(root, MetaDirName, StatsFileName)
}

// CameraKey returns the feature key for a camera, e.g. "observation.images.top".
func CameraKey(camera string) string {
	return CameraKeyPrefix + camera
}

// CameraFromKey extracts the camera name from a feature key, returning false
// when the key does not name a camera stream.
func CameraFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, CameraKeyPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, CameraKeyPrefix), true
}

// CameraVideoDir returns the video directory for a camera.
func CameraVideoDir(root, camera string) string {
	return filepath.Join(root, VideosDirName, CameraKey(camera))
}

// ChunkDirName formats a chunk directory name, e.g. "chunk-000".
func ChunkDirName(chunk int64) string {
	return fmt.Sprintf("chunk-%03d", chunk)
}

// FileName formats a chunk file name with the given extension,
// e.g. "file-000.parquet".
func FileName(file int64, ext string) string {
	return fmt.Sprintf("file-%03d%s", file, ext)
}

// ChunkFilePath builds a full chunked file path under dir.
func ChunkFilePath(dir string, chunk, file int64, ext string) string {
	return filepath.Join(dir, ChunkDirName(chunk), FileName(file, ext))
}

// EpisodeMetaColumn builds an episode metadata column name for a camera
// field, e.g. "videos/observation.images.top/from_timestamp".
func EpisodeMetaColumn(camera, field string) string {
	return VideosDirName + "/" + CameraKey(camera) + "/" + field
}
