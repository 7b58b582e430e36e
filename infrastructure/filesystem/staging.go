package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Stager stages an output dataset next to its final location and publishes
// it with a rename, so readers never observe a half-written tree. A lock file
// beside the final path keeps two runs from publishing over each other.
type Stager struct {
	lock *flock.Flock
}

// NewStager creates a new staging manager
func NewStager() *Stager {
	return &Stager{}
}

// Begin creates the staging directory for finalPath and takes the run lock.
// Staging lives in the same parent directory so the final rename stays on
// one filesystem.
func (s *Stager) Begin(finalPath string) (string, error) {
	parent := filepath.Dir(finalPath)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return "", fmt.Errorf("create output parent directory: %w", err)
	}

	lock := flock.New(filepath.Join(parent, "."+filepath.Base(finalPath)+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return "", fmt.Errorf("another run is writing %s", finalPath)
	}
	s.lock = lock

	staging := filepath.Join(parent, fmt.Sprintf(".%s.staging-%s", filepath.Base(finalPath), uuid.NewString()[:8]))
	if err := os.MkdirAll(staging, 0755); err != nil {
		s.unlock()
		return "", fmt.Errorf("create staging directory: %w", err)
	}
	return staging, nil
}

// Commit publishes the staged tree at finalPath. An existing tree at
// finalPath is replaced.
func (s *Stager) Commit(stagingPath, finalPath string) error {
	defer s.unlock()

	if _, err := os.Stat(finalPath); err == nil {
		if err := os.RemoveAll(finalPath); err != nil {
			return fmt.Errorf("remove previous output: %w", err)
		}
	}
	if err := os.Rename(stagingPath, finalPath); err != nil {
		return fmt.Errorf("publish dataset: %w", err)
	}
	return nil
}

// Abort discards the staged tree. Calling Abort after Commit is a no-op
// because the staging path no longer exists.
func (s *Stager) Abort(stagingPath string) {
	if stagingPath != "" {
		os.RemoveAll(stagingPath)
	}
	s.unlock()
}

func (s *Stager) unlock() {
	if s.lock != nil {
		s.lock.Unlock()
		s.lock = nil
	}
}
