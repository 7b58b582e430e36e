package distribution

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ArchiveDataset packs a dataset tree into a .tar.gz at archivePath. Entry
// names are rooted at the dataset's base name so the archive unpacks into a
// single directory.
func ArchiveDataset(datasetRoot, archivePath string) (int64, error) {
	info, err := os.Stat(datasetRoot)
	if err != nil {
		return 0, fmt.Errorf("dataset not found: %s", datasetRoot)
	}
	if !info.IsDir() {
		return 0, fmt.Errorf("%s is not a directory", datasetRoot)
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return 0, fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)

	base := filepath.Base(datasetRoot)
	walkErr := filepath.Walk(datasetRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(datasetRoot, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(base, rel))

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = name
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(tw, src)
		return err
	})
	if walkErr != nil {
		tw.Close()
		gw.Close()
		return 0, fmt.Errorf("archive %s: %w", datasetRoot, walkErr)
	}

	if err := tw.Close(); err != nil {
		return 0, fmt.Errorf("finish archive: %w", err)
	}
	if err := gw.Close(); err != nil {
		return 0, fmt.Errorf("finish compression: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close archive: %w", err)
	}

	stat, err := os.Stat(archivePath)
	if err != nil {
		return 0, err
	}
	return stat.Size(), nil
}
