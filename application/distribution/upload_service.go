package distribution

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"robot-dataset-curator/domain/distribution"
)

// UploadService packs curated datasets and uploads them to Google Drive
type UploadService struct {
	driveClient distribution.DriveClient
	folderID    string
	output      io.Writer
}

// NewUploadService creates a new upload service
func NewUploadService(client distribution.DriveClient, folderID string, output io.Writer) *UploadService {
	if output == nil {
		output = io.Discard
	}
	return &UploadService{
		driveClient: client,
		folderID:    folderID,
		output:      output,
	}
}

// UploadDataset archives a dataset directory and uploads it with public link
// sharing. An archive of the same name already in the folder is replaced.
func (s *UploadService) UploadDataset(ctx context.Context, datasetRoot string) (*distribution.UploadResult, error) {
	datasetName := filepath.Base(filepath.Clean(datasetRoot))

	tempDir, err := os.MkdirTemp("", "dataset-archive-")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	archivePath := filepath.Join(tempDir, datasetName+".tar.gz")
	fmt.Fprintf(s.output, "      Packing %s...\n", datasetName)
	size, err := ArchiveDataset(datasetRoot, archivePath)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.output, "      Archive size: %.1f MB\n", float64(size)/1024/1024)

	storage, err := s.driveClient.GetStorageQuota(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage quota: %w", err)
	}
	if !storage.HasSpaceFor(size) {
		return nil, fmt.Errorf("insufficient Drive storage: archive is %.1f MB, %.1f MB available",
			float64(size)/1024/1024, storage.AvailableMB())
	}

	return s.uploadAndShare(ctx, archivePath)
}

// uploadAndShare uploads a file and sets public sharing permissions
func (s *UploadService) uploadAndShare(ctx context.Context, filePath string) (*distribution.UploadResult, error) {
	// Verify file exists
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	fileName := filepath.Base(filePath)

	// Check for existing file with same name and delete if found
	existing, err := s.driveClient.FindFileByName(ctx, s.folderID, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing file: %w", err)
	}
	if existing != nil {
		fmt.Fprintf(s.output, "      Replacing existing %s (%.1f MB)\n", existing.Name, float64(existing.Size)/1024/1024)
		if err := s.driveClient.DeletePermanently(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to delete existing file %s: %w", existing.Name, err)
		}
	}

	req := distribution.UploadRequest{
		LocalPath: filePath,
		FileName:  fileName,
		FolderID:  s.folderID,
		MimeType:  distribution.MimeTypeTarGz,
	}

	result, err := s.driveClient.UploadAndShare(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload and share %s: %w", fileName, err)
	}

	return result, nil
}
