package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appdist "robot-dataset-curator/application/distribution"
	"robot-dataset-curator/domain/distribution"
	"robot-dataset-curator/infrastructure/drive"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <dataset>",
	Short: "Package a dataset and upload it to Google Drive",
	Long: `Package a curated dataset as a tar.gz archive and upload it to the
configured Google Drive folder with public link sharing.

An archive of the same name already in the folder is replaced. The shareable
link is printed for use with the notify command.

Example:
  robot-dataset-curator upload ./towel-folding-v2`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; run 'robot-dataset-curator setup' first")
	}
	if cfg.Google.DatasetsFolderID == "" {
		return fmt.Errorf("google.datasets_folder_id is not configured")
	}

	ctx := cmd.Context()
	client, err := drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
	})
	if err != nil {
		return fmt.Errorf("failed to create Google Drive client: %w", err)
	}

	return RunUploadWithDependencies(ctx, client, cfg.Google.DatasetsFolderID, args[0], os.Stdout)
}

// RunUploadWithDependencies runs the upload command with injected dependencies (for testing)
func RunUploadWithDependencies(
	ctx context.Context,
	driveClient distribution.DriveClient,
	folderID string,
	datasetRoot string,
	output io.Writer,
) error {
	service := appdist.NewUploadService(driveClient, folderID, output)

	fmt.Fprintf(output, "Uploading dataset %s...\n", filepath.Base(datasetRoot))
	result, err := service.UploadDataset(ctx, datasetRoot)
	if err != nil {
		return fmt.Errorf("dataset upload failed: %w", err)
	}

	fmt.Fprintf(output, "Dataset uploaded successfully!\n")
	fmt.Fprintf(output, "  File ID: %s\n", result.FileID)
	fmt.Fprintf(output, "  Size: %.2f MB\n", float64(result.Size)/1024/1024)
	fmt.Fprintf(output, "  Shareable URL: %s\n", result.ShareableURL)
	return nil
}
