package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appnotif "robot-dataset-curator/application/notification"
	"robot-dataset-curator/domain/dataset"
	"robot-dataset-curator/domain/notification"
	"robot-dataset-curator/infrastructure/config"
	"robot-dataset-curator/infrastructure/gmail"
	"robot-dataset-curator/infrastructure/sidecar"

	"github.com/spf13/cobra"
)

var (
	notifyTo         []string
	notifyArchiveURL string
)

var notifyCmd = &cobra.Command{
	Use:   "notify <dataset>",
	Short: "Send an email announcing a curated dataset",
	Long: `Send an email notification announcing a curated dataset, with its episode,
frame and task counts and the Google Drive download link.

Counts are read from the dataset's meta/info.json. Recipients can be given by
name (first name, last name, or full name) or by their config key; multiple
recipients can be given with repeated --to flags or comma-separated values.

Examples:
  robot-dataset-curator notify ./towel-folding-v2 --to jordan \
    --archive-url "https://drive.google.com/..."

  robot-dataset-curator notify ./towel-folding-v2 --to "jordan,sam" --archive-url "https://..."`,
	Args: cobra.ExactArgs(1),
	RunE: runNotify,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.Flags().StringArrayVar(&notifyTo, "to", nil, "Recipient(s) by name or config key (can be repeated or comma-separated)")
	notifyCmd.Flags().StringVar(&notifyArchiveURL, "archive-url", "", "Google Drive URL of the uploaded archive (required)")

	notifyCmd.MarkFlagRequired("to")
	notifyCmd.MarkFlagRequired("archive-url")
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("configuration not loaded; run 'robot-dataset-curator setup' first")
	}

	lookup := config.NewRecipientLookup(cfg)
	recipients, err := lookup.LookupRecipients(notifyTo)
	if err != nil {
		return fmt.Errorf("failed to lookup recipients: %w", err)
	}
	ccRecipients := lookup.DefaultCC()

	ctx := cmd.Context()
	from := notification.Recipient{
		Name:    cfg.Email.FromName,
		Address: cfg.Email.FromAddress,
	}
	gmailClient, err := gmail.NewClientWithOAuth(ctx, gmail.OAuthConfig{
		CredentialsFile: cfg.Google.CredentialsFile,
		TokenFile:       cfg.Google.TokenFile,
	}, from)
	if err != nil {
		return fmt.Errorf("failed to create Gmail client: %w", err)
	}

	return RunNotifyWithDependencies(ctx, gmailClient, sidecar.NewStore(), NotifyInput{
		DatasetRoot: args[0],
		SenderName:  cfg.Email.FromName,
		To:          recipients,
		CC:          ccRecipients,
		ArchiveURL:  notifyArchiveURL,
	}, os.Stdout)
}

// NotifyInput contains the input parameters for the notify command
type NotifyInput struct {
	DatasetRoot string
	SenderName  string
	To          []notification.Recipient
	CC          []notification.Recipient
	ArchiveURL  string
}

// RunNotifyWithDependencies runs the notify command with injected dependencies (for testing)
func RunNotifyWithDependencies(
	ctx context.Context,
	sender notification.EmailSender,
	sidecars SidecarReader,
	input NotifyInput,
	output io.Writer,
) error {
	info, err := sidecars.Read(dataset.InfoPath(input.DatasetRoot))
	if err != nil {
		return fmt.Errorf("failed to read dataset info: %w", err)
	}

	datasetName := filepath.Base(filepath.Clean(input.DatasetRoot))
	episodes := infoCount(info, "total_episodes", 0)
	frames := infoCount(info, "total_frames", 0)
	tasks := infoCount(info, "total_tasks", 0)

	toNames := make([]string, len(input.To))
	for i, r := range input.To {
		toNames[i] = fmt.Sprintf("%s <%s>", r.Name, r.Address)
	}
	fmt.Fprintf(output, "Sending notification to: %s\n", strings.Join(toNames, ", "))
	if len(input.CC) > 0 {
		ccNames := make([]string, len(input.CC))
		for i, r := range input.CC {
			ccNames[i] = fmt.Sprintf("%s <%s>", r.Name, r.Address)
		}
		fmt.Fprintf(output, "CC: %s\n", strings.Join(ccNames, ", "))
	}
	fmt.Fprintf(output, "Dataset: %s (%d episodes, %d frames, %d tasks)\n", datasetName, episodes, frames, tasks)
	fmt.Fprintf(output, "Archive: %s\n\n", input.ArchiveURL)

	service := appnotif.NewService(sender, input.SenderName)
	err = service.Send(appnotif.SendRequest{
		To:          input.To,
		CC:          input.CC,
		DatasetName: datasetName,
		Episodes:    episodes,
		Frames:      frames,
		Tasks:       tasks,
		ArchiveURL:  input.ArchiveURL,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	fmt.Fprintf(output, "Email sent successfully!\n")
	return nil
}
