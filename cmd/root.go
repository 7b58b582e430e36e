package cmd

import (
	"fmt"
	"os"

	"robot-dataset-curator/infrastructure/config"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "robot-dataset-curator",
	Short: "Curate robot demonstration datasets from episode requests",
	Long: `robot-dataset-curator rebuilds robot-demonstration datasets from a
human-authored episode request list:

  - Extract requested episode windows from the source parquet table
  - Renumber indices, rebase timestamps, register tasks
  - Cut and concatenate the per-camera videos with measured offsets
  - Publish the curated dataset atomically
  - Optionally package, upload to Google Drive and notify by email

Example:
  robot-dataset-curator extract ./source-dataset requests.csv ./curated-dataset`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = "config/config.yaml"
		if _, err := os.Stat(cfgFile); err != nil {
			cfgFile = config.DefaultPath()
		}
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// Config file is optional for some commands (like help)
		// Commands that need config will check and error appropriately
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

// configOrDefault returns the loaded config, or built-in defaults when no
// config file exists. The local pipeline commands work without one.
func configOrDefault() *config.Config {
	if cfg != nil {
		return cfg
	}
	c := &config.Config{}
	c.FFmpeg.FFmpegPath = "ffmpeg"
	c.FFmpeg.FFprobePath = "ffprobe"
	c.FFmpeg.Preset = "fast"
	c.FFmpeg.TimeoutSeconds = 600
	return c
}
