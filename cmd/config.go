package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"robot-dataset-curator/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput io.Writer = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration entries",
	Long: `Manage email recipients and camera names in the configuration file.

Examples:
  robot-dataset-curator config list recipients
  robot-dataset-curator config add recipient --key jordan --name "Jordan Lee" --email "jordan@example.com"
  robot-dataset-curator config add camera --key top
  robot-dataset-curator config remove recipient jordan`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	configCmd.AddCommand(configUpdateCmd)
}

// --- ADD command ---

var (
	addKey   string
	addName  string
	addEmail string
)

var configAddCmd = &cobra.Command{
	Use:   "add [recipient|camera]",
	Short: "Add a new config entry",
	Long: `Add a new recipient or camera to the configuration.

Examples:
  robot-dataset-curator config add recipient --key jordan --name "Jordan Lee" --email "jordan@example.com"
  robot-dataset-curator config add camera --key wrist.left`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigAdd,
}

func init() {
	configAddCmd.Flags().StringVar(&addKey, "key", "", "Unique key for the entry (required)")
	configAddCmd.Flags().StringVar(&addName, "name", "", "Display name (required for recipient)")
	configAddCmd.Flags().StringVar(&addEmail, "email", "", "Email address (required for recipient)")
	configAddCmd.MarkFlagRequired("key")
}

func runConfigAdd(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'robot-dataset-curator setup' first")
	}

	return RunConfigAddWithDependencies(cfg, cfgFile, args[0], addKey, addName, addEmail, DefaultOutput)
}

// RunConfigAddWithDependencies runs the add command with injected dependencies
func RunConfigAddWithDependencies(cfg *config.Config, configPath, entityType, key, name, email string, out io.Writer) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "recipient":
		if name == "" {
			return fmt.Errorf("--name is required for recipients")
		}
		if email == "" {
			return fmt.Errorf("--email is required for recipients")
		}
		if err := mgr.AddRecipient(key, name, email); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added recipient %q: %s <%s>\n", key, name, email)

	case "camera":
		if err := mgr.AddCamera(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added camera %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use recipient or camera", entityType)
	}

	return nil
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list [recipients|cameras]",
	Short: "List config entries",
	Long: `List all recipients or cameras.

Examples:
  robot-dataset-curator config list recipients
  robot-dataset-curator config list cameras`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'robot-dataset-curator setup' first")
	}

	return RunConfigListWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
}

// RunConfigListWithDependencies runs the list command with injected dependencies
func RunConfigListWithDependencies(cfg *config.Config, configPath, entityType string, out io.Writer) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "recipients":
		recipients := mgr.ListRecipients()
		if len(recipients) == 0 {
			fmt.Fprintln(out, "No recipients configured.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tEMAIL")
		for _, r := range recipients {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Key, r.Name, r.Address)
		}
		return w.Flush()

	case "cameras":
		cameras := mgr.ListCameras()
		if len(cameras) == 0 {
			fmt.Fprintln(out, "No cameras configured.")
			return nil
		}
		for _, name := range cameras {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	return fmt.Errorf("unknown entity type %q. Use recipients or cameras", entityType)
}

// --- REMOVE command ---

var configRemoveCmd = &cobra.Command{
	Use:   "remove [recipient|camera] <key>",
	Short: "Remove a config entry",
	Long: `Remove a recipient or camera from the configuration.

Examples:
  robot-dataset-curator config remove recipient jordan
  robot-dataset-curator config remove camera top`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigRemove,
}

func runConfigRemove(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'robot-dataset-curator setup' first")
	}

	return RunConfigRemoveWithDependencies(cfg, cfgFile, args[0], args[1], DefaultOutput)
}

// RunConfigRemoveWithDependencies runs the remove command with injected dependencies
func RunConfigRemoveWithDependencies(cfg *config.Config, configPath, entityType, key string, out io.Writer) error {
	mgr := config.NewConfigManager(cfg, configPath)

	switch entityType {
	case "recipient":
		if err := mgr.RemoveRecipient(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed recipient %q\n", key)

	case "camera":
		if err := mgr.RemoveCamera(key); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed camera %q\n", key)

	default:
		return fmt.Errorf("unknown entity type %q. Use recipient or camera", entityType)
	}

	return nil
}

// --- UPDATE command ---

var (
	updateName  string
	updateEmail string
)

var configUpdateCmd = &cobra.Command{
	Use:   "update recipient <key>",
	Short: "Update a config entry",
	Long: `Update an existing recipient's name or email.

Examples:
  robot-dataset-curator config update recipient jordan --email "jordan@new.example.com"`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigUpdate,
}

func init() {
	configUpdateCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	configUpdateCmd.Flags().StringVar(&updateEmail, "email", "", "New email address")
}

func runConfigUpdate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'robot-dataset-curator setup' first")
	}

	return RunConfigUpdateWithDependencies(cfg, cfgFile, args[0], args[1], updateName, updateEmail, DefaultOutput)
}

// RunConfigUpdateWithDependencies runs the update command with injected dependencies
func RunConfigUpdateWithDependencies(cfg *config.Config, configPath, entityType, key, name, email string, out io.Writer) error {
	if entityType != "recipient" {
		return fmt.Errorf("unknown entity type %q. Only recipient entries can be updated", entityType)
	}
	if name == "" && email == "" {
		return fmt.Errorf("nothing to update; provide --name and/or --email")
	}

	mgr := config.NewConfigManager(cfg, configPath)
	if err := mgr.UpdateRecipient(key, name, email); err != nil {
		return err
	}
	fmt.Fprintf(out, "Updated recipient %q\n", key)
	return nil
}
