package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FMSoblaci/oblat-project-flow/internal/config"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize oblat in the current directory",
		Long: `Initialize oblat in the current directory.

This creates the .oblat/ directory with a default config file, an empty
SQLite database and the uploads directory.

Examples:
  oblat init            # Initialize with defaults
  oblat init --force    # Overwrite an existing config`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			cfgPath := filepath.Join(config.FlowDir, config.ConfigFileName)
			if !force {
				if _, err := os.Stat(cfgPath); err == nil {
					return fmt.Errorf("already initialized at %s. Use --force to reinitialize", cfgPath)
				}
			}

			cfg := config.Default()
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("write config: %w", err)
			}

			if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
				return fmt.Errorf("create uploads dir: %w", err)
			}

			// Opening the store creates the database and applies migrations.
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if !quiet {
				fmt.Printf("Initialized oblat in %s\n", config.FlowDir)
				fmt.Println("Next steps:")
				fmt.Println("  oblat useradd you@example.com --role pm")
				fmt.Println("  oblat serve")
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite existing configuration")

	return cmd
}
