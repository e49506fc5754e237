package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/config"
	"github.com/example/fieldforms/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the fieldforms database and configuration",
		Long:  `Initialize the local store at ~/.fieldforms/fieldforms.db and write config.json with the record store endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			apiURL, _ := cmd.Flags().GetString("api-url")
			accessKey, _ := cmd.Flags().GetString("access-key")

			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing fieldforms database at %s\n", dbPath)
			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Println("✓ Database initialized successfully")

			dir, err := config.Dir()
			if err != nil {
				return err
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil {
				cfg = &config.Config{Version: "1.0"}
			}
			if apiURL != "" {
				cfg.APIURL = apiURL
			}
			if accessKey != "" {
				cfg.AccessKey = accessKey
			}
			config.EnsureDeviceID(cfg)

			if err := config.SaveConfig(dir, cfg); err != nil {
				return err
			}
			fmt.Println("✓ Configuration written to ~/.fieldforms/config.json")
			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  fieldforms form new \"Leak Repair\"")
			fmt.Println("  fieldforms status")

			return nil
		},
	}

	cmd.Flags().String("api-url", "", "Record store endpoint URL")
	cmd.Flags().String("access-key", "", "Record store access key")

	return cmd
}
