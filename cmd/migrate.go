package cmd

import (
	"fmt"
	"log"

	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/rolinkstone/new-talawang-sub001/internal/database"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run database migrations to create or update the database schema.
This command will:
- Create all required tables if they don't exist
- Update table schemas if needed
- Create indexes for the scoped listing and search paths

The command uses the database configuration from the config file or environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		log.Printf("Connecting to database: %s@%s:%d/%s",
			cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		defer func() {
			sqlDB, _ := db.DB()
			if sqlDB != nil {
				sqlDB.Close()
			}
		}()

		log.Println("Running database migrations...")
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Println("Database migrations completed successfully!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().String("config", "", "Config file path (default: search in current directory, ./config, or $HOME/.talawang)")
}
