package main

import (
	"errors"                     // Flag validation
	"fmt"                        // Status output
	"landestate/internal/config" // Custom import path (Config)
	"landestate/internal/db"     // Custom import path (Database)

	"github.com/sirupsen/logrus" // Logging
	"github.com/spf13/cobra"     // CLI commands
	"gorm.io/gorm"               // GORM ORM library
)

// Main entry point for migration
func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "LandEstate database schema tool",
	}
	rootCmd.AddCommand(upCmd(), dropCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

// connect opens the database described by the environment
func connect() (*gorm.DB, error) {
	cfg := config.LoadConfig() // Load configuration
	database, err := db.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	return database, nil
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := connect()
			if err != nil {
				return err
			}
			return db.Migrate(database)
		},
	}
}

func dropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table (requires --force)",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return errors.New("refusing to drop tables without --force")
			}
			database, err := connect()
			if err != nil {
				return err
			}
			return db.Drop(database)
		},
	}
	cmd.Flags().Bool("force", false, "Confirm dropping all tables")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which tables exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := connect()
			if err != nil {
				return err
			}
			for _, model := range db.Models() {
				stmt := &gorm.Statement{DB: database}
				if err := stmt.Parse(model); err != nil {
					return err
				}
				state := "missing"
				if database.Migrator().HasTable(model) {
					state = "present"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", stmt.Schema.Table, state)
			}
			return nil
		},
	}
}
