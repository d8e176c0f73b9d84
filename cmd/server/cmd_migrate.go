package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"supermarket/backend/internal/config"
	domain "supermarket/backend/internal/domain/product"
	"supermarket/backend/internal/infrastructure/postgres"
	"supermarket/backend/internal/logging"
)

// server migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the products table and indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		if cfg.StoreDriver != config.DriverPostgres {
			return errors.New("migrate requires a postgres database (set DATABASE_URL)")
		}
		db, err := postgres.New(cmd.Context(), cfg.DatabaseURL, 1)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(cmd.Context()); err != nil {
			return err
		}
		logging.Logger().Info().Msg("migrations applied")
		return nil
	},
}

// server rules
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the product validation rule table as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(domain.Rules())
	},
}
