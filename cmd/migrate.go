package cmd

import (
	"Trivium/config"
	"errors"

	"github.com/spf13/cobra"
)

func newMigrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the PostgreSQL schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Store != config.StorePostgres {
				return errors.New("migrate only applies to --store postgres")
			}
			db, err := config.ConnectGORM(cfg)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			return config.MigrateDatabase(db)
		},
	}
}
