package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dis-cadets/srt-bot/internal/config"
	"github.com/dis-cadets/srt-bot/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("required env DATABASE_URL is empty")
			}

			database, err := db.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() { _ = database.Close() }()
			return db.Migrate(cmd.Context(), database, direction)
		},
	}
}
