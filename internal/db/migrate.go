package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/dis-cadets/srt-bot/internal/db/migrations"
)

func setupGoose() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// Migrate runs the embedded goose migrations. direction is "up", "down" or "status".
func Migrate(ctx context.Context, database *sql.DB, direction string) error {
	if err := setupGoose(); err != nil {
		return err
	}
	switch direction {
	case "", "up":
		return goose.UpContext(ctx, database, ".")
	case "down":
		return goose.DownContext(ctx, database, ".")
	case "status":
		return goose.StatusContext(ctx, database, ".")
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
}
