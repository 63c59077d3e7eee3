package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"
)

// goose keeps its settings in package globals.
var migrateMu sync.Mutex

// Migrate applies every pending goose migration found at the root of migrations.
func Migrate(ctx context.Context, db *sql.DB, migrations fs.FS, cfg Config, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(&gooseLogger{ctx: ctx, log: log})
	if cfg.MigrationsTable != "" {
		goose.SetTableName(cfg.MigrationsTable)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// gooseLogger routes goose output to slog.
type gooseLogger struct {
	ctx context.Context
	log *slog.Logger
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.log.InfoContext(l.ctx, fmt.Sprintf(format, v...))
}
