// Package pg connects to PostgreSQL with pgx/v5 and applies goose migrations.
//
// Connect returns a *pgxpool.Pool after a successful ping, retrying with a
// growing pause between attempts. Stores work through database/sql, so OpenDB
// wraps the pool with the pgx stdlib driver; the same *sql.DB feeds Migrate.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	db := pg.OpenDB(pool)
//	if err := pg.Migrate(ctx, db, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// IsNotFoundError, IsDuplicateKeyError and IsForeignKeyViolationError
// classify driver errors without importing pgconn in callers.
package pg
