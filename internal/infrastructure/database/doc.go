// Package database provides SQLite connectivity for lumend.
//
// The daemon keeps its persisted device state (per-zone lighting, DPI,
// poll rate) in a single SQLite file. This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Schema migrations read from any fs.FS (the binary embeds them)
//   - Connection lifecycle and health checks
//
// Usage:
//
//	db, err := database.Open(ctx, database.FromConfig(cfg.Database))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS, migrations.Dir); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with a
// matching .down.sql. Each migration is applied in its own transaction.
package database
