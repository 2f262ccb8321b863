// Package database provides SQLite connectivity for homecontrol.
//
// This package manages:
//   - The database connection with WAL mode and a busy timeout
//   - Versioned schema migrations read from an fs.FS
//   - Connection pool limits suited to SQLite's single writer
//
// The database holds node registrations created at runtime. Nodes listed
// in config.yaml are never stored.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if _, err := db.Migrate(ctx, migrations.FS); err != nil {
//	    log.Fatal(err)
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql. Each migration runs in its own transaction.
package database
