// Package database provides the SQLite connection used by the cycle journal.
//
// This package manages:
//   - Opening the database file with WAL mode and a busy timeout
//   - Applying forward-only schema migrations from an fs.FS
//   - Health checks and connection lifecycle
//
// Security Considerations:
//   - All queries use parameterised statements
//   - The database file is restricted to 0600
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true, BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
package database
