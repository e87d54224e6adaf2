// Package journal persists metrics cycle reports in SQLite so the last few
// thousand outcomes survive a restart for local inspection.
//
// The table is created by the cycle_journal migration and pruned to the
// configured retention on every insert.
package journal
