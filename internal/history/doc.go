// Package history journals render runs in a small SQLite database so the
// CLI can list what was rendered, with which encoder, and how each run
// ended. Rows left in the running state by a crashed process are marked
// failed the next time the store is opened.
package history
