// Package imagestore persists encoded media rows keyed by title
// identifier, one SQLite database per media kind.
package imagestore
