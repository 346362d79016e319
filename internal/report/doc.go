// Package report defines the progress and summary snapshots each stage
// persists for observers, plus the derived rate and ETA arithmetic.
package report
