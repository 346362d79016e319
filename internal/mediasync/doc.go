// Package mediasync drives one media kind's row store toward the wanted
// state derived from the title snapshot: plan the difference, remove stale
// rows, fetch and normalize the rest, and record the run's report pair.
package mediasync
