// Package fetch downloads source images over HTTP with a bounded retry
// budget for transient upstream failures.
package fetch
