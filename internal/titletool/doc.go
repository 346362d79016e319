// Package titletool invokes the external titledb extraction tool that
// turns the raw upstream feed into a generated title snapshot document.
package titletool
