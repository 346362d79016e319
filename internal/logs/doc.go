// Package logs reads the foildb log file back for display.
//
// Tail returns the trailing lines of a log file with bounded memory usage;
// Follow polls for appended lines until its context is cancelled. Both power
// `foildb logs`, which saves the operator from digging the configured log
// directory out of the config file.
package logs
