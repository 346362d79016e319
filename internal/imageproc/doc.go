// Package imageproc normalizes fetched source images into the fixed
// square JPEG shape the row stores and packs carry.
package imageproc
