// Package workflow drives one full build run end to end.
//
// A run proceeds through three stages: the titles stage decides whether the
// generated snapshot must be regenerated (missing file, forced refresh, or
// upstream hash drift), rebuilds it through the external extraction tool when
// needed, and writes a diff report; the media stages synchronize one row
// store per configured kind, in parallel since the stores are disjoint; the
// optional export stage packs the results into distribution artefacts.
//
// Every stage shares a single run identifier so the report files written
// under the artefacts directory correlate. Check-only runs stop after the
// titles stage.
package workflow
