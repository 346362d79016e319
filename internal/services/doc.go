// Package services defines shared utilities consumed by the workflow stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, title identifiers, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into run-fatal versus item-scoped outcomes.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
