// Package main hosts the foildb CLI entrypoint and command graph.
//
// The Cobra-based command tree covers the full build cycle: sync runs the
// titles, media, and optional export stages; export and verify manage the
// distribution packs and their manifest on their own; status summarizes the
// row stores and the latest run reports; config scaffolds and inspects the
// configuration file. Configuration resolution and logger construction are
// centralized here so subcommands stay declarative.
//
// Add new functionality by extending the internal packages first, then
// surface it through dedicated commands or flags here.
package main
