// Package export turns build artefacts into the distributed offline
// database: titles.pack from a metadata snapshot, icons.pack from an image
// row store, and a manifest indexing both. Inputs are named explicitly or
// discovered inside a source directory; a discovery miss skips that pack,
// and the manifest is only written when one invocation produced both packs.
package export
