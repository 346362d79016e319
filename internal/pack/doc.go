// Package pack reads and writes the binary distribution containers consumed
// by the offline catalog runtime: titles.pack (fixed-size metadata entries
// over an interned string blob) and icons.pack (an entry directory over a
// concatenated payload blob). Both formats are little-endian with a 32-byte
// header.
package pack
