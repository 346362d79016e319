package pack

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"foildb/internal/titles"
)

// TitleMagic identifies a title pack file.
const TitleMagic = "CFTITLE1"

const (
	titlePackVersion = 1
	titleEntrySize   = 48
	packHeaderSize   = 32
)

// Per-entry presence bits. A cleared bit means the field was absent in the
// source record; its serialized value is then 0 (or -1 for the demo flag).
const (
	FlagHasName uint32 = 1 << iota
	FlagHasPublisher
	FlagHasIntro
	FlagHasDescription
	FlagHasSize
	FlagHasVersion
	FlagHasReleaseDate
	FlagHasIsDemo
)

type packHeader struct {
	Magic      [8]byte
	Version    uint32
	EntrySize  uint32
	Count      uint32
	Reserved   uint32
	TailOffset uint64
}

type titleEntryRecord struct {
	TitleID        uint64
	NameOff        uint32
	PublisherOff   uint32
	IntroOff       uint32
	DescriptionOff uint32
	Size           uint64
	Version        uint32
	ReleaseDate    uint32
	IsDemo         int32
	Flags          uint32
}

// TitleEntry is one decoded title pack record. String fields are resolved
// from the interned blob; IsDemo is -1 when unrecorded.
type TitleEntry struct {
	TitleID     uint64
	Name        string
	Publisher   string
	Intro       string
	Description string
	Size        uint64
	Version     uint32
	ReleaseDate uint32
	IsDemo      int32
	Flags       uint32
}

// Has reports whether the given presence flag is set on the entry.
func (e TitleEntry) Has(flag uint32) bool {
	return e.Flags&flag != 0
}

// TitlePack is a fully decoded title pack.
type TitlePack struct {
	Entries []TitleEntry
}

type stringTable struct {
	blob    []byte
	offsets map[string]uint32
}

func newStringTable() *stringTable {
	// Offset 0 is reserved for the empty string, so the blob opens with a
	// single NUL.
	return &stringTable{blob: []byte{0}, offsets: map[string]uint32{"": 0}}
}

func (t *stringTable) intern(value string) uint32 {
	if value == "" {
		return 0
	}
	if off, ok := t.offsets[value]; ok {
		return off
	}
	off := uint32(len(t.blob))
	t.blob = append(t.blob, value...)
	t.blob = append(t.blob, 0)
	t.offsets[value] = off
	return off
}

// WriteTitles serializes the snapshot's metadata-bearing records into a title
// pack at path, sorted by numeric identifier. Returns the entry count.
func WriteTitles(path string, snapshot *titles.Snapshot) (int, error) {
	type row struct {
		id     uint64
		record titles.TitleRecord
	}

	var rows []row
	if snapshot != nil {
		rows = make([]row, 0, len(snapshot.Records))
		for id, record := range snapshot.Records {
			if !record.HasMetadata() {
				continue
			}
			numeric, err := ParseTitleID(id)
			if err != nil {
				return 0, err
			}
			rows = append(rows, row{id: numeric, record: record})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })

	table := newStringTable()
	entries := make([]titleEntryRecord, 0, len(rows))
	for _, r := range rows {
		entry := titleEntryRecord{TitleID: r.id, IsDemo: -1}
		if r.record.Name != "" {
			entry.NameOff = table.intern(r.record.Name)
			entry.Flags |= FlagHasName
		}
		if r.record.Publisher != "" {
			entry.PublisherOff = table.intern(r.record.Publisher)
			entry.Flags |= FlagHasPublisher
		}
		if r.record.Intro != "" {
			entry.IntroOff = table.intern(r.record.Intro)
			entry.Flags |= FlagHasIntro
		}
		if r.record.Description != "" {
			entry.DescriptionOff = table.intern(r.record.Description)
			entry.Flags |= FlagHasDescription
		}
		if size := r.record.Size; size != nil && *size >= 0 {
			entry.Size = uint64(*size)
			entry.Flags |= FlagHasSize
		}
		if version := r.record.Version; version != nil && *version >= 0 {
			entry.Version = uint32(*version)
			entry.Flags |= FlagHasVersion
		}
		if release := r.record.ReleaseDate; release != nil && *release >= 0 {
			entry.ReleaseDate = uint32(*release)
			entry.Flags |= FlagHasReleaseDate
		}
		if r.record.IsDemo != nil {
			entry.IsDemo = 0
			if *r.record.IsDemo {
				entry.IsDemo = 1
			}
			entry.Flags |= FlagHasIsDemo
		}
		entries = append(entries, entry)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("create pack directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	w := bufio.NewWriter(out)
	header := packHeader{
		Version:    titlePackVersion,
		EntrySize:  titleEntrySize,
		Count:      uint32(len(entries)),
		TailOffset: uint64(packHeaderSize + len(entries)*titleEntrySize),
	}
	copy(header.Magic[:], TitleMagic)
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, entry := range entries {
		if err := binary.Write(w, binary.LittleEndian, entry); err != nil {
			_ = out.Close()
			return 0, fmt.Errorf("write entry %016x: %w", entry.TitleID, err)
		}
	}
	if _, err := w.Write(table.blob); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("write string blob: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("flush %s: %w", path, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return len(entries), nil
}

// ReadTitles decodes a title pack from path.
func ReadTitles(path string) (*TitlePack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	header, err := parseHeader(data, TitleMagic, titlePackVersion, titleEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	blobStart := header.TailOffset
	if blobStart < uint64(packHeaderSize+int(header.Count)*titleEntrySize) || blobStart > uint64(len(data)) {
		return nil, fmt.Errorf("%s: string blob offset %d out of range", filepath.Base(path), blobStart)
	}
	blob := data[blobStart:]

	reader := bytes.NewReader(data[packHeaderSize:blobStart])
	entries := make([]TitleEntry, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		var record titleEntryRecord
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", filepath.Base(path), i, err)
		}
		entry := TitleEntry{
			TitleID:     record.TitleID,
			Size:        record.Size,
			Version:     record.Version,
			ReleaseDate: record.ReleaseDate,
			IsDemo:      record.IsDemo,
			Flags:       record.Flags,
		}
		if entry.Name, err = blobString(blob, record.NameOff); err != nil {
			return nil, fmt.Errorf("%s: entry %016x name: %w", filepath.Base(path), record.TitleID, err)
		}
		if entry.Publisher, err = blobString(blob, record.PublisherOff); err != nil {
			return nil, fmt.Errorf("%s: entry %016x publisher: %w", filepath.Base(path), record.TitleID, err)
		}
		if entry.Intro, err = blobString(blob, record.IntroOff); err != nil {
			return nil, fmt.Errorf("%s: entry %016x intro: %w", filepath.Base(path), record.TitleID, err)
		}
		if entry.Description, err = blobString(blob, record.DescriptionOff); err != nil {
			return nil, fmt.Errorf("%s: entry %016x description: %w", filepath.Base(path), record.TitleID, err)
		}
		entries = append(entries, entry)
	}
	return &TitlePack{Entries: entries}, nil
}

func parseHeader(data []byte, magic string, version, entrySize uint32) (packHeader, error) {
	var header packHeader
	if len(data) < packHeaderSize {
		return header, fmt.Errorf("truncated header (%d bytes)", len(data))
	}
	if err := binary.Read(bytes.NewReader(data[:packHeaderSize]), binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("decode header: %w", err)
	}
	if string(header.Magic[:]) != magic {
		return header, fmt.Errorf("bad magic %q", header.Magic)
	}
	if header.Version != version {
		return header, fmt.Errorf("unsupported version %d", header.Version)
	}
	if header.EntrySize != entrySize {
		return header, fmt.Errorf("unexpected entry size %d", header.EntrySize)
	}
	return header, nil
}

func blobString(blob []byte, off uint32) (string, error) {
	if off == 0 {
		return "", nil
	}
	if uint64(off) >= uint64(len(blob)) {
		return "", fmt.Errorf("string offset %d out of range", off)
	}
	end := bytes.IndexByte(blob[off:], 0)
	if end < 0 {
		return "", fmt.Errorf("unterminated string at offset %d", off)
	}
	return string(blob[off : int(off)+end]), nil
}
