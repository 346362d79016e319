package pack

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// IconMagic identifies an icon pack file.
const IconMagic = "CFICONP1"

const (
	iconPackVersion = 1
	iconEntrySize   = 32
)

type iconEntryRecord struct {
	TitleID  uint64
	Offset   uint64
	Size     uint32
	Ext      [8]byte
	Reserved uint32
}

// IconEntry is one decoded icon pack record. Offset is relative to the start
// of the payload blob.
type IconEntry struct {
	TitleID uint64
	Offset  uint64
	Size    uint32
	Ext     string
}

// IconPack is a fully decoded icon pack.
type IconPack struct {
	Entries []IconEntry
	Data    []byte
}

// Payload returns the image bytes backing an entry.
func (p *IconPack) Payload(entry IconEntry) ([]byte, error) {
	end := entry.Offset + uint64(entry.Size)
	if end > uint64(len(p.Data)) {
		return nil, fmt.Errorf("entry %016x payload [%d:%d] exceeds blob of %d bytes",
			entry.TitleID, entry.Offset, end, len(p.Data))
	}
	return p.Data[entry.Offset:end], nil
}

// IconWriter assembles an icon pack. Payloads are spooled into a sidecar
// temp file in arrival order so arbitrarily large stores never sit in
// memory; Finalize sorts the directory, writes the pack, and removes the
// spool.
type IconWriter struct {
	path     string
	spool    *os.File
	entries  []iconEntryRecord
	written  uint64
	finished bool
}

// NewIconWriter prepares an icon pack writer targeting path.
func NewIconWriter(path string) (*IconWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create pack directory: %w", err)
	}
	spool, err := os.Create(path + ".data.tmp")
	if err != nil {
		return nil, fmt.Errorf("create payload spool: %w", err)
	}
	return &IconWriter{path: path, spool: spool}, nil
}

// Add appends one image payload. Empty payloads are skipped silently; a
// malformed identifier fails the whole export.
func (w *IconWriter) Add(titleID, format string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	numeric, err := ParseTitleID(titleID)
	if err != nil {
		return err
	}

	if _, err := w.spool.Write(payload); err != nil {
		return fmt.Errorf("spool payload for %s: %w", titleID, err)
	}

	entry := iconEntryRecord{
		TitleID: numeric,
		Offset:  w.written,
		Size:    uint32(len(payload)),
	}
	ext := NormalizeExt(format)
	if len(ext) > 7 {
		ext = ext[:7]
	}
	copy(entry.Ext[:], ext)
	w.entries = append(w.entries, entry)
	w.written += uint64(len(payload))
	return nil
}

// Finalize sorts entries by identifier, writes header, directory, and
// payload blob to the target path, then removes the spool. Returns the entry
// count.
func (w *IconWriter) Finalize() (int, error) {
	if w.finished {
		return 0, fmt.Errorf("icon pack %s already finalized", w.path)
	}
	w.finished = true
	defer w.cleanupSpool()

	sort.Slice(w.entries, func(i, j int) bool { return w.entries[i].TitleID < w.entries[j].TitleID })

	out, err := os.Create(w.path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", w.path, err)
	}
	buffered := bufio.NewWriter(out)

	header := packHeader{
		Version:    iconPackVersion,
		EntrySize:  iconEntrySize,
		Count:      uint32(len(w.entries)),
		TailOffset: uint64(packHeaderSize + len(w.entries)*iconEntrySize),
	}
	copy(header.Magic[:], IconMagic)
	if err := binary.Write(buffered, binary.LittleEndian, header); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, entry := range w.entries {
		if err := binary.Write(buffered, binary.LittleEndian, entry); err != nil {
			_ = out.Close()
			return 0, fmt.Errorf("write entry %016x: %w", entry.TitleID, err)
		}
	}

	if _, err := w.spool.Seek(0, io.SeekStart); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("rewind payload spool: %w", err)
	}
	if _, err := io.Copy(buffered, w.spool); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("copy payload blob: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		_ = out.Close()
		return 0, fmt.Errorf("flush %s: %w", w.path, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", w.path, err)
	}
	return len(w.entries), nil
}

// Abort discards the writer without producing a pack. Safe to call after
// Finalize.
func (w *IconWriter) Abort() {
	if w.finished {
		return
	}
	w.finished = true
	w.cleanupSpool()
}

func (w *IconWriter) cleanupSpool() {
	if w.spool != nil {
		name := w.spool.Name()
		_ = w.spool.Close()
		_ = os.Remove(name)
		w.spool = nil
	}
}

// ReadIcons decodes an icon pack from path.
func ReadIcons(path string) (*IconPack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	header, err := parseHeader(data, IconMagic, iconPackVersion, iconEntrySize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	dataStart := header.TailOffset
	if dataStart < uint64(packHeaderSize+int(header.Count)*iconEntrySize) || dataStart > uint64(len(data)) {
		return nil, fmt.Errorf("%s: payload offset %d out of range", filepath.Base(path), dataStart)
	}

	reader := bytes.NewReader(data[packHeaderSize:dataStart])
	entries := make([]IconEntry, 0, header.Count)
	for i := uint32(0); i < header.Count; i++ {
		var record iconEntryRecord
		if err := binary.Read(reader, binary.LittleEndian, &record); err != nil {
			return nil, fmt.Errorf("%s: entry %d: %w", filepath.Base(path), i, err)
		}
		ext := record.Ext[:]
		if nul := bytes.IndexByte(ext, 0); nul >= 0 {
			ext = ext[:nul]
		}
		entries = append(entries, IconEntry{
			TitleID: record.TitleID,
			Offset:  record.Offset,
			Size:    record.Size,
			Ext:     string(ext),
		})
	}
	return &IconPack{Entries: entries, Data: data[dataStart:]}, nil
}
