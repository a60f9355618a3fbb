package records

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/SimonWaldherr/tinyRBF/internal/storage/pagefile"
)

// ───────────────────────────────────────────────────────────────────────────
// Inspection & verification tools
// ───────────────────────────────────────────────────────────────────────────
//
// InspectFile, InspectPage and VerifyFile read the file directly rather than
// through a FileHandle so that inspecting a file does not disturb its I/O
// counters. DumpRecords reads through an open FileHandle, so each page it
// visits counts as a read.

// PageInfo holds inspection information about a single user page.
type PageInfo struct {
	Page      uint32
	SlotCount uint32
	UsedSpace uint32
	FreeSpace int
	Slots     []SlotEntry
}

// FileInfo holds inspection information about a whole record file.
type FileInfo struct {
	Name        string
	UserPages   uint32
	ReadCount   uint32
	WriteCount  uint32
	AppendCount uint32
	Pages       []PageInfo
}

// InspectFile reads the hidden page and every user page of a record file
// and returns their stats.
func InspectFile(name string) (*FileInfo, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, pagefile.PageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read meta page: %w", err)
	}
	meta := pagefile.UnmarshalMetaPage(buf)

	info := &FileInfo{
		Name:        name,
		UserPages:   meta.PageCount,
		ReadCount:   meta.ReadCount,
		WriteCount:  meta.WriteCount,
		AppendCount: meta.AppendCount,
	}
	for p := uint32(0); p < meta.PageCount; p++ {
		if _, err := f.ReadAt(buf, (int64(p)+1)*pagefile.PageSize); err != nil {
			return nil, fmt.Errorf("read page %d: %w", p, err)
		}
		sp := WrapSlottedPage(buf)
		pi := PageInfo{
			Page:      p,
			SlotCount: sp.SlotCount(),
			UsedSpace: sp.UsedSpace(),
			FreeSpace: sp.FreeSpace(),
		}
		for s := uint32(1); s <= sp.SlotCount(); s++ {
			pi.Slots = append(pi.Slots, sp.Slot(s))
		}
		info.Pages = append(info.Pages, pi)
	}
	return info, nil
}

// InspectPage reads a single user page of a record file and returns its
// stats.
func InspectPage(name string, p uint32) (*PageInfo, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, pagefile.PageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read meta page: %w", err)
	}
	meta := pagefile.UnmarshalMetaPage(buf)
	if p >= meta.PageCount {
		return nil, fmt.Errorf("inspect page %d of %d: %w", p, meta.PageCount, pagefile.ErrPageOutOfRange)
	}

	if _, err := f.ReadAt(buf, (int64(p)+1)*pagefile.PageSize); err != nil {
		return nil, fmt.Errorf("read page %d: %w", p, err)
	}
	sp := WrapSlottedPage(buf)
	pi := &PageInfo{
		Page:      p,
		SlotCount: sp.SlotCount(),
		UsedSpace: sp.UsedSpace(),
		FreeSpace: sp.FreeSpace(),
	}
	for s := uint32(1); s <= sp.SlotCount(); s++ {
		pi.Slots = append(pi.Slots, sp.Slot(s))
	}
	return pi, nil
}

// VerifyFile checks the structural invariants of a record file and returns
// a list of issues found (empty = healthy).
func VerifyFile(name string) ([]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}

	var issues []string
	if fi.Size() < pagefile.PageSize {
		return []string{"file too small to contain a meta page"}, nil
	}
	if fi.Size()%pagefile.PageSize != 0 {
		issues = append(issues, fmt.Sprintf("file size %d not a multiple of page size %d",
			fi.Size(), pagefile.PageSize))
	}

	buf := make([]byte, pagefile.PageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("read meta page: %w", err)
	}
	meta := pagefile.UnmarshalMetaPage(buf)

	actualPages := uint32(fi.Size()/pagefile.PageSize) - 1
	if meta.PageCount != actualPages {
		issues = append(issues, fmt.Sprintf("meta page says %d user pages, file holds %d",
			meta.PageCount, actualPages))
	}

	for p := uint32(0); p < actualPages; p++ {
		if _, err := f.ReadAt(buf, (int64(p)+1)*pagefile.PageSize); err != nil {
			issues = append(issues, fmt.Sprintf("page %d: read error: %v", p, err))
			continue
		}
		issues = append(issues, verifyPage(p, WrapSlottedPage(buf))...)
	}
	return issues, nil
}

// verifyPage checks one page's trailer bound and slot ranges.
func verifyPage(p uint32, sp *SlottedPage) []string {
	var issues []string
	used := sp.UsedSpace()
	slots := sp.SlotCount()

	if int(used)+int(slots)*slotEntrySize+pageTrailerSize > pagefile.PageSize {
		issues = append(issues, fmt.Sprintf(
			"page %d: used_space %d + directory overruns the page (%d slots)", p, used, slots))
		return issues
	}

	entries := make([]SlotEntry, 0, slots)
	for s := uint32(1); s <= slots; s++ {
		e := sp.Slot(s)
		if e.Offset+e.Length > used {
			issues = append(issues, fmt.Sprintf(
				"page %d slot %d: range [%d, %d) outside record area [0, %d)",
				p, s, e.Offset, e.Offset+e.Length, used))
			continue
		}
		entries = append(entries, e)
	}

	// Slot ranges must not overlap.
	sort.Slice(entries, func(a, b int) bool { return entries[a].Offset < entries[b].Offset })
	for i := 1; i < len(entries); i++ {
		prev := entries[i-1]
		if prev.Offset+prev.Length > entries[i].Offset {
			issues = append(issues, fmt.Sprintf(
				"page %d: slot ranges [%d, %d) and [%d, %d) overlap",
				p, prev.Offset, prev.Offset+prev.Length,
				entries[i].Offset, entries[i].Offset+entries[i].Length))
		}
	}
	return issues
}

// DumpRecords walks every page and slot of the open file through h and
// pretty-prints each record to w. Pages are separated by a header line.
func (m *Manager) DumpRecords(h *pagefile.FileHandle, desc []Attribute, w io.Writer) error {
	buf := make([]byte, pagefile.PageSize)
	for p := uint32(0); p < h.NumberOfPages(); p++ {
		if err := h.ReadPage(p, buf); err != nil {
			return err
		}
		sp := WrapSlottedPage(buf)
		if _, err := fmt.Fprintf(w, "-- page %d: %d record(s), %d byte(s) free\n",
			p, sp.SlotCount(), sp.FreeSpace()); err != nil {
			return err
		}
		for s := uint32(1); s <= sp.SlotCount(); s++ {
			data, err := decodeRecord(desc, sp.Record(s))
			if err != nil {
				return fmt.Errorf("page %d slot %d: %w", p, s, err)
			}
			if _, err := fmt.Fprintf(w, "[%d, %d]\n", p, s); err != nil {
				return err
			}
			if err := m.PrintRecord(desc, data, w); err != nil {
				return err
			}
		}
	}
	return nil
}
