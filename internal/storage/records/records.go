package records

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/SimonWaldherr/tinyRBF/internal/storage/pagefile"
)

// Manager is the record-based file manager. It composes a pagefile.Manager
// for the file-level operations and imposes the slotted-page and record
// formats on every user page.
type Manager struct {
	pf *pagefile.Manager
}

// NewManager returns a record file manager backed by pf.
func NewManager(pf *pagefile.Manager) *Manager {
	return &Manager{pf: pf}
}

// CreateFile creates a new record file.
func (m *Manager) CreateFile(name string) error {
	return m.pf.CreateFile(name)
}

// DestroyFile removes a record file.
func (m *Manager) DestroyFile(name string) error {
	return m.pf.DestroyFile(name)
}

// OpenFile opens a record file and binds it to h.
func (m *Manager) OpenFile(name string, h *pagefile.FileHandle) error {
	return m.pf.OpenFile(name, h)
}

// CloseFile closes the record file bound to h.
func (m *Manager) CloseFile(h *pagefile.FileHandle) error {
	return m.pf.CloseFile(h)
}

// InsertRecord encodes data (in the external record encoding) and stores it
// on a page of the file, returning the RID of the new record.
//
// Placement tries the last page first, then the earlier pages in order, and
// appends a fresh page when nothing fits.
func (m *Manager) InsertRecord(h *pagefile.FileHandle, desc []Attribute, data []byte) (RID, error) {
	rec, err := encodeRecord(desc, data)
	if err != nil {
		return RID{}, err
	}
	if len(rec)+slotEntrySize+pageTrailerSize > pagefile.PageSize {
		return RID{}, fmt.Errorf("encoded record is %d bytes: %w", len(rec), ErrRecordTooLarge)
	}

	pages := h.NumberOfPages()
	if pages == 0 {
		return m.insertOnNewPage(h, rec)
	}

	buf := make([]byte, pagefile.PageSize)
	last := pages - 1

	// Last page first, then rescan from the front.
	if rid, ok, err := m.tryInsertOnPage(h, last, buf, rec); err != nil || ok {
		return rid, err
	}
	for p := uint32(0); p < last; p++ {
		if rid, ok, err := m.tryInsertOnPage(h, p, buf, rec); err != nil || ok {
			return rid, err
		}
	}
	return m.insertOnNewPage(h, rec)
}

// tryInsertOnPage loads page p into buf and, if the record fits, places it
// there and writes the page back.
func (m *Manager) tryInsertOnPage(h *pagefile.FileHandle, p uint32, buf, rec []byte) (RID, bool, error) {
	if err := h.ReadPage(p, buf); err != nil {
		return RID{}, false, err
	}
	sp := WrapSlottedPage(buf)
	if !sp.CanFit(len(rec)) {
		return RID{}, false, nil
	}
	slot := sp.InsertRecord(rec)
	if err := h.WritePage(p, buf); err != nil {
		return RID{}, false, err
	}
	return RID{PageNum: p, SlotNum: slot}, true, nil
}

// insertOnNewPage appends a fresh slotted page holding only rec.
func (m *Manager) insertOnNewPage(h *pagefile.FileHandle, rec []byte) (RID, error) {
	buf := make([]byte, pagefile.PageSize)
	sp := InitSlottedPage(buf)
	slot := sp.InsertRecord(rec)
	p := h.NumberOfPages()
	if err := h.AppendPage(buf); err != nil {
		return RID{}, err
	}
	return RID{PageNum: p, SlotNum: slot}, nil
}

// ReadRecord retrieves the record identified by rid and returns it in the
// external record encoding.
func (m *Manager) ReadRecord(h *pagefile.FileHandle, desc []Attribute, rid RID) ([]byte, error) {
	buf := make([]byte, pagefile.PageSize)
	if err := h.ReadPage(rid.PageNum, buf); err != nil {
		return nil, err
	}
	sp := WrapSlottedPage(buf)
	if rid.SlotNum < 1 || rid.SlotNum > sp.SlotCount() {
		return nil, fmt.Errorf("slot %d of page %d: %w", rid.SlotNum, rid.PageNum, ErrInvalidSlot)
	}
	return decodeRecord(desc, sp.Record(rid.SlotNum))
}

// PrintRecord writes a human-readable rendering of a record (in the
// external encoding) to w, one "name: value" line per field in descriptor
// order. Null fields print as "name: NULL".
func (m *Manager) PrintRecord(desc []Attribute, data []byte, w io.Writer) error {
	n := len(desc)
	nb := nullBitmapSize(n)
	if len(data) < nb {
		return fmt.Errorf("record data shorter than its null bitmap (%d < %d)", len(data), nb)
	}
	bitmap := data[:nb]
	off := nb
	for i, attr := range desc {
		if isNull(bitmap, i) {
			if _, err := fmt.Fprintf(w, "%s: NULL\n", attr.Name); err != nil {
				return err
			}
			continue
		}
		switch attr.Type {
		case TypeInt:
			if off+4 > len(data) {
				return fmt.Errorf("field %q: %w", attr.Name, errTruncated)
			}
			v := int32(binary.LittleEndian.Uint32(data[off:]))
			off += 4
			if _, err := fmt.Fprintf(w, "%s: %d\n", attr.Name, v); err != nil {
				return err
			}
		case TypeReal:
			if off+4 > len(data) {
				return fmt.Errorf("field %q: %w", attr.Name, errTruncated)
			}
			v := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
			off += 4
			if _, err := fmt.Fprintf(w, "%s: %v\n", attr.Name, v); err != nil {
				return err
			}
		case TypeVarChar:
			if off+4 > len(data) {
				return fmt.Errorf("field %q length: %w", attr.Name, errTruncated)
			}
			l := int(binary.LittleEndian.Uint32(data[off:]))
			off += 4
			if off+l > len(data) {
				return fmt.Errorf("field %q payload: %w", attr.Name, errTruncated)
			}
			if _, err := fmt.Fprintf(w, "%s: %s\n", attr.Name, data[off:off+l]); err != nil {
				return err
			}
			off += l
		default:
			return fmt.Errorf("field %q: unknown type %v", attr.Name, attr.Type)
		}
	}
	return nil
}

// DeleteRecord marks the record's slot as free so that later reads of the
// RID fail with ErrInvalidSlot.
//
// Not implemented in the current core.
func (m *Manager) DeleteRecord(h *pagefile.FileHandle, desc []Attribute, rid RID) error {
	return ErrNotImplemented
}

// UpdateRecord replaces the record in place when the new encoding fits in
// the old slot, and relocates it otherwise.
//
// Not implemented in the current core.
func (m *Manager) UpdateRecord(h *pagefile.FileHandle, desc []Attribute, data []byte, rid RID) error {
	return ErrNotImplemented
}

// ReadAttribute decodes only the named field of a record, using the
// field-end directory to skip the others.
//
// Not implemented in the current core.
func (m *Manager) ReadAttribute(h *pagefile.FileHandle, desc []Attribute, rid RID, name string) ([]byte, error) {
	return nil, ErrNotImplemented
}

// Scan yields an iterator over the RIDs whose condition attribute satisfies
// "op value", projecting the named attributes.
//
// Not implemented in the current core.
func (m *Manager) Scan(h *pagefile.FileHandle, desc []Attribute, conditionAttr string, op CompOp, value []byte, projected []string) (*ScanIterator, error) {
	return nil, ErrNotImplemented
}
