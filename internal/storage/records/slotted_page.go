package records

import (
	"encoding/binary"

	"github.com/SimonWaldherr/tinyRBF/internal/storage/pagefile"
)

// ───────────────────────────────────────────────────────────────────────────
// Slotted page
// ───────────────────────────────────────────────────────────────────────────
//
// Layout of a user page, growing from both ends:
//
//   [0 .. used_space)                      record payloads, insertion order
//   [used_space .. dir_start)              free region
//   [dir_start .. PageSize-8)              slot directory, grows downward
//   [PageSize-8 .. PageSize-4)             slot_count  (uint32 LE)
//   [PageSize-4 .. PageSize)               used_space  (uint32 LE)
//
// Slot s (1-based) occupies [PageSize − 8 − s*8 .. PageSize − 8 − (s−1)*8)
// as (record_offset uint32, record_length uint32).
//
// Invariant: used_space + 8*slot_count + 8 ≤ PageSize.

const (
	pageTrailerSize = 8
	slotEntrySize   = 8

	slotCountOff = pagefile.PageSize - 8
	usedSpaceOff = pagefile.PageSize - 4
)

// SlotEntry is one slot directory entry.
type SlotEntry struct {
	Offset uint32
	Length uint32
}

// SlottedPage wraps a raw page buffer and provides slot-level operations.
type SlottedPage struct {
	buf []byte
}

// WrapSlottedPage wraps an existing page buffer.
func WrapSlottedPage(buf []byte) *SlottedPage {
	return &SlottedPage{buf: buf}
}

// InitSlottedPage initialises a page buffer as an empty slotted page with
// slot_count = 0 and used_space = 0.
func InitSlottedPage(buf []byte) *SlottedPage {
	sp := WrapSlottedPage(buf)
	sp.setSlotCount(0)
	sp.setUsedSpace(0)
	return sp
}

// SlotCount returns the number of slots on the page.
func (sp *SlottedPage) SlotCount() uint32 {
	return binary.LittleEndian.Uint32(sp.buf[slotCountOff:])
}

func (sp *SlottedPage) setSlotCount(n uint32) {
	binary.LittleEndian.PutUint32(sp.buf[slotCountOff:], n)
}

// UsedSpace returns the number of bytes consumed by records at the front of
// the page, which is also the offset of the next record.
func (sp *SlottedPage) UsedSpace() uint32 {
	return binary.LittleEndian.Uint32(sp.buf[usedSpaceOff:])
}

func (sp *SlottedPage) setUsedSpace(n uint32) {
	binary.LittleEndian.PutUint32(sp.buf[usedSpaceOff:], n)
}

// Slot returns the directory entry for slot s (1-based).
func (sp *SlottedPage) Slot(s uint32) SlotEntry {
	off := slotCountOff - int(s)*slotEntrySize
	return SlotEntry{
		Offset: binary.LittleEndian.Uint32(sp.buf[off:]),
		Length: binary.LittleEndian.Uint32(sp.buf[off+4:]),
	}
}

func (sp *SlottedPage) setSlot(s uint32, e SlotEntry) {
	off := slotCountOff - int(s)*slotEntrySize
	binary.LittleEndian.PutUint32(sp.buf[off:], e.Offset)
	binary.LittleEndian.PutUint32(sp.buf[off+4:], e.Length)
}

// FreeSpace returns the number of free bytes between the record area and the
// slot directory.
func (sp *SlottedPage) FreeSpace() int {
	return slotCountOff - int(sp.SlotCount())*slotEntrySize - int(sp.UsedSpace())
}

// CanFit reports whether a record of n bytes plus its new slot entry fits in
// the free region.
func (sp *SlottedPage) CanFit(n int) bool {
	return n+slotEntrySize <= sp.FreeSpace()
}

// InsertRecord copies rec into the record area, appends a slot entry for it
// and updates the trailer. It returns the 1-based slot number of the new
// record. The caller must have checked CanFit.
func (sp *SlottedPage) InsertRecord(rec []byte) uint32 {
	used := sp.UsedSpace()
	copy(sp.buf[used:], rec)
	s := sp.SlotCount() + 1
	sp.setSlot(s, SlotEntry{Offset: used, Length: uint32(len(rec))})
	sp.setSlotCount(s)
	sp.setUsedSpace(used + uint32(len(rec)))
	return s
}

// Record returns the raw bytes of the record in slot s (1-based). The slot
// number must be in [1, SlotCount].
func (sp *SlottedPage) Record(s uint32) []byte {
	e := sp.Slot(s)
	return sp.buf[e.Offset : e.Offset+e.Length]
}
