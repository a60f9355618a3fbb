package pagefile

import (
	"encoding/binary"
)

// ───────────────────────────────────────────────────────────────────────────
// Hidden metadata page
// ───────────────────────────────────────────────────────────────────────────
//
// Layout of physical page 0 (never visible through user page indices):
//
//  Offset  Size  Field
//  ──────  ────  ───────────────────
//  0       4     PageCount    uint32 LE  (user pages in the file)
//  4       4     ReadCount    uint32 LE  (successful ReadPage calls)
//  8       4     WriteCount   uint32 LE  (successful WritePage calls)
//  12      4     AppendCount  uint32 LE  (successful AppendPage calls)
//  16      4080  Reserved     zero-filled at creation

const (
	metaPageCountOff   = 0
	metaReadCountOff   = 4
	metaWriteCountOff  = 8
	metaAppendCountOff = 12
)

// MetaPage holds the parsed contents of the hidden page.
type MetaPage struct {
	PageCount   uint32
	ReadCount   uint32
	WriteCount  uint32
	AppendCount uint32
}

// MarshalMetaPage serializes a MetaPage into a full page buffer.
func MarshalMetaPage(mp *MetaPage) []byte {
	buf := make([]byte, PageSize)
	binary.LittleEndian.PutUint32(buf[metaPageCountOff:], mp.PageCount)
	binary.LittleEndian.PutUint32(buf[metaReadCountOff:], mp.ReadCount)
	binary.LittleEndian.PutUint32(buf[metaWriteCountOff:], mp.WriteCount)
	binary.LittleEndian.PutUint32(buf[metaAppendCountOff:], mp.AppendCount)
	return buf
}

// UnmarshalMetaPage decodes the hidden page from buf.
func UnmarshalMetaPage(buf []byte) *MetaPage {
	return &MetaPage{
		PageCount:   binary.LittleEndian.Uint32(buf[metaPageCountOff:]),
		ReadCount:   binary.LittleEndian.Uint32(buf[metaReadCountOff:]),
		WriteCount:  binary.LittleEndian.Uint32(buf[metaWriteCountOff:]),
		AppendCount: binary.LittleEndian.Uint32(buf[metaAppendCountOff:]),
	}
}

// writeMetaField persists a single counter to the hidden page and flushes.
// These writes land on the hidden page only, never on user pages, and are
// not themselves counted.
func (h *FileHandle) writeMetaField(off int64, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	if _, err := h.file.WriteAt(b[:], off); err != nil {
		return err
	}
	return h.file.Sync()
}
