package pagefile

import (
	"fmt"
)

// FileHandle is an open-file capability for one paged file. A handle is
// created unbound, bound by Manager.OpenFile and unbound by
// Manager.CloseFile. At most one handle may be bound to a given file at a
// time; a handle is not safe for concurrent use.
type FileHandle struct {
	file fileLike
	name string

	// In-memory mirrors of the hidden-page counters. Kept consistent with
	// the hidden page: every successful page operation persists the
	// incremented counter before returning.
	pages   uint32
	reads   uint32
	writes  uint32
	appends uint32
}

// fileLike is the slice of *os.File the handle needs. Tests substitute a
// failing implementation to exercise I/O error paths.
type fileLike interface {
	ReadAt(p []byte, off int64) (int, error)
	WriteAt(p []byte, off int64) (int, error)
	Sync() error
	Close() error
}

// Name returns the file name the handle was opened with.
func (h *FileHandle) Name() string {
	return h.name
}

// pageOffset maps a user page index to its byte offset, skipping the
// hidden page.
func pageOffset(p uint32) int64 {
	return (int64(p) + 1) * PageSize
}

// ReadPage reads user page p into buf. buf must be PageSize bytes. On
// success the persistent read counter is incremented.
func (h *FileHandle) ReadPage(p uint32, buf []byte) error {
	if h.file == nil {
		return ErrHandleClosed
	}
	if len(buf) != PageSize {
		return fmt.Errorf("read page %d: buffer is %d bytes, want %d", p, len(buf), PageSize)
	}
	if p >= h.pages {
		return fmt.Errorf("read page %d of %d: %w", p, h.pages, ErrPageOutOfRange)
	}
	if _, err := h.file.ReadAt(buf, pageOffset(p)); err != nil {
		return fmt.Errorf("read page %d: %w", p, err)
	}
	h.reads++
	if err := h.writeMetaField(metaReadCountOff, h.reads); err != nil {
		return fmt.Errorf("persist read counter: %w", err)
	}
	return nil
}

// WritePage overwrites user page p with buf and flushes. The page must
// already exist. On success the persistent write counter is incremented.
func (h *FileHandle) WritePage(p uint32, buf []byte) error {
	if h.file == nil {
		return ErrHandleClosed
	}
	if len(buf) != PageSize {
		return fmt.Errorf("write page %d: buffer is %d bytes, want %d", p, len(buf), PageSize)
	}
	if p >= h.pages {
		return fmt.Errorf("write page %d of %d: %w", p, h.pages, ErrPageOutOfRange)
	}
	if _, err := h.file.WriteAt(buf, pageOffset(p)); err != nil {
		return fmt.Errorf("write page %d: %w", p, err)
	}
	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("flush page %d: %w", p, err)
	}
	h.writes++
	if err := h.writeMetaField(metaWriteCountOff, h.writes); err != nil {
		return fmt.Errorf("persist write counter: %w", err)
	}
	return nil
}

// AppendPage writes buf as a new user page at the end of the file and
// flushes. On success both the append counter and the user page count are
// incremented and persisted.
func (h *FileHandle) AppendPage(buf []byte) error {
	if h.file == nil {
		return ErrHandleClosed
	}
	if len(buf) != PageSize {
		return fmt.Errorf("append page: buffer is %d bytes, want %d", len(buf), PageSize)
	}
	if _, err := h.file.WriteAt(buf, pageOffset(h.pages)); err != nil {
		return fmt.Errorf("append page %d: %w", h.pages, err)
	}
	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("flush appended page %d: %w", h.pages, err)
	}
	h.appends++
	if err := h.writeMetaField(metaAppendCountOff, h.appends); err != nil {
		return fmt.Errorf("persist append counter: %w", err)
	}
	h.pages++
	if err := h.writeMetaField(metaPageCountOff, h.pages); err != nil {
		return fmt.Errorf("persist page count: %w", err)
	}
	return nil
}

// NumberOfPages returns the number of user pages in the file.
func (h *FileHandle) NumberOfPages() uint32 {
	return h.pages
}

// CollectCounterValues returns the read, write and append counters.
func (h *FileHandle) CollectCounterValues() (reads, writes, appends uint32) {
	return h.reads, h.writes, h.appends
}
