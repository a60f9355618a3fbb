// Package pagefile implements the paged file layer of tinyRBF.
//
// A paged file is an ordered array of fixed-size pages (PageSize bytes)
// stored in a single OS file. The first physical page is a hidden metadata
// page holding the user page count and three persistent I/O counters; user
// page indices are 0-based over the remaining pages, so user page p lives at
// byte offset (p+1)*PageSize.
package pagefile

import (
	"fmt"
	"os"
)

// PageSize is the fixed size of every page in bytes.
const PageSize = 4096

// Manager creates, destroys, opens and closes paged files.
type Manager struct{}

// NewManager returns a paged file manager.
func NewManager() *Manager {
	return &Manager{}
}

// CreateFile creates a new paged file and writes its hidden metadata page
// with all counters zeroed. The file must not already exist. On return the
// file is exactly PageSize bytes long and closed.
func (m *Manager) CreateFile(name string) error {
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("create %s: %w", name, ErrFileExists)
	}
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	buf := MarshalMetaPage(&MetaPage{})
	if _, err := f.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("write meta page: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush meta page: %w", err)
	}
	return nil
}

// DestroyFile removes a paged file.
func (m *Manager) DestroyFile(name string) error {
	if err := os.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("destroy %s: %w", name, ErrNotExist)
		}
		return fmt.Errorf("destroy %s: %w", name, err)
	}
	return nil
}

// OpenFile opens an existing paged file and binds it to h. The handle must
// not already be bound to an open file. The persistent counters are loaded
// from the hidden page into the handle.
func (m *Manager) OpenFile(name string, h *FileHandle) error {
	if h.file != nil {
		return fmt.Errorf("open %s: %w", name, ErrHandleOpen)
	}
	f, err := os.OpenFile(name, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("open %s: %w", name, ErrNotExist)
		}
		return fmt.Errorf("open %s: %w", name, err)
	}

	buf := make([]byte, PageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		f.Close()
		return fmt.Errorf("read meta page of %s: %w", name, err)
	}
	meta := UnmarshalMetaPage(buf)

	h.file = f
	h.name = name
	h.pages = meta.PageCount
	h.reads = meta.ReadCount
	h.writes = meta.WriteCount
	h.appends = meta.AppendCount
	return nil
}

// CloseFile flushes and closes the file bound to h and unbinds the handle.
// The counters are already persisted by the individual page operations.
func (m *Manager) CloseFile(h *FileHandle) error {
	if h.file == nil {
		return ErrHandleClosed
	}
	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("flush %s: %w", h.name, err)
	}
	err := h.file.Close()
	h.file = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", h.name, err)
	}
	return nil
}
