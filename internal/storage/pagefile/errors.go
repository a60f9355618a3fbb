package pagefile

import "errors"

var (
	// ErrFileExists is returned by CreateFile when the target file is
	// already present.
	ErrFileExists = errors.New("file already exists")

	// ErrNotExist is returned when destroying or opening a missing file.
	ErrNotExist = errors.New("file does not exist")

	// ErrHandleOpen is returned by OpenFile when the handle is already
	// bound to an open file.
	ErrHandleOpen = errors.New("handle already bound to an open file")

	// ErrHandleClosed is returned when operating on an unbound handle.
	ErrHandleClosed = errors.New("handle is not bound to an open file")

	// ErrPageOutOfRange is returned when a page index is not below the
	// current user page count.
	ErrPageOutOfRange = errors.New("page index out of range")
)
