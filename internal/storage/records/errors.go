package records

import "errors"

var (
	// ErrInvalidSlot is returned when a RID's slot number is zero or
	// exceeds the page's slot count.
	ErrInvalidSlot = errors.New("invalid slot number")

	// ErrRecordTooLarge is returned when an encoded record plus its slot
	// entry and the page trailer cannot fit on an empty page.
	ErrRecordTooLarge = errors.New("record too large for a page")

	// ErrNotImplemented is returned by the declared extension operations
	// (delete, update, read-attribute, scan).
	ErrNotImplemented = errors.New("operation not implemented")
)
