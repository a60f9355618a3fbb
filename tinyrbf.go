// Package tinyrbf provides a paged file manager and a record-based file
// manager for disk-resident, variable-length, nullable, typed records.
//
// TinyRBF is the lowest two layers of a relational storage engine:
//   - A paged file layer that abstracts a file as an ordered array of
//     fixed-size pages with persistent I/O counters on a hidden meta page.
//   - A record layer that lays out records inside slotted pages and
//     addresses them by (page, slot) record identifiers.
//
// # Basic Usage
//
// Create a record file, insert and read back a record:
//
//	pfm := tinyrbf.NewPagedFileManager()
//	rbfm := tinyrbf.NewRecordFileManager(pfm)
//
//	desc := []tinyrbf.Attribute{
//	    {Name: "id", Type: tinyrbf.TypeInt, Length: 4},
//	    {Name: "name", Type: tinyrbf.TypeVarChar, Length: 50},
//	}
//
//	rbfm.CreateFile("users.rbf")
//	var h tinyrbf.FileHandle
//	rbfm.OpenFile("users.rbf", &h)
//
//	rid, _ := rbfm.InsertRecord(&h, desc, data) // data in the external encoding
//	back, _ := rbfm.ReadRecord(&h, desc, rid)
//	rbfm.PrintRecord(desc, back, os.Stdout)
//
//	rbfm.CloseFile(&h)
//
// The external record encoding is a null bitmap followed by the non-null
// field payloads in descriptor order; see the records package for the
// byte-level formats.
package tinyrbf

import (
	"github.com/SimonWaldherr/tinyRBF/internal/storage/pagefile"
	"github.com/SimonWaldherr/tinyRBF/internal/storage/records"
)

// PageSize is the fixed page size in bytes.
const PageSize = pagefile.PageSize

// Core types re-exported from the internal packages.
type (
	PagedFileManager  = pagefile.Manager
	FileHandle        = pagefile.FileHandle
	RecordFileManager = records.Manager
	Attribute         = records.Attribute
	AttrType          = records.AttrType
	RID               = records.RID
	CompOp            = records.CompOp
	ScanIterator      = records.ScanIterator
	FileInfo          = records.FileInfo
	PageInfo          = records.PageInfo
)

// Attribute types.
const (
	TypeInt     = records.TypeInt
	TypeReal    = records.TypeReal
	TypeVarChar = records.TypeVarChar
)

// Comparison operators for scans.
const (
	EQ   = records.EQ
	LT   = records.LT
	LE   = records.LE
	GT   = records.GT
	GE   = records.GE
	NE   = records.NE
	NoOp = records.NoOp
)

// Sentinel errors re-exported for errors.Is checks.
var (
	ErrFileExists     = pagefile.ErrFileExists
	ErrNotExist       = pagefile.ErrNotExist
	ErrHandleOpen     = pagefile.ErrHandleOpen
	ErrHandleClosed   = pagefile.ErrHandleClosed
	ErrPageOutOfRange = pagefile.ErrPageOutOfRange
	ErrInvalidSlot    = records.ErrInvalidSlot
	ErrRecordTooLarge = records.ErrRecordTooLarge
	ErrNotImplemented = records.ErrNotImplemented
)

// NewPagedFileManager returns a paged file manager.
func NewPagedFileManager() *PagedFileManager {
	return pagefile.NewManager()
}

// NewRecordFileManager returns a record file manager backed by pfm.
func NewRecordFileManager(pfm *PagedFileManager) *RecordFileManager {
	return records.NewManager(pfm)
}

// InspectFile returns page-level stats for a record file without touching
// its I/O counters.
func InspectFile(name string) (*records.FileInfo, error) {
	return records.InspectFile(name)
}

// VerifyFile checks the structural invariants of a record file and returns
// the issues found.
func VerifyFile(name string) ([]string, error) {
	return records.VerifyFile(name)
}
