// Package records implements the record-based file layer of tinyRBF on top
// of the pagefile layer.
//
// Every user page of a record file is a slotted page: encoded records packed
// from offset 0, and a slot directory plus an 8-byte trailer packed from the
// end of the page. Records are variable-length, nullable and typed; the
// attribute list describing a record is supplied by the caller on every
// operation and is not persisted inside the page.
package records

import "fmt"

// AttrType is the type of a record attribute.
type AttrType uint8

const (
	TypeInt AttrType = iota
	TypeReal
	TypeVarChar
)

// String returns a human-readable label for the attribute type.
func (t AttrType) String() string {
	switch t {
	case TypeInt:
		return "Int"
	case TypeReal:
		return "Real"
	case TypeVarChar:
		return "VarChar"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint8(t))
	}
}

// Attribute describes one field of a record. Length is the maximum payload
// size in bytes for VarChar attributes; for Int and Real it is the native
// width of the type (4).
type Attribute struct {
	Name   string
	Type   AttrType
	Length uint32
}

// RID identifies a stored record by page and slot. Slot numbering starts at
// 1 for the first record inserted on a page.
type RID struct {
	PageNum uint32
	SlotNum uint32
}

// CompOp is a comparison operator for scans.
type CompOp uint8

const (
	EQ CompOp = iota // =
	LT               // <
	LE               // <=
	GT               // >
	GE               // >=
	NE               // !=
	NoOp             // no condition
)

// String returns the operator's SQL-ish spelling.
func (op CompOp) String() string {
	switch op {
	case EQ:
		return "="
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	case GE:
		return ">="
	case NE:
		return "!="
	case NoOp:
		return "no-op"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint8(op))
	}
}
