package records

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ───────────────────────────────────────────────────────────────────────────
// Record codec
// ───────────────────────────────────────────────────────────────────────────
//
// External encoding (what callers pass in and get back):
//
//   [0 .. ⌈N/8⌉)   null bitmap, MSB-first: bit (7 − i%8) of byte i/8 set
//                  iff field i is null
//   then, for each non-null field in descriptor order:
//     Int      4 bytes LE signed
//     Real     4 bytes IEEE-754 LE
//     VarChar  4 bytes LE length L, then L raw bytes
//
// Internal (on-page) encoding:
//
//   [0:4]          num_fields  (uint32 LE)
//   [4 .. 4+⌈N/8⌉) null bitmap (copied from the input)
//   then N uint32 LE field-end offsets, each the offset within the record
//   at which field i's payload ends; a null field repeats the previous end
//   then the non-null payloads concatenated, VarChar without inline length
//
// Field i's payload bounds are recovered as [end[i−1], end[i]) with
// end[−1] = header size, so VarChar lengths come from the directory alone.

// nullBitmapSize returns ⌈n/8⌉.
func nullBitmapSize(n int) int {
	return (n + 7) / 8
}

// isNull reports whether field i is marked null in the bitmap.
func isNull(bitmap []byte, i int) bool {
	return bitmap[i/8]&(1<<(7-i%8)) != 0
}

// recordHeaderSize is the size of the internal header for n fields:
// the field count, the null bitmap and the field-end directory.
func recordHeaderSize(n int) int {
	return 4 + nullBitmapSize(n) + 4*n
}

// encodeRecord translates a record from the external to the internal
// encoding.
func encodeRecord(desc []Attribute, data []byte) ([]byte, error) {
	n := len(desc)
	nb := nullBitmapSize(n)
	if len(data) < nb {
		return nil, fmt.Errorf("record data shorter than its null bitmap (%d < %d)", len(data), nb)
	}
	bitmap := data[:nb]
	header := recordHeaderSize(n)

	rec := make([]byte, header, header+len(data))
	binary.LittleEndian.PutUint32(rec[0:], uint32(n))
	copy(rec[4:], bitmap)

	in := nb      // read cursor in data
	end := header // running end offset within the record
	for i, attr := range desc {
		if !isNull(bitmap, i) {
			switch attr.Type {
			case TypeInt, TypeReal:
				if in+4 > len(data) {
					return nil, fmt.Errorf("field %q: %w", attr.Name, errTruncated)
				}
				rec = append(rec, data[in:in+4]...)
				in += 4
				end += 4
			case TypeVarChar:
				if in+4 > len(data) {
					return nil, fmt.Errorf("field %q length: %w", attr.Name, errTruncated)
				}
				l := int(binary.LittleEndian.Uint32(data[in:]))
				in += 4
				if in+l > len(data) {
					return nil, fmt.Errorf("field %q payload: %w", attr.Name, errTruncated)
				}
				if uint32(l) > attr.Length {
					return nil, fmt.Errorf("field %q: length %d exceeds declared maximum %d", attr.Name, l, attr.Length)
				}
				rec = append(rec, data[in:in+l]...)
				in += l
				end += l
			default:
				return nil, fmt.Errorf("field %q: unknown type %v", attr.Name, attr.Type)
			}
		}
		binary.LittleEndian.PutUint32(rec[4+nb+4*i:], uint32(end))
	}
	return rec, nil
}

// decodeRecord translates a record from the internal back to the external
// encoding.
func decodeRecord(desc []Attribute, rec []byte) ([]byte, error) {
	n := len(desc)
	header := recordHeaderSize(n)
	if len(rec) < header {
		return nil, fmt.Errorf("stored record shorter than its header (%d < %d)", len(rec), header)
	}
	if got := int(binary.LittleEndian.Uint32(rec[0:])); got != n {
		return nil, fmt.Errorf("stored record has %d fields, descriptor has %d", got, n)
	}
	nb := nullBitmapSize(n)
	bitmap := rec[4 : 4+nb]
	dir := rec[4+nb : 4+nb+4*n]

	out := make([]byte, nb, len(rec))
	copy(out, bitmap)

	prev := uint32(header)
	for i := range desc {
		end := binary.LittleEndian.Uint32(dir[4*i:])
		if end < prev || int(end) > len(rec) {
			return nil, fmt.Errorf("field %q: corrupt end offset %d", desc[i].Name, end)
		}
		if !isNull(bitmap, i) {
			if desc[i].Type == TypeVarChar {
				var l [4]byte
				binary.LittleEndian.PutUint32(l[:], end-prev)
				out = append(out, l[:]...)
			}
			out = append(out, rec[prev:end]...)
		}
		prev = end
	}
	return out, nil
}

var errTruncated = errors.New("record data truncated")
