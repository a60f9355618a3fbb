// Package importer loads CSV data into record files.
//
// Each CSV row is converted to the external record encoding for the given
// attribute list and inserted through the record file manager. Cells are
// parsed per attribute type; empty cells and configured null literals
// become null fields.
package importer

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/SimonWaldherr/tinyRBF/internal/storage/pagefile"
	"github.com/SimonWaldherr/tinyRBF/internal/storage/records"
)

// Options configures a CSV import.
type Options struct {
	// Comma is the field delimiter (default ',').
	Comma rune
	// HasHeader skips the first row.
	HasHeader bool
	// NullLiterals are cell values treated as NULL besides the empty
	// cell (e.g. "NULL", "\\N", "n/a").
	NullLiterals []string
	// Encoding names the input charset: "" or "utf-8" for UTF-8 input,
	// "latin1" / "iso-8859-1" or "windows-1252" for legacy encodings.
	Encoding string
	// Log, when set, reports progress and summary at Info level.
	Log *logrus.Logger
}

// Result summarises a finished import.
type Result struct {
	Rows int   // records inserted
	RIDs []records.RID
}

// LoadCSV reads CSV rows from r and inserts one record per row into the
// open file bound to h. The column order must match desc.
func LoadCSV(r io.Reader, m *records.Manager, h *pagefile.FileHandle, desc []records.Attribute, opts Options) (*Result, error) {
	if opts.Encoding != "" {
		dec, err := decoderFor(opts.Encoding)
		if err != nil {
			return nil, err
		}
		if dec != nil {
			r = transform.NewReader(r, dec)
		}
	}

	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = len(desc)

	res := &Result{}
	row := 0
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("row %d: %w", row+1, err)
		}
		row++
		if opts.HasHeader && row == 1 {
			continue
		}

		data, err := encodeRow(desc, cells, opts.NullLiterals)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", row, err)
		}
		rid, err := m.InsertRecord(h, desc, data)
		if err != nil {
			return res, fmt.Errorf("row %d: %w", row, err)
		}
		res.Rows++
		res.RIDs = append(res.RIDs, rid)

		if opts.Log != nil && res.Rows%1000 == 0 {
			opts.Log.WithField("rows", res.Rows).Info("import progress")
		}
	}

	if opts.Log != nil {
		opts.Log.WithFields(logrus.Fields{
			"rows":  res.Rows,
			"pages": h.NumberOfPages(),
		}).Info("import finished")
	}
	return res, nil
}

// decoderFor maps an encoding name to a charmap decoder. UTF-8 needs none.
func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(name) {
	case "utf-8", "utf8":
		return nil, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// encodeRow converts one CSV row to the external record encoding.
func encodeRow(desc []records.Attribute, cells []string, nullLiterals []string) ([]byte, error) {
	n := len(desc)
	nb := (n + 7) / 8
	data := make([]byte, nb, nb+64)
	for i, attr := range desc {
		cell := strings.TrimSpace(cells[i])
		if isNullCell(cell, nullLiterals) {
			data[i/8] |= 1 << (7 - i%8)
			continue
		}
		switch attr.Type {
		case records.TypeInt:
			v, err := strconv.ParseInt(cell, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("column %q: %q is not an integer", attr.Name, cell)
			}
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(int32(v)))
			data = append(data, b[:]...)
		case records.TypeReal:
			v, err := strconv.ParseFloat(cell, 32)
			if err != nil {
				return nil, fmt.Errorf("column %q: %q is not a number", attr.Name, cell)
			}
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(v)))
			data = append(data, b[:]...)
		case records.TypeVarChar:
			if uint32(len(cell)) > attr.Length {
				return nil, fmt.Errorf("column %q: value is %d bytes, maximum is %d",
					attr.Name, len(cell), attr.Length)
			}
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(len(cell)))
			data = append(data, b[:]...)
			data = append(data, cell...)
		default:
			return nil, fmt.Errorf("column %q: unknown type %v", attr.Name, attr.Type)
		}
	}
	return data, nil
}

func isNullCell(cell string, nullLiterals []string) bool {
	if cell == "" {
		return true
	}
	for _, l := range nullLiterals {
		if strings.EqualFold(cell, l) {
			return true
		}
	}
	return false
}
