package records

import (
	"bytes"
	"encoding/binary"
	"testing"
)

var testDesc = []Attribute{
	{Name: "a", Type: TypeInt, Length: 4},
	{Name: "b", Type: TypeVarChar, Length: 50},
	{Name: "c", Type: TypeReal, Length: 4},
}

// r1 is {a=7, b="hi", c=3.5} in the external encoding.
func r1() []byte {
	return []byte{
		0x00,                   // null bitmap
		0x07, 0x00, 0x00, 0x00, // a = 7
		0x02, 0x00, 0x00, 0x00, 'h', 'i', // b = "hi"
		0x00, 0x00, 0x60, 0x40, // c = 3.5
	}
}

// r2 is {a=NULL, b="x", c=NULL} in the external encoding.
func r2() []byte {
	return []byte{
		0xA0,                        // fields 0 and 2 null
		0x01, 0x00, 0x00, 0x00, 'x', // b = "x"
	}
}

func TestEncodeRecord_Layout(t *testing.T) {
	rec, err := encodeRecord(testDesc, r1())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Header: field count, bitmap, three end offsets.
	// header size = 4 + 1 + 12 = 17; ends: 21, 23, 27.
	want := []byte{
		0x03, 0x00, 0x00, 0x00, // num_fields
		0x00,                   // bitmap
		21, 0x00, 0x00, 0x00,   // end of a
		23, 0x00, 0x00, 0x00,   // end of b
		27, 0x00, 0x00, 0x00,   // end of c
		0x07, 0x00, 0x00, 0x00, // a
		'h', 'i', // b, no inline length
		0x00, 0x00, 0x60, 0x40, // c
	}
	if !bytes.Equal(rec, want) {
		t.Fatalf("internal encoding mismatch:\n got %v\nwant %v", rec, want)
	}
}

func TestEncodeRecord_NullsShareOffsets(t *testing.T) {
	rec, err := encodeRecord(testDesc, r2())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(rec) != 17+1 {
		t.Fatalf("record length: got %d want 18", len(rec))
	}
	// end[0] repeats the header size, end[2] repeats end[1].
	ends := []uint32{
		binary.LittleEndian.Uint32(rec[5:]),
		binary.LittleEndian.Uint32(rec[9:]),
		binary.LittleEndian.Uint32(rec[13:]),
	}
	if ends[0] != 17 || ends[1] != 18 || ends[2] != 18 {
		t.Fatalf("end offsets: got %v want [17 18 18]", ends)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	cases := map[string][]byte{
		"all fields":    r1(),
		"nulls":         r2(),
		"empty varchar": {0x00, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x60, 0x40},
		"all null":      {0xE0},
	}
	for name, data := range cases {
		rec, err := encodeRecord(testDesc, data)
		if err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		back, err := decodeRecord(testDesc, rec)
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if !bytes.Equal(back, data) {
			t.Fatalf("%s: roundtrip mismatch:\n got %v\nwant %v", name, back, data)
		}
	}
}

func TestEncodeRecord_Truncated(t *testing.T) {
	cases := [][]byte{
		{},                             // no bitmap
		{0x00, 0x07, 0x00},             // int cut short
		{0x00, 0x07, 0x00, 0x00, 0x00}, // missing varchar length
		{0x00, 0x07, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x00, 'h'}, // varchar payload cut short
	}
	for i, data := range cases {
		if _, err := encodeRecord(testDesc, data); err == nil {
			t.Errorf("case %d: expected error for truncated input", i)
		}
	}
}

func TestEncodeRecord_VarCharOverMax(t *testing.T) {
	long := make([]byte, 1+4+51)
	binary.LittleEndian.PutUint32(long[1:], 51)
	long[0] = 0xA0 // a and c null, b present
	if _, err := encodeRecord(testDesc, long); err == nil {
		t.Fatal("expected error for varchar longer than its declared maximum")
	}
}

func TestDecodeRecord_FieldCountMismatch(t *testing.T) {
	rec, err := encodeRecord(testDesc, r1())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	short := []Attribute{{Name: "a", Type: TypeInt, Length: 4}}
	if _, err := decodeRecord(short, rec); err == nil {
		t.Fatal("expected error for descriptor/record field count mismatch")
	}
}

func BenchmarkEncodeRecord(b *testing.B) {
	data := r1()
	for i := 0; i < b.N; i++ {
		if _, err := encodeRecord(testDesc, data); err != nil {
			b.Fatal(err)
		}
	}
}
