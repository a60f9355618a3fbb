package importer

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SimonWaldherr/tinyRBF/internal/storage/pagefile"
	"github.com/SimonWaldherr/tinyRBF/internal/storage/records"
)

var testDesc = []records.Attribute{
	{Name: "id", Type: records.TypeInt, Length: 4},
	{Name: "name", Type: records.TypeVarChar, Length: 50},
	{Name: "score", Type: records.TypeReal, Length: 4},
}

func openTestFile(t *testing.T) (*records.Manager, *pagefile.FileHandle) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "import.rbf")
	m := records.NewManager(pagefile.NewManager())
	if err := m.CreateFile(name); err != nil {
		t.Fatalf("create: %v", err)
	}
	h := &pagefile.FileHandle{}
	if err := m.OpenFile(name, h); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { m.CloseFile(h) })
	return m, h
}

func TestLoadCSV(t *testing.T) {
	m, h := openTestFile(t)

	csv := "id,name,score\n7,hi,3.5\n2,NULL,\n"
	res, err := LoadCSV(strings.NewReader(csv), m, h, testDesc, Options{
		HasHeader:    true,
		NullLiterals: []string{"NULL"},
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Rows != 2 {
		t.Fatalf("rows: got %d want 2", res.Rows)
	}
	if len(res.RIDs) != 2 || res.RIDs[0] != (records.RID{PageNum: 0, SlotNum: 1}) {
		t.Fatalf("rids: got %+v", res.RIDs)
	}

	// First row equals the canonical {7, "hi", 3.5} encoding.
	got, err := m.ReadRecord(h, testDesc, res.RIDs[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{
		0x00,
		0x07, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00, 'h', 'i',
		0x00, 0x00, 0x60, 0x40,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("row 1:\n got %v\nwant %v", got, want)
	}

	// Second row: name and score are null.
	got, err = m.ReadRecord(h, testDesc, res.RIDs[1])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want = []byte{0x60, 0x02, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("row 2:\n got %v\nwant %v", got, want)
	}
}

func TestLoadCSV_Latin1(t *testing.T) {
	m, h := openTestFile(t)

	// "café" with a Latin-1 encoded é (0xE9).
	raw := []byte("1,caf\xe9,1.5\n")
	res, err := LoadCSV(bytes.NewReader(raw), m, h, testDesc, Options{Encoding: "latin1"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Rows != 1 {
		t.Fatalf("rows: got %d want 1", res.Rows)
	}

	got, err := m.ReadRecord(h, testDesc, res.RIDs[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// The varchar payload starts after the bitmap, the int and the length.
	name := string(got[1+4+4 : 1+4+4+5])
	if name != "café" {
		t.Fatalf("name: got %q want %q", name, "café")
	}
}

func TestLoadCSV_BadCell(t *testing.T) {
	m, h := openTestFile(t)
	if _, err := LoadCSV(strings.NewReader("x,hi,1.0\n"), m, h, testDesc, Options{}); err == nil {
		t.Fatal("expected error for non-integer cell")
	}
	long := strings.Repeat("a", 51)
	if _, err := LoadCSV(strings.NewReader("1,"+long+",1.0\n"), m, h, testDesc, Options{}); err == nil {
		t.Fatal("expected error for varchar over its maximum")
	}
}

func TestDecoderFor_Unsupported(t *testing.T) {
	if _, err := decoderFor("ebcdic"); err == nil {
		t.Fatal("expected error for unsupported encoding")
	}
}
