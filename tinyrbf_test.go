package tinyrbf_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	tinyrbf "github.com/SimonWaldherr/tinyRBF"
)

func TestFacade_RoundTrip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "facade.rbf")

	pfm := tinyrbf.NewPagedFileManager()
	rbfm := tinyrbf.NewRecordFileManager(pfm)

	desc := []tinyrbf.Attribute{
		{Name: "id", Type: tinyrbf.TypeInt, Length: 4},
		{Name: "name", Type: tinyrbf.TypeVarChar, Length: 20},
	}
	data := []byte{
		0x00,
		0x2A, 0x00, 0x00, 0x00,
		0x05, 0x00, 0x00, 0x00, 'a', 'l', 'i', 'c', 'e',
	}

	if err := rbfm.CreateFile(name); err != nil {
		t.Fatalf("create: %v", err)
	}
	var h tinyrbf.FileHandle
	if err := rbfm.OpenFile(name, &h); err != nil {
		t.Fatalf("open: %v", err)
	}

	rid, err := rbfm.InsertRecord(&h, desc, data)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	back, err := rbfm.ReadRecord(&h, desc, rid)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(back, data) {
		t.Fatal("roundtrip mismatch through the facade")
	}
	if err := rbfm.CloseFile(&h); err != nil {
		t.Fatalf("close: %v", err)
	}

	issues, err := tinyrbf.VerifyFile(name)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("verify issues: %v", issues)
	}

	if err := rbfm.DestroyFile(name); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if err := rbfm.DestroyFile(name); !errors.Is(err, tinyrbf.ErrNotExist) {
		t.Fatalf("destroy missing: got %v want ErrNotExist", err)
	}
}
