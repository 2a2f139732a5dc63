package catalog

import (
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/eunmann/micropak/pkg/fileutil"
	"github.com/eunmann/micropak/pkg/pakbuild"
)

func TestWriteRead(t *testing.T) {
	res, err := pakbuild.New().Build(context.Background(), []pakbuild.InputFile{
		{Path: "b/z.bin", Data: []byte{1, 2, 3}},
		{Path: "a.txt", Data: []byte("hi")},
		{Path: "empty", Data: nil},
	})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "game.parquet")
	if err := Write(path, "game.pak", res.Entries); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	if _, err := os.Stat(path + fileutil.TmpSuffix); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}

	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(rows) != len(res.Entries) {
		t.Fatalf("len(rows) = %d, want %d", len(rows), len(res.Entries))
	}

	want := Rows("game.pak", res.Entries)
	for i := range rows {
		if rows[i] != want[i] {
			t.Errorf("rows[%d] = %+v, want %+v", i, rows[i], want[i])
		}
	}

	if rows[0].Path != "a.txt" {
		t.Errorf("rows[0].Path = %q, want a.txt", rows[0].Path)
	}
	if rows[0].Offset != 0 {
		t.Errorf("rows[0].Offset = %d, want 0", rows[0].Offset)
	}
	if rows[0].Hash != "c22b5f9178342609428d6f51b2c5af4c0bde6a42" {
		t.Errorf("rows[0].Hash = %s, want sha1(\"hi\")", rows[0].Hash)
	}
}

func TestRows(t *testing.T) {
	e := pakbuild.Entry{Path: "x", Offset: 60, Size: 5, Hash: sha1.Sum([]byte("hello"))}
	rows := Rows("a.pak", []pakbuild.Entry{e})

	if rows[0].Hash != "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d" {
		t.Errorf("Hash = %s, want sha1(\"hello\")", rows[0].Hash)
	}
	if rows[0].Offset != 60 || rows[0].Size != 5 || rows[0].Archive != "a.pak" {
		t.Errorf("row = %+v", rows[0])
	}
}

func TestWriteEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	if err := Write(path, "empty.pak", nil); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("len(rows) = %d, want 0", len(rows))
	}
}

func TestRowsCustomDigest(t *testing.T) {
	digest := pakbuild.HashDigest(sha256.New)
	res, err := pakbuild.New(pakbuild.WithDigest(digest)).Build(context.Background(), []pakbuild.InputFile{
		{Path: "a.txt", Data: []byte("hi")},
	})
	if err != nil {
		t.Fatal(err)
	}

	rows := Rows("a.pak", res.Entries)
	want := digest([]byte("hi"))
	if rows[0].Hash != hex.EncodeToString(want[:]) {
		t.Errorf("Hash = %s, want configured digest %x", rows[0].Hash, want)
	}
}
