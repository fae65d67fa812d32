package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	data, err := ArchiveAssets([]Asset{
		{Filename: "history.json", Data: []byte(`[]`)},
		{Filename: "posters/1.png", Data: []byte("png")},
	})
	if err != nil {
		t.Fatalf("ArchiveAssets: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "history.json" || zr.File[1].Name != "posters/1.png" {
		t.Fatalf("unexpected files %v", zr.File)
	}
	rc, _ := zr.File[1].Open()
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "png" {
		t.Fatalf("content = %q", got)
	}
}

func TestArchiveAssetsRejectsDuplicates(t *testing.T) {
	if _, err := ArchiveAssets([]Asset{{Filename: "a"}, {Filename: "a"}}); err == nil {
		t.Fatalf("expected duplicate error")
	}
}
