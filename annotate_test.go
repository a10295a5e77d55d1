package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func TestOutputBase(t *testing.T) {
	tests := map[string]string{
		"/data/scan.page1.png": "scan.page1",
		"photo.jpg":            "photo",
		"upload":               "upload",
		"":                     "image",
	}
	for in, want := range tests {
		if got := outputBase(in); got != want {
			t.Errorf("outputBase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeLabel(t *testing.T) {
	if got := sanitizeLabel("doc title/2"); got != "doc_title_2" {
		t.Errorf("sanitizeLabel() = %q", got)
	}
}

func TestSaveToImg(t *testing.T) {
	img := newTestMat(120, 80, 200)
	defer img.Close()
	dir := filepath.Join(t.TempDir(), "out")

	path, err := SaveToImg(dir, "/tmp/page.jpg", img, []LayoutBox{
		{ClassID: 2, Label: "text", Score: 0.9, Coordinate: [4]float32{5, 5, 60, 30}},
		{ClassID: 1, Label: "image", Score: 0.8, Coordinate: [4]float32{10, 40, 100, 75}},
	})
	if err != nil {
		t.Fatalf("SaveToImg failed: %v", err)
	}
	if path != filepath.Join(dir, "page_res.png") {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("annotated image missing: %v", err)
	}
	if v := img.GetUCharAt(10, 10); v != 200 {
		t.Error("source image was drawn on")
	}
}

func TestSaveCrops(t *testing.T) {
	img := newTestMat(120, 80, 200)
	defer img.Close()
	dir := t.TempDir()

	paths, err := SaveCrops(dir, "page.png", img, []LayoutBox{
		{Label: "text", Coordinate: [4]float32{0, 0, 50, 20}},
		{Label: "image", Coordinate: [4]float32{500, 500, 600, 600}},
		{Label: "table", Coordinate: [4]float32{100, 60, 200, 200}},
	})
	if err != nil {
		t.Fatalf("SaveCrops failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("got %d crops, want 2: %v", len(paths), paths)
	}
	if paths[1] != filepath.Join(dir, "crops", "page_2_table.png") {
		t.Errorf("crop path = %s", paths[1])
	}
	crop, err := imaging.Open(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if b := crop.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Errorf("clipped crop size = %v, want 20x20", b.Size())
	}
}
