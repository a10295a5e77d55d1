package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("text\n\n  title \nfigure\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	labels, err := loadLabels(path)
	if err != nil {
		t.Fatalf("loadLabels failed: %v", err)
	}
	if want := []string{"text", "title", "figure"}; !reflect.DeepEqual(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}

	if _, err := loadLabels(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing label file")
	}
}

func TestDefaultLabels(t *testing.T) {
	labels, err := loadLabels("")
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 23 {
		t.Errorf("got %d default labels, want 23", len(labels))
	}
	if getLabel(labels, 1) != "image" || getLabel(labels, 8) != "table" {
		t.Errorf("unexpected label order: %v", labels)
	}
	if getLabel(labels, 23) != "unknown" || getLabel(labels, -1) != "unknown" {
		t.Error("out of range class ids should map to unknown")
	}
}
