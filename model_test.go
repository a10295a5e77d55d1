package main

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewDetectorMissingModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = filepath.Join(t.TempDir(), "missing.tflite")
	_, err := NewDetector(cfg, docLayoutLabels)
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("err = %v, want ErrModelLoad", err)
	}
}

func TestNewDetectorOnnxFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "layout.ONNX"
	cfg.Format = formatYolo
	_, err := NewDetector(cfg, docLayoutLabels)
	if !errors.Is(err, ErrModelLoad) {
		t.Errorf("err = %v, want ErrModelLoad", err)
	}
}

func TestNewModelUnknownFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Format = "centernet"
	if _, err := NewModel(cfg, nil); err == nil {
		t.Error("expected error for unknown format")
	}
}
