package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "layout.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseArgsDefaults(t *testing.T) {
	cfg, rest, err := parseArgs([]string{"page.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if !reflect.DeepEqual(rest, []string{"page.png"}) {
		t.Errorf("rest = %v", rest)
	}
	if cfg.Preprocess.MaxSize != 1920 || !cfg.Preprocess.EnhanceContrast || cfg.Preprocess.Alpha != 1.2 || cfg.Preprocess.Beta != 10 {
		t.Errorf("unexpected preprocess defaults %+v", cfg.Preprocess)
	}
	if !cfg.NestedFilter || cfg.OutputDir != "./output/" {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestParseArgsFlags(t *testing.T) {
	cfg, rest, err := parseArgs([]string{
		"-model", "m.onnx", "-threshold", "0.3", "-max-size", "0",
		"-contrast=false", "-no-nested-filter", "-output", "out", "page.png",
	}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if cfg.ModelPath != "m.onnx" || cfg.Threshold != 0.3 || cfg.Preprocess.MaxSize != 0 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Preprocess.EnhanceContrast || cfg.NestedFilter || cfg.OutputDir != "out" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if len(rest) != 1 {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseArgsConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
model: models/yolo.tflite
format: yolo
threshold: 0.4
nested_filter: false
preprocess:
  max_size: 1280
  enhance_contrast: false
`)
	cfg, _, err := parseArgs([]string{"-config", path, "-threshold", "0.6", "page.png"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if cfg.ModelPath != "models/yolo.tflite" || cfg.Format != formatYolo {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Threshold != 0.6 {
		t.Errorf("flag should override file, threshold = %v", cfg.Threshold)
	}
	if cfg.Preprocess.MaxSize != 1280 || cfg.Preprocess.EnhanceContrast {
		t.Errorf("preprocess = %+v", cfg.Preprocess)
	}
	if cfg.Preprocess.Alpha != 1.2 {
		t.Errorf("unset file values should keep defaults, alpha = %v", cfg.Preprocess.Alpha)
	}
	if cfg.NestedFilter {
		t.Error("nested_filter: false not applied")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "unknown_key: 1\n")); err == nil {
		t.Error("expected error for an unknown key")
	}
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty file should load: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("empty file cfg = %+v", cfg)
	}
}

func TestParseArgsValidation(t *testing.T) {
	tests := [][]string{
		{"-format", "rcnn", "a.png"},
		{"-threshold", "1.5", "a.png"},
		{"-nms", "-0.1", "a.png"},
		{"-max-size", "-1", "a.png"},
		{"-threads", "0", "a.png"},
	}
	for _, args := range tests {
		if _, _, err := parseArgs(args, io.Discard); err == nil {
			t.Errorf("parseArgs(%v) succeeded, want error", args)
		}
	}
}

func TestParseArgsHelp(t *testing.T) {
	_, _, err := parseArgs([]string{"-h"}, io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v, want flag.ErrHelp", err)
	}
}
