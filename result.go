/*
 * SPDX-License-Identifier: Unlicense
 *
 * This is free and unencumbered software released into the public domain.
 *
 * Anyone is free to copy, modify, publish, use, compile, sell, or distribute this
 * software, either in source code form or as a compiled binary, for any purpose,
 * commercial or non-commercial, and by any means.
 *
 * For more information, please refer to <http://unlicense.org/>
 */

package main

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LayoutBox is a single detected layout region. Coordinates are x1, y1, x2, y2
// in the pixel space of the image given to the detector.
type LayoutBox struct {
	ClassID    int        `json:"cls_id"`
	Label      string     `json:"label"`
	Score      float32    `json:"score"`
	Coordinate [4]float32 `json:"coordinate"`
}

func newLayoutBox(classID int, label string, score float32, coords [4]float32) LayoutBox {
	return LayoutBox{
		ClassID:    classID,
		Label:      label,
		Score:      score,
		Coordinate: coords,
	}
}

// Rect returns the box rounded to integer pixels.
func (b LayoutBox) Rect() image.Rectangle {
	return coordsRect(b.Coordinate)
}

// LayoutResult is the report produced for one input image.
type LayoutResult struct {
	InputPath string      `json:"input_path"`
	PageIndex *int        `json:"page_index"`
	Boxes     []LayoutBox `json:"boxes"`
}

// LabelCount is one entry of a label distribution.
type LabelCount struct {
	Label string
	Count int
}

// LabelDistribution counts boxes per label, in first-seen order.
func (r *LayoutResult) LabelDistribution() []LabelCount {
	counts := []LabelCount{}
	index := map[string]int{}
	for _, box := range r.Boxes {
		if i, ok := index[box.Label]; ok {
			counts[i].Count++
			continue
		}
		index[box.Label] = len(counts)
		counts = append(counts, LabelCount{Label: box.Label, Count: 1})
	}
	return counts
}

// quoteLabel quotes like a Python string repr: single quotes unless the
// label holds a single quote and no double quote.
func quoteLabel(label string) string {
	label = strings.ReplaceAll(label, `\`, `\\`)
	if strings.Contains(label, "'") && !strings.Contains(label, `"`) {
		return `"` + label + `"`
	}
	return "'" + strings.ReplaceAll(label, "'", `\'`) + "'"
}

func formatDistribution(counts []LabelCount) string {
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", quoteLabel(c.Label), c.Count))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Print writes the report as indented JSON.
func (r *LayoutResult) Print(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// PrintSummary writes the region count and the label distribution.
func (r *LayoutResult) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\nDetected %d layout regions\n", len(r.Boxes))
	fmt.Fprintf(w, "Label distribution: %s\n", formatDistribution(r.LabelDistribution()))
}

// SaveToJSON writes the report to path. When path is a directory (existing,
// or ending with a separator) the report is written to res.json inside it.
func (r *LayoutResult) SaveToJSON(path string) (string, error) {
	if isDirPath(path) {
		path = filepath.Join(path, "res.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func isDirPath(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
