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
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
)

var palette = []color.RGBA{
	{R: 230, G: 25, B: 75, A: 255},
	{R: 60, G: 180, B: 75, A: 255},
	{R: 0, G: 130, B: 200, A: 255},
	{R: 245, G: 130, B: 48, A: 255},
	{R: 145, G: 30, B: 180, A: 255},
	{R: 70, G: 160, B: 160, A: 255},
	{R: 240, G: 50, B: 230, A: 255},
	{R: 128, G: 128, B: 0, A: 255},
	{R: 0, G: 0, B: 128, A: 255},
	{R: 170, G: 110, B: 40, A: 255},
	{R: 128, G: 0, B: 0, A: 255},
	{R: 0, G: 128, B: 128, A: 255},
}

func colorFor(classID int) color.RGBA {
	if classID < 0 {
		classID = -classID
	}
	return palette[classID%len(palette)]
}

// outputBase is the input file name without directory and extension.
func outputBase(inputPath string) string {
	base := filepath.Base(inputPath)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "image"
	}
	return base
}

func drawBoxes(img *gocv.Mat, boxes []LayoutBox) {
	for _, box := range boxes {
		c := colorFor(box.ClassID)
		r := box.Rect()
		gocv.Rectangle(img, r, c, 2)

		caption := fmt.Sprintf("%s %.2f", box.Label, box.Score)
		size := gocv.GetTextSize(caption, gocv.FontHersheySimplex, 0.5, 1)
		top := r.Min.Y - size.Y - 6
		if top < 0 {
			top = r.Min.Y
		}
		bg := image.Rect(r.Min.X, top, r.Min.X+size.X+4, top+size.Y+6)
		gocv.Rectangle(img, bg, c, -1)
		gocv.PutText(img, caption, image.Pt(bg.Min.X+2, bg.Max.Y-3), gocv.FontHersheySimplex, 0.5, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 1)
	}
}

// SaveToImg draws boxes on a copy of img and writes <dir>/<base>_res.png.
func SaveToImg(dir, inputPath string, img gocv.Mat, boxes []LayoutBox) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	annotated := img.Clone()
	defer annotated.Close()
	drawBoxes(&annotated, boxes)

	path := filepath.Join(dir, outputBase(inputPath)+"_res.png")
	if ok := gocv.IMWrite(path, annotated); !ok {
		return "", fmt.Errorf("write %s failed", path)
	}
	return path, nil
}

func sanitizeLabel(label string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, label)
}

// SaveCrops writes every box of img as <dir>/crops/<base>_<idx>_<label>.png.
// Boxes falling outside the image are skipped.
func SaveCrops(dir, inputPath string, img gocv.Mat, boxes []LayoutBox) ([]string, error) {
	src, err := img.ToImage()
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	cropDir := filepath.Join(dir, "crops")
	if err := os.MkdirAll(cropDir, 0o755); err != nil {
		return nil, fmt.Errorf("create crop directory: %w", err)
	}

	base := outputBase(inputPath)
	paths := []string{}
	for idx, box := range boxes {
		r := box.Rect().Intersect(src.Bounds())
		if r.Empty() {
			continue
		}
		path := filepath.Join(cropDir, fmt.Sprintf("%s_%d_%s.png", base, idx, sanitizeLabel(box.Label)))
		if err := imaging.Save(imaging.Crop(src, r), path); err != nil {
			return paths, fmt.Errorf("save crop %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
