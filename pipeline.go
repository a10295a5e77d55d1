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
	"context"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// Pipeline chains preprocessing, detection and the nested-box filter.
type Pipeline struct {
	detector Detector
	cfg      Config
}

func NewPipeline(detector Detector, cfg Config) *Pipeline {
	return &Pipeline{detector: detector, cfg: cfg}
}

// Run reads the image at path and processes it.
func (p *Pipeline) Run(ctx context.Context, path string) (*LayoutResult, gocv.Mat, error) {
	img, err := ReadImage(path)
	if err != nil {
		return nil, img, err
	}
	defer img.Close()
	return p.Process(ctx, img, path)
}

// Process detects the layout of img. The returned Mat is the preprocessed
// image the box coordinates refer to; the caller must close it.
func (p *Pipeline) Process(ctx context.Context, img gocv.Mat, inputPath string) (*LayoutResult, gocv.Mat, error) {
	prepared := PreprocessImage(img, p.cfg.Preprocess)
	if err := ctx.Err(); err != nil {
		prepared.Close()
		return nil, gocv.NewMat(), err
	}

	boxes, err := p.detector.Detect(prepared)
	if err != nil {
		prepared.Close()
		return nil, gocv.NewMat(), err
	}
	detected := len(boxes)
	if p.cfg.NestedFilter {
		boxes = FilterNestedBoxes(boxes)
	}
	if boxes == nil {
		boxes = []LayoutBox{}
	}

	log.WithFields(logrus.Fields{
		"input":    inputPath,
		"detected": detected,
		"kept":     len(boxes),
	}).Debug("layout detected")

	return &LayoutResult{InputPath: inputPath, Boxes: boxes}, prepared, nil
}

// Save writes the JSON report, the annotated image and, when enabled, the
// region crops into the output directory.
func (p *Pipeline) Save(result *LayoutResult, img gocv.Mat) error {
	dir := p.cfg.OutputDir
	imgPath, err := SaveToImg(dir, result.InputPath, img, result.Boxes)
	if err != nil {
		return err
	}
	jsonPath, err := result.SaveToJSON(filepath.Join(dir, "res.json"))
	if err != nil {
		return err
	}
	fields := logrus.Fields{"image": imgPath, "json": jsonPath}
	if p.cfg.SaveCrops {
		crops, err := SaveCrops(dir, result.InputPath, img, result.Boxes)
		if err != nil {
			return err
		}
		fields["crops"] = len(crops)
	}
	log.WithFields(fields).Info("results saved")
	return nil
}
