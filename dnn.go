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

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// PP-DocLayout exports take a square 640 input.
const dnnInputSize = 640

// DnnModel runs an ONNX export of an RT-DETR layout model through the OpenCV
// DNN module. The export takes image, im_shape and scale_factor inputs and
// returns rows of class, score, x1, y1, x2, y2 in original image pixels.
type DnnModel struct {
	net     gocv.Net
	size    image.Point
	labels  []string
	scoreTh float32
	nmsTh   float32
}

func NewDnnModel(cfg Config, labels []string) (*DnnModel, error) {
	if cfg.Format != formatDetr {
		return nil, fmt.Errorf("%w: onnx models only support the %s format, got %s", ErrModelLoad, formatDetr, cfg.Format)
	}
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, cfg.ModelPath)
	}
	log.WithFields(logrus.Fields{
		"model":   cfg.ModelPath,
		"backend": "opencv-dnn",
	}).Info("model loaded")
	return &DnnModel{
		net:     net,
		size:    image.Pt(dnnInputSize, dnnInputSize),
		labels:  labels,
		scoreTh: float32(cfg.Threshold),
		nmsTh:   float32(cfg.NMS),
	}, nil
}

func (m *DnnModel) Close() {
	m.net.Close()
}

func pairMat(a, b float32) gocv.Mat {
	mat := gocv.NewMatWithSize(1, 2, gocv.MatTypeCV32F)
	mat.SetFloatAt(0, 0, a)
	mat.SetFloatAt(0, 1, b)
	return mat
}

func (m *DnnModel) Detect(img gocv.Mat) ([]LayoutBox, error) {
	if img.Empty() {
		return nil, fmt.Errorf("%w: empty image", ErrInference)
	}
	width, height := float32(img.Cols()), float32(img.Rows())

	blob := gocv.BlobFromImage(img, 1.0/255.0, m.size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()
	imShape := pairMat(float32(m.size.Y), float32(m.size.X))
	defer imShape.Close()
	scale := pairMat(float32(m.size.Y)/height, float32(m.size.X)/width)
	defer scale.Close()

	m.net.SetInput(blob, "image")
	m.net.SetInput(imShape, "im_shape")
	m.net.SetInput(scale, "scale_factor")

	out := m.net.Forward("")
	defer out.Close()
	if out.Empty() {
		return nil, fmt.Errorf("%w: empty output", ErrInference)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	loc := make([]float32, len(data))
	copy(loc, data)

	bboxes, confidences, classes := decodeDetrRows(loc, m.scoreTh, 1, 1, width, height)
	return filterOutput(bboxes, confidences, classes, m.scoreTh, m.nmsTh, m.labels), nil
}
