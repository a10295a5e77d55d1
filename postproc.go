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

	"github.com/mattn/go-tflite"
)

const (
	formatDetr = "detr"
	formatYolo = "yolo"
	formatSsd  = "ssd"
)

// PostProcessing turns the output tensors of an invoked interpreter into
// candidate boxes scaled to a width x height image.
type PostProcessing interface {
	extractResult(interp *tflite.Interpreter, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int)
}

func newPostProcessing(format string) (PostProcessing, error) {
	switch format {
	case formatDetr:
		return DetrPostProcessing{}, nil
	case formatYolo:
		return YoloPostProcessing{}, nil
	case formatSsd:
		return SsdPostProcessing{}, nil
	}
	return nil, fmt.Errorf("unknown model format %q", format)
}

func argmax(f []float32) (int, float32) {
	r, m := 0, f[0]
	for i, v := range f {
		if v > m {
			m = v
			r = i
		}
	}
	return r, m
}

func getTensorShape(tensor *tflite.Tensor) []int {
	shape := []int{}
	for idx := 0; idx < tensor.NumDims(); idx++ {
		shape = append(shape, tensor.Dim(idx))
	}
	return shape
}

// tensorFloats copies a tensor into a float32 slice, dequantizing uint8 data.
func tensorFloats(t *tflite.Tensor) []float32 {
	switch t.Type() {
	case tflite.UInt8:
		f := t.UInt8s()
		q := t.QuantizationParams()
		loc := make([]float32, len(f))
		for i, v := range f {
			if q.Scale != 0 {
				loc[i] = float32(q.Scale) * float32(int(v)-q.ZeroPoint)
			} else {
				loc[i] = float32(v) / 255
			}
		}
		return loc
	case tflite.Float32:
		f := t.Float32s()
		loc := make([]float32, len(f))
		copy(loc, f)
		return loc
	}
	return nil
}

// newCoords orders the corners so that x1 <= x2 and y1 <= y2.
func newCoords(x1, y1, x2, y2 float32) [4]float32 {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return [4]float32{x1, y1, x2, y2}
}

// coordsRect rounds coordinates to the nearest pixel.
func coordsRect(c [4]float32) image.Rectangle {
	return image.Rect(int(c[0]+0.5), int(c[1]+0.5), int(c[2]+0.5), int(c[3]+0.5))
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
