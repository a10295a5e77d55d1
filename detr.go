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

import "github.com/mattn/go-tflite"

const detrRowSize = 6

// DetrPostProcessing decodes RT-DETR style exports such as PP-DocLayout,
// whose output rows are class, score, x1, y1, x2, y2 in model input pixels.
type DetrPostProcessing struct {
	PostProcessing
}

func (p DetrPostProcessing) extractResult(interp *tflite.Interpreter, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int) {
	input := interp.GetInputTensor(0)
	sx := width / float32(input.Dim(2))
	sy := height / float32(input.Dim(1))
	for idx := 0; idx < interp.GetOutputTensorCount(); idx++ {
		output := interp.GetOutputTensor(idx)
		if output.NumDims() == 0 || output.Dim(output.NumDims()-1) != detrRowSize {
			continue
		}
		log.Debugln("output:", output.Name(), getTensorShape(output), output.Type())
		return decodeDetrRows(tensorFloats(output), scoreTh, sx, sy, width, height)
	}
	log.Warnln("no output tensor with rows of", detrRowSize)
	return nil, nil, nil
}

// decodeDetrRows keeps rows with a valid class and a score above scoreTh,
// scaling coordinates by sx, sy and clipping them to width x height.
func decodeDetrRows(loc []float32, scoreTh float32, sx, sy, width, height float32) ([][4]float32, []float32, []int) {
	bboxes := [][4]float32{}
	confidences := []float32{}
	classes := []int{}
	for off := 0; off+detrRowSize <= len(loc); off += detrRowSize {
		classID := int(loc[off])
		score := loc[off+1]
		if classID < 0 || score <= scoreTh {
			continue
		}
		x1 := clamp(loc[off+2]*sx, 0, width)
		y1 := clamp(loc[off+3]*sy, 0, height)
		x2 := clamp(loc[off+4]*sx, 0, width)
		y2 := clamp(loc[off+5]*sy, 0, height)
		bboxes = append(bboxes, newCoords(x1, y1, x2, y2))
		confidences = append(confidences, score)
		classes = append(classes, classID)
	}
	return bboxes, confidences, classes
}
