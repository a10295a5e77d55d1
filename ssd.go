/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package main

import "github.com/mattn/go-tflite"

// SsdPostProcessing reads the TFLite detection post-process outputs:
// boxes (ymin, xmin, ymax, xmax normalised), classes, scores and count.
type SsdPostProcessing struct {
	PostProcessing
}

func (p SsdPostProcessing) extractResult(interp *tflite.Interpreter, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int) {
	if interp.GetOutputTensorCount() < 3 {
		log.Warnln("ssd model needs at least 3 outputs, got", interp.GetOutputTensorCount())
		return nil, nil, nil
	}
	l := tensorFloats(interp.GetOutputTensor(0))
	c := tensorFloats(interp.GetOutputTensor(1))
	s := tensorFloats(interp.GetOutputTensor(2))
	count := len(s)
	if interp.GetOutputTensorCount() > 3 {
		if n := tensorFloats(interp.GetOutputTensor(3)); len(n) > 0 {
			count = int(n[0])
		}
	}
	log.Debugf("output: %vx%vx%v count=%v", len(l), len(c), len(s), count)
	return decodeSsd(l, c, s, count, scoreTh, width, height)
}

func decodeSsd(l, c, s []float32, count int, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int) {
	bboxes := [][4]float32{}
	confidences := []float32{}
	classes := []int{}
	for idx := 0; idx < count && 4*idx+3 < len(l) && idx < len(c) && idx < len(s); idx++ {
		if s[idx] <= scoreTh {
			continue
		}
		ymin := clamp(l[4*idx], 0, 1) * height
		xmin := clamp(l[4*idx+1], 0, 1) * width
		ymax := clamp(l[4*idx+2], 0, 1) * height
		xmax := clamp(l[4*idx+3], 0, 1) * width
		bboxes = append(bboxes, newCoords(xmin, ymin, xmax, ymax))
		confidences = append(confidences, s[idx])
		classes = append(classes, int(c[idx]))
	}
	return bboxes, confidences, classes
}
