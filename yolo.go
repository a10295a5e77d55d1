/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package main

import "github.com/mattn/go-tflite"

// YoloPostProcessing decodes YOLO layout exports (e.g. DocLayout-YOLO) with
// rows of cx, cy, w, h, objectness followed by one score per class.
type YoloPostProcessing struct {
	PostProcessing
}

func (p YoloPostProcessing) extractResult(interp *tflite.Interpreter, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int) {
	bboxes := [][4]float32{}
	confidences := []float32{}
	classes := []int{}
	for idx := 0; idx < interp.GetOutputTensorCount(); idx++ {
		output := interp.GetOutputTensor(idx)
		log.Debugln("output:", output.Name(), getTensorShape(output), output.Type(), output.QuantizationParams())
		bboxes_, confidences_, classes_ := p.extractBoxesTensor(output, scoreTh, width, height)
		bboxes = append(bboxes, bboxes_...)
		confidences = append(confidences, confidences_...)
		classes = append(classes, classes_...)
	}
	return bboxes, confidences, classes
}

func (p YoloPostProcessing) extractBoxesTensor(output *tflite.Tensor, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int) {
	if output.NumDims() != 3 {
		log.Warnln("unsupported yolo output dims:", output.NumDims())
		return nil, nil, nil
	}
	return decodeYoloRows(tensorFloats(output), output.Dim(2), scoreTh, width, height)
}

// decodeYoloRows reads rows of rowSize values with normalised centre/size
// coordinates. The objectness gates the row, the best class gives the score.
func decodeYoloRows(loc []float32, rowSize int, scoreTh float32, width float32, height float32) ([][4]float32, []float32, []int) {
	bboxes := [][4]float32{}
	confidences := []float32{}
	classes := []int{}
	if rowSize <= 5 {
		return bboxes, confidences, classes
	}
	for idx := 0; idx+rowSize <= len(loc); idx += rowSize {
		if loc[idx+4] > scoreTh {
			x := loc[idx+0] * width
			y := loc[idx+1] * height
			w := loc[idx+2] * width
			h := loc[idx+3] * height
			bboxes = append(bboxes, newCoords(x-w/2, y-h/2, x+w/2, y+h/2))
			classId, score := argmax(loc[idx+5 : idx+rowSize])
			confidences = append(confidences, score)
			classes = append(classes, classId)
		}
	}
	return bboxes, confidences, classes
}
