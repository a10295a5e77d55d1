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
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/mattn/go-tflite"
	"github.com/mattn/go-tflite/delegates/edgetpu"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

var (
	ErrModelLoad = errors.New("cannot load model")
	ErrInference = errors.New("inference failed")
)

// Detector finds layout regions in a BGR image. Boxes are expressed in the
// pixel space of that image.
type Detector interface {
	Detect(img gocv.Mat) ([]LayoutBox, error)
	Close()
}

// NewDetector selects the backend from the model file extension.
func NewDetector(cfg Config, labels []string) (Detector, error) {
	if strings.HasSuffix(strings.ToLower(cfg.ModelPath), ".onnx") {
		return NewDnnModel(cfg, labels)
	}
	return NewModel(cfg, labels)
}

// Model runs a TensorFlow Lite layout model.
type Model struct {
	model    *tflite.Model
	interp   *tflite.Interpreter
	postproc PostProcessing
	labels   []string
	scoreTh  float32
	nmsTh    float32
}

func NewModel(cfg Config, labels []string) (*Model, error) {
	postproc, err := newPostProcessing(cfg.Format)
	if err != nil {
		return nil, err
	}

	model := tflite.NewModelFromFile(cfg.ModelPath)
	if model == nil {
		return nil, fmt.Errorf("%w: %s", ErrModelLoad, cfg.ModelPath)
	}

	options := tflite.NewInterpreterOptions()
	defer options.Delete()

	options.SetNumThread(cfg.Threads)

	if cfg.EdgeTPU {
		devices, err := edgetpu.DeviceList()
		if err != nil {
			log.Warnf("Could not get EdgeTPU devices: %v", err)
		}
		if len(devices) == 0 {
			log.Warnln("No edge TPU devices found")
		} else {
			options.AddDelegate(edgetpu.New(devices[0]))
		}
	}

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return nil, fmt.Errorf("%w: cannot create interpreter", ErrModelLoad)
	}

	status := interpreter.AllocateTensors()
	if status != tflite.OK {
		interpreter.Delete()
		model.Delete()
		return nil, fmt.Errorf("%w: allocate tensors: %v", ErrModelLoad, status)
	}

	input := interpreter.GetInputTensor(0)
	log.WithFields(logrus.Fields{
		"model":  cfg.ModelPath,
		"format": cfg.Format,
		"input":  getTensorShape(input),
		"type":   input.Type(),
	}).Info("model loaded")

	return &Model{
		model:    model,
		interp:   interpreter,
		postproc: postproc,
		labels:   labels,
		scoreTh:  float32(cfg.Threshold),
		nmsTh:    float32(cfg.NMS),
	}, nil
}

func (m *Model) Close() {
	m.interp.Delete()
	m.model.Delete()
}

// fillInput resizes img to the input tensor and copies it as RGB.
func fillInput(input *tflite.Tensor, img gocv.Mat) error {
	wanted_height := input.Dim(1)
	wanted_width := input.Dim(2)

	rgb := gocv.NewMat()
	defer rgb.Close()
	gocv.CvtColor(img, &rgb, gocv.ColorBGRToRGB)

	resized := gocv.NewMat()
	defer resized.Close()
	gocv.Resize(rgb, &resized, image.Pt(wanted_width, wanted_height), 0, 0, gocv.InterpolationLinear)

	switch input.Type() {
	case tflite.UInt8:
		v, err := resized.DataPtrUint8()
		if err != nil {
			return err
		}
		input.SetUint8s(v)
	case tflite.Float32:
		floats := gocv.NewMat()
		defer floats.Close()
		resized.ConvertTo(&floats, gocv.MatTypeCV32F)
		v, err := floats.DataPtrFloat32()
		if err != nil {
			return err
		}
		for i := 0; i < len(v); i++ {
			v[i] = v[i] / 255.0
		}
		input.SetFloat32s(v)
	default:
		return fmt.Errorf("unsupported input type %v", input.Type())
	}
	return nil
}

// Detect runs the interpreter on img. The interpreter is not safe for
// concurrent use.
func (m *Model) Detect(img gocv.Mat) ([]LayoutBox, error) {
	input := m.interp.GetInputTensor(0)
	log.Debugln("input shape:", input.Name(), getTensorShape(input), input.Type(), input.QuantizationParams())
	if err := fillInput(input, img); err != nil {
		return nil, fmt.Errorf("%w: fill input: %v", ErrInference, err)
	}

	status := m.interp.Invoke()
	if status != tflite.OK {
		return nil, fmt.Errorf("%w: invoke status %v", ErrInference, status)
	}

	bboxes, confidences, classes := m.postproc.extractResult(m.interp, m.scoreTh, float32(img.Cols()), float32(img.Rows()))
	return filterOutput(bboxes, confidences, classes, m.scoreTh, m.nmsTh, m.labels), nil
}

// filterOutput applies NMS when nmsTh is positive and labels the survivors.
// Coordinates are kept as decoded; only NMS works on pixel rectangles.
func filterOutput(bboxes [][4]float32, confidences []float32, classes []int, scoreTh float32, nmsTh float32, labels []string) []LayoutBox {
	items := []LayoutBox{}
	if len(bboxes) == 0 {
		return items
	}

	var indices []int
	if nmsTh > 0 {
		rects := make([]image.Rectangle, len(bboxes))
		for i, c := range bboxes {
			rects[i] = coordsRect(c)
		}
		indices = gocv.NMSBoxes(rects, confidences, scoreTh, nmsTh)
	} else {
		indices = make([]int, len(bboxes))
		for i := range indices {
			indices[i] = i
		}
	}

	for _, idx := range indices {
		if idx < 0 || idx >= len(bboxes) {
			continue
		}
		classID := classes[idx]
		item := newLayoutBox(classID, getLabel(labels, classID), confidences[idx], bboxes[idx])
		log.Debugln(item)
		items = append(items, item)
	}
	return items
}
