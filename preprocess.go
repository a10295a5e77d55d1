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

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

// ErrUnreadableImage is returned when an input path cannot be decoded.
var ErrUnreadableImage = errors.New("could not read image")

// ReadImage loads a colour image. The caller owns the returned Mat.
func ReadImage(path string) (gocv.Mat, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrUnreadableImage, path)
	}
	return img, nil
}

// DecodeImage is ReadImage for an in-memory encoded image.
func DecodeImage(data []byte) (gocv.Mat, error) {
	if len(data) == 0 {
		return gocv.NewMat(), fmt.Errorf("%w: empty payload", ErrUnreadableImage)
	}
	img, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	if img.Empty() {
		img.Close()
		return gocv.NewMat(), fmt.Errorf("%w: undecodable payload", ErrUnreadableImage)
	}
	return img, nil
}

// resizedDims returns the size an image of w x h takes once its largest side
// is capped to maxSize, and whether a resize is needed at all.
func resizedDims(w, h, maxSize int) (int, int, bool) {
	longest := max(w, h)
	if maxSize <= 0 || longest <= maxSize {
		return w, h, false
	}
	scale := float64(maxSize) / float64(longest)
	return int(float64(w) * scale), int(float64(h) * scale), true
}

// PreprocessImage returns a resized and contrast-enhanced copy of img.
// img itself is left untouched; the caller owns the result.
func PreprocessImage(img gocv.Mat, opts PreprocessOptions) gocv.Mat {
	out := img.Clone()

	w, h := out.Cols(), out.Rows()
	if nw, nh, ok := resizedDims(w, h, opts.MaxSize); ok {
		resized := gocv.NewMat()
		gocv.Resize(out, &resized, image.Pt(nw, nh), 0, 0, gocv.InterpolationLinear)
		out.Close()
		out = resized
		log.WithFields(logrus.Fields{
			"max_size": opts.MaxSize,
		}).Infof("Resized image from (%d, %d) to (%d, %d)", w, h, nw, nh)
	}

	if opts.EnhanceContrast {
		enhanced := gocv.NewMat()
		gocv.ConvertScaleAbs(out, &enhanced, opts.Alpha, opts.Beta)
		out.Close()
		out = enhanced
		log.WithFields(logrus.Fields{
			"alpha": opts.Alpha,
			"beta":  opts.Beta,
		}).Info("Applied contrast enhancement")
	}
	return out
}
