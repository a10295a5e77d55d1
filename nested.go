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

import "strings"

// Labels treated as pictures by the nested-box filter. Matching is by
// substring, so header_image or figure_title also belong to the set.
var pictureLabels = []string{"image", "figure", "picture"}

func isPictureLabel(label string) bool {
	label = strings.ToLower(label)
	for _, t := range pictureLabels {
		if strings.Contains(label, t) {
			return true
		}
	}
	return false
}

// isInside reports whether inner lies within outer, bounds included.
func isInside(inner, outer [4]float32) bool {
	return inner[0] >= outer[0] && inner[1] >= outer[1] && inner[2] <= outer[2] && inner[3] <= outer[3]
}

// FilterNestedBoxes drops every picture box contained in another picture box.
// All pairs are compared against the unfiltered list, so two picture boxes
// with identical coordinates remove each other.
func FilterNestedBoxes(boxes []LayoutBox) []LayoutBox {
	if len(boxes) == 0 {
		return []LayoutBox{}
	}
	remove := make([]bool, len(boxes))
	for i := range boxes {
		if !isPictureLabel(boxes[i].Label) {
			continue
		}
		for j := range boxes {
			if i == j || !isPictureLabel(boxes[j].Label) {
				continue
			}
			if isInside(boxes[i].Coordinate, boxes[j].Coordinate) {
				remove[i] = true
				break
			}
		}
	}
	kept := make([]LayoutBox, 0, len(boxes))
	for k, box := range boxes {
		if !remove[k] {
			kept = append(kept, box)
		}
	}
	return kept
}
