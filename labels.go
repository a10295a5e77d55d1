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
	"bufio"
	"os"
	"strings"
)

// PP-DocLayout-L categories, in class id order.
var docLayoutLabels = []string{
	"paragraph_title",
	"image",
	"text",
	"number",
	"abstract",
	"content",
	"figure_title",
	"formula",
	"table",
	"table_title",
	"reference",
	"doc_title",
	"footnote",
	"header",
	"algorithm",
	"footer",
	"seal",
	"chart_title",
	"chart",
	"formula_number",
	"header_image",
	"footer_image",
	"aside_text",
}

// loadLabels reads one label per line. An empty filename selects the
// built-in PP-DocLayout-L categories.
func loadLabels(filename string) ([]string, error) {
	if filename == "" {
		return docLayoutLabels, nil
	}
	labels := []string{}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		label := strings.TrimSpace(scanner.Text())
		if label == "" {
			continue
		}
		labels = append(labels, label)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return labels, nil
}

func getLabel(labels []string, class int) string {
	label := "unknown"
	if class >= 0 && class < len(labels) {
		label = labels[class]
	}
	return label
}
