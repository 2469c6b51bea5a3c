package hashing

import (
	"regexp"
	"strconv"
)

var (
	pageObject     = regexp.MustCompile(`/Type\s*/Page(?:[^s]|$)`)
	pagesThenCount = regexp.MustCompile(`/Type\s*/Pages\b[^>]*?/Count\s+(\d+)`)
	countThenPages = regexp.MustCompile(`/Count\s+(\d+)[^>]*?/Type\s*/Pages\b`)
	linearized     = regexp.MustCompile(`/Linearized\b[^>]*?/N\s+(\d+)`)
)

// PageCount estimates the number of pages in a PDF without parsing it. It
// counts page objects, then falls back to the page tree's /Count, then to
// the linearization dictionary, and finally to 1. Objects inside compressed
// object streams are invisible to it.
func PageCount(data []byte) int {
	if n := len(pageObject.FindAllIndex(data, -1)); n > 0 {
		return n
	}
	if n := maxCapture(data, pagesThenCount, countThenPages); n > 0 {
		return n
	}
	if n := maxCapture(data, linearized); n > 0 {
		return n
	}
	return 1
}

// maxCapture returns the largest integer captured by any of the patterns.
// The root of the page tree holds the largest /Count.
func maxCapture(data []byte, patterns ...*regexp.Regexp) int {
	best := 0
	for _, re := range patterns {
		for _, m := range re.FindAllSubmatch(data, -1) {
			if n, err := strconv.Atoi(string(m[1])); err == nil && n > best {
				best = n
			}
		}
	}
	return best
}
