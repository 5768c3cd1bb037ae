// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package duration converts the display strings stored on videos ("SS",
// "MM:SS", "HH:MM:SS") into canonical whole seconds.
package duration

import (
	"strconv"
	"strings"
)

// Parse converts a colon-separated display string into total seconds.
//
// Accepted layouts are "SS", "MM:SS" and "HH:MM:SS" with non-negative
// integer segments. Anything else (empty input, non-numeric segment, wrong
// segment count) returns (0, false). The zero value is a sentinel for
// "unknown duration", not an error: aggregators must check ok and exclude
// unknown durations from denominators.
func Parse(s string) (seconds int, ok bool) {
	if s == "" {
		return 0, false
	}

	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, false
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		nums[i] = n
	}

	switch len(nums) {
	case 1:
		return nums[0], true
	case 2:
		return nums[0]*60 + nums[1], true
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2], true
	}
	return 0, false
}

// Seconds is the lenient form of Parse: unparseable input yields 0.
// Callers that feed the result into averages should use Parse instead so
// unknown durations can be excluded from the count.
func Seconds(s string) int {
	n, _ := Parse(s)
	return n
}
