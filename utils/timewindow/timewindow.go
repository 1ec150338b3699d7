// Package timewindow selects the scrollable part of a time-ordered
// schedule list relative to the current time.
package timewindow

import (
	"math"
	"time"
)

// Slot is anything with a start and an end instant.
type Slot interface {
	Span() (start, end time.Time)
}

// FirstCurrent returns the index of the first slot that has not fully
// elapsed at now (end >= now). Items must be ordered by start time.
func FirstCurrent[T Slot](items []T, now time.Time) (int, bool) {
	for i, item := range items {
		if _, end := item.Span(); !end.Before(now) {
			return i, true
		}
	}
	return 0, false
}

// Filter returns up to capacity slots starting shift positions after the
// first current slot. ok is false when every slot has elapsed; a shift
// past the end yields an empty, non-nil window.
func Filter[T Slot](items []T, capacity, shift int, now time.Time) (window []T, ok bool) {
	i, ok := FirstCurrent(items, now)
	if !ok {
		return nil, false
	}
	capacity = max(capacity, 0)
	shift = max(shift, 0)

	n := len(items)
	start := min(addSat(i, shift), n)
	end := min(addSat(start, capacity), n)
	return items[start:end:end], true
}

// MaxShift is the largest shift that still leaves the last slot visible.
func MaxShift[T Slot](items []T, now time.Time) int {
	i, ok := FirstCurrent(items, now)
	if !ok {
		return 0
	}
	return max(len(items)-i-1, 0)
}

// Clamp bounds shift to [0, maxShift].
func Clamp(shift, maxShift int) int {
	return min(max(shift, 0), max(maxShift, 0))
}

func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}
