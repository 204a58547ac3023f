package services

import (
	"errors"

	"github.com/dmitrijs2005/nodestore/internal/common"
	"github.com/dmitrijs2005/nodestore/internal/position"
)

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

// placeAfter returns a position between items[idx] and items[idx+1]; idx -1
// means before the first item. items must be sorted by position and must not
// contain the item being placed. When the gap is exhausted every item is
// renumbered through set and the position is computed again.
func placeAfter[T any](items []T, idx int, get func(T) float64, set func(T, float64) error) (float64, error) {
	pos, err := between(items, idx, get)
	if !errors.Is(err, common.ErrPositionExhausted) {
		return pos, err
	}
	if err := renumber(items, set); err != nil {
		return 0, err
	}
	return between(items, idx, get)
}

func between[T any](items []T, idx int, get func(T) float64) (float64, error) {
	var prev, next *float64
	if idx >= 0 {
		p := get(items[idx])
		prev = &p
	}
	if idx+1 < len(items) {
		n := get(items[idx+1])
		next = &n
	}
	return position.Insert(prev, next)
}

func renumber[T any](items []T, set func(T, float64) error) error {
	for i, p := range position.Renumber(len(items)) {
		if err := set(items[i], p); err != nil {
			return err
		}
	}
	return nil
}

// appendAfter returns the position following the last item.
func appendAfter[T any](items []T, get func(T) float64) float64 {
	if len(items) == 0 {
		return position.Append(nil)
	}
	last := get(items[len(items)-1])
	return position.Append(&last)
}
