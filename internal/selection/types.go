// Package selection holds the list containers behind the device and file panes.
//
// A container keeps an ordered list of items plus the subset the user has
// selected. Containers are not safe for concurrent use: the UI loop owns them
// and every mutation from another goroutine must be marshalled onto it first.
package selection

import "errors"

// ErrIndexOutOfRange is returned when a position outside the list is toggled.
// It always indicates a bug in the caller.
var ErrIndexOutOfRange = errors.New("selection: index out of range")

// Snapshot is an immutable view of a container taken right after a mutation.
// Rendering should be a pure function of a snapshot.
type Snapshot[T comparable] struct {
	items    []T
	selected map[T]struct{}
}

func newSnapshot[T comparable](items []T, selected []T) Snapshot[T] {
	s := Snapshot[T]{
		items:    make([]T, len(items)),
		selected: make(map[T]struct{}, len(selected)),
	}
	copy(s.items, items)
	for _, item := range selected {
		s.selected[item] = struct{}{}
	}
	return s
}

// Len returns the number of items
func (s Snapshot[T]) Len() int { return len(s.items) }

// At returns the item at index i
func (s Snapshot[T]) At(i int) T { return s.items[i] }

// Items returns a copy of the items in insertion order
func (s Snapshot[T]) Items() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// IsSelected reports whether item is selected
func (s Snapshot[T]) IsSelected(item T) bool {
	_, ok := s.selected[item]
	return ok
}

// SelectedAt reports whether the item at index i is selected
func (s Snapshot[T]) SelectedAt(i int) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	return s.IsSelected(s.items[i])
}

// Selected returns the selected items in item order, each value once
func (s Snapshot[T]) Selected() []T {
	out := make([]T, 0, len(s.selected))
	seen := make(map[T]struct{}, len(s.selected))
	for _, item := range s.items {
		if _, ok := s.selected[item]; !ok {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SelectedCount returns the number of distinct selected items
func (s Snapshot[T]) SelectedCount() int { return len(s.selected) }

// Observer is told about every mutation with the resulting snapshot
type Observer[T comparable] func(Snapshot[T])

func indexOf[T comparable](items []T, item T) int {
	for i, v := range items {
		if v == item {
			return i
		}
	}
	return -1
}

func contains[T comparable](items []T, item T) bool {
	return indexOf(items, item) >= 0
}
