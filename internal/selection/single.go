package selection

import "fmt"

// SingleList tracks a list where at most one item is selected.
// Adding or removing items invalidates the selection.
type SingleList[T comparable] struct {
	items    []T
	selected T
	has      bool
	observer Observer[T]
}

// NewSingleList creates an empty single-select list
func NewSingleList[T comparable]() *SingleList[T] {
	return &SingleList[T]{}
}

// OnChange registers the observer called after every mutation
func (l *SingleList[T]) OnChange(fn Observer[T]) {
	l.observer = fn
}

// Add appends item and clears the selection; the new item is not selected
func (l *SingleList[T]) Add(item T) Snapshot[T] {
	l.items = append(l.items, item)
	l.clearSelection()
	return l.changed()
}

// Remove drops the first occurrence of item and clears the selection
func (l *SingleList[T]) Remove(item T) Snapshot[T] {
	if i := indexOf(l.items, item); i >= 0 {
		l.items = append(l.items[:i:i], l.items[i+1:]...)
	}
	l.clearSelection()
	return l.changed()
}

// ToggleAt selects the item at index, or clears the selection if it is already selected
func (l *SingleList[T]) ToggleAt(index int) (Snapshot[T], error) {
	if index < 0 || index >= len(l.items) {
		return l.Snapshot(), fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(l.items))
	}

	item := l.items[index]
	if l.has && l.selected == item {
		l.clearSelection()
	} else {
		l.selected = item
		l.has = true
	}
	return l.changed(), nil
}

// Clear empties the list and the selection
func (l *SingleList[T]) Clear() Snapshot[T] {
	l.items = nil
	l.clearSelection()
	return l.changed()
}

// CurrentSelection returns the selected item, if any
func (l *SingleList[T]) CurrentSelection() (T, bool) {
	return l.selected, l.has
}

// Len returns the number of items
func (l *SingleList[T]) Len() int { return len(l.items) }

// Snapshot returns the current state without mutating it
func (l *SingleList[T]) Snapshot() Snapshot[T] {
	if l.has {
		return newSnapshot(l.items, []T{l.selected})
	}
	return newSnapshot(l.items, nil)
}

func (l *SingleList[T]) clearSelection() {
	var zero T
	l.selected = zero
	l.has = false
}

func (l *SingleList[T]) changed() Snapshot[T] {
	s := l.Snapshot()
	if l.observer != nil {
		l.observer(s)
	}
	return s
}
