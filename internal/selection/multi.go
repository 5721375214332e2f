package selection

import "fmt"

// MultiList tracks a list where any subset can be selected.
// Added items start out selected.
type MultiList[T comparable] struct {
	items    []T
	selected map[T]struct{}
	observer Observer[T]
}

// NewMultiList creates an empty multi-select list
func NewMultiList[T comparable]() *MultiList[T] {
	return &MultiList[T]{selected: make(map[T]struct{})}
}

// OnChange registers the observer called after every mutation
func (l *MultiList[T]) OnChange(fn Observer[T]) {
	l.observer = fn
}

// Add appends item and selects it
func (l *MultiList[T]) Add(item T) Snapshot[T] {
	l.items = append(l.items, item)
	l.selected[item] = struct{}{}
	return l.changed()
}

// AddAll appends every item and selects them all
func (l *MultiList[T]) AddAll(items ...T) Snapshot[T] {
	for _, item := range items {
		l.items = append(l.items, item)
		l.selected[item] = struct{}{}
	}
	return l.changed()
}

// Remove drops the first occurrence of item and deselects it
func (l *MultiList[T]) Remove(item T) Snapshot[T] {
	if i := indexOf(l.items, item); i >= 0 {
		l.items = append(l.items[:i:i], l.items[i+1:]...)
	}
	delete(l.selected, item)
	return l.changed()
}

// ToggleAt flips whether the item at index is selected
func (l *MultiList[T]) ToggleAt(index int) (Snapshot[T], error) {
	if index < 0 || index >= len(l.items) {
		return l.Snapshot(), fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(l.items))
	}

	item := l.items[index]
	if _, ok := l.selected[item]; ok {
		delete(l.selected, item)
	} else {
		l.selected[item] = struct{}{}
	}
	return l.changed(), nil
}

// Clear empties the list and the selection
func (l *MultiList[T]) Clear() Snapshot[T] {
	l.items = nil
	l.selected = make(map[T]struct{})
	return l.changed()
}

// CurrentSelection returns the selected items. Callers must not rely on the order.
func (l *MultiList[T]) CurrentSelection() []T {
	return l.Snapshot().Selected()
}

// Len returns the number of items
func (l *MultiList[T]) Len() int { return len(l.items) }

// Snapshot returns the current state without mutating it
func (l *MultiList[T]) Snapshot() Snapshot[T] {
	selected := make([]T, 0, len(l.selected))
	for item := range l.selected {
		selected = append(selected, item)
	}
	return newSnapshot(l.items, selected)
}

func (l *MultiList[T]) changed() Snapshot[T] {
	s := l.Snapshot()
	if l.observer != nil {
		l.observer(s)
	}
	return s
}
