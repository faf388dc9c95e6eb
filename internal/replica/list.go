package replica

import (
	"slices"
	"sync"
)

// List is a reactive, in-memory copy of one collection.
// Readers always receive copies; subscribers are called after every refresh.
type List[T any] struct {
	mu    sync.RWMutex
	items []T
	clone func(T) T
	less  func(a, b T) int

	subMu  sync.Mutex
	subs   map[int]func([]T)
	nextID int
}

func newList[T any](clone func(T) T, less func(a, b T) int) *List[T] {
	return &List[T]{clone: clone, less: less, subs: make(map[int]func([]T))}
}

// Snapshot returns a copy of the current items.
func (l *List[T]) Snapshot() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.copyLocked()
}

// Find returns the first item matching pred.
func (l *List[T]) Find(pred func(T) bool) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, v := range l.items {
		if pred(v) {
			return l.clone(v), true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Subscribe registers fn to be called with a fresh snapshot after every
// refresh. It returns the current snapshot and a function that removes fn.
func (l *List[T]) Subscribe(fn func([]T)) ([]T, func()) {
	l.subMu.Lock()
	id := l.nextID
	l.nextID++
	l.subs[id] = fn
	l.subMu.Unlock()

	var once sync.Once
	return l.Snapshot(), func() {
		once.Do(func() {
			l.subMu.Lock()
			delete(l.subs, id)
			l.subMu.Unlock()
		})
	}
}

func (l *List[T]) set(items []T) {
	if l.less != nil {
		slices.SortStableFunc(items, l.less)
	}
	l.mu.Lock()
	l.items = items
	l.mu.Unlock()

	l.subMu.Lock()
	fns := make([]func([]T), 0, len(l.subs))
	for _, fn := range l.subs {
		fns = append(fns, fn)
	}
	l.subMu.Unlock()

	for _, fn := range fns {
		fn(l.Snapshot())
	}
}

func (l *List[T]) copyLocked() []T {
	out := make([]T, len(l.items))
	for i, v := range l.items {
		out[i] = l.clone(v)
	}
	return out
}
