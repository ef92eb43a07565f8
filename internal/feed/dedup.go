package feed

import "sync"

// Window is a bounded, insertion-ordered set of recently seen signal
// keys. Once the ceiling is crossed it trims down to the target size in
// one batch, always keeping the most recently inserted keys.
type Window struct {
	mu    sync.Mutex
	max   int
	trim  int
	keys  map[string]struct{}
	order []string
}

// NewWindow creates a window with the given ceiling and trim target.
func NewWindow(max, trim int) *Window {
	return &Window{
		max:   max,
		trim:  trim,
		keys:  make(map[string]struct{}, max),
		order: make([]string, 0, max),
	}
}

// Seen records the key and reports whether it was already present.
func (w *Window) Seen(key string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.keys[key]; ok {
		return true
	}

	w.keys[key] = struct{}{}
	w.order = append(w.order, key)

	if len(w.order) > w.max {
		w.trimLocked()
	}

	return false
}

// trimLocked drops the oldest keys, keeping the newest trim-target
// entries. Batch-level eviction: keys inserted together survive together.
func (w *Window) trimLocked() {
	keep := w.order[len(w.order)-w.trim:]

	w.keys = make(map[string]struct{}, w.max)
	for _, key := range keep {
		w.keys[key] = struct{}{}
	}

	w.order = append(w.order[:0], keep...)
}

// Len returns the number of keys currently tracked.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return len(w.order)
}
