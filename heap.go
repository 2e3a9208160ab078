package navgrid

// Entry is the constraint for heap elements: an ordered item that carries
// its own slot index. The heap keeps the index accurate on every move, so
// membership checks and priority updates need no search. The stored index
// belongs to the owning heap; an entry may reside in at most one heap at a
// time, and outside a heap its index is -1.
type Entry[T any] interface {
	comparable
	// Less reports whether the entry sorts before other.
	Less(other T) bool
	// HeapIndex returns the slot recorded by the owning heap.
	HeapIndex() int
	// SetHeapIndex records the entry's current slot, or -1 once removed.
	SetHeapIndex(i int)
}

// Heap is an indexed binary min-heap.
type Heap[T Entry[T]] struct {
	slots []T
}

// NewHeap returns an empty heap with room for capacity entries.
func NewHeap[T Entry[T]](capacity int) *Heap[T] {
	return &Heap[T]{slots: make([]T, 0, capacity)}
}

// Len returns the number of entries currently held.
func (h *Heap[T]) Len() int { return len(h.slots) }

// Peek returns the minimum entry without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if len(h.slots) == 0 {
		var zero T
		return zero, false
	}
	return h.slots[0], true
}

// Insert adds an entry and sifts it into place.
func (h *Heap[T]) Insert(e T) {
	e.SetHeapIndex(len(h.slots))
	h.slots = append(h.slots, e)
	h.up(len(h.slots) - 1)
}

// ExtractMin removes and returns the minimum entry. Extracting from an
// empty heap fails with ErrEmptyHeap.
func (h *Heap[T]) ExtractMin() (T, error) {
	var zero T
	n := len(h.slots)
	if n == 0 {
		return zero, ErrEmptyHeap
	}
	top := h.slots[0]
	last := h.slots[n-1]
	h.slots[n-1] = zero // release the vacated slot
	h.slots = h.slots[:n-1]
	if n > 1 {
		h.slots[0] = last
		last.SetHeapIndex(0)
		h.down(0)
	}
	top.SetHeapIndex(-1)
	return top, nil
}

// Contains reports whether e currently resides in this heap. The check is
// identity through the entry's stored index, which is only meaningful while
// the entry participates in no other heap.
func (h *Heap[T]) Contains(e T) bool {
	i := e.HeapIndex()
	return i >= 0 && i < len(h.slots) && h.slots[i] == e
}

// UpdatePriority restores heap order around an entry whose ordering key
// changed in place. Entries not residing in this heap are ignored.
func (h *Heap[T]) UpdatePriority(e T) {
	if !h.Contains(e) {
		return
	}
	i := e.HeapIndex()
	if !h.down(i) {
		h.up(i)
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.slots[i], h.slots[j] = h.slots[j], h.slots[i]
	h.slots[i].SetHeapIndex(i)
	h.slots[j].SetHeapIndex(j)
}

func (h *Heap[T]) up(j int) {
	for {
		i := (j - 1) / 2 // parent
		if i == j || !h.slots[j].Less(h.slots[i]) {
			break
		}
		h.swap(i, j)
		j = i
	}
}

func (h *Heap[T]) down(i0 int) bool {
	i := i0
	n := len(h.slots)
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && h.slots[j2].Less(h.slots[j1]) {
			j = j2 // right child
		}
		if !h.slots[j].Less(h.slots[i]) {
			break
		}
		h.swap(i, j)
		i = j
	}
	return i > i0
}
