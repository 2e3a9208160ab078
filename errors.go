package navgrid

import "errors"

var (
	// ErrEmptyHeap is returned by Heap.ExtractMin when the heap holds no
	// entries. The search loop checks emptiness before every extraction, so
	// seeing this error means a caller broke that contract.
	ErrEmptyHeap = errors.New("navgrid: extract from empty heap")

	// ErrInvalidEndpoint is returned when a search start or target cell is
	// missing or not walkable. An unreachable target is not an error; it
	// yields an empty path instead.
	ErrInvalidEndpoint = errors.New("navgrid: start or target cell is not walkable")
)
