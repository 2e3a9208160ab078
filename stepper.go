package navgrid

import "github.com/zyedidia/generic/mapset"

// StepRole classifies the cells reported to a StepObserver.
type StepRole int

const (
	StepOpened  StepRole = iota // cell entered the open set, or its route improved
	StepClosed                  // cell was finalized
	StepCurrent                 // cell is being expanded right now
	StepPath                    // cell lies on the final path
)

// String returns the role name used in logs and wire payloads.
func (r StepRole) String() string {
	switch r {
	case StepOpened:
		return "opened"
	case StepClosed:
		return "closed"
	case StepCurrent:
		return "current"
	case StepPath:
		return "path"
	default:
		return "unknown"
	}
}

// StepObserver receives search progress one cell at a time. The callback is
// supplied and owned by the caller; the library keeps no visitation state
// of its own.
type StepObserver func(cell *Cell, role StepRole)

// StepperOption configures a Stepper.
type StepperOption func(*Stepper)

// WithBatchSize sets how many node expansions each Step call performs.
// Values below 1 are clamped to 1.
func WithBatchSize(n int) StepperOption {
	return func(s *Stepper) {
		if n < 1 {
			n = 1
		}
		s.batch = n
	}
}

// WithObserver registers a callback for search progress events.
func WithObserver(fn StepObserver) StepperOption {
	return func(s *Stepper) { s.observe = fn }
}

// Stepper runs A* incrementally, expanding a fixed-size batch of nodes per
// Step call. The open and closed sets persist on the stepper between
// calls, so suspending and resuming changes nothing about the result: a
// drained stepper finds exactly the path FindPath would.
type Stepper struct {
	grid     *Grid
	target   *Cell
	diagonal bool
	batch    int
	observe  StepObserver

	open       *Heap[*pathNode]
	openByCell map[*Cell]*pathNode
	closed     mapset.Set[*Cell]

	expanded int
	done     bool
	result   Result
}

// NewStepper prepares an incremental search from start to target.
// Endpoints are validated the same way FindPath validates them. A grid
// carries at most one in-flight stepper: creating a new one cancels the
// previous one first, synchronously.
func NewStepper(g *Grid, start, target *Cell, diagonal bool, opts ...StepperOption) (*Stepper, error) {
	if g == nil || start == nil || target == nil || !start.Walkable || !target.Walkable {
		return nil, ErrInvalidEndpoint
	}
	if g.stepper != nil {
		g.stepper.Cancel()
	}

	s := &Stepper{
		grid:       g,
		target:     target,
		diagonal:   diagonal,
		batch:      1,
		open:       NewHeap[*pathNode](64),
		openByCell: make(map[*Cell]*pathNode),
		closed:     mapset.New[*Cell](),
	}
	for _, opt := range opts {
		opt(s)
	}

	startNode := &pathNode{cell: start, hCost: heuristic(start, target, diagonal), slot: -1}
	s.open.Insert(startNode)
	s.openByCell[start] = startNode
	s.emit(start, StepOpened)

	g.stepper = s
	return s, nil
}

// Step advances the search by one batch of node expansions and reports
// whether the search has finished. Calls after completion or cancellation
// are no-ops that keep reporting true.
func (s *Stepper) Step() bool {
	if s.done {
		return true
	}

	for i := 0; i < s.batch; i++ {
		if s.open.Len() == 0 {
			// Open set exhausted: no path
			s.finish(Result{Expanded: s.expanded})
			return true
		}

		current, err := s.open.ExtractMin()
		if err != nil {
			s.finish(Result{Expanded: s.expanded})
			return true
		}
		delete(s.openByCell, current.cell)
		s.emit(current.cell, StepCurrent)

		if current.cell == s.target {
			res := Result{
				Path:     reconstructPath(current),
				Cost:     current.gCost,
				Expanded: s.expanded,
				Found:    true,
			}
			s.finish(res)
			for _, c := range res.Path {
				s.emit(c, StepPath)
			}
			return true
		}

		s.closed.Put(current.cell)
		s.expanded++
		s.emit(current.cell, StepClosed)

		for _, nb := range s.grid.GetNeighbours(current.cell, s.diagonal) {
			if !nb.Walkable || s.closed.Has(nb) {
				continue
			}

			tentativeG := current.gCost + stepCost(current.cell, nb)

			node, seen := s.openByCell[nb]
			if !seen {
				node = &pathNode{
					cell:   nb,
					gCost:  tentativeG,
					hCost:  heuristic(nb, s.target, s.diagonal),
					parent: current,
					slot:   -1,
				}
				s.open.Insert(node)
				s.openByCell[nb] = node
				s.emit(nb, StepOpened)
			} else if tentativeG < node.gCost {
				node.gCost = tentativeG
				node.parent = current
				s.open.UpdatePriority(node)
				s.emit(nb, StepOpened)
			}
		}
	}

	return false
}

// Cancel abandons the search and synchronously discards the open and
// closed sets. The grid is untouched; the stepper reports done but not
// found.
func (s *Stepper) Cancel() {
	if s.done {
		return
	}
	s.done = true
	s.result = Result{Expanded: s.expanded}
	s.release()
}

// Done reports whether the search finished or was cancelled.
func (s *Stepper) Done() bool { return s.done }

// Found reports whether a path was found.
func (s *Stepper) Found() bool { return s.result.Found }

// Expanded returns the number of cells finalized so far.
func (s *Stepper) Expanded() int { return s.expanded }

// Result returns the search outcome. It is the zero Result until the
// search finishes.
func (s *Stepper) Result() Result { return s.result }

func (s *Stepper) emit(cell *Cell, role StepRole) {
	if s.observe != nil {
		s.observe(cell, role)
	}
}

func (s *Stepper) finish(res Result) {
	s.result = res
	s.done = true
	s.release()
}

func (s *Stepper) release() {
	s.open = nil
	s.openByCell = nil
	s.closed = mapset.New[*Cell]()
	if s.grid.stepper == s {
		s.grid.stepper = nil
	}
}
