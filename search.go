package navgrid

import (
	"github.com/zyedidia/generic/mapset"
)

// Movement costs, scaled by ten so diagonal steps stay integral (14 ≈ 10·√2).
const (
	StraightStepCost = 10
	DiagonalStepCost = 14
)

// pathNode carries the per-search bookkeeping for one cell. Nodes live for
// a single search; the grid itself is never written.
type pathNode struct {
	cell   *Cell
	gCost  int // cost from start along the best known route
	hCost  int // heuristic cost to the target
	parent *pathNode
	slot   int // index in the open heap
}

func (n *pathNode) fCost() int { return n.gCost + n.hCost }

// Less orders by fCost, breaking ties toward the node closer to the target.
func (n *pathNode) Less(other *pathNode) bool {
	if n.fCost() != other.fCost() {
		return n.fCost() < other.fCost()
	}
	return n.hCost < other.hCost
}

func (n *pathNode) HeapIndex() int     { return n.slot }
func (n *pathNode) SetHeapIndex(i int) { n.slot = i }

// Result is the outcome of a search. Path runs from start to target
// inclusive and stays empty when no route exists.
type Result struct {
	Path     []*Cell
	Cost     int
	Expanded int // cells moved to the closed set
	Found    bool
}

// FindPath runs A* between two cells of g, moving orthogonally or, when
// diagonal is true, across all eight neighbours. Missing or unwalkable
// endpoints fail with ErrInvalidEndpoint. An exhausted search is not an
// error: it returns an empty path with Found false. When start equals
// target the path holds that single cell.
func FindPath(g *Grid, start, target *Cell, diagonal bool) (Result, error) {
	if g == nil || start == nil || target == nil || !start.Walkable || !target.Walkable {
		return Result{}, ErrInvalidEndpoint
	}

	open := NewHeap[*pathNode](64)
	openByCell := make(map[*Cell]*pathNode)
	closed := mapset.New[*Cell]()

	startNode := &pathNode{cell: start, hCost: heuristic(start, target, diagonal), slot: -1}
	open.Insert(startNode)
	openByCell[start] = startNode

	expanded := 0
	for open.Len() > 0 {
		current, err := open.ExtractMin()
		if err != nil {
			// Cannot happen given the emptiness check above.
			return Result{Expanded: expanded}, err
		}
		delete(openByCell, current.cell)

		// Check if we reached the goal
		if current.cell == target {
			return Result{
				Path:     reconstructPath(current),
				Cost:     current.gCost,
				Expanded: expanded,
				Found:    true,
			}, nil
		}

		closed.Put(current.cell)
		expanded++

		for _, nb := range g.GetNeighbours(current.cell, diagonal) {
			if !nb.Walkable || closed.Has(nb) {
				continue
			}

			tentativeG := current.gCost + stepCost(current.cell, nb)

			node, seen := openByCell[nb]
			if !seen {
				node = &pathNode{
					cell:   nb,
					gCost:  tentativeG,
					hCost:  heuristic(nb, target, diagonal),
					parent: current,
					slot:   -1,
				}
				open.Insert(node)
				openByCell[nb] = node
			} else if tentativeG < node.gCost {
				// Found a better route to an open cell
				node.gCost = tentativeG
				node.parent = current
				open.UpdatePriority(node)
			}
		}
	}

	// No path found
	return Result{Expanded: expanded}, nil
}

// stepCost is the cost of moving between two adjacent cells.
func stepCost(a, b *Cell) int {
	if a.X != b.X && a.Y != b.Y {
		return DiagonalStepCost
	}
	return StraightStepCost
}

// heuristic estimates the remaining cost from a to b: Manhattan distance
// for orthogonal movement, octile distance when diagonals are allowed.
// Both are admissible under the step cost model, so found paths are
// cost-optimal.
func heuristic(a, b *Cell, diagonal bool) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if !diagonal {
		return StraightStepCost * (dx + dy)
	}
	if dx < dy {
		dx, dy = dy, dx
	}
	return DiagonalStepCost*dy + StraightStepCost*(dx-dy)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// reconstructPath walks parent links back to the start, then reverses so
// the path runs start → target.
func reconstructPath(end *pathNode) []*Cell {
	var path []*Cell
	for n := end; n != nil; n = n.parent {
		path = append(path, n.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
