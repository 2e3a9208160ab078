package navgrid

import (
	"math/rand"
	"time"
)

// MinMazeSize is the smallest maze the carver produces. Smaller requests
// are clamped up so the odd room lattice keeps at least two rooms per axis.
const MinMazeSize = 5

// MazeConfig configures GenerateMaze. A nil Seed draws entropy from the
// clock; any set value, zero included, reproduces the same maze bit for
// bit.
type MazeConfig struct {
	Columns int
	Rows    int
	Seed    *int64
}

// GenerateMaze carves a perfect maze with recursive backtracking: rooms sit
// on odd coordinates, walls on even ones, and every room is reachable
// through exactly one route. Two openings on opposite edges connect the
// maze to the outside. Dimensions below MinMazeSize are clamped up, so the
// returned pattern can be larger than requested.
func GenerateMaze(cfg MazeConfig) Pattern {
	columns := max(cfg.Columns, MinMazeSize)
	rows := max(cfg.Rows, MinMazeSize)

	p := NewPattern(columns, rows) // fully blocked
	rng := newRNG(cfg.Seed)

	// Largest odd room coordinates inside the boundary walls.
	maxRoomX := lastOdd(columns - 2)
	maxRoomY := lastOdd(rows - 2)

	type point struct{ x, y int }
	dirs := [4]point{{0, -2}, {0, 2}, {-2, 0}, {2, 0}}

	start := point{1, 1}
	p.Set(start.x, start.y, true)
	stack := []point{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		rng.Shuffle(len(dirs), func(i, j int) {
			dirs[i], dirs[j] = dirs[j], dirs[i]
		})

		for _, d := range dirs {
			next := point{cur.x + d.x, cur.y + d.y}
			if next.x < 1 || next.x > maxRoomX || next.y < 1 || next.y > maxRoomY {
				continue
			}
			if p.At(next.x, next.y) {
				continue // already carved
			}
			// Knock out the wall between the two rooms, move in, and keep
			// the current room on the stack for backtracking.
			p.Set(cur.x+d.x/2, cur.y+d.y/2, true)
			p.Set(next.x, next.y, true)
			stack = append(stack, cur, next)
			break
		}
	}

	carveOpenings(p, maxRoomX, maxRoomY)
	return p
}

// carveOpenings opens the boundary on two opposite edges: an entry on the
// left edge beside the start room, and an exit corridor from the last room
// column to the right edge. Both attach as dead-end stubs, so the maze
// stays cycle-free.
func carveOpenings(p Pattern, maxRoomX, maxRoomY int) {
	p.Set(0, 1, true)
	for x := maxRoomX + 1; x < p.Columns(); x++ {
		p.Set(x, maxRoomY, true)
	}
}

// lastOdd returns the largest odd value not exceeding v.
func lastOdd(v int) int {
	if v%2 == 0 {
		return v - 1
	}
	return v
}

// newRNG builds the generator stream: time-seeded when seed is nil,
// reproducible otherwise.
func newRNG(seed *int64) *rand.Rand {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewSource(s))
}
