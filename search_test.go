package navgrid

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// buildGrid turns ASCII rows into a grid: '.' walkable, '#' blocked.
// rows[0] is grid row 0.
func buildGrid(t *testing.T, rows ...string) *Grid {
	t.Helper()
	g := NewGrid(len(rows[0]), len(rows), 1, orb.Point{})
	for y, row := range rows {
		for x, ch := range row {
			g.SetWalkable(x, y, ch != '#')
		}
	}
	return g
}

// checkPath asserts the structural path properties: endpoints, step
// adjacency under the movement mode, and walkability of every cell.
func checkPath(t *testing.T, path []*Cell, start, target *Cell, diagonal bool) {
	t.Helper()
	if len(path) == 0 {
		t.Fatal("empty path")
	}
	if path[0] != start {
		t.Errorf("path starts at %v, want %v", path[0], start)
	}
	if path[len(path)-1] != target {
		t.Errorf("path ends at %v, want %v", path[len(path)-1], target)
	}
	for i, c := range path {
		if !c.Walkable {
			t.Errorf("path cell %v is not walkable", c)
		}
		if i == 0 {
			continue
		}
		dx, dy := abs(c.X-path[i-1].X), abs(c.Y-path[i-1].Y)
		if dx > 1 || dy > 1 || dx+dy == 0 {
			t.Errorf("cells %v and %v are not adjacent", path[i-1], c)
		}
		if !diagonal && dx+dy != 1 {
			t.Errorf("diagonal step %v -> %v in orthogonal mode", path[i-1], c)
		}
	}
}

// dijkstraCost is a brute-force shortest-path reference used to cross-check
// A*. It walks the same neighbour sets, so both sides share one movement
// model.
func dijkstraCost(g *Grid, start, target *Cell, diagonal bool) (int, bool) {
	dist := map[*Cell]int{start: 0}
	done := map[*Cell]bool{}

	for {
		var current *Cell
		best := 0
		for c, d := range dist {
			if !done[c] && (current == nil || d < best) {
				current, best = c, d
			}
		}
		if current == nil {
			return 0, false
		}
		if current == target {
			return best, true
		}
		done[current] = true

		for _, nb := range g.GetNeighbours(current, diagonal) {
			if !nb.Walkable || done[nb] {
				continue
			}
			alt := best + stepCost(current, nb)
			if d, seen := dist[nb]; !seen || alt < d {
				dist[nb] = alt
			}
		}
	}
}

func TestFindPathOpenGridOrthogonal(t *testing.T) {
	g := NewGrid(10, 10, 1, orb.Point{})
	start, target := g.CellAt(0, 0), g.CellAt(9, 9)

	res, err := FindPath(g, start, target, false)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a path")
	}
	if len(res.Path) != 19 {
		t.Errorf("path length = %d, want 19", len(res.Path))
	}
	if res.Cost != 180 {
		t.Errorf("cost = %d, want 180", res.Cost)
	}
	checkPath(t, res.Path, start, target, false)
}

func TestFindPathOpenGridDiagonal(t *testing.T) {
	g := NewGrid(10, 10, 1, orb.Point{})
	start, target := g.CellAt(0, 0), g.CellAt(9, 9)

	res, err := FindPath(g, start, target, true)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a path")
	}
	if len(res.Path) != 10 {
		t.Errorf("path length = %d, want 10", len(res.Path))
	}
	if res.Cost != 126 {
		t.Errorf("cost = %d, want 126", res.Cost)
	}
	checkPath(t, res.Path, start, target, true)
}

func TestFindPathStartEqualsTarget(t *testing.T) {
	g := NewGrid(5, 5, 1, orb.Point{})
	c := g.CellAt(2, 2)

	res, err := FindPath(g, c, c, false)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if !res.Found || len(res.Path) != 1 || res.Path[0] != c || res.Cost != 0 {
		t.Errorf("got %d cells at cost %d, want the single start cell at no cost", len(res.Path), res.Cost)
	}
}

func TestFindPathInvalidEndpoints(t *testing.T) {
	g := NewGrid(5, 5, 1, orb.Point{})
	g.SetWalkable(4, 4, false)

	cases := []struct {
		name          string
		grid          *Grid
		start, target *Cell
	}{
		{"blocked target", g, g.CellAt(0, 0), g.CellAt(4, 4)},
		{"blocked start", g, g.CellAt(4, 4), g.CellAt(0, 0)},
		{"nil start", g, nil, g.CellAt(0, 0)},
		{"nil target", g, g.CellAt(0, 0), nil},
		{"nil grid", nil, nil, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res, err := FindPath(c.grid, c.start, c.target, false)
			if !errors.Is(err, ErrInvalidEndpoint) {
				t.Fatalf("err = %v, want ErrInvalidEndpoint", err)
			}
			if len(res.Path) != 0 {
				t.Errorf("path should be empty, got %d cells", len(res.Path))
			}
		})
	}
}

func TestFindPathUnreachable(t *testing.T) {
	g := buildGrid(t,
		"..#..",
		"..#..",
		"..#..",
		"..#..",
		"..#..",
	)

	res, err := FindPath(g, g.CellAt(0, 2), g.CellAt(4, 2), true)
	if err != nil {
		t.Fatalf("an unreachable target is not an error, got %v", err)
	}
	if res.Found || len(res.Path) != 0 {
		t.Errorf("expected no path, got %d cells", len(res.Path))
	}
	if res.Expanded == 0 {
		t.Error("the search should have expanded the reachable side")
	}
}

func TestFindPathAroundObstacle(t *testing.T) {
	g := buildGrid(t,
		".....",
		".###.",
		".....",
	)

	start, target := g.CellAt(0, 1), g.CellAt(4, 1)
	res, err := FindPath(g, start, target, false)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if !res.Found {
		t.Fatal("expected a path around the wall")
	}
	checkPath(t, res.Path, start, target, false)
	if res.Cost != 60 {
		t.Errorf("cost = %d, want 60", res.Cost)
	}
}

func TestFindPathCostMatchesSteps(t *testing.T) {
	seed := int64(9)
	pattern := GenerateMaze(MazeConfig{Columns: 15, Rows: 15, Seed: &seed})
	g := NewGrid(15, 15, 1, orb.Point{})
	g.ApplyPattern(pattern)

	// Both endpoints are maze rooms, so a route always exists.
	res, err := FindPath(g, g.CellAt(1, 1), g.CellAt(13, 13), false)
	if err != nil {
		t.Fatalf("FindPath: %v", err)
	}
	if !res.Found {
		t.Fatal("maze rooms must be connected")
	}

	total := 0
	for i := 1; i < len(res.Path); i++ {
		total += stepCost(res.Path[i-1], res.Path[i])
	}
	if total != res.Cost {
		t.Errorf("cost = %d but the steps sum to %d", res.Cost, total)
	}
}

func TestFindPathMatchesDijkstra(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		for _, diagonal := range []bool{false, true} {
			pattern := GenerateRandomObstacles(ObstacleConfig{
				Columns: 12,
				Rows:    12,
				Density: 0.35,
				Seed:    &seed,
			})
			g := NewGrid(12, 12, 1, orb.Point{})
			g.ApplyPattern(pattern)
			g.SetWalkable(0, 0, true)
			g.SetWalkable(11, 11, true)

			start, target := g.CellAt(0, 0), g.CellAt(11, 11)
			res, err := FindPath(g, start, target, diagonal)
			if err != nil {
				t.Fatalf("seed %d diagonal %v: %v", seed, diagonal, err)
			}

			wantCost, reachable := dijkstraCost(g, start, target, diagonal)
			if res.Found != reachable {
				t.Fatalf("seed %d diagonal %v: found = %v, reference says %v", seed, diagonal, res.Found, reachable)
			}
			if !res.Found {
				continue
			}
			if res.Cost != wantCost {
				t.Errorf("seed %d diagonal %v: cost = %d, reference = %d", seed, diagonal, res.Cost, wantCost)
			}
			checkPath(t, res.Path, start, target, diagonal)
		}
	}
}

func TestFindPathExpansionBound(t *testing.T) {
	g := NewGrid(10, 10, 1, orb.Point{})
	res, err := FindPath(g, g.CellAt(0, 0), g.CellAt(9, 9), false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Expanded > 100 {
		t.Errorf("expanded %d nodes on a 100-cell grid; cells must close at most once", res.Expanded)
	}
}

func TestHeuristicIsAdmissible(t *testing.T) {
	// On an empty grid the true cost equals the heuristic, so any
	// overestimate would show up as a cost mismatch.
	g := NewGrid(16, 16, 1, orb.Point{})
	start := g.CellAt(2, 3)

	for _, diagonal := range []bool{false, true} {
		for _, targetCoord := range []Coord{{2, 3}, {15, 3}, {2, 15}, {15, 15}, {0, 0}, {9, 12}} {
			target := g.CellAt(targetCoord.X, targetCoord.Y)
			res, err := FindPath(g, start, target, diagonal)
			if err != nil {
				t.Fatal(err)
			}
			if want := heuristic(start, target, diagonal); res.Cost != want {
				t.Errorf("diagonal %v target %v: cost %d, heuristic %d", diagonal, target, res.Cost, want)
			}
		}
	}
}

func BenchmarkFindPath(b *testing.B) {
	seed := int64(3)
	pattern := GenerateRandomObstacles(ObstacleConfig{
		Columns: 100,
		Rows:    100,
		Density: 0.25,
		Seed:    &seed,
		Protect: &Coord{X: 0, Y: 0},
	})
	g := NewGrid(100, 100, 1, orb.Point{})
	g.ApplyPattern(pattern)
	g.SetWalkable(99, 99, true)
	start, target := g.CellAt(0, 0), g.CellAt(99, 99)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = FindPath(g, start, target, true)
	}
}
