package navgrid

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
grid:
  columns: 15
  rows: 11
  cell_size: 2
  origin: [10, 20]
search:
  start: {x: 1, y: 1}
  target: {x: 13, y: 9}
  diagonal: true
maze:
  seed: 42
`)

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Grid.Columns != 15 || sc.Grid.Rows != 11 || sc.Grid.CellSize != 2 {
		t.Errorf("grid spec = %+v", sc.Grid)
	}
	if sc.Grid.Origin != (orb.Point{10, 20}) {
		t.Errorf("origin = %v, want (10,20)", sc.Grid.Origin)
	}
	if sc.Search == nil || !sc.Search.Diagonal || sc.Search.Target != (Coord{X: 13, Y: 9}) {
		t.Errorf("search spec = %+v", sc.Search)
	}
	if sc.Maze == nil || sc.Maze.Seed == nil || *sc.Maze.Seed != 42 {
		t.Errorf("maze spec = %+v", sc.Maze)
	}
}

func TestLoadScenarioMissingFile(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestScenarioDefaultsCellSize(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, "grid:\n  columns: 5\n  rows: 5\n"))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}
	if sc.Grid.CellSize != 1 {
		t.Errorf("cell size = %g, want the default 1", sc.Grid.CellSize)
	}
}

func TestScenarioValidation(t *testing.T) {
	cases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"zero dimensions",
			"grid:\n  columns: 0\n  rows: 5\n",
			"dimensions",
		},
		{
			"negative cell size",
			"grid:\n  columns: 5\n  rows: 5\n  cell_size: -2\n",
			"cell_size",
		},
		{
			"maze and obstacles together",
			"grid:\n  columns: 9\n  rows: 9\nmaze: {}\nobstacles:\n  density: 0.3\n",
			"mutually exclusive",
		},
		{
			"maze grid too small",
			"grid:\n  columns: 4\n  rows: 4\nmaze: {}\n",
			"at least",
		},
		{
			"search start out of bounds",
			"grid:\n  columns: 5\n  rows: 5\nsearch:\n  start: {x: -1, y: 0}\n  target: {x: 4, y: 4}\n",
			"outside",
		},
		{
			"search target out of bounds",
			"grid:\n  columns: 5\n  rows: 5\nsearch:\n  start: {x: 0, y: 0}\n  target: {x: 9, y: 4}\n",
			"outside",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, c.yaml))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), c.wantErr) {
				t.Errorf("error %q does not mention %q", err, c.wantErr)
			}
		})
	}
}

func TestScenarioBuildMaze(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, `
grid:
  columns: 15
  rows: 11
maze:
  seed: 7
`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	g, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.Columns() != 15 || g.Rows() != 11 {
		t.Fatalf("grid is %dx%d, want 15x11", g.Columns(), g.Rows())
	}

	want := GenerateMaze(MazeConfig{Columns: 15, Rows: 11, Seed: int64Ptr(7)})
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Columns(); x++ {
			if g.CellAt(x, y).Walkable != want.At(x, y) {
				t.Fatalf("cell (%d,%d) does not match the seeded maze", x, y)
			}
		}
	}
}

func TestScenarioBuildObstacles(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, `
grid:
  columns: 12
  rows: 12
obstacles:
  density: 0.8
  seed: 3
  protect: {x: 6, y: 6}
  protect_radius: 1
`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	g, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for y := 5; y <= 7; y++ {
		for x := 5; x <= 7; x++ {
			if !g.CellAt(x, y).Walkable {
				t.Errorf("protected cell (%d,%d) is blocked", x, y)
			}
		}
	}
}

func TestScenarioBuildWithRegions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "zone.geojson"), `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {},
    "geometry": {"type": "Polygon", "coordinates": [[[2, 2], [5, 2], [5, 5], [2, 5], [2, 2]]]}
  }]
}`)

	sc, err := LoadScenario(writeScenario(t, `
grid:
  columns: 10
  rows: 10
  origin: [5, 5]
regions: `+dir+`
`))
	if err != nil {
		t.Fatalf("LoadScenario: %v", err)
	}

	g, err := sc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.CellAt(3, 3).Walkable {
		t.Error("cell (3,3) should be blocked by the region")
	}
	if !g.CellAt(7, 7).Walkable {
		t.Error("cell (7,7) lies outside the region")
	}
}
