package navgrid

import (
	"fmt"
	"log"
	"os"

	"github.com/paulmach/orb"
	"gopkg.in/yaml.v3"
)

// GridSpec describes the grid to build.
type GridSpec struct {
	Columns  int       `yaml:"columns"`
	Rows     int       `yaml:"rows"`
	CellSize float64   `yaml:"cell_size"`
	Origin   orb.Point `yaml:"origin"` // [x, y] world center, defaults to the origin
}

// SearchSpec names the endpoints a scenario wants routed.
type SearchSpec struct {
	Start    Coord `yaml:"start"`
	Target   Coord `yaml:"target"`
	Diagonal bool  `yaml:"diagonal"`
}

// MazeSpec selects maze generation for the scenario grid.
type MazeSpec struct {
	Seed *int64 `yaml:"seed"`
}

// ObstacleSpec selects random obstacle generation for the scenario grid.
type ObstacleSpec struct {
	Density       float64 `yaml:"density"`
	Seed          *int64  `yaml:"seed"`
	Protect       *Coord  `yaml:"protect"`
	ProtectRadius int     `yaml:"protect_radius"`
}

// Scenario is a declarative description of a grid world: dimensions, at
// most one generator, an optional directory of blocked regions, and an
// optional default search.
type Scenario struct {
	Grid      GridSpec      `yaml:"grid"`
	Search    *SearchSpec   `yaml:"search"`
	Maze      *MazeSpec     `yaml:"maze"`
	Obstacles *ObstacleSpec `yaml:"obstacles"`
	Regions   string        `yaml:"regions"` // directory of *.geojson files
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, err)
	}

	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return &sc, nil
}

// Validate fills defaults and rejects contradictory settings. Unlike the
// generator APIs, which clamp quietly, a config file gets told when its
// numbers make no sense.
func (sc *Scenario) Validate() error {
	if sc.Grid.Columns < 1 || sc.Grid.Rows < 1 {
		return fmt.Errorf("grid needs positive dimensions, got %dx%d", sc.Grid.Columns, sc.Grid.Rows)
	}
	if sc.Grid.CellSize < 0 {
		return fmt.Errorf("cell_size must be positive, got %g", sc.Grid.CellSize)
	}
	if sc.Grid.CellSize == 0 {
		sc.Grid.CellSize = 1
	}
	if sc.Maze != nil && sc.Obstacles != nil {
		return fmt.Errorf("maze and obstacles are mutually exclusive")
	}
	if sc.Maze != nil && (sc.Grid.Columns < MinMazeSize || sc.Grid.Rows < MinMazeSize) {
		return fmt.Errorf("maze needs a grid of at least %dx%d", MinMazeSize, MinMazeSize)
	}
	if sc.Search != nil {
		if !sc.inBounds(sc.Search.Start) {
			return fmt.Errorf("search start (%d,%d) is outside the %dx%d grid",
				sc.Search.Start.X, sc.Search.Start.Y, sc.Grid.Columns, sc.Grid.Rows)
		}
		if !sc.inBounds(sc.Search.Target) {
			return fmt.Errorf("search target (%d,%d) is outside the %dx%d grid",
				sc.Search.Target.X, sc.Search.Target.Y, sc.Grid.Columns, sc.Grid.Rows)
		}
	}
	return nil
}

func (sc *Scenario) inBounds(c Coord) bool {
	return c.X >= 0 && c.X < sc.Grid.Columns && c.Y >= 0 && c.Y < sc.Grid.Rows
}

// Build constructs the grid and applies the configured generator and
// regions.
func (sc *Scenario) Build() (*Grid, error) {
	g := NewGrid(sc.Grid.Columns, sc.Grid.Rows, sc.Grid.CellSize, sc.Grid.Origin)

	switch {
	case sc.Maze != nil:
		g.ApplyPattern(GenerateMaze(MazeConfig{
			Columns: g.Columns(),
			Rows:    g.Rows(),
			Seed:    sc.Maze.Seed,
		}))
	case sc.Obstacles != nil:
		g.ApplyPattern(GenerateRandomObstacles(ObstacleConfig{
			Columns:       g.Columns(),
			Rows:          g.Rows(),
			Density:       sc.Obstacles.Density,
			Seed:          sc.Obstacles.Seed,
			Protect:       sc.Obstacles.Protect,
			ProtectRadius: sc.Obstacles.ProtectRadius,
		}))
	}

	if sc.Regions != "" {
		polygons, err := LoadRegionsDir(sc.Regions)
		if err != nil {
			return nil, fmt.Errorf("scenario: regions: %w", err)
		}
		blocked := NewRegionIndex(polygons).Stamp(g)
		log.Printf("   Stamped %d region-blocked cells\n", blocked)
	}

	return g, nil
}
