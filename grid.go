package navgrid

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// Coord addresses a cell by its grid position.
type Coord struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Cell is a single square of a Grid. Cells are created and owned by their
// grid; searches read them but never write them. Walkable is the one
// mutable field and is toggled through the grid's walkability API.
type Cell struct {
	X        int
	Y        int
	Walkable bool
	World    orb.Point // world-space center of the cell
}

// String returns the cell's grid coordinates, e.g. "(3,7)".
func (c *Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Grid is a dense columns × rows graph of cells positioned in world space.
// The zero value is not usable; build grids with NewGrid.
type Grid struct {
	columns    int
	rows       int
	cellSize   float64
	origin     orb.Point // world-space center of the grid
	bottomLeft orb.Point
	cells      []*Cell

	stepper *Stepper // at most one step-wise search in flight per grid
}

// NewGrid creates a fully walkable grid centered on origin. Dimensions
// below 1×1 and non-positive cell sizes are clamped up rather than
// rejected.
func NewGrid(columns, rows int, cellSize float64, origin orb.Point) *Grid {
	if columns < 1 {
		columns = 1
	}
	if rows < 1 {
		rows = 1
	}
	if cellSize <= 0 {
		cellSize = 1
	}
	g := &Grid{
		columns:  columns,
		rows:     rows,
		cellSize: cellSize,
		origin:   origin,
	}
	g.CreateGrid()
	return g
}

// CreateGrid discards every cell and allocates a fresh, fully walkable set,
// cancelling any step-wise search still walking the old cells. Cell world
// positions are measured from the grid's bottom-left corner: origin minus
// half the total extent, plus half a cell to land on centers.
func (g *Grid) CreateGrid() {
	if g.stepper != nil {
		g.stepper.Cancel()
	}
	g.bottomLeft = orb.Point{
		g.origin.X() - float64(g.columns)*g.cellSize/2,
		g.origin.Y() - float64(g.rows)*g.cellSize/2,
	}
	g.cells = make([]*Cell, g.columns*g.rows)
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.columns; x++ {
			g.cells[y*g.columns+x] = &Cell{
				X:        x,
				Y:        y,
				Walkable: true,
				World: orb.Point{
					g.bottomLeft.X() + (float64(x)+0.5)*g.cellSize,
					g.bottomLeft.Y() + (float64(y)+0.5)*g.cellSize,
				},
			}
		}
	}
}

// Columns returns the grid width in cells.
func (g *Grid) Columns() int { return g.columns }

// Rows returns the grid height in cells.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the world-space edge length of one cell.
func (g *Grid) CellSize() float64 { return g.cellSize }

// Origin returns the grid's world-space center.
func (g *Grid) Origin() orb.Point { return g.origin }

// Bound returns the grid's extents in world space.
func (g *Grid) Bound() orb.Bound {
	return orb.Bound{
		Min: g.bottomLeft,
		Max: orb.Point{
			g.bottomLeft.X() + float64(g.columns)*g.cellSize,
			g.bottomLeft.Y() + float64(g.rows)*g.cellSize,
		},
	}
}

// CellAt returns the cell at grid coordinates (x, y), or nil when the
// coordinates fall outside the grid.
func (g *Grid) CellAt(x, y int) *Cell {
	if x < 0 || x >= g.columns || y < 0 || y >= g.rows {
		return nil
	}
	return g.cells[y*g.columns+x]
}

// NodeFromWorldPoint maps a world coordinate to the nearest in-bounds cell.
// Points outside the grid clamp to the closest edge cell, so the lookup
// never fails. For any cell c, NodeFromWorldPoint(c.World) returns c.
func (g *Grid) NodeFromWorldPoint(p orb.Point) *Cell {
	x := int(math.Floor((p.X() - g.bottomLeft.X()) / g.cellSize))
	y := int(math.Floor((p.Y() - g.bottomLeft.Y()) / g.cellSize))
	x = clamp(x, 0, g.columns-1)
	y = clamp(y, 0, g.rows-1)
	return g.cells[y*g.columns+x]
}

// Neighbour offsets in a fixed order so repeated searches expand cells in
// the same sequence.
var (
	orthoOffsets = [4]Coord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagOffsets  = [4]Coord{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// GetNeighbours returns the in-bounds cells adjacent to cell: the four
// orthogonal neighbours, plus the four diagonal ones when diagonal is true.
// Walkability is not filtered here; searches decide that themselves.
func (g *Grid) GetNeighbours(cell *Cell, diagonal bool) []*Cell {
	if cell == nil {
		return nil
	}
	capacity := 4
	if diagonal {
		capacity = 8
	}
	neighbours := make([]*Cell, 0, capacity)
	for _, d := range orthoOffsets {
		if n := g.CellAt(cell.X+d.X, cell.Y+d.Y); n != nil {
			neighbours = append(neighbours, n)
		}
	}
	if diagonal {
		for _, d := range diagOffsets {
			if n := g.CellAt(cell.X+d.X, cell.Y+d.Y); n != nil {
				neighbours = append(neighbours, n)
			}
		}
	}
	return neighbours
}

// SetWalkable toggles the cell at (x, y). Out-of-range coordinates are
// silently ignored.
func (g *Grid) SetWalkable(x, y int, walkable bool) {
	if c := g.CellAt(x, y); c != nil {
		c.Walkable = walkable
	}
}

// BlockCell marks a cell unwalkable. Nil cells are ignored.
func (g *Grid) BlockCell(cell *Cell) {
	if cell != nil {
		cell.Walkable = false
	}
}

// ClearAllBlocks resets every cell to walkable.
func (g *Grid) ClearAllBlocks() {
	for _, c := range g.cells {
		c.Walkable = true
	}
}

// ApplyPattern copies the pattern's passability onto the grid. When the
// sizes differ, only the overlapping region is written.
func (g *Grid) ApplyPattern(p Pattern) {
	columns := min(g.columns, p.Columns())
	rows := min(g.rows, p.Rows())
	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			g.cells[y*g.columns+x].Walkable = p.At(x, y)
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
