// Command mazegen renders procedural mazes and obstacle fields to the
// terminal, optionally solving them with A*.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"golang.org/x/term"

	"navgrid"
)

func main() {
	cols := flag.Int("cols", 31, "width in cells")
	rows := flag.Int("rows", 21, "height in cells")
	mode := flag.String("mode", "maze", "generator: maze or random")
	density := flag.Float64("density", 0.3, "obstacle density for random mode")
	seedFlag := flag.String("seed", "", "generator seed (empty draws from the clock)")
	solve := flag.Bool("solve", false, "overlay the A* path between the corners")
	diagonal := flag.Bool("diag", false, "allow diagonal movement when solving")
	flag.Parse()

	var seed *int64
	if *seedFlag != "" {
		v, err := strconv.ParseInt(*seedFlag, 10, 64)
		if err != nil {
			log.Fatalf("invalid -seed %q: %v", *seedFlag, err)
		}
		seed = &v
	}

	var pattern navgrid.Pattern
	switch *mode {
	case "maze":
		pattern = navgrid.GenerateMaze(navgrid.MazeConfig{
			Columns: *cols,
			Rows:    *rows,
			Seed:    seed,
		})
	case "random":
		pattern = navgrid.GenerateRandomObstacles(navgrid.ObstacleConfig{
			Columns:       *cols,
			Rows:          *rows,
			Density:       *density,
			Seed:          seed,
			Protect:       &navgrid.Coord{X: 0, Y: 0},
			ProtectRadius: 1,
		})
		// Keep the far corner open so -solve has somewhere to go
		pattern.Set(pattern.Columns()-1, pattern.Rows()-1, true)
	default:
		log.Fatalf("unknown -mode %q (want maze or random)", *mode)
	}

	warnIfWiderThanTerminal(pattern.Columns())

	if !*solve {
		fmt.Println(pattern)
		return
	}

	g := navgrid.NewGrid(pattern.Columns(), pattern.Rows(), 1, orb.Point{})
	g.ApplyPattern(pattern)

	start, target := endpoints(g, *mode)
	res, err := navgrid.FindPath(g, start, target, *diagonal)
	if err != nil {
		log.Fatalf("solve failed: %v", err)
	}

	fmt.Println(render(pattern, res.Path, start, target))
	if res.Found {
		fmt.Printf("\npath: %d cells, cost %d, expanded %d\n", len(res.Path), res.Cost, res.Expanded)
	} else {
		fmt.Println("\nno path between the corners")
	}
}

// endpoints picks the solve endpoints per mode: the first and last rooms of
// a maze, or opposite corners of a random field.
func endpoints(g *navgrid.Grid, mode string) (start, target *navgrid.Cell) {
	if mode == "maze" {
		return g.CellAt(1, 1), g.CellAt(lastOdd(g.Columns()-2), lastOdd(g.Rows()-2))
	}
	return g.CellAt(0, 0), g.CellAt(g.Columns()-1, g.Rows()-1)
}

func lastOdd(v int) int {
	if v%2 == 0 {
		return v - 1
	}
	return v
}

// render draws the pattern with the path overlaid.
func render(p navgrid.Pattern, path []*navgrid.Cell, start, target *navgrid.Cell) string {
	lines := make([][]byte, p.Rows())
	for y := range lines {
		lines[y] = make([]byte, p.Columns())
		for x := range lines[y] {
			if p.At(x, y) {
				lines[y][x] = '.'
			} else {
				lines[y][x] = '#'
			}
		}
	}

	for _, c := range path {
		lines[c.Y][c.X] = '*'
	}
	if start != nil {
		lines[start.Y][start.X] = 'S'
	}
	if target != nil {
		lines[target.Y][target.X] = 'T'
	}

	rows := make([]string, len(lines))
	for i, line := range lines {
		rows[i] = string(line)
	}
	return strings.Join(rows, "\n")
}

func warnIfWiderThanTerminal(columns int) {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	if width, _, err := term.GetSize(fd); err == nil && columns > width {
		fmt.Fprintf(os.Stderr, "note: %d columns exceed the %d-column terminal\n", columns, width)
	}
}
