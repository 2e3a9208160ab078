package navgrid

// MaxObstacleDensity caps how much of a pattern random blocking may cover.
// Denser fields almost never leave a usable grid.
const MaxObstacleDensity = 0.9

// ObstacleConfig configures GenerateRandomObstacles. Density is the
// fraction of cells to block, clamped into [0, MaxObstacleDensity]. Seed
// behaves as in MazeConfig. Protect, when set, keeps the rectangle within
// ProtectRadius cells of that coordinate passable.
type ObstacleConfig struct {
	Columns       int
	Rows          int
	Density       float64
	Seed          *int64
	Protect       *Coord
	ProtectRadius int
}

// GenerateRandomObstacles blocks a random fraction of cells, sampling each
// cell exactly once in row-major order so equal seeds give identical
// patterns. The protected rectangle is forced passable afterwards.
// Connectivity between the remaining passable cells is not guaranteed;
// callers that need a reachable layout must check it themselves.
func GenerateRandomObstacles(cfg ObstacleConfig) Pattern {
	columns := max(cfg.Columns, 1)
	rows := max(cfg.Rows, 1)

	density := cfg.Density
	if density < 0 {
		density = 0
	}
	if density > MaxObstacleDensity {
		density = MaxObstacleDensity
	}

	p := NewPattern(columns, rows)
	rng := newRNG(cfg.Seed)

	for y := 0; y < rows; y++ {
		for x := 0; x < columns; x++ {
			p.Set(x, y, rng.Float64() >= density)
		}
	}

	if cfg.Protect != nil {
		r := max(cfg.ProtectRadius, 0)
		for y := cfg.Protect.Y - r; y <= cfg.Protect.Y+r; y++ {
			for x := cfg.Protect.X - r; x <= cfg.Protect.X+r; x++ {
				p.Set(x, y, true) // out-of-range writes fall off the edge
			}
		}
	}

	return p
}
