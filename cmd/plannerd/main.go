package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/paulmach/orb"

	"navgrid"
)

type gridRequest struct {
	Columns  int       `json:"columns"`
	Rows     int       `json:"rows"`
	CellSize float64   `json:"cellSize"`
	Origin   orb.Point `json:"origin"` // [x, y]
}

type mazeRequest struct {
	Seed *int64 `json:"seed,omitempty"`
}

type obstaclesRequest struct {
	Density       float64        `json:"density"`
	Seed          *int64         `json:"seed,omitempty"`
	Protect       *navgrid.Coord `json:"protect,omitempty"`
	ProtectRadius int            `json:"protectRadius,omitempty"`
}

type blockRequest struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Walkable bool `json:"walkable"`
}

type routeRequest struct {
	Start    navgrid.Coord `json:"start"`
	Target   navgrid.Coord `json:"target"`
	Diagonal bool          `json:"diagonal"`
}

type worldRouteRequest struct {
	Start    orb.Point `json:"start"` // [x, y]
	Target   orb.Point `json:"target"`
	Diagonal bool      `json:"diagonal"`
}

type routeResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Path     []navgrid.Coord `json:"path"`
	Cost     int             `json:"cost"`
	Expanded int             `json:"expanded"`
}

type debugStartRequest struct {
	Start    navgrid.Coord `json:"start"`
	Target   navgrid.Coord `json:"target"`
	Diagonal bool          `json:"diagonal"`
	Batch    int           `json:"batch,omitempty"`
}

type stepEvent struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Role string `json:"role"`
}

type debugResponse struct {
	Success  bool            `json:"success"`
	Message  string          `json:"message,omitempty"`
	Done     bool            `json:"done"`
	Found    bool            `json:"found"`
	Expanded int             `json:"expanded"`
	Events   []stepEvent     `json:"events"`
	Path     []navgrid.Coord `json:"path,omitempty"`
	Cost     int             `json:"cost,omitempty"`
}

var (
	globalGrid   *navgrid.Grid
	gridMutex    sync.RWMutex
	debugStepper *navgrid.Stepper
	debugEvents  []stepEvent
)

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// gridRows renders the grid's current walkability, one string per row.
func gridRows(g *navgrid.Grid) []string {
	rows := make([]string, g.Rows())
	var b strings.Builder
	for y := 0; y < g.Rows(); y++ {
		b.Reset()
		for x := 0; x < g.Columns(); x++ {
			if g.CellAt(x, y).Walkable {
				b.WriteByte('.')
			} else {
				b.WriteByte('#')
			}
		}
		rows[y] = b.String()
	}
	return rows
}

func coordsOf(path []*navgrid.Cell) []navgrid.Coord {
	coords := make([]navgrid.Coord, len(path))
	for i, c := range path {
		coords[i] = navgrid.Coord{X: c.X, Y: c.Y}
	}
	return coords
}

// GET /health - Health check endpoint
func healthHandler(w http.ResponseWriter, r *http.Request) {
	gridMutex.RLock()
	hasGrid := globalGrid != nil
	columns, rows := 0, 0
	if hasGrid {
		columns = globalGrid.Columns()
		rows = globalGrid.Rows()
	}
	gridMutex.RUnlock()

	status := "ready"
	if !hasGrid {
		status = "waiting for grid"
	}

	writeJSON(w, map[string]interface{}{
		"status":  status,
		"hasGrid": hasGrid,
		"columns": columns,
		"rows":    rows,
	})
}

// POST /grid - Build a fresh grid
func gridHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🗺️  Build grid request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req gridRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Set defaults
	if req.Columns == 0 {
		req.Columns = 32
	}
	if req.Rows == 0 {
		req.Rows = 32
	}
	if req.CellSize == 0 {
		req.CellSize = 1
	}

	g := navgrid.NewGrid(req.Columns, req.Rows, req.CellSize, req.Origin)

	gridMutex.Lock()
	globalGrid = g
	debugStepper = nil
	gridMutex.Unlock()

	log.Printf("✅ Grid built: %dx%d, cell size %g\n", g.Columns(), g.Rows(), g.CellSize())
	log.Println("========================================")

	writeJSON(w, map[string]interface{}{
		"success":  true,
		"columns":  g.Columns(),
		"rows":     g.Rows(),
		"cellSize": g.CellSize(),
		"origin":   g.Origin(),
	})
}

// POST /maze - Carve a maze onto the grid
func mazeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🌀 Maze request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req mazeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if globalGrid == nil {
		log.Println("❌ Grid not built")
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		return
	}

	pattern := navgrid.GenerateMaze(navgrid.MazeConfig{
		Columns: globalGrid.Columns(),
		Rows:    globalGrid.Rows(),
		Seed:    req.Seed,
	})
	globalGrid.ApplyPattern(pattern)
	debugStepper = nil

	log.Printf("✅ Maze carved onto %dx%d grid\n", globalGrid.Columns(), globalGrid.Rows())
	log.Println("========================================")

	writeJSON(w, map[string]interface{}{
		"success": true,
		"rows":    gridRows(globalGrid),
	})
}

// POST /obstacles - Scatter random obstacles onto the grid
func obstaclesHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🎲 Obstacles request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req obstaclesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if globalGrid == nil {
		log.Println("❌ Grid not built")
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		return
	}

	pattern := navgrid.GenerateRandomObstacles(navgrid.ObstacleConfig{
		Columns:       globalGrid.Columns(),
		Rows:          globalGrid.Rows(),
		Density:       req.Density,
		Seed:          req.Seed,
		Protect:       req.Protect,
		ProtectRadius: req.ProtectRadius,
	})
	globalGrid.ApplyPattern(pattern)
	debugStepper = nil

	log.Printf("✅ Obstacles applied at density %.2f\n", req.Density)
	log.Println("========================================")

	writeJSON(w, map[string]interface{}{
		"success": true,
		"rows":    gridRows(globalGrid),
	})
}

// POST /block - Toggle a single cell
func blockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req blockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if globalGrid == nil {
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		return
	}

	// Out-of-range coordinates are ignored, matching the grid API
	globalGrid.SetWalkable(req.X, req.Y, req.Walkable)
	writeJSON(w, map[string]interface{}{"success": true})
}

// POST /clear - Reset every cell to walkable
func clearHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if globalGrid == nil {
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		return
	}

	globalGrid.ClearAllBlocks()
	log.Println("🧹 Grid cleared")
	writeJSON(w, map[string]interface{}{"success": true})
}

// POST /route - Compute a path between two grid cells
func routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start:  (%d, %d)\n", req.Start.X, req.Start.Y)
	log.Printf("   Target: (%d, %d)\n", req.Target.X, req.Target.Y)

	// Cells are mutated in place, so the read lock must cover the whole
	// search, not just the pointer copy.
	gridMutex.RLock()
	defer gridMutex.RUnlock()

	if globalGrid == nil {
		log.Println("❌ Grid not built")
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	start := globalGrid.CellAt(req.Start.X, req.Start.Y)
	target := globalGrid.CellAt(req.Target.X, req.Target.Y)
	respondRoute(w, globalGrid, start, target, req.Diagonal)
}

// POST /route/world - Compute a path between two world-space points
func worldRouteHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🌍 World route request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req worldRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	log.Printf("   Start:  (%.3f, %.3f)\n", req.Start.X(), req.Start.Y())
	log.Printf("   Target: (%.3f, %.3f)\n", req.Target.X(), req.Target.Y())

	gridMutex.RLock()
	defer gridMutex.RUnlock()

	if globalGrid == nil {
		log.Println("❌ Grid not built")
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		log.Println("========================================")
		return
	}

	// World points clamp to the nearest cell, so both lookups always land
	start := globalGrid.NodeFromWorldPoint(req.Start)
	target := globalGrid.NodeFromWorldPoint(req.Target)
	respondRoute(w, globalGrid, start, target, req.Diagonal)
}

// respondRoute runs the search and writes the JSON response. The caller
// holds gridMutex for the duration.
func respondRoute(w http.ResponseWriter, g *navgrid.Grid, start, target *navgrid.Cell, diagonal bool) {
	log.Println("🔍 Running A* on grid...")
	res, err := navgrid.FindPath(g, start, target, diagonal)

	if err != nil {
		log.Printf("❌ Route rejected: %v\n", err)
		writeJSON(w, routeResponse{
			Success: false,
			Message: "Start or target cell is not walkable",
			Path:    []navgrid.Coord{},
		})
		log.Println("========================================")
		return
	}

	resp := routeResponse{
		Success:  res.Found,
		Path:     coordsOf(res.Path),
		Cost:     res.Cost,
		Expanded: res.Expanded,
	}

	if !res.Found {
		log.Println("❌ No path found")
		resp.Message = "No path found between start and target"
	} else {
		log.Printf("✅ Path found with %d cells\n", len(res.Path))
		log.Printf("   Cost: %d, expanded: %d\n", res.Cost, res.Expanded)
	}

	writeJSON(w, resp)
	log.Println("========================================")
}

// POST /debug/start - Begin a step-wise search
func debugStartHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("🐾 Step-wise search start request received")

	if r.Method != http.MethodPost {
		log.Printf("❌ Method not allowed: %s\n", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req debugStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if globalGrid == nil {
		log.Println("❌ Grid not built")
		http.Error(w, "Grid not built. Call /grid first", http.StatusBadRequest)
		return
	}

	start := globalGrid.CellAt(req.Start.X, req.Start.Y)
	target := globalGrid.CellAt(req.Target.X, req.Target.Y)

	debugEvents = debugEvents[:0]
	st, err := navgrid.NewStepper(globalGrid, start, target, req.Diagonal,
		navgrid.WithBatchSize(req.Batch),
		navgrid.WithObserver(func(cell *navgrid.Cell, role navgrid.StepRole) {
			debugEvents = append(debugEvents, stepEvent{X: cell.X, Y: cell.Y, Role: role.String()})
		}),
	)
	if err != nil {
		log.Printf("❌ Step-wise search rejected: %v\n", err)
		writeJSON(w, debugResponse{
			Success: false,
			Message: "Start or target cell is not walkable",
			Events:  []stepEvent{},
		})
		log.Println("========================================")
		return
	}

	debugStepper = st
	log.Printf("✅ Step-wise search started, batch size %d\n", max(req.Batch, 1))
	log.Println("========================================")

	writeJSON(w, debugResponse{
		Success: true,
		Events:  append([]stepEvent(nil), debugEvents...),
	})
}

// POST /debug/next - Advance the step-wise search by one batch
func debugNextHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if debugStepper == nil {
		http.Error(w, "No step-wise search in progress. Call /debug/start first", http.StatusBadRequest)
		return
	}

	debugEvents = debugEvents[:0]
	done := debugStepper.Step()
	res := debugStepper.Result()

	resp := debugResponse{
		Success:  true,
		Done:     done,
		Found:    res.Found,
		Expanded: debugStepper.Expanded(),
		Events:   append([]stepEvent(nil), debugEvents...),
	}
	if done && res.Found {
		resp.Path = coordsOf(res.Path)
		resp.Cost = res.Cost
	}
	if done {
		log.Printf("🏁 Step-wise search finished (found=%v, expanded=%d)\n", res.Found, resp.Expanded)
		debugStepper = nil
	}

	writeJSON(w, resp)
}

// POST /debug/cancel - Abandon the step-wise search
func debugCancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	gridMutex.Lock()
	defer gridMutex.Unlock()

	if debugStepper != nil {
		debugStepper.Cancel()
		debugStepper = nil
		log.Println("🛑 Step-wise search cancelled")
	}

	writeJSON(w, map[string]interface{}{"success": true})
}

// applyScenario loads a scenario file and swaps in the grid it describes.
func applyScenario(path string) error {
	sc, err := navgrid.LoadScenario(path)
	if err != nil {
		return err
	}

	g, err := sc.Build()
	if err != nil {
		return err
	}

	// The verification search below reads the freshly swapped grid, so the
	// lock stays held until it finishes.
	gridMutex.Lock()
	defer gridMutex.Unlock()
	globalGrid = g
	debugStepper = nil

	log.Printf("✅ Scenario applied: %dx%d grid, cell size %g\n", g.Columns(), g.Rows(), g.CellSize())

	if sc.Search != nil {
		start := g.CellAt(sc.Search.Start.X, sc.Search.Start.Y)
		target := g.CellAt(sc.Search.Target.X, sc.Search.Target.Y)
		res, err := navgrid.FindPath(g, start, target, sc.Search.Diagonal)
		switch {
		case err != nil:
			log.Printf("⚠️  Scenario route rejected: %v\n", err)
		case !res.Found:
			log.Printf("⚠️  Scenario route: no path from (%d,%d) to (%d,%d)\n",
				sc.Search.Start.X, sc.Search.Start.Y, sc.Search.Target.X, sc.Search.Target.Y)
		default:
			log.Printf("✅ Scenario route: %d cells, cost %d, %d expanded\n",
				len(res.Path), res.Cost, res.Expanded)
		}
	}

	return nil
}

// watchScenario rebuilds the grid whenever the scenario file or a region
// file changes. Reload failures keep the previous grid.
func watchScenario(path, regions string) {
	dirs := []string{filepath.Dir(path)}
	if regions != "" {
		dirs = append(dirs, regions)
	}

	watcher, err := navgrid.NewScenarioWatcher(dirs...)
	if err != nil {
		log.Printf("⚠️  Scenario watching disabled: %v\n", err)
		return
	}

	go func() {
		for {
			select {
			case name, ok := <-watcher.Events:
				if !ok {
					return
				}
				log.Printf("🔄 %s changed, rebuilding grid...\n", filepath.Base(name))
				if err := applyScenario(path); err != nil {
					log.Printf("⚠️  Reload failed, keeping previous grid: %v\n", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️  Watcher error: %v\n", err)
			}
		}
	}()
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	scenario := flag.String("scenario", "", "scenario YAML file to build the grid from")
	watch := flag.Bool("watch", false, "rebuild the grid when the scenario file changes")
	flag.Parse()

	log.Println("========================================")
	log.Println("🚀 Grid Planner Server")
	log.Println("========================================")

	if *scenario != "" {
		log.Printf("Loading scenario from %s...\n", *scenario)
		if err := applyScenario(*scenario); err != nil {
			log.Fatalf("❌ Scenario failed: %v", err)
		}
		if *watch {
			regions := ""
			if sc, err := navgrid.LoadScenario(*scenario); err == nil {
				regions = sc.Regions
			}
			watchScenario(*scenario, regions)
			log.Println("👀 Watching scenario for changes")
		}
	} else {
		log.Println("ℹ️  No scenario given (this is normal)")
		log.Println("   Call /grid to create a grid")
	}
	log.Println("")

	http.HandleFunc("/grid", corsMiddleware(gridHandler))
	http.HandleFunc("/maze", corsMiddleware(mazeHandler))
	http.HandleFunc("/obstacles", corsMiddleware(obstaclesHandler))
	http.HandleFunc("/block", corsMiddleware(blockHandler))
	http.HandleFunc("/clear", corsMiddleware(clearHandler))
	http.HandleFunc("/route", corsMiddleware(routeHandler))
	http.HandleFunc("/route/world", corsMiddleware(worldRouteHandler))
	http.HandleFunc("/debug/start", corsMiddleware(debugStartHandler))
	http.HandleFunc("/debug/next", corsMiddleware(debugNextHandler))
	http.HandleFunc("/debug/cancel", corsMiddleware(debugCancelHandler))
	http.HandleFunc("/health", corsMiddleware(healthHandler))

	log.Printf("Server starting on %s\n", *addr)
	log.Println("")
	log.Println("Endpoints:")
	log.Println("  POST /grid          - Build a fresh grid")
	log.Println("  POST /maze          - Carve a maze onto the grid")
	log.Println("  POST /obstacles     - Scatter random obstacles")
	log.Println("  POST /block         - Toggle a single cell")
	log.Println("  POST /clear         - Reset every cell to walkable")
	log.Println("  POST /route         - Compute a path between grid cells")
	log.Println("  POST /route/world   - Compute a path between world points")
	log.Println("  POST /debug/start   - Begin a step-wise search")
	log.Println("  POST /debug/next    - Advance the step-wise search")
	log.Println("  POST /debug/cancel  - Abandon the step-wise search")
	log.Println("  GET  /health        - Check server status")
	log.Println("")
	log.Println("CORS enabled for all origins")
	log.Println("========================================")
	log.Println("")

	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatal(err)
	}
}
