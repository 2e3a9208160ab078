package navgrid

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// regionEntry wraps a polygon for R-tree storage.
type regionEntry struct {
	polygon orb.Polygon
	bbox    rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface.
func (e *regionEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// RegionIndex answers point and box queries against a set of blocked
// world-space regions. It is the collaborator that turns obstacle geometry
// into grid walkability; the grid itself never samples geometry.
type RegionIndex struct {
	tree *rtreego.Rtree
	size int
}

// NewRegionIndex indexes the given polygons. Polygons fully contained in
// another are dropped first, since the outer one already blocks their area.
func NewRegionIndex(polygons []orb.Polygon) *RegionIndex {
	kept := dropContainedRegions(polygons)
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	size := 0
	for _, polygon := range kept {
		if len(polygon) == 0 {
			continue
		}
		bbox, err := boundToRect(polygon.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&regionEntry{polygon: polygon, bbox: bbox})
		size++
	}

	return &RegionIndex{tree: tree, size: size}
}

// Len returns the number of indexed regions.
func (ri *RegionIndex) Len() int { return ri.size }

// Query returns the regions whose bounding boxes intersect b.
func (ri *RegionIndex) Query(b orb.Bound) []orb.Polygon {
	bbox, err := boundToRect(b)
	if err != nil {
		return nil
	}

	results := ri.tree.SearchIntersect(bbox)
	polygons := make([]orb.Polygon, 0, len(results))
	for _, item := range results {
		polygons = append(polygons, item.(*regionEntry).polygon)
	}
	return polygons
}

// Contains reports whether the world point p lies inside any indexed
// region. Candidates come from the R-tree; the precise test respects
// polygon holes.
func (ri *RegionIndex) Contains(p orb.Point) bool {
	for _, polygon := range ri.Query(orb.Bound{Min: p, Max: p}) {
		if planar.PolygonContains(polygon, p) {
			return true
		}
	}
	return false
}

// Stamp blocks every cell of g whose world center lies inside an indexed
// region and returns how many cells it blocked. Only the grid's public
// walkability API is touched.
func (ri *RegionIndex) Stamp(g *Grid) int {
	if g == nil || ri.size == 0 {
		return 0
	}
	blocked := 0
	for y := 0; y < g.Rows(); y++ {
		for x := 0; x < g.Columns(); x++ {
			if ri.Contains(g.CellAt(x, y).World) {
				g.SetWalkable(x, y, false)
				blocked++
			}
		}
	}
	return blocked
}

// boundToRect converts an orb bound to an rtreego rect. Degenerate bounds
// get a tiny positive extent because the R-tree rejects empty rectangles.
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	const minExtent = 1e-9
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{
			max(b.Max.X()-b.Min.X(), minExtent),
			max(b.Max.Y()-b.Min.Y(), minExtent),
		},
	)
}

// dropContainedRegions removes polygons that are fully contained within
// other polygons.
func dropContainedRegions(polygons []orb.Polygon) []orb.Polygon {
	if len(polygons) <= 1 {
		return polygons
	}

	contained := make([]bool, len(polygons))
	for i := 0; i < len(polygons); i++ {
		if contained[i] {
			continue
		}
		for j := 0; j < len(polygons); j++ {
			if i == j || contained[j] {
				continue
			}
			if regionContainedIn(polygons[i], polygons[j]) {
				contained[i] = true
				break
			}
			if regionContainedIn(polygons[j], polygons[i]) {
				contained[j] = true
			}
		}
	}

	result := make([]orb.Polygon, 0, len(polygons))
	for i, p := range polygons {
		if !contained[i] {
			result = append(result, p)
		}
	}
	return result
}

// regionContainedIn checks whether polygon a lies fully inside polygon b:
// a quick bounding box test first, then every outer-ring vertex of a.
func regionContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if !boundContainedIn(a.Bound(), b.Bound()) {
		return false
	}
	for _, vertex := range a[0] {
		if !planar.PolygonContains(b, vertex) {
			return false
		}
	}
	return true
}

// boundContainedIn checks whether bound a is contained in bound b.
func boundContainedIn(a, b orb.Bound) bool {
	return a.Min.X() >= b.Min.X() && a.Max.X() <= b.Max.X() &&
		a.Min.Y() >= b.Min.Y() && a.Max.Y() <= b.Max.Y()
}

// LoadRegionsDir reads every *.geojson file in dir and returns the blocked
// regions they describe. Malformed files are skipped with a log line so one
// bad export cannot take down the whole set. Oversized region sets are
// thinned with Douglas-Peucker before use.
func LoadRegionsDir(dir string) ([]orb.Polygon, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan region directory %s: %w", dir, err)
	}

	log.Printf("Loading blocked regions from %d GeoJSON files...\n", len(files))

	var all []orb.Polygon
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}

		count := 0
		for _, feature := range fc.Features {
			polygons := featurePolygons(feature)
			all = append(all, polygons...)
			count += len(polygons)
		}

		log.Printf("   ✅ Loaded %d regions from %s\n", count, filepath.Base(file))
	}

	log.Printf("Total blocked regions loaded: %d\n", len(all))
	return simplifyRegions(all), nil
}

// featurePolygons extracts the Polygon and MultiPolygon geometries of a
// feature; other geometry types are ignored.
func featurePolygons(feature *geojson.Feature) []orb.Polygon {
	switch geometry := feature.Geometry.(type) {
	case orb.Polygon:
		return []orb.Polygon{geometry}
	case orb.MultiPolygon:
		return []orb.Polygon(geometry)
	default:
		return nil
	}
}

// simplifyRegions thins heavyweight region sets before indexing. Small sets
// pass through untouched.
func simplifyRegions(polygons []orb.Polygon) []orb.Polygon {
	total := 0
	for _, p := range polygons {
		for _, ring := range p {
			total += len(ring)
		}
	}
	epsilon := simplifyEpsilon(total)
	if epsilon == 0 {
		return polygons
	}

	simplifier := simplify.DouglasPeucker(epsilon)
	simplified := make([]orb.Polygon, len(polygons))
	for i, p := range polygons {
		simplified[i] = simplifier.Polygon(p.Clone())
	}

	log.Printf("   Simplified %d region vertices (epsilon %.1f)\n", total, epsilon)
	return simplified
}

// simplifyEpsilon picks a Douglas-Peucker tolerance from the total vertex
// count, in world units. Zero means no simplification.
func simplifyEpsilon(totalVertices int) float64 {
	switch {
	case totalVertices > 50000:
		return 20.0
	case totalVertices > 20000:
		return 10.0
	case totalVertices > 10000:
		return 7.0
	case totalVertices > 5000:
		return 5.0
	case totalVertices > 2000:
		return 3.0
	default:
		return 0
	}
}
