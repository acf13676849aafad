package routing

import (
	"math"
	"math/rand"
	"time"

	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/costfunction"
	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/geo"
	"github.com/pandu-nav/pandu/pkg/guidance"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"go.uber.org/zap"
)

const (
	// polyline construction
	endpointGapMeters       = 10.0
	endpointGapIntermediate = 3
	gapFillSpacingMeters    = 20.0

	// polyline simplification
	simplifyBearingDegrees  = 20.0
	simplifyDistanceMeters  = 50.0
	collinearityRatio       = 0.8

	// synthetic direct route
	directPointSpacingMeters = 25.0
	directMinPoints          = 20
	directMaxPoints          = 1000
	directJitterDegrees      = 5e-6

	// derived point speeds
	pointSpeedFloorMps   = 5.0
	pointSpeedCeilingMps = 30.0

	// alternative acceptance
	altEndpointToleranceMeters = 100.0
	altSampleCount             = 10
	altSharedDistanceMeters    = 200.0
	altSharedRatioThreshold    = 0.7
)

// Engine computes routes over the road graph: a primary shortest path plus
// policy-driven alternatives, all expressed as detailed polylines.
type Engine struct {
	log   *zap.Logger
	graph *roadgraph.RoadGraph
	rng   *rand.Rand
}

func NewEngine(graph *roadgraph.RoadGraph, log *zap.Logger) *Engine {
	return &Engine{
		log:   log,
		graph: graph,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CalculateRoutes returns the primary route first, then any alternative that
// is different enough from it. Oversize requests, snap failures and search
// exhaustion all degrade to a single synthetic direct route.
func (e *Engine) CalculateRoutes(start, end datastructure.Location) []datastructure.Route {
	directDistance := geo.CalculateHaversineDistance(
		start.Latitude, start.Longitude, end.Latitude, end.Longitude)

	if directDistance > pkg.MAX_ROUTE_DISTANCE_METERS {
		e.log.Warn("route request beyond graph range, answering with direct route",
			zap.Float64("distance_m", directDistance))
		return []datastructure.Route{e.directRoute(start, end)}
	}

	startNode := e.nearestNode(start)
	endNode := e.nearestNode(end)
	if startNode == nil || endNode == nil {
		e.log.Warn("failed to snap start or end to the road network",
			zap.Bool("start_snapped", startNode != nil),
			zap.Bool("end_snapped", endNode != nil))
		return []datastructure.Route{e.directRoute(start, end)}
	}

	primaryCost := costfunction.NewLengthCostFunction()
	primaryPath := FindPath(startNode, endNode, primaryCost)
	if len(primaryPath) == 0 {
		e.log.Warn("no path found, answering with direct route")
		return []datastructure.Route{e.directRoute(start, end)}
	}

	primaryPoints := e.buildDetailedRoute(primaryPath, start, end)
	primary := datastructure.NewRoute(
		e.generateRouteID(),
		"Route to Destination",
		primaryPoints,
		calculateDuration(primaryPoints, primaryCost.DurationFactor()),
	)

	routes := []datastructure.Route{primary}

	alternatives := []struct {
		cost costfunction.CostFunction
		name string
	}{
		{costfunction.NewFastestCostFunction(), "Fastest Route"},
		{costfunction.NewAvoidHighwayCostFunction(), "No Highway Route"},
	}

	for _, alt := range alternatives {
		altPath := FindPath(startNode, endNode, alt.cost)
		if len(altPath) == 0 {
			e.log.Debug("no path under alternative policy",
				zap.String("policy", alt.cost.Name()))
			continue
		}
		altPoints := e.buildDetailedRoute(altPath, start, end)
		if !differentEnough(primaryPoints, altPoints) {
			e.log.Debug("alternative too similar to primary",
				zap.String("policy", alt.cost.Name()))
			continue
		}
		routes = append(routes, datastructure.NewRoute(
			e.generateRouteID(),
			alt.name,
			altPoints,
			calculateDuration(altPoints, alt.cost.DurationFactor()),
		))
	}

	e.log.Info("routes calculated",
		zap.Int("count", len(routes)),
		zap.Float64("direct_distance_m", directDistance))
	return routes
}

/*
nearestNode snaps a free coordinate to the graph. Endpoints of nearby
segments are candidates; so is the orthogonal projection of the location onto
each segment, which when strictly closer and at least 10 m away from both
endpoints splits the segment around a synthetic node. This lets the routing
source and destination sit in the middle of a block instead of at the nearest
intersection.
*/
func (e *Engine) nearestNode(loc datastructure.Location) *roadgraph.Node {
	nearby := e.graph.FindNearby(loc.Latitude, loc.Longitude, pkg.SNAP_SEARCH_RADIUS_METERS)
	if len(nearby) == 0 {
		return nil
	}

	locCoord := geo.NewCoordinate(loc.Latitude, loc.Longitude)

	var nearest *roadgraph.Node
	minDistance := math.MaxFloat64

	consider := func(n *roadgraph.Node) {
		d := geo.CalculateHaversineDistance(loc.Latitude, loc.Longitude, n.GetLat(), n.GetLon())
		if d < minDistance {
			minDistance = d
			nearest = n
		}
	}

	for _, seg := range nearby {
		consider(seg.GetFrom())
		consider(seg.GetTo())
	}

	for _, seg := range nearby {
		from := seg.GetFrom().GetCoordinate()
		to := seg.GetTo().GetCoordinate()

		proj, _ := geo.ProjectOntoSegment(from, to, locCoord)
		d := geo.CalculateHaversineDistance(loc.Latitude, loc.Longitude, proj.Lat, proj.Lon)
		if d >= minDistance {
			continue
		}

		distFrom := geo.CalculateHaversineDistance(proj.Lat, proj.Lon, from.Lat, from.Lon)
		distTo := geo.CalculateHaversineDistance(proj.Lat, proj.Lon, to.Lat, to.Lon)
		if distFrom < pkg.MIN_PROJECTION_ENDPOINT_DISTANCE_METERS ||
			distTo < pkg.MIN_PROJECTION_ENDPOINT_DISTANCE_METERS {
			continue
		}

		projNode := e.graph.SplitSegment(seg, proj.Lat, proj.Lon)
		minDistance = d
		nearest = projNode
	}

	return nearest
}

/*
buildDetailedRoute expands a node path into the route polyline: the caller's
exact start and end are always the first and last points, gaps to the first
and from the last graph node get three interpolated fillers, and consecutive
path nodes without a direct connecting segment get densified at roughly one
point per 20 m. Bearings and speeds are derived afterwards, then the shape is
simplified.
*/
func (e *Engine) buildDetailedRoute(path []*roadgraph.Node,
	start, end datastructure.Location) []datastructure.Location {

	startCoord := geo.NewCoordinate(start.Latitude, start.Longitude)
	endCoord := geo.NewCoordinate(end.Latitude, end.Longitude)

	coords := []geo.Coordinate{startCoord}

	first := path[0].GetCoordinate()
	if geo.CalculateHaversineDistance(startCoord.Lat, startCoord.Lon, first.Lat, first.Lon) > endpointGapMeters {
		coords = append(coords, interpolateBetween(startCoord, first, endpointGapIntermediate)...)
	}

	for i := 0; i < len(path)-1; i++ {
		cur := path[i].GetCoordinate()
		next := path[i+1].GetCoordinate()

		coords = append(coords, cur)

		if hasDirectSegment(path[i], path[i+1]) {
			continue
		}

		gap := geo.CalculateHaversineDistance(cur.Lat, cur.Lon, next.Lat, next.Lon)
		n := int(gap / gapFillSpacingMeters)
		if n < 2 {
			n = 2
		}
		coords = append(coords, interpolateBetween(cur, next, n)...)
	}

	last := path[len(path)-1].GetCoordinate()
	coords = append(coords, last)

	if geo.CalculateHaversineDistance(last.Lat, last.Lon, endCoord.Lat, endCoord.Lon) > endpointGapMeters {
		coords = append(coords, interpolateBetween(last, endCoord, endpointGapIntermediate)...)
	}
	coords = append(coords, endCoord)

	points := toLocations(coords)
	computeBearingsAndSpeeds(points)
	return simplifyRoute(points)
}

// interpolateBetween returns n interior points strictly between a and b.
func interpolateBetween(a, b geo.Coordinate, n int) []geo.Coordinate {
	out := make([]geo.Coordinate, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n+1)
		out = append(out, geo.Interpolate(a, b, t))
	}
	return out
}

func hasDirectSegment(from, to *roadgraph.Node) bool {
	for _, seg := range from.GetOutSegments() {
		if seg.GetTo() == to {
			return true
		}
	}
	return false
}

func toLocations(coords []geo.Coordinate) []datastructure.Location {
	points := make([]datastructure.Location, len(coords))
	for i, c := range coords {
		points[i] = datastructure.NewCoordLocation(c.Lat, c.Lon)
	}
	return points
}

// computeBearingsAndSpeeds fills per-point bearing (toward the next point)
// and speed (segment length / 10 s, clamped to [5,30] m/s). The last point
// copies the previous bearing and stops.
func computeBearingsAndSpeeds(points []datastructure.Location) {
	if len(points) < 2 {
		return
	}

	for i := 0; i < len(points)-1; i++ {
		d := geo.CalculateHaversineDistance(
			points[i].Latitude, points[i].Longitude,
			points[i+1].Latitude, points[i+1].Longitude)

		points[i].Bearing = float32(geo.BearingTo(
			points[i].Latitude, points[i].Longitude,
			points[i+1].Latitude, points[i+1].Longitude))
		points[i].Speed = float32(math.Min(pointSpeedCeilingMps,
			math.Max(pointSpeedFloorMps, d/10.0)))
	}

	lastIdx := len(points) - 1
	points[lastIdx].Bearing = points[lastIdx-1].Bearing
	points[lastIdx].Speed = 0
}

/*
simplifyRoute drops shape noise in two passes. First, points whose incoming
and outgoing bearings differ by no more than 20° and that sit within 50 m of
the retained predecessor. Second, approximately collinear points: those whose
predecessor-to-successor straight line recovers more than 80% of the two
adjacent segment lengths combined.
*/
func simplifyRoute(points []datastructure.Location) []datastructure.Location {
	if len(points) <= 2 {
		return points
	}

	kept := []datastructure.Location{points[0]}
	for i := 1; i < len(points)-1; i++ {
		prev := kept[len(kept)-1]

		inBearing := geo.BearingTo(prev.Latitude, prev.Longitude,
			points[i].Latitude, points[i].Longitude)
		outBearing := geo.BearingTo(points[i].Latitude, points[i].Longitude,
			points[i+1].Latitude, points[i+1].Longitude)

		if guidance.AbsDeltaBearing(inBearing, outBearing) <= simplifyBearingDegrees &&
			geo.CalculateHaversineDistance(prev.Latitude, prev.Longitude,
				points[i].Latitude, points[i].Longitude) <= simplifyDistanceMeters {
			continue
		}
		kept = append(kept, points[i])
	}
	kept = append(kept, points[len(points)-1])

	if len(kept) <= 2 {
		return kept
	}

	result := []datastructure.Location{kept[0]}
	for i := 1; i < len(kept)-1; i++ {
		prev := kept[i-1]
		next := kept[i+1]

		direct := geo.CalculateHaversineDistance(prev.Latitude, prev.Longitude,
			next.Latitude, next.Longitude)
		viaPoint := geo.CalculateHaversineDistance(prev.Latitude, prev.Longitude,
			kept[i].Latitude, kept[i].Longitude) +
			geo.CalculateHaversineDistance(kept[i].Latitude, kept[i].Longitude,
				next.Latitude, next.Longitude)

		if viaPoint > 0 && direct > collinearityRatio*viaPoint {
			continue
		}
		result = append(result, kept[i])
	}
	result = append(result, kept[len(kept)-1])

	return result
}

// directRoute builds the synthetic fallback polyline: straight-line
// interpolation with a tiny jitter on interior points so the shape does not
// degenerate into a perfectly straight ruler line on screen.
func (e *Engine) directRoute(start, end datastructure.Location) datastructure.Route {
	distance := geo.CalculateHaversineDistance(
		start.Latitude, start.Longitude, end.Latitude, end.Longitude)

	count := int(distance / directPointSpacingMeters)
	if count < directMinPoints {
		count = directMinPoints
	}
	if count > directMaxPoints {
		count = directMaxPoints
	}

	startCoord := geo.NewCoordinate(start.Latitude, start.Longitude)
	endCoord := geo.NewCoordinate(end.Latitude, end.Longitude)

	points := make([]datastructure.Location, count)
	for i := 0; i < count; i++ {
		t := float64(i) / float64(count-1)
		c := geo.Interpolate(startCoord, endCoord, t)
		if i > 0 && i < count-1 {
			c.Lat += (e.rng.Float64()*2 - 1) * directJitterDegrees
			c.Lon += (e.rng.Float64()*2 - 1) * directJitterDegrees
		}
		points[i] = datastructure.NewCoordLocation(c.Lat, c.Lon)
	}

	computeBearingsAndSpeeds(points)

	return datastructure.NewRoute(
		e.generateRouteID(),
		"Direct Route",
		points,
		calculateDuration(points, 1.0),
	)
}

/*
differentEnough decides whether an alternative earns a slot next to the
primary: same endpoints within 100 m, then 10 equidistant samples along both
routes; the alternative is accepted when fewer than 70% of the sample pairs
sit within 200 m of each other.
*/
func differentEnough(primary, alternative []datastructure.Location) bool {
	if len(primary) < 2 || len(alternative) < 2 {
		return false
	}

	startGap := geo.CalculateHaversineDistance(
		primary[0].Latitude, primary[0].Longitude,
		alternative[0].Latitude, alternative[0].Longitude)
	endGap := geo.CalculateHaversineDistance(
		primary[len(primary)-1].Latitude, primary[len(primary)-1].Longitude,
		alternative[len(alternative)-1].Latitude, alternative[len(alternative)-1].Longitude)
	if startGap > altEndpointToleranceMeters || endGap > altEndpointToleranceMeters {
		return false
	}

	primaryCum := cumulativeDistances(primary)
	altCum := cumulativeDistances(alternative)

	shared := 0
	for s := 0; s < altSampleCount; s++ {
		t := float64(s) / float64(altSampleCount-1)

		p := positionAlong(primary, primaryCum, t*primaryCum[len(primaryCum)-1])
		a := positionAlong(alternative, altCum, t*altCum[len(altCum)-1])

		if geo.CalculateHaversineDistance(p.Lat, p.Lon, a.Lat, a.Lon) < altSharedDistanceMeters {
			shared++
		}
	}

	return float64(shared)/float64(altSampleCount) < altSharedRatioThreshold
}

func cumulativeDistances(points []datastructure.Location) []float64 {
	cum := make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		cum[i] = cum[i-1] + geo.CalculateHaversineDistance(
			points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude)
	}
	return cum
}

// positionAlong returns the coordinate at the given distance from the route
// start, interpolating linearly inside the containing segment.
func positionAlong(points []datastructure.Location, cum []float64,
	target float64) geo.Coordinate {

	if target <= 0 || len(points) == 1 {
		return geo.NewCoordinate(points[0].Latitude, points[0].Longitude)
	}
	last := len(points) - 1
	if target >= cum[last] {
		return geo.NewCoordinate(points[last].Latitude, points[last].Longitude)
	}

	for i := 1; i < len(points); i++ {
		if cum[i] < target {
			continue
		}
		segLen := cum[i] - cum[i-1]
		t := 0.0
		if segLen > 0 {
			t = (target - cum[i-1]) / segLen
		}
		return geo.Interpolate(
			geo.NewCoordinate(points[i-1].Latitude, points[i-1].Longitude),
			geo.NewCoordinate(points[i].Latitude, points[i].Longitude), t)
	}
	return geo.NewCoordinate(points[last].Latitude, points[last].Longitude)
}

// calculateDuration estimates travel time in seconds. When every point
// carries a usable speed the per-segment times are summed; otherwise the
// total length is divided by the fallback cruise speed. The policy factor
// scales the denominator (fastest routes assume brisker traffic).
func calculateDuration(points []datastructure.Location, factor float64) int {
	if len(points) < 2 {
		return 0
	}

	total := 0.0
	allSpeeds := true
	duration := 0.0

	for i := 0; i < len(points)-1; i++ {
		d := geo.CalculateHaversineDistance(
			points[i].Latitude, points[i].Longitude,
			points[i+1].Latitude, points[i+1].Longitude)
		total += d

		speed := float64(points[i].Speed)
		if math.IsNaN(speed) || speed <= 0.1 {
			allSpeeds = false
			continue
		}
		duration += d / (speed * factor)
	}

	if !allSpeeds {
		duration = total / (pkg.FALLBACK_ROUTE_SPEED_MPS * factor)
	}

	return int(duration)
}

const hexDigits = "0123456789abcdef"

// generateRouteID returns "route-" plus eight random hex digits. No
// uniqueness guarantee across process restarts.
func (e *Engine) generateRouteID() string {
	id := make([]byte, 8)
	for i := range id {
		id[i] = hexDigits[e.rng.Intn(len(hexDigits))]
	}
	return "route-" + string(id)
}
