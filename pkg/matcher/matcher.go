package matcher

import (
	"math"

	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/geo"
	"github.com/pandu-nav/pandu/pkg/guidance"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

const (
	gapWarnMeters = 50.0

	// route-to-road association
	associateRadiusMeters     = 50.0
	associateWideRadiusMeters = 100.0
	associateBearingWeight    = 20.0
	associateBearingUnit      = 45.0

	// candidate lookup
	candidateRadiusMeters     = 100.0
	candidateWideRadiusMeters = 300.0

	// on-route test
	onRouteToleranceMeters = 20.0
	onRouteBBoxPadDegrees  = 0.0003

	// segment scoring
	maxPerpendicularMeters = 50.0
	bearingScoreWeight     = 50.0
	onRouteBonus           = 0.5

	// progress advance
	advanceProgress       = 0.7
	advanceBearingDegrees = 45.0

	maneuverBearingDegrees = 30.0
)

/*
RouteMatcher snaps filtered fixes onto the active route: pick the best nearby
road segment, project the fix onto it, and derive the upcoming maneuver and
the distance left to it. State is rebuilt wholesale on every SetRoute.
*/
type RouteMatcher struct {
	log   *zap.Logger
	graph *roadgraph.RoadGraph

	route   *datastructure.Route
	cumDist []float64

	routeSegments []*roadgraph.RoadSegment
	routeSegIDs   map[int]struct{}

	// bounding boxes of consecutive route point pairs, for the on-route test
	routeIndex *rtree.RTreeG[int]

	lastFix *datastructure.Location
}

func NewRouteMatcher(graph *roadgraph.RoadGraph, log *zap.Logger) *RouteMatcher {
	return &RouteMatcher{
		log:   log,
		graph: graph,
	}
}

// SetRoute replaces the active route and precomputes cumulative distances,
// the per-pair road association and the route sub-segment index.
func (m *RouteMatcher) SetRoute(route datastructure.Route) {
	m.route = &route
	m.lastFix = nil

	points := route.Points

	m.cumDist = make([]float64, len(points))
	for i := 1; i < len(points); i++ {
		gap := geo.CalculateHaversineDistance(
			points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude)
		m.cumDist[i] = m.cumDist[i-1] + gap

		if gap > gapWarnMeters {
			m.log.Warn("large gap between route points",
				zap.Int("index", i), zap.Float64("gap_m", gap))
		}
	}

	m.precomputeRouteSegments()
	m.buildRouteIndex()

	m.log.Info("route set",
		zap.String("route_id", route.ID),
		zap.Int("points", len(points)),
		zap.Int("associated_segments", len(m.routeSegments)))
}

// precomputeRouteSegments associates each consecutive route point pair with
// the road segment nearest its midpoint, scored by distance plus a bearing
// mismatch penalty.
func (m *RouteMatcher) precomputeRouteSegments() {
	points := m.route.Points

	m.routeSegments = m.routeSegments[:0]
	m.routeSegIDs = make(map[int]struct{})

	for i := 0; i < len(points)-1; i++ {
		mid := geo.MidPoint(
			geo.NewCoordinate(points[i].Latitude, points[i].Longitude),
			geo.NewCoordinate(points[i+1].Latitude, points[i+1].Longitude))

		nearby := m.graph.FindNearby(mid.Lat, mid.Lon, associateRadiusMeters)
		if len(nearby) == 0 {
			nearby = m.graph.FindNearby(mid.Lat, mid.Lon, associateWideRadiusMeters)
		}
		if len(nearby) == 0 {
			continue
		}

		pairBearing := geo.BearingTo(
			points[i].Latitude, points[i].Longitude,
			points[i+1].Latitude, points[i+1].Longitude)

		var best *roadgraph.RoadSegment
		bestScore := math.MaxFloat64

		for _, seg := range nearby {
			dist := geo.PointLinePerpendicularDistance(
				seg.GetFrom().GetCoordinate(), seg.GetTo().GetCoordinate(), mid)
			deltaBearing := guidance.AbsDeltaBearing(seg.GetBearing(), pairBearing)

			score := dist + (deltaBearing/associateBearingUnit)*associateBearingWeight
			if score < bestScore {
				bestScore = score
				best = seg
			}
		}

		if best != nil {
			if _, seen := m.routeSegIDs[best.GetID()]; !seen {
				m.routeSegments = append(m.routeSegments, best)
				m.routeSegIDs[best.GetID()] = struct{}{}
			}
		}
	}
}

func (m *RouteMatcher) buildRouteIndex() {
	var tr rtree.RTreeG[int]
	points := m.route.Points

	for i := 0; i < len(points)-1; i++ {
		minLat := math.Min(points[i].Latitude, points[i+1].Latitude) - onRouteBBoxPadDegrees
		maxLat := math.Max(points[i].Latitude, points[i+1].Latitude) + onRouteBBoxPadDegrees
		minLon := math.Min(points[i].Longitude, points[i+1].Longitude) - onRouteBBoxPadDegrees
		maxLon := math.Max(points[i].Longitude, points[i+1].Longitude) + onRouteBBoxPadDegrees

		tr.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, i)
	}
	m.routeIndex = &tr
}

// HasRoute reports whether a route is active.
func (m *RouteMatcher) HasRoute() bool {
	return m.route != nil
}

// LastFix returns the last matched fix, if any.
func (m *RouteMatcher) LastFix() *datastructure.Location {
	return m.lastFix
}

// Match produces the observation for one filtered fix. Identical inputs with
// identical state yield identical observations.
func (m *RouteMatcher) Match(fix datastructure.Location) datastructure.RouteMatch {
	m.lastFix = &fix

	if m.route == nil || len(m.route.Points) < 2 {
		return datastructure.NewNoRouteMatch(fix)
	}

	closestIdx := m.closestPointIndex(fix)

	street, matched := m.matchToSegment(fix)

	maneuverIdx := m.nextManeuverIndex(closestIdx)
	distanceToNext := int(m.cumDist[maneuverIdx] - m.cumDist[closestIdx])

	return datastructure.RouteMatch{
		StreetName:       street,
		NextManeuver:     m.classifyManeuver(maneuverIdx),
		DistanceToNext:   distanceToNext,
		MatchedLatitude:  matched.Lat,
		MatchedLongitude: matched.Lon,
		MatchedBearing:   fix.Bearing,
	}
}

// closestPointIndex finds the route point nearest the fix, advancing by one
// when the fix has clearly progressed past it toward the next point.
func (m *RouteMatcher) closestPointIndex(fix datastructure.Location) int {
	points := m.route.Points

	idx := 0
	minDist := math.MaxFloat64
	for i := range points {
		d := geo.CalculateHaversineDistance(
			fix.Latitude, fix.Longitude, points[i].Latitude, points[i].Longitude)
		if d < minDist {
			minDist = d
			idx = i
		}
	}

	if idx < len(points)-1 {
		_, progress := geo.ProjectOntoSegment(
			geo.NewCoordinate(points[idx].Latitude, points[idx].Longitude),
			geo.NewCoordinate(points[idx+1].Latitude, points[idx+1].Longitude),
			geo.NewCoordinate(fix.Latitude, fix.Longitude))

		bearingToNext := geo.BearingTo(fix.Latitude, fix.Longitude,
			points[idx+1].Latitude, points[idx+1].Longitude)

		if progress > advanceProgress &&
			guidance.AbsDeltaBearing(bearingToNext, float64(fix.Bearing)) <= advanceBearingDegrees {
			idx++
		}
	}

	return idx
}

// matchToSegment scores nearby segments and returns the winner's street name
// with the fix projected onto it. Falls back to the raw fix position when no
// segment survives the 50 m perpendicular cut.
func (m *RouteMatcher) matchToSegment(fix datastructure.Location) (string, geo.Coordinate) {
	candidates := m.graph.FindNearby(fix.Latitude, fix.Longitude, candidateRadiusMeters)
	if len(candidates) == 0 {
		candidates = m.graph.FindNearby(fix.Latitude, fix.Longitude, candidateWideRadiusMeters)
	}

	onRoute := make([]*roadgraph.RoadSegment, 0, len(candidates))
	for _, seg := range candidates {
		if m.isSegmentOnRoute(seg) {
			onRoute = append(onRoute, seg)
		}
	}
	if len(onRoute) > 0 {
		candidates = onRoute
	}

	fixCoord := geo.NewCoordinate(fix.Latitude, fix.Longitude)

	street := "Unknown Road"
	matched := fixCoord
	bestScore := math.MaxFloat64

	for _, seg := range candidates {
		proj := geo.ProjectPointToLineCoord(
			seg.GetFrom().GetCoordinate(), seg.GetTo().GetCoordinate(), fixCoord)
		d := geo.CalculateHaversineDistance(fix.Latitude, fix.Longitude, proj.Lat, proj.Lon)
		if d > maxPerpendicularMeters {
			continue
		}

		score := m.scoreSegment(seg, fix, d)
		if score < bestScore {
			bestScore = score
			matched = proj
			if name := seg.GetName(); name != "" {
				street = name
			}
		}
	}

	return street, matched
}

func (m *RouteMatcher) scoreSegment(seg *roadgraph.RoadSegment,
	fix datastructure.Location, perpendicular float64) float64 {

	bearingFactor := 0.0
	if fix.HasBearing() {
		bearingFactor = guidance.AbsDeltaBearing(seg.GetBearing(), float64(fix.Bearing)) / 180.0
	}

	bonus := 1.0
	if _, ok := m.routeSegIDs[seg.GetID()]; ok {
		bonus = onRouteBonus
	}

	speedFactor := 1.0
	speed := float64(fix.Speed)
	limit := seg.GetSpeedLimitKph()
	if speed > 1 {
		if limit > 60 {
			speedFactor = 0.8
		} else if limit < 30 && speed > 10 {
			speedFactor = 1.2
		}
	}
	if speed < 5 && limit > 70 {
		speedFactor = 1.2
	}

	return (perpendicular + bearingFactor*bearingScoreWeight) * bonus * speedFactor
}

/*
isSegmentOnRoute reports whether seg runs along the active route: some route
sub-segment has an endpoint within 20 m of one of seg's endpoints, or the
projection-based segment-to-segment distance drops below 20 m. The rtree over
route pair bounding boxes keeps this from scanning the whole polyline.
*/
func (m *RouteMatcher) isSegmentOnRoute(seg *roadgraph.RoadSegment) bool {
	points := m.route.Points

	from := seg.GetFrom().GetCoordinate()
	to := seg.GetTo().GetCoordinate()

	minLat := math.Min(from.Lat, to.Lat) - onRouteBBoxPadDegrees
	maxLat := math.Max(from.Lat, to.Lat) + onRouteBBoxPadDegrees
	minLon := math.Min(from.Lon, to.Lon) - onRouteBBoxPadDegrees
	maxLon := math.Max(from.Lon, to.Lon) + onRouteBBoxPadDegrees

	found := false
	m.routeIndex.Search([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat},
		func(_, _ [2]float64, i int) bool {
			a := geo.NewCoordinate(points[i].Latitude, points[i].Longitude)
			b := geo.NewCoordinate(points[i+1].Latitude, points[i+1].Longitude)

			endpointDistances := [4]float64{
				geo.CalculateHaversineDistance(from.Lat, from.Lon, a.Lat, a.Lon),
				geo.CalculateHaversineDistance(from.Lat, from.Lon, b.Lat, b.Lon),
				geo.CalculateHaversineDistance(to.Lat, to.Lon, a.Lat, a.Lon),
				geo.CalculateHaversineDistance(to.Lat, to.Lon, b.Lat, b.Lon),
			}
			for _, d := range endpointDistances {
				if d < onRouteToleranceMeters {
					found = true
					return false
				}
			}

			if geo.SegmentToSegmentDistance(from, to, a, b) < onRouteToleranceMeters {
				found = true
				return false
			}
			return true
		})

	return found
}

// nextManeuverIndex walks forward from the closest point to the first index
// whose bearing change exceeds 30°, or the end of the route.
func (m *RouteMatcher) nextManeuverIndex(closestIdx int) int {
	points := m.route.Points
	last := len(points) - 1

	start := closestIdx
	if start < 1 {
		start = 1
	}

	for i := start; i < last; i++ {
		before := geo.BearingTo(points[i-1].Latitude, points[i-1].Longitude,
			points[i].Latitude, points[i].Longitude)
		after := geo.BearingTo(points[i].Latitude, points[i].Longitude,
			points[i+1].Latitude, points[i+1].Longitude)

		if guidance.AbsDeltaBearing(before, after) > maneuverBearingDegrees {
			return i
		}
	}
	return last
}

func (m *RouteMatcher) classifyManeuver(maneuverIdx int) string {
	points := m.route.Points
	last := len(points) - 1

	if maneuverIdx >= last {
		return guidance.ARRIVE.String()
	}
	if maneuverIdx < 1 {
		return guidance.FOLLOW_ROUTE.String()
	}

	before := geo.BearingTo(points[maneuverIdx-1].Latitude, points[maneuverIdx-1].Longitude,
		points[maneuverIdx].Latitude, points[maneuverIdx].Longitude)
	after := geo.BearingTo(points[maneuverIdx].Latitude, points[maneuverIdx].Longitude,
		points[maneuverIdx+1].Latitude, points[maneuverIdx+1].Longitude)

	delta := guidance.SignedDeltaBearing(before, after)
	return guidance.ClassifyTurn(delta).String()
}
