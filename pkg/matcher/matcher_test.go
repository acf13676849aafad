package matcher

import (
	"math"
	"testing"

	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/geo"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMatcherWithDemoGraph(t *testing.T) *RouteMatcher {
	t.Helper()
	g := roadgraph.NewRoadGraph(zap.NewNop())
	roadgraph.BuildDemoNetwork(g)
	return NewRouteMatcher(g, zap.NewNop())
}

func newMatcherWithEmptyGraph(t *testing.T) *RouteMatcher {
	t.Helper()
	return NewRouteMatcher(roadgraph.NewRoadGraph(zap.NewNop()), zap.NewNop())
}

// an east-then-north corner route on the demo grid
func cornerRoute() datastructure.Route {
	points := []datastructure.Location{
		datastructure.NewCoordLocation(37.7749, -122.4194),
		datastructure.NewCoordLocation(37.7749, -122.4184),
		datastructure.NewCoordLocation(37.7759, -122.4184),
	}
	return datastructure.NewRoute("route-deadbeef", "Corner", points, 60)
}

func TestMatchWithoutRouteReturnsSentinel(t *testing.T) {
	m := newMatcherWithDemoGraph(t)

	fix := datastructure.NewLocation(37.7755, -122.4189, 45, 2, 5)
	got := m.Match(fix)

	assert.Equal(t, "No active route", got.StreetName)
	assert.Equal(t, "Set a destination", got.NextManeuver)
	assert.Equal(t, 0, got.DistanceToNext)
	assert.Equal(t, fix.Latitude, got.MatchedLatitude)
	assert.Equal(t, fix.Longitude, got.MatchedLongitude)
	assert.Equal(t, fix.Bearing, got.MatchedBearing)
}

func TestMatchIsIdempotent(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	fix := datastructure.NewLocation(37.7749, -122.4191, 90, 5, 5)

	first := m.Match(fix)
	second := m.Match(fix)
	assert.Equal(t, first, second)
}

func TestCornerManeuverIsLeftTurn(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	// heading east along Street 0, before the corner
	fix := datastructure.NewLocation(37.7749, -122.4192, 90, 5, 5)
	got := m.Match(fix)

	assert.Equal(t, "Turn left", got.NextManeuver)

	// the route start is the closest point, so the distance to the corner is
	// the whole Street 0 leg
	want := geo.CalculateHaversineDistance(37.7749, -122.4194, 37.7749, -122.4184)
	assert.InDelta(t, want, float64(got.DistanceToNext), 2.0)
}

func TestArrivalAtRouteEnd(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	// just short of the last point, heading north
	fix := datastructure.NewLocation(37.77585, -122.4184, 0, 3, 5)
	got := m.Match(fix)

	assert.Equal(t, "Arrive at destination", got.NextManeuver)
	assert.LessOrEqual(t, got.DistanceToNext, 15)
}

func TestMatchSnapsToStreet(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	// ~15 m north of Street 0, heading east
	fix := datastructure.NewLocation(37.7749+15.0/111194.0, -122.4189, 90, 5, 5)
	got := m.Match(fix)

	assert.Equal(t, "Street 0", got.StreetName)
	assert.InDelta(t, 37.7749, got.MatchedLatitude, 1e-5)
	assert.InDelta(t, -122.4189, got.MatchedLongitude, 1e-5)
	assert.Equal(t, float32(90), got.MatchedBearing)
}

func TestMatchWithEmptyGraphKeepsFixPosition(t *testing.T) {
	m := newMatcherWithEmptyGraph(t)
	m.SetRoute(cornerRoute())

	fix := datastructure.NewLocation(37.7749, -122.4190, 90, 5, 5)
	got := m.Match(fix)

	assert.Equal(t, "Unknown Road", got.StreetName)
	assert.Equal(t, fix.Latitude, got.MatchedLatitude)
	assert.Equal(t, fix.Longitude, got.MatchedLongitude)
}

func TestCumulativeDistancesMonotone(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	require.Len(t, m.cumDist, 3)
	assert.Equal(t, 0.0, m.cumDist[0])
	for i := 1; i < len(m.cumDist); i++ {
		assert.GreaterOrEqual(t, m.cumDist[i], m.cumDist[i-1])
	}

	// triangle inequality against the crow-flies endpoint distance
	crow := geo.CalculateHaversineDistance(37.7749, -122.4194, 37.7759, -122.4184)
	assert.GreaterOrEqual(t, m.cumDist[2], crow)
}

func TestRouteSegmentAssociation(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	// both route legs run on top of demo grid streets
	require.NotEmpty(t, m.routeSegments)

	names := make(map[string]struct{})
	for _, seg := range m.routeSegments {
		names[seg.GetName()] = struct{}{}
	}
	assert.Contains(t, names, "Street 0")
	assert.Contains(t, names, "Avenue 1")
}

func TestIsSegmentOnRoute(t *testing.T) {
	g := roadgraph.NewRoadGraph(zap.NewNop())
	roadgraph.BuildDemoNetwork(g)
	m := NewRouteMatcher(g, zap.NewNop())
	m.SetRoute(cornerRoute())

	var onStreet0, farAway *roadgraph.RoadSegment
	g.ForSegments(func(s *roadgraph.RoadSegment) {
		if s.GetName() == "Street 0" && s.GetFrom().GetID() == "node_0_0" {
			onStreet0 = s
		}
		if s.GetName() == "Street 9" && farAway == nil {
			farAway = s
		}
	})
	require.NotNil(t, onStreet0)
	require.NotNil(t, farAway)

	assert.True(t, m.isSegmentOnRoute(onStreet0))
	assert.False(t, m.isSegmentOnRoute(farAway))
}

func TestManeuverDistanceFromCornerPoint(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	// 80% of the way along the first leg, heading east toward the corner; the
	// corner is already the closest route point
	fix := datastructure.NewLocation(37.7749, -122.4186, 90, 5, 5)
	got := m.Match(fix)

	// the corner is the upcoming maneuver and the remaining distance is
	// measured from the corner-adjacent index, not the route start
	assert.Equal(t, "Turn left", got.NextManeuver)
	assert.LessOrEqual(t, got.DistanceToNext, 40)
}

func TestMatchWithNaNBearing(t *testing.T) {
	m := newMatcherWithDemoGraph(t)
	m.SetRoute(cornerRoute())

	fix := datastructure.NewCoordLocation(37.7749, -122.4192)
	got := m.Match(fix)

	// still matched by pure distance scoring
	assert.Equal(t, "Street 0", got.StreetName)
	assert.True(t, math.IsNaN(float64(got.MatchedBearing)))
}
