package navigation

import (
	"math"
	"testing"
	"time"

	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestNavigationEngine(t *testing.T) *Engine {
	t.Helper()
	g := roadgraph.NewRoadGraph(zap.NewNop())
	roadgraph.BuildDemoNetwork(g)
	return NewEngine(g, zap.NewNop())
}

func nan() float32 {
	return float32(math.NaN())
}

func TestFirstFixWithoutRoute(t *testing.T) {
	e := newTestNavigationEngine(t)

	got := e.UpdateLocation(37.7755, -122.4189, nan(), nan(), 5)

	// the first fix bypasses the filter and no route is active yet
	assert.Equal(t, "No active route", got.StreetName)
	assert.Equal(t, "Set a destination", got.NextManeuver)
	assert.Equal(t, 37.7755, got.MatchedLatitude)
	assert.Equal(t, -122.4189, got.MatchedLongitude)
}

func TestDeferredRouting(t *testing.T) {
	e := newTestNavigationEngine(t)

	// destination before any fix: accepted, no routes yet
	require.True(t, e.SetDestination(37.7799, -122.4144))
	assert.Empty(t, e.GetAlternativeRoutes())

	// the next update triggers routing
	got := e.UpdateLocation(37.7755, -122.4189, 45, 2, 5)
	assert.NotEqual(t, "No active route", got.StreetName)

	routes := e.GetAlternativeRoutes()
	require.NotEmpty(t, routes)

	first := routes[0].Points[0]
	last := routes[0].Points[len(routes[0].Points)-1]
	assert.Equal(t, 37.7755, first.Latitude)
	assert.Equal(t, -122.4189, first.Longitude)
	assert.Equal(t, 37.7799, last.Latitude)
	assert.Equal(t, -122.4144, last.Longitude)
}

func TestImmediateRoutingWithFix(t *testing.T) {
	e := newTestNavigationEngine(t)

	e.UpdateLocation(37.7755, -122.4189, nan(), nan(), 5)
	require.True(t, e.SetDestination(37.7799, -122.4144))

	require.NotEmpty(t, e.GetAlternativeRoutes())

	// subsequent updates are matched against the active route
	got := e.UpdateLocation(37.7756, -122.4188, 45, 2, 5)
	assert.NotEqual(t, "No active route", got.StreetName)
	assert.NotEqual(t, "Set a destination", got.NextManeuver)
}

func TestSwitchToRoute(t *testing.T) {
	e := newTestNavigationEngine(t)

	e.UpdateLocation(37.7749, -122.4194, nan(), nan(), 5)
	require.True(t, e.SetDestination(37.7839, -122.4104))

	routes := e.GetAlternativeRoutes()
	require.NotEmpty(t, routes)

	lastID := routes[len(routes)-1].ID
	assert.True(t, e.SwitchToRoute(lastID))

	assert.False(t, e.SwitchToRoute("route-00000000"))
	// failed switch keeps the previous route active
	got := e.UpdateLocation(37.7749, -122.4193, 90, 2, 5)
	assert.NotEqual(t, "No active route", got.StreetName)
}

func TestOutlierClampKeepsPositionNearState(t *testing.T) {
	e := newTestNavigationEngine(t)

	clock := time.UnixMilli(1700000000000)
	e.Filter().SetClock(func() time.Time { return clock })

	e.UpdateLocation(37.7755, -122.4189, nan(), nan(), 5)

	clock = clock.Add(10 * time.Millisecond)
	got := e.UpdateLocation(37.8000, -122.4000, nan(), nan(), 5)

	// the filter damps the jump: the observation sits strictly between the
	// previous state and the raw outlier
	assert.Greater(t, got.MatchedLatitude, 37.7755)
	assert.Less(t, got.MatchedLatitude, 37.8000)
	assert.Equal(t, clock.UnixMilli(), e.Filter().LastTimestampMs())
}

func TestSetDestinationResetsRoutes(t *testing.T) {
	e := newTestNavigationEngine(t)

	e.UpdateLocation(37.7749, -122.4194, nan(), nan(), 5)
	require.True(t, e.SetDestination(37.7799, -122.4144))
	firstRoutes := e.GetAlternativeRoutes()
	require.NotEmpty(t, firstRoutes)

	require.True(t, e.SetDestination(37.7839, -122.4104))
	secondRoutes := e.GetAlternativeRoutes()
	require.NotEmpty(t, secondRoutes)

	assert.NotEqual(t, firstRoutes[0].ID, secondRoutes[0].ID)
}
