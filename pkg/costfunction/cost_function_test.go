package costfunction

import (
	"testing"

	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testSegments(t *testing.T) (*roadgraph.RoadSegment, *roadgraph.RoadSegment) {
	t.Helper()

	g := roadgraph.NewRoadGraph(zap.NewNop())
	a := g.AddNode("a", 37.7749, -122.4194)
	b := g.AddNode("b", 37.7749, -122.4184)

	highway := g.AddSegment(a, b, "Bypass", 100, pkg.HIGHWAY, true)
	residential := g.AddSegment(a, b, "Elm Street", 25, pkg.RESIDENTIAL, false)
	return highway, residential
}

func TestLengthCostFunction(t *testing.T) {
	highway, residential := testSegments(t)
	cf := NewLengthCostFunction()

	assert.Equal(t, highway.GetLengthMeters(), cf.Cost(highway))
	assert.Equal(t, residential.GetLengthMeters(), cf.Cost(residential))
	assert.Equal(t, "shortest", cf.Name())
	assert.Equal(t, 1.0, cf.DurationFactor())
}

func TestFastestCostFunctionFavorsHighSpeedLimits(t *testing.T) {
	highway, residential := testSegments(t)
	cf := NewFastestCostFunction()

	// same geometry, but the 100 km/h segment is discounted and the 25 km/h
	// one penalized around the 50 km/h pivot
	assert.InDelta(t, highway.GetLengthMeters()*0.5, cf.Cost(highway), 1e-9)
	assert.InDelta(t, residential.GetLengthMeters()*2.0, cf.Cost(residential), 1e-9)
	assert.Equal(t, "fastest", cf.Name())
	assert.Equal(t, 1.2, cf.DurationFactor())
}

func TestAvoidHighwayCostFunction(t *testing.T) {
	highway, residential := testSegments(t)
	cf := NewAvoidHighwayCostFunction()

	assert.InDelta(t, highway.GetLengthMeters()*10.0, cf.Cost(highway), 1e-9)
	assert.Equal(t, residential.GetLengthMeters(), cf.Cost(residential))
	assert.Equal(t, "no_highway", cf.Name())
	assert.Equal(t, 0.8, cf.DurationFactor())
}
