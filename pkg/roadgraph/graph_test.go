package roadgraph

import (
	"testing"

	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGraph(t *testing.T) *RoadGraph {
	t.Helper()
	return NewRoadGraph(zap.NewNop())
}

func TestAddNodeGetOrCreate(t *testing.T) {
	g := newTestGraph(t)

	a := g.AddNode("1", 37.7749, -122.4194)
	b := g.AddNode("1", 99.0, 99.0) // same id, coordinates ignored

	assert.Same(t, a, b)
	assert.Equal(t, 37.7749, b.GetLat())
	assert.Equal(t, 1, g.NumNodes())
}

func TestAddSegment(t *testing.T) {
	g := newTestGraph(t)

	a := g.AddNode("a", 37.7749, -122.4194)
	b := g.AddNode("b", 37.7749, -122.4184)

	s1 := g.AddSegment(a, b, "Street 0", 30, pkg.RESIDENTIAL, false)
	s2 := g.AddSegment(b, a, "Street 0", 30, pkg.RESIDENTIAL, false)

	assert.Equal(t, 1, s1.GetID())
	assert.Equal(t, 2, s2.GetID())

	wantLen := geo.CalculateHaversineDistance(a.GetLat(), a.GetLon(), b.GetLat(), b.GetLon())
	assert.InDelta(t, wantLen, s1.GetLengthMeters(), 1e-9)

	require.Len(t, a.GetOutSegments(), 1)
	assert.Same(t, s1, a.GetOutSegments()[0])
	require.Len(t, b.GetOutSegments(), 1)
	assert.Same(t, s2, b.GetOutSegments()[0])
}

func TestSplitSegmentPreservesLength(t *testing.T) {
	g := newTestGraph(t)

	a := g.AddNode("a", 37.7749, -122.4194)
	b := g.AddNode("b", 37.7749, -122.4184)
	seg := g.AddSegment(a, b, "Street 0", 30, pkg.RESIDENTIAL, false)

	mid := geo.MidPoint(a.GetCoordinate(), b.GetCoordinate())
	proj := g.SplitSegment(seg, mid.Lat, mid.Lon)

	require.NotNil(t, proj)
	assert.Contains(t, proj.GetID(), "projected_1_")

	// from -> proj and proj -> to carry the original attributes
	require.Len(t, a.GetOutSegments(), 2)
	half1 := a.GetOutSegments()[1]
	require.Len(t, proj.GetOutSegments(), 1)
	half2 := proj.GetOutSegments()[0]

	assert.Equal(t, "Street 0", half1.GetName())
	assert.Equal(t, pkg.RESIDENTIAL, half2.GetClass())
	assert.Equal(t, 30.0, half2.GetSpeedLimitKph())

	assert.InDelta(t, seg.GetLengthMeters(),
		half1.GetLengthMeters()+half2.GetLengthMeters(), 1.0)
}

func TestDemoNetwork(t *testing.T) {
	g := newTestGraph(t)
	BuildDemoNetwork(g)

	assert.Equal(t, 100, g.NumNodes())
	// 2*10*9 undirected grid edges, two directed segments each
	assert.Equal(t, 360, g.NumSegments())

	corner := g.GetNode("node_0_0")
	require.NotNil(t, corner)
	assert.Len(t, corner.GetOutSegments(), 2)

	center := g.GetNode("node_5_5")
	require.NotNil(t, center)
	assert.Len(t, center.GetOutSegments(), 4)
}
