package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateHaversineDistance(t *testing.T) {
	testCases := []struct {
		name           string
		lat1, lon1     float64
		lat2, lon2     float64
		wantMeters     float64
		toleranceRatio float64
	}{
		{
			name: "same point",
			lat1: 37.7749, lon1: -122.4194,
			lat2: 37.7749, lon2: -122.4194,
			wantMeters:     0,
			toleranceRatio: 0,
		},
		{
			name: "one degree of latitude",
			lat1: 37.0, lon1: -122.0,
			lat2: 38.0, lon2: -122.0,
			wantMeters:     111194, // 2*pi*R/360
			toleranceRatio: 0.001,
		},
		{
			name: "grid spacing 0.001 degree latitude",
			lat1: 37.7749, lon1: -122.4194,
			lat2: 37.7759, lon2: -122.4194,
			wantMeters:     111.19,
			toleranceRatio: 0.001,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateHaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantMeters, got, tt.wantMeters*tt.toleranceRatio+0.01)
		})
	}
}

func TestBearingTo(t *testing.T) {
	testCases := []struct {
		name        string
		lat1, lon1  float64
		lat2, lon2  float64
		wantBearing float64
	}{
		{name: "due north", lat1: 37.0, lon1: -122.0, lat2: 38.0, lon2: -122.0, wantBearing: 0},
		{name: "due south", lat1: 38.0, lon1: -122.0, lat2: 37.0, lon2: -122.0, wantBearing: 180},
		{name: "due east", lat1: 37.7749, lon1: -122.4194, lat2: 37.7749, lon2: -122.4184, wantBearing: 90},
		{name: "due west", lat1: 37.7749, lon1: -122.4184, lat2: 37.7749, lon2: -122.4194, wantBearing: 270},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := BearingTo(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			assert.InDelta(t, tt.wantBearing, got, 0.01)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 360.0)
		})
	}
}

func TestInterpolate(t *testing.T) {
	a := NewCoordinate(37.0, -122.0)
	b := NewCoordinate(38.0, -121.0)

	mid := Interpolate(a, b, 0.5)
	assert.InDelta(t, 37.5, mid.Lat, 1e-12)
	assert.InDelta(t, -121.5, mid.Lon, 1e-12)

	assert.Equal(t, a, Interpolate(a, b, 0))
	assert.Equal(t, b, Interpolate(a, b, 1))
}

func TestProjectOntoSegment(t *testing.T) {
	a := NewCoordinate(37.7749, -122.4194)
	b := NewCoordinate(37.7749, -122.4184)

	t.Run("perpendicular foot inside the segment", func(t *testing.T) {
		p := NewCoordinate(37.7753, -122.4189)
		proj, tt := ProjectOntoSegment(a, b, p)

		require.InDelta(t, 0.5, tt, 1e-9)
		assert.InDelta(t, 37.7749, proj.Lat, 1e-9)
		assert.InDelta(t, -122.4189, proj.Lon, 1e-9)
	})

	t.Run("clamps before the start", func(t *testing.T) {
		p := NewCoordinate(37.7749, -122.4300)
		proj, tt := ProjectOntoSegment(a, b, p)

		assert.Equal(t, 0.0, tt)
		assert.Equal(t, a, proj)
	})

	t.Run("clamps past the end", func(t *testing.T) {
		p := NewCoordinate(37.7749, -122.4100)
		proj, tt := ProjectOntoSegment(a, b, p)

		assert.Equal(t, 1.0, tt)
		assert.Equal(t, b, proj)
	})

	t.Run("degenerate segment", func(t *testing.T) {
		proj, tt := ProjectOntoSegment(a, a, b)
		assert.Equal(t, 0.0, tt)
		assert.Equal(t, a, proj)
	})
}

func TestPointLinePerpendicularDistance(t *testing.T) {
	a := NewCoordinate(37.7749, -122.4194)
	b := NewCoordinate(37.7749, -122.4184)

	// ~40 m north of the midpoint
	p := NewCoordinate(37.7749+40.0/111194.0, -122.4189)

	d := PointLinePerpendicularDistance(a, b, p)
	assert.InDelta(t, 40.0, d, 0.5)

	// beyond the end of the arc the distance clamps to the endpoint
	past := NewCoordinate(37.7749, -122.4174)
	dPast := PointLinePerpendicularDistance(a, b, past)
	wantEndpoint := CalculateHaversineDistance(past.Lat, past.Lon, b.Lat, b.Lon)
	assert.InDelta(t, wantEndpoint, dPast, 0.5)
}

func TestProjectPointToLineCoord(t *testing.T) {
	a := NewCoordinate(37.7749, -122.4194)
	b := NewCoordinate(37.7749, -122.4184)
	p := NewCoordinate(37.7753, -122.4189)

	proj := ProjectPointToLineCoord(a, b, p)
	assert.InDelta(t, 37.7749, proj.Lat, 1e-6)
	assert.InDelta(t, -122.4189, proj.Lon, 1e-6)
}

func TestSegmentToSegmentDistance(t *testing.T) {
	a1 := NewCoordinate(37.7749, -122.4194)
	a2 := NewCoordinate(37.7749, -122.4184)

	t.Run("overlapping segments", func(t *testing.T) {
		d := SegmentToSegmentDistance(a1, a2, a1, a2)
		assert.InDelta(t, 0.0, d, 1e-6)
	})

	t.Run("parallel offset segments", func(t *testing.T) {
		offset := 30.0 / 111194.0
		b1 := NewCoordinate(a1.Lat+offset, a1.Lon)
		b2 := NewCoordinate(a2.Lat+offset, a2.Lon)

		d := SegmentToSegmentDistance(a1, a2, b1, b2)
		assert.InDelta(t, 30.0, d, 0.5)
	})
}

func TestPolylineFromCoords(t *testing.T) {
	coords := []Coordinate{
		NewCoordinate(38.5, -120.2),
		NewCoordinate(40.7, -120.95),
		NewCoordinate(43.252, -126.453),
	}

	// reference encoding from the polyline algorithm description
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", PolylineFromCoords(coords))
}

func TestMidPoint(t *testing.T) {
	a := NewCoordinate(37.0, -122.0)
	b := NewCoordinate(37.002, -122.002)

	mid := MidPoint(a, b)
	assert.False(t, math.IsNaN(mid.Lat))
	assert.InDelta(t, 37.001, mid.Lat, 1e-9)
	assert.InDelta(t, -122.001, mid.Lon, 1e-9)
}
