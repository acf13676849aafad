package pkg

// RoadClass is the only road categorization the engine distinguishes for
// routing costs and speed-limit defaults.
type RoadClass uint8

const (
	HIGHWAY RoadClass = iota
	PRIMARY
	SECONDARY
	RESIDENTIAL
	SERVICE
)

func (rc RoadClass) String() string {
	switch rc {
	case HIGHWAY:
		return "highway"
	case PRIMARY:
		return "primary"
	case SECONDARY:
		return "secondary"
	case RESIDENTIAL:
		return "residential"
	case SERVICE:
		return "service"
	}
	return "residential"
}

// DefaultSpeedLimitKph. fallback speed limit when the map dump carries no
// usable maxspeed tag.
func (rc RoadClass) DefaultSpeedLimitKph() float64 {
	switch rc {
	case HIGHWAY:
		return 100.0
	case PRIMARY:
		return 70.0
	case SECONDARY:
		return 50.0
	case RESIDENTIAL:
		return 30.0
	case SERVICE:
		return 20.0
	}
	return 30.0
}

const (
	// side of one spatial-index cell in degrees (~111 m at the equator)
	CELL_SIZE = 0.001

	// meters per degree of latitude, also used to convert filter velocity
	// (degrees/second) to meter/second
	METERS_PER_DEGREE = 111000.0

	// beyond this great-circle distance the router answers with a synthetic
	// direct route instead of searching the graph
	MAX_ROUTE_DISTANCE_METERS = 10000.0

	// radius used when snapping a free coordinate to the road network
	SNAP_SEARCH_RADIUS_METERS = 10000.0

	// an on-edge projection closer than this to either endpoint reuses the
	// endpoint instead of splitting the segment
	MIN_PROJECTION_ENDPOINT_DISTANCE_METERS = 10.0

	// fallback cruise speed (~35 km/h) for duration estimates when any route
	// point lacks a usable speed
	FALLBACK_ROUTE_SPEED_MPS = 9.72
)
