package datastructure

// Route is an ordered polyline from origin to destination with derived
// per-point bearings and speeds. Points[0] is always the caller's start and
// Points[len-1] the caller's end.
type Route struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Points          []Location `json:"points"`
	DurationSeconds int        `json:"duration_seconds"`
}

func NewRoute(id, name string, points []Location, durationSeconds int) Route {
	return Route{
		ID:              id,
		Name:            name,
		Points:          points,
		DurationSeconds: durationSeconds,
	}
}
