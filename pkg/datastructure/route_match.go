package datastructure

// RouteMatch is the observation returned for every positioning update: the
// matched road, the upcoming maneuver and the snapped position.
type RouteMatch struct {
	StreetName             string  `json:"street_name"`
	NextManeuver           string  `json:"next_maneuver"`
	DistanceToNext         int     `json:"distance_to_next_m"`
	EstimatedTimeOfArrival string  `json:"eta"`
	MatchedLatitude        float64 `json:"matched_lat"`
	MatchedLongitude       float64 `json:"matched_lon"`
	MatchedBearing         float32 `json:"matched_bearing"`
}

// NewNoRouteMatch. sentinel observation returned while no route is active.
func NewNoRouteMatch(loc Location) RouteMatch {
	return RouteMatch{
		StreetName:       "No active route",
		NextManeuver:     "Set a destination",
		DistanceToNext:   0,
		MatchedLatitude:  loc.Latitude,
		MatchedLongitude: loc.Longitude,
		MatchedBearing:   loc.Bearing,
	}
}
