package controllers

import (
	"math"

	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/geo"
)

type updateLocationRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`

	// optional; omitted fields mean "derive locally"
	Bearing  *float32 `json:"bearing" validate:"omitempty,gte=0,lt=360"`
	Speed    *float32 `json:"speed" validate:"omitempty,gte=0"`
	Accuracy float32  `json:"accuracy" validate:"gte=0"`
}

func (r updateLocationRequest) bearingOrNaN() float32 {
	if r.Bearing == nil {
		return float32(math.NaN())
	}
	return *r.Bearing
}

func (r updateLocationRequest) speedOrNaN() float32 {
	if r.Speed == nil {
		return float32(math.NaN())
	}
	return *r.Speed
}

type setDestinationRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type switchRouteRequest struct {
	RouteID string `json:"route_id" validate:"required"`
}

type routeResponse struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	DurationSeconds int    `json:"duration_seconds"`
	PointCount      int    `json:"point_count"`
	Polyline        string `json:"polyline"`
}

func newRouteResponse(r datastructure.Route) routeResponse {
	coords := make([]geo.Coordinate, len(r.Points))
	for i, p := range r.Points {
		coords[i] = geo.NewCoordinate(p.Latitude, p.Longitude)
	}

	return routeResponse{
		ID:              r.ID,
		Name:            r.Name,
		DurationSeconds: r.DurationSeconds,
		PointCount:      len(r.Points),
		Polyline:        geo.PolylineFromCoords(coords),
	}
}

// routeMatchResponse mirrors datastructure.RouteMatch with the bearing made
// an explicit optional: NaN never crosses the JSON boundary.
type routeMatchResponse struct {
	StreetName     string   `json:"street_name"`
	NextManeuver   string   `json:"next_maneuver"`
	DistanceToNext int      `json:"distance_to_next_m"`
	ETA            string   `json:"eta"`
	MatchedLat     float64  `json:"matched_lat"`
	MatchedLon     float64  `json:"matched_lon"`
	MatchedBearing *float32 `json:"matched_bearing"`
}

func newRouteMatchResponse(m datastructure.RouteMatch) routeMatchResponse {
	response := routeMatchResponse{
		StreetName:     m.StreetName,
		NextManeuver:   m.NextManeuver,
		DistanceToNext: m.DistanceToNext,
		ETA:            m.EstimatedTimeOfArrival,
		MatchedLat:     m.MatchedLatitude,
		MatchedLon:     m.MatchedLongitude,
	}
	if !math.IsNaN(float64(m.MatchedBearing)) {
		bearing := m.MatchedBearing
		response.MatchedBearing = &bearing
	}
	return response
}

type switchRouteResponse struct {
	Switched bool `json:"switched"`
}

type setDestinationResponse struct {
	Accepted bool `json:"accepted"`
}
