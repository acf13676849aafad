package controllers

import (
	"github.com/pandu-nav/pandu/pkg/datastructure"
)

type NavigationService interface {
	UpdateLocation(lat, lon float64, bearing, speed, accuracy float32) datastructure.RouteMatch
	SetDestination(lat, lon float64) bool
	GetAlternativeRoutes() []datastructure.Route
	SwitchToRoute(routeID string) bool
}
