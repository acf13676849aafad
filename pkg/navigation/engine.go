package navigation

import (
	"time"

	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/filter"
	"github.com/pandu-nav/pandu/pkg/matcher"
	"github.com/pandu-nav/pandu/pkg/metrics"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"github.com/pandu-nav/pandu/pkg/routing"
	"go.uber.org/zap"
)

/*
Engine wires the location filter, routing engine and route matcher together
and keeps the current/destination/route state. It is single-threaded by
contract: the host serializes all calls, the engine holds no locks.
*/
type Engine struct {
	log *zap.Logger

	graph          *roadgraph.RoadGraph
	locationFilter *filter.LocationFilter
	routingEngine  *routing.Engine
	routeMatcher   *matcher.RouteMatcher

	currentLocation     *datastructure.Location
	destinationLocation *datastructure.Location
	alternativeRoutes   []datastructure.Route
	currentRoute        *datastructure.Route
}

func NewEngine(graph *roadgraph.RoadGraph, log *zap.Logger) *Engine {
	return &Engine{
		log:            log,
		graph:          graph,
		locationFilter: filter.NewLocationFilter(log),
		routingEngine:  routing.NewEngine(graph, log),
		routeMatcher:   matcher.NewRouteMatcher(graph, log),
	}
}

// Filter exposes the location filter, for tests that need to control its
// clock.
func (e *Engine) Filter() *filter.LocationFilter {
	return e.locationFilter
}

// UpdateLocation filters the raw fix, lazily computes routes once both a fix
// and a destination exist, and matches the filtered fix against the active
// route. Exactly one observation is returned per call.
func (e *Engine) UpdateLocation(lat, lon float64,
	bearing, speed, accuracy float32) datastructure.RouteMatch {

	raw := datastructure.NewLocation(lat, lon, bearing, speed, accuracy)
	filtered := e.locationFilter.Process(raw)
	metrics.FixesProcessed.Inc()

	e.currentLocation = &filtered

	if e.destinationLocation != nil && len(e.alternativeRoutes) == 0 {
		e.log.Info("first fix after deferred destination, calculating routes")
		e.calculateRoutes()
	}

	if e.currentRoute != nil {
		obs := e.routeMatcher.Match(filtered)
		metrics.MatchesServed.Inc()
		return obs
	}

	return datastructure.NewNoRouteMatch(filtered)
}

// SetDestination stores the destination. Without a current fix it returns
// success and defers routing to the next UpdateLocation; otherwise it routes
// immediately and reports whether any route resulted.
func (e *Engine) SetDestination(lat, lon float64) bool {
	dest := datastructure.NewCoordLocation(lat, lon)
	e.destinationLocation = &dest
	e.alternativeRoutes = nil
	e.currentRoute = nil

	if e.currentLocation == nil {
		e.log.Info("destination stored, waiting for a fix before routing",
			zap.Float64("lat", lat), zap.Float64("lon", lon))
		return true
	}

	return e.calculateRoutes()
}

func (e *Engine) calculateRoutes() bool {
	startedAt := time.Now()
	routes := e.routingEngine.CalculateRoutes(*e.currentLocation, *e.destinationLocation)
	metrics.RoutesCalculated.Inc()
	metrics.RouteCalculationSeconds.Observe(time.Since(startedAt).Seconds())

	if len(routes) == 0 {
		e.log.Error("no routes produced")
		return false
	}

	e.alternativeRoutes = routes
	e.currentRoute = &routes[0]
	e.routeMatcher.SetRoute(routes[0])
	return true
}

// GetAlternativeRoutes returns every route of the last calculation, primary
// first.
func (e *Engine) GetAlternativeRoutes() []datastructure.Route {
	return e.alternativeRoutes
}

// SwitchToRoute adopts the alternative with the given id. Unknown ids leave
// the previous state untouched and return false.
func (e *Engine) SwitchToRoute(routeID string) bool {
	for i := range e.alternativeRoutes {
		if e.alternativeRoutes[i].ID == routeID {
			e.currentRoute = &e.alternativeRoutes[i]
			e.routeMatcher.SetRoute(e.alternativeRoutes[i])
			e.log.Info("switched route", zap.String("route_id", routeID))
			return true
		}
	}

	e.log.Warn("route not found", zap.String("route_id", routeID))
	return false
}
