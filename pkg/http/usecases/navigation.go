package usecases

import (
	"sync"

	"github.com/pandu-nav/pandu/pkg/datastructure"
	"github.com/pandu-nav/pandu/pkg/navigation"
	"go.uber.org/zap"
)

/*
NavigationService is the host-side wrapper around the engine. The engine
itself is single-threaded and lock-free by contract, so the service owns the
mutex that serializes every call coming in over HTTP or the websocket.
*/
type NavigationService struct {
	log    *zap.Logger
	mu     sync.Mutex
	engine *navigation.Engine
}

func NewNavigationService(log *zap.Logger, engine *navigation.Engine) *NavigationService {
	return &NavigationService{
		log:    log,
		engine: engine,
	}
}

func (s *NavigationService) UpdateLocation(lat, lon float64,
	bearing, speed, accuracy float32) datastructure.RouteMatch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.UpdateLocation(lat, lon, bearing, speed, accuracy)
}

func (s *NavigationService) SetDestination(lat, lon float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetDestination(lat, lon)
}

func (s *NavigationService) GetAlternativeRoutes() []datastructure.Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.GetAlternativeRoutes()
}

func (s *NavigationService) SwitchToRoute(routeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SwitchToRoute(routeID)
}
