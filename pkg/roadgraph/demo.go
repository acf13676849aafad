package roadgraph

import (
	"fmt"

	"github.com/pandu-nav/pandu/pkg"
	"go.uber.org/zap"
)

// BuildDemoNetwork populates g with a 10x10 grid around downtown San
// Francisco: horizontal "Street i" and vertical "Avenue j", every third one a
// primary at 50 km/h, the rest residential at 30 km/h, all bidirectional.
// Used when no map dump is configured, and by the test suites.
func BuildDemoNetwork(g *RoadGraph) {
	const (
		gridSize = 10
		baseLat  = 37.7749
		baseLon  = -122.4194
		spacing  = 0.001 // roughly 100 meters
	)

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			id := fmt.Sprintf("node_%d_%d", i, j)
			g.AddNode(id, baseLat+float64(i)*spacing, baseLon+float64(j)*spacing)
		}
	}

	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			if j < gridSize-1 {
				from := g.GetNode(fmt.Sprintf("node_%d_%d", i, j))
				to := g.GetNode(fmt.Sprintf("node_%d_%d", i, j+1))

				name := fmt.Sprintf("Street %d", i)
				class, speed := pkg.RESIDENTIAL, 30.0
				if i%3 == 0 {
					class, speed = pkg.PRIMARY, 50.0
				}

				g.AddSegment(from, to, name, speed, class, false)
				g.AddSegment(to, from, name, speed, class, false)
			}

			if i < gridSize-1 {
				from := g.GetNode(fmt.Sprintf("node_%d_%d", i, j))
				to := g.GetNode(fmt.Sprintf("node_%d_%d", i+1, j))

				name := fmt.Sprintf("Avenue %d", j)
				class, speed := pkg.RESIDENTIAL, 30.0
				if j%3 == 0 {
					class, speed = pkg.PRIMARY, 50.0
				}

				g.AddSegment(from, to, name, speed, class, false)
				g.AddSegment(to, from, name, speed, class, false)
			}
		}
	}

	if g.log != nil {
		g.log.Info("demo road network built",
			zap.Int("nodes", g.NumNodes()),
			zap.Int("segments", g.NumSegments()))
	}
}
