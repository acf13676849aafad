package osm

import (
	"strconv"
	"strings"

	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
	"go.uber.org/zap"
)

// NodeEvent and WayEvent are the decoded map-dump events the engine consumes.
// The dump format itself (XML, PBF) is the loader's problem.
type NodeEvent struct {
	ID  int64
	Lat float64
	Lon float64
}

type WayEvent struct {
	ID       int64
	NodeRefs []int64
	Tags     map[string]string
}

// non-routable highway values
var skipHighway = map[string]struct{}{
	"footway":      {},
	"cycleway":     {},
	"path":         {},
	"steps":        {},
	"pedestrian":   {},
	"track":        {},
	"bus_guideway": {},
	"escape":       {},
	"raceway":      {},
	"bridleway":    {},
}

// Ingester consumes node and way events and populates the road graph:
// classify the road, decide oneway, emit the forward segment and the reverse
// one when the way is bidirectional.
type Ingester struct {
	log   *zap.Logger
	graph *roadgraph.RoadGraph

	nodes map[int64]*roadgraph.Node

	nodeCount int
	wayCount  int
	roadCount int
}

func NewIngester(graph *roadgraph.RoadGraph, log *zap.Logger) *Ingester {
	return &Ingester{
		log:   log,
		graph: graph,
		nodes: make(map[int64]*roadgraph.Node),
	}
}

func (ing *Ingester) IngestNode(ev NodeEvent) {
	node := ing.graph.AddNode(strconv.FormatInt(ev.ID, 10), ev.Lat, ev.Lon)
	ing.nodes[ev.ID] = node

	ing.nodeCount++
	if ing.nodeCount%10000 == 0 {
		ing.log.Info("ingesting nodes", zap.Int("count", ing.nodeCount))
	}
}

func (ing *Ingester) IngestWay(ev WayEvent) {
	ing.wayCount++

	if len(ev.NodeRefs) < 2 {
		return
	}

	highway, ok := ev.Tags["highway"]
	if !ok {
		return
	}
	if _, skip := skipHighway[highway]; skip {
		return
	}
	if access := ev.Tags["access"]; access == "private" || access == "no" {
		return
	}

	class := classifyHighway(highway)
	speedLimit := speedLimitFromTags(ev.Tags, class)
	name := wayName(ev.Tags)
	oneway := isOneway(ev.Tags, highway)

	for i := 0; i < len(ev.NodeRefs)-1; i++ {
		from, okFrom := ing.nodes[ev.NodeRefs[i]]
		to, okTo := ing.nodes[ev.NodeRefs[i+1]]
		if !okFrom || !okTo {
			continue
		}

		ing.graph.AddSegment(from, to, name, speedLimit, class, oneway)
		if !oneway {
			ing.graph.AddSegment(to, from, name, speedLimit, class, oneway)
		}
	}

	ing.roadCount++
	if ing.roadCount%1000 == 0 {
		ing.log.Info("ingesting ways",
			zap.Int("ways", ing.wayCount), zap.Int("roads", ing.roadCount))
	}
}

// Stats returns (nodes ingested, ways seen, roads accepted).
func (ing *Ingester) Stats() (int, int, int) {
	return ing.nodeCount, ing.wayCount, ing.roadCount
}

func classifyHighway(highway string) pkg.RoadClass {
	switch highway {
	case "motorway", "trunk", "motorway_link", "trunk_link":
		return pkg.HIGHWAY
	case "primary", "secondary", "primary_link", "secondary_link":
		return pkg.PRIMARY
	case "tertiary", "unclassified", "tertiary_link":
		return pkg.SECONDARY
	case "residential", "living_street":
		return pkg.RESIDENTIAL
	case "service", "track":
		return pkg.SERVICE
	}
	return pkg.RESIDENTIAL
}

func speedLimitFromTags(tags map[string]string, class pkg.RoadClass) float64 {
	if raw, ok := tags["maxspeed"]; ok {
		if v, ok := parseLeadingNumber(raw); ok {
			return v
		}
	}
	return class.DefaultSpeedLimitKph()
}

// parseLeadingNumber parses the numeric prefix of a maxspeed value, so
// "50", "50 mph" and "50;30" all yield 50.
func parseLeadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	if end == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func wayName(tags map[string]string) string {
	if name, ok := tags["name"]; ok && name != "" {
		return name
	}
	if ref, ok := tags["ref"]; ok && ref != "" {
		return "Road " + ref
	}
	return "Unnamed Road"
}

func isOneway(tags map[string]string, highway string) bool {
	switch tags["oneway"] {
	case "yes", "true", "1":
		return true
	}
	return highway == "motorway" || highway == "motorway_link"
}
