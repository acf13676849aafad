package roadgraph

import (
	"fmt"

	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/geo"
	"go.uber.org/zap"
)

// Node is a road-network vertex. Identity is the string id: map-dump nodes
// keep the dump's numeric id rendered as decimal, nodes synthesized by
// on-edge projection get "projected_<segmentId>_<µdegLat>_<µdegLon>".
type Node struct {
	id  string
	lat float64
	lon float64
	out []*RoadSegment
}

func (n *Node) GetID() string {
	return n.id
}

func (n *Node) GetLat() float64 {
	return n.lat
}

func (n *Node) GetLon() float64 {
	return n.lon
}

func (n *Node) GetCoordinate() geo.Coordinate {
	return geo.NewCoordinate(n.lat, n.lon)
}

// GetOutSegments. outgoing segments in insertion order. The returned slice is
// owned by the graph.
func (n *Node) GetOutSegments() []*RoadSegment {
	return n.out
}

// RoadSegment is one directed edge. A bidirectional road in the source dump
// produces two segments with identical attributes except direction.
type RoadSegment struct {
	id         int
	from       *Node
	to         *Node
	name       string
	speedLimit float64 // kph
	class      pkg.RoadClass
	length     float64 // meters
	oneway     bool
}

func (s *RoadSegment) GetID() int {
	return s.id
}

func (s *RoadSegment) GetFrom() *Node {
	return s.from
}

func (s *RoadSegment) GetTo() *Node {
	return s.to
}

func (s *RoadSegment) GetName() string {
	return s.name
}

func (s *RoadSegment) GetSpeedLimitKph() float64 {
	return s.speedLimit
}

func (s *RoadSegment) GetClass() pkg.RoadClass {
	return s.class
}

func (s *RoadSegment) GetLengthMeters() float64 {
	return s.length
}

func (s *RoadSegment) IsOneway() bool {
	return s.oneway
}

// GetBearing. initial bearing from the segment tail to its head.
func (s *RoadSegment) GetBearing() float64 {
	return geo.BearingTo(s.from.lat, s.from.lon, s.to.lat, s.to.lon)
}

// RoadGraph owns every node and segment for the lifetime of the engine.
// It is populated once (bulk ingestion or the demo network), then read by
// routing and matching; the only mid-session mutation is on-edge projection
// during snapping, which appends and never invalidates existing refs.
type RoadGraph struct {
	log           *zap.Logger
	nodes         map[string]*Node
	segments      []*RoadSegment
	index         *SpatialIndex
	nextSegmentID int
}

func NewRoadGraph(log *zap.Logger) *RoadGraph {
	return &RoadGraph{
		log:           log,
		nodes:         make(map[string]*Node),
		index:         NewSpatialIndex(),
		nextSegmentID: 1,
	}
}

// AddNode creates the node or returns the existing one with that id.
func (g *RoadGraph) AddNode(id string, lat, lon float64) *Node {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &Node{id: id, lat: lat, lon: lon}
	g.nodes[id] = n
	return n
}

func (g *RoadGraph) GetNode(id string) *Node {
	return g.nodes[id]
}

// AddSegment appends a directed segment, assigns the next id, computes the
// haversine length, links it to from's outgoing list and registers it in the
// spatial index.
func (g *RoadGraph) AddSegment(from, to *Node, name string, speedLimitKph float64,
	class pkg.RoadClass, oneway bool) *RoadSegment {

	seg := &RoadSegment{
		id:         g.nextSegmentID,
		from:       from,
		to:         to,
		name:       name,
		speedLimit: speedLimitKph,
		class:      class,
		length:     geo.CalculateHaversineDistance(from.lat, from.lon, to.lat, to.lon),
		oneway:     oneway,
	}
	g.nextSegmentID++

	from.out = append(from.out, seg)
	g.segments = append(g.segments, seg)
	g.index.Add(seg)

	return seg
}

// SplitSegment inserts a synthetic node at (lat, lon) on seg and adds the two
// half segments from->proj and proj->to with the original attributes. The
// original segment stays in place; the graph is append-only.
func (g *RoadGraph) SplitSegment(seg *RoadSegment, lat, lon float64) *Node {
	id := fmt.Sprintf("projected_%d_%d_%d", seg.id, int64(lat*1e6), int64(lon*1e6))
	proj := g.AddNode(id, lat, lon)

	g.AddSegment(seg.from, proj, seg.name, seg.speedLimit, seg.class, seg.oneway)
	g.AddSegment(proj, seg.to, seg.name, seg.speedLimit, seg.class, seg.oneway)

	if g.log != nil {
		g.log.Debug("split segment at projection",
			zap.Int("segment_id", seg.id),
			zap.String("node_id", id))
	}
	return proj
}

// FindNearby returns segments within radiusMeters of (lat, lon), via the
// spatial index.
func (g *RoadGraph) FindNearby(lat, lon, radiusMeters float64) []*RoadSegment {
	return g.index.FindNearby(lat, lon, radiusMeters)
}

func (g *RoadGraph) NumNodes() int {
	return len(g.nodes)
}

func (g *RoadGraph) NumSegments() int {
	return len(g.segments)
}

// ForSegments iterates all segments in insertion order.
func (g *RoadGraph) ForSegments(fn func(*RoadSegment)) {
	for _, s := range g.segments {
		fn(s)
	}
}
