package costfunction

import (
	"github.com/pandu-nav/pandu/pkg"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
)

// CostFunction turns a road segment into an edge weight for the search. The
// haversine heuristic stays admissible as long as no implementation prices a
// segment below its length.
type CostFunction interface {
	Cost(seg *roadgraph.RoadSegment) float64
	Name() string
	// DurationFactor scales the route duration denominator for this policy.
	DurationFactor() float64
}

// LengthCostFunction prices a segment at its length: the primary
// shortest-distance metric.
type LengthCostFunction struct{}

func NewLengthCostFunction() LengthCostFunction {
	return LengthCostFunction{}
}

func (LengthCostFunction) Cost(seg *roadgraph.RoadSegment) float64 {
	return seg.GetLengthMeters()
}

func (LengthCostFunction) Name() string {
	return "shortest"
}

func (LengthCostFunction) DurationFactor() float64 {
	return 1.0
}

// FastestCostFunction discounts segments with higher speed limits.
type FastestCostFunction struct{}

func NewFastestCostFunction() FastestCostFunction {
	return FastestCostFunction{}
}

func (FastestCostFunction) Cost(seg *roadgraph.RoadSegment) float64 {
	limit := seg.GetSpeedLimitKph()
	if limit <= 0 {
		return seg.GetLengthMeters()
	}
	return seg.GetLengthMeters() * (50.0 / limit)
}

func (FastestCostFunction) Name() string {
	return "fastest"
}

func (FastestCostFunction) DurationFactor() float64 {
	return 1.2
}

// AvoidHighwayCostFunction penalizes highway-class segments tenfold.
type AvoidHighwayCostFunction struct{}

func NewAvoidHighwayCostFunction() AvoidHighwayCostFunction {
	return AvoidHighwayCostFunction{}
}

func (AvoidHighwayCostFunction) Cost(seg *roadgraph.RoadSegment) float64 {
	if seg.GetClass() == pkg.HIGHWAY {
		return seg.GetLengthMeters() * 10.0
	}
	return seg.GetLengthMeters()
}

func (AvoidHighwayCostFunction) Name() string {
	return "no_highway"
}

func (AvoidHighwayCostFunction) DurationFactor() float64 {
	return 0.8
}
