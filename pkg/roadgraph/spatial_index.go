package roadgraph

import (
	"math"

	"github.com/pandu-nav/pandu/pkg"
)

type cellKey struct {
	i int // floor(lat / CELL_SIZE)
	j int // floor(lon / CELL_SIZE)
}

// SpatialIndex partitions segments into 0.001°x0.001° cells. A segment is
// indexed in every cell its axis-aligned bounding box overlaps. A flat list
// of all segments backs the wide-radius fallback.
type SpatialIndex struct {
	cells map[cellKey][]*RoadSegment
	all   []*RoadSegment
}

func NewSpatialIndex() *SpatialIndex {
	return &SpatialIndex{
		cells: make(map[cellKey][]*RoadSegment),
	}
}

func cellOf(lat, lon float64) cellKey {
	return cellKey{
		i: int(math.Floor(lat / pkg.CELL_SIZE)),
		j: int(math.Floor(lon / pkg.CELL_SIZE)),
	}
}

// Add registers seg in every cell overlapped by the bounding box of its
// endpoints, and in the flat list.
func (si *SpatialIndex) Add(seg *RoadSegment) {
	latMin := math.Min(seg.from.lat, seg.to.lat)
	latMax := math.Max(seg.from.lat, seg.to.lat)
	lonMin := math.Min(seg.from.lon, seg.to.lon)
	lonMax := math.Max(seg.from.lon, seg.to.lon)

	lo := cellOf(latMin, lonMin)
	hi := cellOf(latMax, lonMax)

	for i := lo.i; i <= hi.i; i++ {
		for j := lo.j; j <= hi.j; j++ {
			key := cellKey{i: i, j: j}
			si.cells[key] = append(si.cells[key], seg)
		}
	}

	si.all = append(si.all, seg)
}

// FindNearby returns the distinct segments of all cells within the cell
// radius derived from radiusMeters. If nothing is indexed there and the
// radius is wide (>1 km), every segment is returned so a sparse graph never
// starves the caller.
func (si *SpatialIndex) FindNearby(lat, lon, radiusMeters float64) []*RoadSegment {
	center := cellOf(lat, lon)

	cellRadius := int(math.Ceil((radiusMeters/pkg.METERS_PER_DEGREE)/pkg.CELL_SIZE)) + 1
	if cellRadius < 1 {
		cellRadius = 1
	}

	seen := make(map[int]struct{})
	var result []*RoadSegment

	for i := center.i - cellRadius; i <= center.i+cellRadius; i++ {
		for j := center.j - cellRadius; j <= center.j+cellRadius; j++ {
			for _, seg := range si.cells[cellKey{i: i, j: j}] {
				if _, ok := seen[seg.id]; ok {
					continue
				}
				seen[seg.id] = struct{}{}
				result = append(result, seg)
			}
		}
	}

	if len(result) == 0 && radiusMeters > 1000 {
		return si.all
	}

	return result
}

func (si *SpatialIndex) NumCells() int {
	return len(si.cells)
}
