package routing

import (
	"github.com/pandu-nav/pandu/pkg/costfunction"
	"github.com/pandu-nav/pandu/pkg/geo"
	"github.com/pandu-nav/pandu/pkg/roadgraph"
)

// node-expansion cap. A search that settles this many nodes without reaching
// the goal is abandoned and the caller falls back to a direct route.
const maxSettledNodes = 500000

// FindPath runs A* from start to goal over outgoing segments, weighing edges
// with cost. The heuristic is the haversine distance to the goal, admissible
// for every cost function that never prices a segment below its length.
// Returns the node sequence including both endpoints, or nil when no path
// exists.
func FindPath(start, goal *roadgraph.Node, cost costfunction.CostFunction) []*roadgraph.Node {
	if start == nil || goal == nil {
		return nil
	}
	if start == goal {
		return []*roadgraph.Node{start}
	}

	openSet := NewFourAryHeap[float64, *roadgraph.Node]()
	closedSet := make(map[*roadgraph.Node]struct{})
	cameFrom := make(map[*roadgraph.Node]*roadgraph.Node)
	gScore := map[*roadgraph.Node]float64{start: 0}

	openSet.Insert(NewPriorityQueueNode(0.0, start))

	settled := 0
	for !openSet.IsEmpty() {
		top, err := openSet.ExtractMin()
		if err != nil {
			break
		}
		current := top.GetItem()

		if current == goal {
			return reconstructPath(cameFrom, start, goal)
		}

		if _, done := closedSet[current]; done {
			continue
		}
		closedSet[current] = struct{}{}

		settled++
		if settled > maxSettledNodes {
			return nil
		}

		for _, seg := range current.GetOutSegments() {
			neighbor := seg.GetTo()
			if _, done := closedSet[neighbor]; done {
				continue
			}

			tentativeG := gScore[current] + cost.Cost(seg)
			if best, seen := gScore[neighbor]; seen && tentativeG >= best {
				continue
			}

			cameFrom[neighbor] = current
			gScore[neighbor] = tentativeG

			h := geo.CalculateHaversineDistance(
				neighbor.GetLat(), neighbor.GetLon(), goal.GetLat(), goal.GetLon())
			openSet.Insert(NewPriorityQueueNode(tentativeG+h, neighbor))
		}
	}

	return nil
}

func reconstructPath(cameFrom map[*roadgraph.Node]*roadgraph.Node,
	start, goal *roadgraph.Node) []*roadgraph.Node {

	path := []*roadgraph.Node{}
	for node := goal; node != start; node = cameFrom[node] {
		path = append(path, node)
	}
	path = append(path, start)

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
