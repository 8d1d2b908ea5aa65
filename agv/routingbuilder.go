package agv

// routingbuilder.go computes an all-destinations next-hop RoutingTable from
// a Network, by running one reverse single-source shortest-path search per
// destination. The traversal is hand-rolled rather than calling a generic
// Dijkstra implementation because next-hop choice on equal-distance ties
// must resolve deterministically by ascending node id, which a generic
// shortest-path call does not expose as a hook.

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/iti/rngstream"
	"golang.org/x/exp/slices"
)

// frontierItem is one entry in the shortest-path frontier heap.
type frontierItem struct {
	node ControlPointID
	dist float64
}

// frontierHeap is a min-heap on distance, breaking ties by ascending node
// id so that heap iteration order (and hence the resulting routing table)
// is deterministic and reproducible across runs.
type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].dist != h[j].dist {
		return h[i].dist < h[j].dist
	}
	return h[i].node < h[j].node
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x any)   { *h = append(*h, x.(frontierItem)) }
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// euclidean is the default non-negative edge weight: the straight-line
// distance between two control points' coordinates.
func euclidean(a, b *ControlPoint) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// reversePredecessors returns, for every node with at least one inbound
// segment, the list of nodes holding a forward segment into it.
func reversePredecessors(network *Network) map[ControlPointID][]ControlPointID {
	preds := make(map[ControlPointID][]ControlPointID)
	network.Segments(func(from, to ControlPointID, seg *Segment) {
		preds[to] = append(preds[to], from)
	})
	// sort each predecessor list so relaxation order (and therefore the
	// ascending-id tie-break on equal-distance discovery) is deterministic.
	for to := range preds {
		slices.Sort(preds[to])
	}
	return preds
}

// reverseSSSP runs a single reverse shortest-path search rooted at
// destination d, writing a (n, d) -> next-hop entry into table for every
// node n reached.
func reverseSSSP(network *Network, preds map[ControlPointID][]ControlPointID, d ControlPointID, table *RoutingTable) {
	dist := make(map[ControlPointID]float64)
	nextHop := make(map[ControlPointID]ControlPointID)
	visited := make(map[ControlPointID]bool)

	dist[d] = 0
	frontier := &frontierHeap{{node: d, dist: 0}}
	heap.Init(frontier)

	for frontier.Len() > 0 {
		top := heap.Pop(frontier).(frontierItem)
		u := top.node
		if visited[u] {
			continue
		}
		visited[u] = true

		uCP := network.ControlPoint(u)
		for _, p := range preds[u] {
			if visited[p] {
				continue
			}
			pCP := network.ControlPoint(p)
			w := euclidean(pCP, uCP)
			tentative := dist[u] + w

			curDist, known := dist[p]
			switch {
			case !known || tentative < curDist:
				dist[p] = tentative
				nextHop[p] = u
				heap.Push(frontier, frontierItem{node: p, dist: tentative})
			case tentative == curDist:
				// equal-distance tie: resolve by ascending node id
				if u < nextHop[p] {
					nextHop[p] = u
				}
			}
		}
	}

	for n, hop := range nextHop {
		table.Set(n, d, hop)
	}
}

// BuildComplete computes a complete all-destinations routing table: one
// reverse SSSP run per destination in destinations (normally the network's
// entry/exit set). Complexity is O(D*(V+E)*log V).
func BuildComplete(network *Network, destinations []ControlPointID) *RoutingTable {
	table := NewRoutingTable()
	preds := reversePredecessors(network)

	// sort destinations so the set of reverseSSSP calls, and thus any
	// shared package-level state, executes in a deterministic order.
	ds := append([]ControlPointID(nil), destinations...)
	slices.Sort(ds)

	for _, d := range ds {
		if network.ControlPoint(d) == nil {
			continue
		}
		reverseSSSP(network, preds, d, table)
	}
	return table
}

// forwardAdjacency returns the forward neighbor list for every node with at
// least one outbound segment.
func forwardAdjacency(network *Network) map[ControlPointID][]ControlPointID {
	adj := make(map[ControlPointID][]ControlPointID)
	network.Segments(func(from, to ControlPointID, seg *Segment) {
		adj[from] = append(adj[from], to)
	})
	for from := range adj {
		slices.Sort(adj[from])
	}
	return adj
}

// astarPath runs a single forward A* search from src to dst using the
// Euclidean metric as an admissible heuristic (the graph's edge weights are
// themselves Euclidean distances, so the heuristic never overestimates).
// Returns the path as a sequence of control point ids, inclusive of both
// endpoints, or nil if dst is unreachable from src.
func astarPath(network *Network, adj map[ControlPointID][]ControlPointID, src, dst ControlPointID) []ControlPointID {
	dstCP := network.ControlPoint(dst)
	if dstCP == nil || network.ControlPoint(src) == nil {
		return nil
	}

	h := func(n ControlPointID) float64 {
		return euclidean(network.ControlPoint(n), dstCP)
	}

	gScore := map[ControlPointID]float64{src: 0}
	cameFrom := make(map[ControlPointID]ControlPointID)
	visited := make(map[ControlPointID]bool)

	frontier := &frontierHeap{{node: src, dist: h(src)}}
	heap.Init(frontier)

	for frontier.Len() > 0 {
		top := heap.Pop(frontier).(frontierItem)
		u := top.node
		if visited[u] {
			continue
		}
		if u == dst {
			// reconstruct path
			path := []ControlPointID{u}
			for u != src {
				u = cameFrom[u]
				path = append(path, u)
			}
			// reverse into forward order
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		visited[u] = true

		uCP := network.ControlPoint(u)
		for _, v := range adj[u] {
			if visited[v] {
				continue
			}
			tentative := gScore[u] + euclidean(uCP, network.ControlPoint(v))
			cur, known := gScore[v]
			if !known || tentative < cur {
				gScore[v] = tentative
				cameFrom[v] = u
				heap.Push(frontier, frontierItem{node: v, dist: tentative + h(v)})
			}
		}
	}
	return nil
}

// BuildSampled builds a partial routing table from numRoutes randomly
// sampled (src, dest) pairs drawn from destinations (normally the
// entry/exit set), seeded for reproducibility. Each pair is solved with a
// forward A* search; every node along the resulting path contributes one
// (node, dest) -> next-hop entry.
func BuildSampled(network *Network, destinations []ControlPointID, numRoutes int, seed int64) *RoutingTable {
	table := NewRoutingTable()
	if len(destinations) < 2 || numRoutes <= 0 {
		return table
	}

	adj := forwardAdjacency(network)

	ds := append([]ControlPointID(nil), destinations...)
	slices.Sort(ds)

	rngstrm := rngstream.New(fmt.Sprintf("agvsim-routebuilder-%d", seed))

	for i := 0; i < numRoutes; i++ {
		srcIdx := int(rngstrm.RandU01() * float64(len(ds)))
		dstIdx := int(rngstrm.RandU01() * float64(len(ds)))
		if srcIdx >= len(ds) {
			srcIdx = len(ds) - 1
		}
		if dstIdx >= len(ds) {
			dstIdx = len(ds) - 1
		}
		src, dst := ds[srcIdx], ds[dstIdx]
		if src == dst {
			continue
		}

		path := astarPath(network, adj, src, dst)
		for idx := 0; idx < len(path)-1; idx++ {
			table.Set(path[idx], dst, path[idx+1])
		}
	}
	return table
}
