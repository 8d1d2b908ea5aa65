package agv

// graph.go exposes the network's connectivity as a gonum graph for
// diagnostics that don't need the routing builder's own deterministic
// tie-break rule -- principally flagging destinations with no path to them
// from a chosen source before the routing builder spends time on a doomed
// per-destination search.

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
)

// ConnectivityGraph renders the network as a gonum directed graph, node
// ids matching ControlPointID values, edges weighted by segment length.
func (n *Network) ConnectivityGraph() graph.Directed {
	g := simple.NewWeightedDirectedGraph(0, 0)
	for id := range n.points {
		g.AddNode(simple.Node(id))
	}
	n.Segments(func(from, to ControlPointID, seg *Segment) {
		g.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(from),
			T: simple.Node(to),
			W: seg.Length,
		})
	})
	return g
}

// ReachableFrom returns the set of control point ids reachable from src by
// following forward segments, src included. Used to warn about isolated
// destinations before running the routing builder.
func ReachableFrom(n *Network, src ControlPointID) map[ControlPointID]bool {
	g := n.ConnectivityGraph()
	reached := make(map[ControlPointID]bool)
	if g.Node(int64(src)) == nil {
		return reached
	}
	var bf traverse.BreadthFirst
	bf.Walk(g, simple.Node(src), func(node graph.Node, depth int) bool {
		reached[ControlPointID(node.ID())] = true
		return false
	})
	return reached
}

// UnreachableDestinations reports, from a candidate destination set, which
// ones cannot be reached from the single source control point `from` by
// following forward segments. Reachability from other nodes is not checked.
func UnreachableDestinations(n *Network, from ControlPointID, destinations []ControlPointID) []ControlPointID {
	reached := ReachableFrom(n, from)
	var unreachable []ControlPointID
	for _, d := range destinations {
		if !reached[d] {
			unreachable = append(unreachable, d)
		}
	}
	return unreachable
}
