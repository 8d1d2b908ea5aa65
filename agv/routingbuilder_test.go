package agv

import "testing"

// diamondNetwork builds A(0,0) -> {B(1,0), C(0,1)} -> D(1,1), all four
// segments length 1, so the two paths A-B-D and A-C-D tie on distance and
// the ascending-node-id rule must pick B (id 1) over C (id 2).
func diamondNetwork() (*Network, ControlPointID, ControlPointID, ControlPointID, ControlPointID) {
	net := NewNetwork()
	a := ControlPointID(0)
	b := ControlPointID(1)
	c := ControlPointID(2)
	d := ControlPointID(3)

	net.AddControlPoint(&ControlPoint{ID: a, Name: "A", X: 0, Y: 0, InOut: true})
	net.AddControlPoint(&ControlPoint{ID: b, Name: "B", X: 1, Y: 0})
	net.AddControlPoint(&ControlPoint{ID: c, Name: "C", X: 0, Y: 1})
	net.AddControlPoint(&ControlPoint{ID: d, Name: "D", X: 1, Y: 1, InOut: true})

	net.AddSegment(a, b, NewSegment("A->B", a, b, 1, 1, 1))
	net.AddSegment(a, c, NewSegment("A->C", a, c, 1, 1, 1))
	net.AddSegment(b, d, NewSegment("B->D", b, d, 1, 1, 1))
	net.AddSegment(c, d, NewSegment("C->D", c, d, 1, 1, 1))

	return net, a, b, c, d
}

func TestBuildCompleteTieBreakAscendingID(t *testing.T) {
	net, a, b, _, d := diamondNetwork()

	table := BuildComplete(net, []ControlPointID{d})

	hop, ok := table.NextHop(a, d)
	if !ok {
		t.Fatalf("expected a route from A to D")
	}
	if hop != b {
		t.Fatalf("expected the tie to resolve to B (id %d), got %d", b, hop)
	}
}

func TestBuildCompleteUnreachableDestination(t *testing.T) {
	net, a, _, _, d := diamondNetwork()
	isolated := ControlPointID(99)
	net.AddControlPoint(&ControlPoint{ID: isolated, Name: "isolated", X: 50, Y: 50, InOut: true})

	table := BuildComplete(net, []ControlPointID{d})

	if _, ok := table.NextHop(isolated, d); ok {
		t.Fatal("expected no route from an isolated control point")
	}
	if _, ok := table.NextHop(a, d); !ok {
		t.Fatal("expected the reachable route to still be present")
	}
}

func TestBuildSampledProducesUsableRoutes(t *testing.T) {
	net, a, _, _, d := diamondNetwork()
	destinations := net.EntryExitPoints()

	table := BuildSampled(net, destinations, 20, 1)

	if table.Len() == 0 {
		t.Fatal("expected BuildSampled to populate at least one route over 20 samples")
	}
	if hop, ok := table.NextHop(a, d); ok {
		if !net.SegmentExists(a, hop) {
			t.Fatalf("sampled next hop %d from %d has no backing segment", hop, a)
		}
	}
}
