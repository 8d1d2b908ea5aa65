package agv

import "testing"

func TestCollapseStaleTargets(t *testing.T) {
	v := NewVehicle("v1", 1, 1, []ControlPointID{1, 1, 2, 3})
	v.CollapseStaleTargets(1)
	if len(v.Targets) != 2 || v.Targets[0] != 2 || v.Targets[1] != 3 {
		t.Fatalf("expected [2 3] after collapsing leading 1s, got %v", v.Targets)
	}

	// a non-leading match is left alone
	v2 := NewVehicle("v2", 1, 1, []ControlPointID{2, 1, 3})
	v2.CollapseStaleTargets(1)
	if len(v2.Targets) != 3 || v2.Targets[0] != 2 {
		t.Fatalf("expected non-leading target untouched, got %v", v2.Targets)
	}
}

func TestRemoveTargetOnlyPopsMatchingHead(t *testing.T) {
	v := NewVehicle("v1", 1, 1, []ControlPointID{5, 6})
	v.RemoveTarget(9) // no match: no-op
	if len(v.Targets) != 2 {
		t.Fatalf("expected no change, got %v", v.Targets)
	}
	v.RemoveTarget(5)
	if len(v.Targets) != 1 || v.Targets[0] != 6 {
		t.Fatalf("expected [6], got %v", v.Targets)
	}
}

func TestArrived(t *testing.T) {
	v := NewVehicle("v1", 1, 1, nil)
	if !v.Arrived() {
		t.Fatal("expected a vehicle with no targets to report Arrived")
	}
	v2 := NewVehicle("v2", 1, 1, []ControlPointID{1})
	if v2.Arrived() {
		t.Fatal("expected a vehicle with a pending target to not be Arrived")
	}
}

func TestNextSegmentOutcomes(t *testing.T) {
	net, a, b, _, d := diamondNetwork()
	table := BuildComplete(net, []ControlPointID{d})

	v := NewVehicle("v1", 1, 1, []ControlPointID{d})
	seg, outcome := v.NextSegment(net, table, a)
	if outcome != OutcomeSegment {
		t.Fatalf("expected OutcomeSegment, got %v", outcome)
	}
	if seg.Start != a || seg.End != b {
		t.Fatalf("expected segment A->B, got %s", seg.Name)
	}

	arrived := NewVehicle("v2", 1, 1, []ControlPointID{a})
	_, outcome = arrived.NextSegment(net, table, a)
	if outcome != OutcomeArrived {
		t.Fatalf("expected OutcomeArrived when current point is the only target, got %v", outcome)
	}

	unroutable := NewVehicle("v3", 1, 1, []ControlPointID{ControlPointID(999)})
	_, outcome = unroutable.NextSegment(net, table, a)
	if outcome != OutcomeNoRoute {
		t.Fatalf("expected OutcomeNoRoute for an unreachable target, got %v", outcome)
	}
}
