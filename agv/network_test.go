package agv

import "testing"

func TestAddSegmentFirstWriteWins(t *testing.T) {
	net := NewNetwork()
	net.AddControlPoint(&ControlPoint{ID: 1, Name: "A"})
	net.AddControlPoint(&ControlPoint{ID: 2, Name: "B"})

	first := NewSegment("first", 1, 2, 1, 10, 1)
	second := NewSegment("second", 1, 2, 5, 20, 2)

	if err := net.AddSegment(1, 2, first); err != nil {
		t.Fatalf("first AddSegment: unexpected error %v", err)
	}
	err := net.AddSegment(1, 2, second)
	if err == nil {
		t.Fatalf("second AddSegment: expected ErrDuplicateSegment, got nil")
	}
	if _, ok := err.(*ErrDuplicateSegment); !ok {
		t.Fatalf("expected *ErrDuplicateSegment, got %T", err)
	}

	got, err := net.GetSegment(1, 2)
	if err != nil {
		t.Fatalf("GetSegment: unexpected error %v", err)
	}
	if got.Name != "first" {
		t.Fatalf("expected the first-written segment to be retained, got %q", got.Name)
	}
}

func TestGetSegmentMissing(t *testing.T) {
	net := NewNetwork()
	_, err := net.GetSegment(1, 2)
	if err == nil {
		t.Fatal("expected ErrNoSuchSegment, got nil")
	}
	if _, ok := err.(*ErrNoSuchSegment); !ok {
		t.Fatalf("expected *ErrNoSuchSegment, got %T", err)
	}
}

func TestEntryExitPoints(t *testing.T) {
	net := NewNetwork()
	net.AddControlPoint(&ControlPoint{ID: 1, Name: "A", InOut: true})
	net.AddControlPoint(&ControlPoint{ID: 2, Name: "B", InOut: false})
	net.AddControlPoint(&ControlPoint{ID: 3, Name: "C", InOut: true})

	points := net.EntryExitPoints()
	if len(points) != 2 {
		t.Fatalf("expected 2 entry/exit points, got %d", len(points))
	}
	seen := map[ControlPointID]bool{}
	for _, id := range points {
		seen[id] = true
	}
	if !seen[1] || !seen[3] {
		t.Fatalf("expected control points 1 and 3 to be flagged InOut, got %v", points)
	}
}

func TestControlPointByName(t *testing.T) {
	net := NewNetwork()
	net.AddControlPoint(&ControlPoint{ID: 7, Name: "dock"})

	cp, ok := net.ControlPointByName("dock")
	if !ok || cp.ID != 7 {
		t.Fatalf("expected to resolve %q to id 7, got %v ok=%v", "dock", cp, ok)
	}

	if _, ok := net.ControlPointByName("missing"); ok {
		t.Fatal("expected lookup of unknown name to fail")
	}
}
