package ioformat

import "testing"

func networkDoc() []byte {
	return []byte(`{
		"points": [
			{"id": "A", "x": 0, "y": 0, "inout": true, "next": ["B"]},
			{"id": "B", "x": 1, "y": 0, "inout": false, "next": ["C"]},
			{"id": "C", "x": 2, "y": 0, "inout": true, "next": []}
		]
	}`)
}

func TestLoadVehiclesResolvesNamesToIDs(t *testing.T) {
	network, err := LoadNetwork(networkDoc(), SegmentDefaults{TotalCapacity: 1, Lanes: 1})
	if err != nil {
		t.Fatalf("LoadNetwork: unexpected error %v", err)
	}

	doc := `{
		"vehicles": [
			{"name": "v1", "speed": 1.5, "capacity_needed": 1, "entry": "A", "targets": ["B", "C"]},
			{"name": "v2", "speed": 2, "entry": "A", "targets": ["C"]}
		]
	}`

	spawned, err := LoadVehicles([]byte(doc), network)
	if err != nil {
		t.Fatalf("LoadVehicles: unexpected error %v", err)
	}
	if len(spawned) != 2 {
		t.Fatalf("expected 2 vehicles, got %d", len(spawned))
	}

	a, _ := network.ControlPointByName("A")
	b, _ := network.ControlPointByName("B")
	c, _ := network.ControlPointByName("C")

	v1 := spawned[0]
	if v1.Entry != a.ID {
		t.Fatalf("expected v1 entry to resolve to A's id, got %d", v1.Entry)
	}
	if len(v1.Vehicle.Targets) != 2 || v1.Vehicle.Targets[0] != b.ID || v1.Vehicle.Targets[1] != c.ID {
		t.Fatalf("expected v1 targets [B C], got %v", v1.Vehicle.Targets)
	}
	if v1.Vehicle.Speed != 1.5 {
		t.Fatalf("expected v1 speed 1.5, got %v", v1.Vehicle.Speed)
	}

	v2 := spawned[1]
	if v2.Vehicle.CapacityNeeded != 1 {
		t.Fatalf("expected an omitted capacity_needed to default to 1, got %d", v2.Vehicle.CapacityNeeded)
	}
}

func TestLoadVehiclesUnknownEntry(t *testing.T) {
	network, err := LoadNetwork(networkDoc(), SegmentDefaults{TotalCapacity: 1})
	if err != nil {
		t.Fatalf("LoadNetwork: unexpected error %v", err)
	}

	doc := `{"vehicles": [{"name": "ghost", "entry": "nowhere", "targets": ["C"]}]}`
	if _, err := LoadVehicles([]byte(doc), network); err == nil {
		t.Fatal("expected an error for an unknown entry point")
	}
}

func TestLoadVehiclesUnknownTarget(t *testing.T) {
	network, err := LoadNetwork(networkDoc(), SegmentDefaults{TotalCapacity: 1})
	if err != nil {
		t.Fatalf("LoadNetwork: unexpected error %v", err)
	}

	doc := `{"vehicles": [{"name": "ghost", "entry": "A", "targets": ["nowhere"]}]}`
	if _, err := LoadVehicles([]byte(doc), network); err == nil {
		t.Fatal("expected an error for an unknown target")
	}
}
