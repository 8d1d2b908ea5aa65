package ioformat

// vehicles.go loads a vehicle manifest: the population of AGVs a simulation
// run starts with, each naming its entry control point and target list by
// the same human-readable names used in the network document. It follows
// the same id/name-array shape ioformat/network.go uses for `next`,
// generalized from "forward neighbor names" to "target names".

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agvnet/agvsim/agv"
)

// VehicleDesc is one entry of a vehicle manifest's `vehicles` array.
type VehicleDesc struct {
	Name           string   `json:"name"`
	Speed          float64  `json:"speed"`
	CapacityNeeded int      `json:"capacity_needed"`
	Entry          string   `json:"entry"`
	Targets        []string `json:"targets"`
}

// VehicleManifest is the top-level vehicle document.
type VehicleManifest struct {
	Vehicles []VehicleDesc `json:"vehicles"`
}

// SpawnedVehicle pairs a constructed Vehicle with the control point id it
// should be submitted to the engine's RequestToEnter at.
type SpawnedVehicle struct {
	Vehicle *agv.Vehicle
	Entry   agv.ControlPointID
}

// LoadVehiclesFile reads and resolves a vehicle manifest from path against
// network, translating every name to the control point id network assigned
// it when the network document was loaded.
func LoadVehiclesFile(path string, network *agv.Network) ([]SpawnedVehicle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vehicle manifest %s: %w", path, err)
	}
	return LoadVehicles(data, network)
}

// LoadVehicles parses a vehicle manifest already read into memory.
func LoadVehicles(data []byte, network *agv.Network) ([]SpawnedVehicle, error) {
	var doc VehicleManifest
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing vehicle manifest: %w", err)
	}

	spawned := make([]SpawnedVehicle, 0, len(doc.Vehicles))
	for _, vd := range doc.Vehicles {
		entryCP, ok := network.ControlPointByName(vd.Entry)
		if !ok {
			return nil, fmt.Errorf("vehicle %s: unknown entry point %q", vd.Name, vd.Entry)
		}

		targets := make([]agv.ControlPointID, 0, len(vd.Targets))
		for _, name := range vd.Targets {
			cp, ok := network.ControlPointByName(name)
			if !ok {
				return nil, fmt.Errorf("vehicle %s: unknown target %q", vd.Name, name)
			}
			targets = append(targets, cp.ID)
		}

		capacityNeeded := vd.CapacityNeeded
		if capacityNeeded <= 0 {
			capacityNeeded = 1
		}

		v := agv.NewVehicle(vd.Name, vd.Speed, capacityNeeded, targets)
		spawned = append(spawned, SpawnedVehicle{Vehicle: v, Entry: entryCP.ID})
	}
	return spawned, nil
}
