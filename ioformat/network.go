// Package ioformat implements the external, language/host-agnostic
// interfaces the core agv package is consumed through: the JSON/YAML
// network description and the binary routing-table format.
package ioformat

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path"

	"github.com/agvnet/agvsim/agv"
	"gopkg.in/yaml.v3"
)

// PointDesc is one entry of the network document's top-level `points`
// array, in either JSON or YAML form. Additional fields present in a
// source document are ignored by both decoders' default behavior.
type PointDesc struct {
	ID     string            `json:"id" yaml:"id"`
	X      float64           `json:"x" yaml:"x"`
	Y      float64           `json:"y" yaml:"y"`
	Region string            `json:"region" yaml:"region"`
	Meta   map[string]string `json:"meta" yaml:"meta"`
	InOut  bool              `json:"inout" yaml:"inout"`
	Next   []string          `json:"next" yaml:"next"`
}

// NetworkDesc is the top-level network document.
type NetworkDesc struct {
	Points []PointDesc `json:"points" yaml:"points"`
}

// SegmentDefaults supplies the per-segment attributes the network document
// itself does not carry (the document describes adjacency and point
// metadata only -- segment capacity, length, and lane count are simulation
// parameters, not topology).
type SegmentDefaults struct {
	TotalCapacity int
	Length        float64
	Lanes         int
}

// LoadNetworkFile reads and parses a network document from path. The
// format (JSON or YAML) is selected by the file extension. Every `next`
// entry becomes one forward Segment from that point, using the Euclidean
// distance between endpoints as the segment length unless overridden by
// defaults.Length.
func LoadNetworkFile(filename string, defaults SegmentDefaults) (*agv.Network, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading network file %s: %w", filename, err)
	}
	useYAML := isYAMLExt(path.Ext(filename))
	return loadNetwork(data, defaults, useYAML)
}

// LoadNetwork parses a network JSON document already read into memory.
func LoadNetwork(data []byte, defaults SegmentDefaults) (*agv.Network, error) {
	return loadNetwork(data, defaults, false)
}

// LoadNetworkYAML parses a network YAML document already read into memory.
func LoadNetworkYAML(data []byte, defaults SegmentDefaults) (*agv.Network, error) {
	return loadNetwork(data, defaults, true)
}

func isYAMLExt(ext string) bool {
	switch ext {
	case ".yaml", ".YAML", ".yml", ".YML":
		return true
	default:
		return false
	}
}

func loadNetwork(data []byte, defaults SegmentDefaults, useYAML bool) (*agv.Network, error) {
	var desc NetworkDesc
	var err error
	if useYAML {
		err = yaml.Unmarshal(data, &desc)
	} else {
		err = json.Unmarshal(data, &desc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing network document: %w", err)
	}

	network := agv.NewNetwork()
	idByName := make(map[string]agv.ControlPointID)

	// assign compact integer ids in document order, deterministically
	for i, p := range desc.Points {
		id := agv.ControlPointID(i)
		idByName[p.ID] = id
	}

	for i, p := range desc.Points {
		id := agv.ControlPointID(i)
		kind := ""
		if p.Meta != nil {
			kind = p.Meta["kind"]
		}
		network.AddControlPoint(&agv.ControlPoint{
			ID:     id,
			Name:   p.ID,
			X:      p.X,
			Y:      p.Y,
			Region: p.Region,
			Kind:   kind,
			InOut:  p.InOut,
		})
	}

	for _, p := range desc.Points {
		fromID := idByName[p.ID]
		fromCP := network.ControlPoint(fromID)
		for _, nextName := range p.Next {
			toID, present := idByName[nextName]
			if !present {
				return nil, fmt.Errorf("point %s names unknown neighbor %s", p.ID, nextName)
			}
			length := defaults.Length
			if length == 0 {
				toCP := network.ControlPoint(toID)
				dx := fromCP.X - toCP.X
				dy := fromCP.Y - toCP.Y
				length = math.Sqrt(dx*dx + dy*dy)
			}
			seg := agv.NewSegment(fmt.Sprintf("%s->%s", p.ID, nextName), fromID, toID,
				defaults.TotalCapacity, length, defaults.Lanes)
			if err := network.AddSegment(fromID, toID, seg); err != nil {
				// duplicate segment: non-fatal, the first one wins
				continue
			}
		}
	}

	return network, nil
}
