package ioformat

// config.go loads the simulation's engine-wide tunables from a small JSON
// document: a plain JSON-tagged struct loaded with encoding/json, with
// omitted fields backfilled to documented defaults after unmarshaling.

import (
	"encoding/json"
	"os"
)

// SimConfig holds the engine's timing primitives plus the run horizon and
// route-sampling seed, everything a CLI needs to drive a simulation
// without hardcoding tunables.
type SimConfig struct {
	SmoothFactor   float64 `json:"smooth_factor"`
	ColdStartDelay float64 `json:"cold_start_delay"`
	MinimalTick    float64 `json:"minimal_tick"`
	Horizon        float64 `json:"horizon"`
	Seed           int64   `json:"seed"`

	SegmentCapacity int     `json:"segment_capacity"`
	SegmentLanes    int     `json:"segment_lanes"`
	SegmentLength   float64 `json:"segment_length"`
}

// DefaultSimConfig returns the fallback tunables LoadConfig applies to any
// field its document omits, and to a zero or negative minimal_tick,
// horizon, segment_capacity or segment_lanes.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		SmoothFactor:    1.0,
		ColdStartDelay:  1.0,
		MinimalTick:     0.001,
		Horizon:         1000.0,
		SegmentCapacity: 1,
		SegmentLanes:    1,
	}
}

// LoadConfig reads and parses a SimConfig document from path, backfilling
// any field the document omits entirely with DefaultSimConfig's value. An
// explicit smooth_factor or cold_start_delay -- including 0 -- is never
// overwritten: 0 is a legitimate value for both (it collapses all
// inter-event smoothing/cold-start gaps), so for these two presence in the
// document, not zero-ness, decides whether a default applies. An explicit
// zero or negative minimal_tick, horizon, segment_capacity or segment_lanes
// is replaced by its default.
func LoadConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	var present map[string]json.RawMessage
	if err := json.Unmarshal(data, &present); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg, present)
	return cfg, nil
}

func applyDefaults(cfg *SimConfig, present map[string]json.RawMessage) {
	d := DefaultSimConfig()
	if _, ok := present["smooth_factor"]; !ok {
		cfg.SmoothFactor = d.SmoothFactor
	}
	if _, ok := present["cold_start_delay"]; !ok {
		cfg.ColdStartDelay = d.ColdStartDelay
	}
	// minimal_tick, horizon, segment_capacity, and segment_lanes have no
	// legitimate zero-or-negative value, so a plain bounds check is enough.
	if cfg.MinimalTick <= 0 {
		cfg.MinimalTick = d.MinimalTick
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = d.Horizon
	}
	if cfg.SegmentCapacity <= 0 {
		cfg.SegmentCapacity = d.SegmentCapacity
	}
	if cfg.SegmentLanes <= 0 {
		cfg.SegmentLanes = d.SegmentLanes
	}
}
