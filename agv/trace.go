package agv

// trace.go provides ready-made TraceSink implementations: a CSV trajectory
// logger and a metrics accumulator, both accumulating movement events as
// they fire and flushing or summarizing them on demand.

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVLogger is a TraceSink that appends one row per engine event to a CSV
// sink, for offline trajectory analysis.
type CSVLogger struct {
	w *csv.Writer
}

// NewCSVLogger wraps dst in a csv.Writer and writes the header row.
func NewCSVLogger(dst io.Writer) *CSVLogger {
	w := csv.NewWriter(dst)
	w.Write([]string{"clock", "event", "vehicle", "segment", "control_point"})
	return &CSVLogger{w: w}
}

// Flush forces any buffered rows out to the underlying writer.
func (c *CSVLogger) Flush() {
	c.w.Flush()
}

func (c *CSVLogger) row(clock float64, event, vehicle, segment string, cp ControlPointID) {
	cpStr := ""
	if segment == "" {
		cpStr = fmt.Sprint(cp)
	}
	c.w.Write([]string{fmt.Sprintf("%g", clock), event, vehicle, segment, cpStr})
}

func (c *CSVLogger) OnEnter(v VehicleSnapshot, cp ControlPointID, clock float64) {
	c.row(clock, "enter", v.Name, "", cp)
}

func (c *CSVLogger) OnArrive(v VehicleSnapshot, seg SegmentSnapshot, clock float64) {
	c.row(clock, "arrive", v.Name, seg.Name, 0)
}

func (c *CSVLogger) OnComplete(v VehicleSnapshot, seg SegmentSnapshot, clock float64) {
	c.row(clock, "complete", v.Name, seg.Name, 0)
}

func (c *CSVLogger) OnDepart(v VehicleSnapshot, seg SegmentSnapshot, clock float64) {
	c.row(clock, "depart", v.Name, seg.Name, 0)
}

func (c *CSVLogger) OnReadyToExit(v VehicleSnapshot, cp ControlPointID, clock float64) {
	c.row(clock, "ready_to_exit", v.Name, "", cp)
}

// SegmentMetrics accumulates per-segment throughput counts.
type SegmentMetrics struct {
	Entries    int
	Departures int
}

// VehicleMetrics accumulates per-vehicle transit timing.
type VehicleMetrics struct {
	FirstEnter  float64
	LastEvent   float64
	ArrivalSeen bool
}

// MetricsAccumulator is a TraceSink that counts per-segment throughput and
// tracks per-vehicle transit time, both readable without touching
// engine-owned state.
type MetricsAccumulator struct {
	segments map[string]*SegmentMetrics
	vehicles map[string]*VehicleMetrics
}

// NewMetricsAccumulator is a constructor.
func NewMetricsAccumulator() *MetricsAccumulator {
	return &MetricsAccumulator{
		segments: make(map[string]*SegmentMetrics),
		vehicles: make(map[string]*VehicleMetrics),
	}
}

func (m *MetricsAccumulator) segMetrics(name string) *SegmentMetrics {
	sm, present := m.segments[name]
	if !present {
		sm = &SegmentMetrics{}
		m.segments[name] = sm
	}
	return sm
}

func (m *MetricsAccumulator) vehMetrics(name string) *VehicleMetrics {
	vm, present := m.vehicles[name]
	if !present {
		vm = &VehicleMetrics{}
		m.vehicles[name] = vm
	}
	return vm
}

func (m *MetricsAccumulator) OnEnter(v VehicleSnapshot, cp ControlPointID, clock float64) {
	vm := m.vehMetrics(v.Name)
	if vm.FirstEnter == 0 {
		vm.FirstEnter = clock
	}
	vm.LastEvent = clock
}

func (m *MetricsAccumulator) OnArrive(v VehicleSnapshot, seg SegmentSnapshot, clock float64) {
	m.segMetrics(seg.Name).Entries++
	m.vehMetrics(v.Name).LastEvent = clock
}

func (m *MetricsAccumulator) OnComplete(v VehicleSnapshot, seg SegmentSnapshot, clock float64) {
	m.vehMetrics(v.Name).LastEvent = clock
}

func (m *MetricsAccumulator) OnDepart(v VehicleSnapshot, seg SegmentSnapshot, clock float64) {
	m.segMetrics(seg.Name).Departures++
	m.vehMetrics(v.Name).LastEvent = clock
}

func (m *MetricsAccumulator) OnReadyToExit(v VehicleSnapshot, cp ControlPointID, clock float64) {
	vm := m.vehMetrics(v.Name)
	vm.ArrivalSeen = true
	vm.LastEvent = clock
}

// SegmentSnapshot reports the accumulated counters for a named segment.
func (m *MetricsAccumulator) SegmentSnapshot(name string) SegmentMetrics {
	if sm, present := m.segments[name]; present {
		return *sm
	}
	return SegmentMetrics{}
}

// TransitTime reports clock elapsed between a vehicle's first entry and its
// most recent event, and whether it has been observed arriving.
func (m *MetricsAccumulator) TransitTime(name string) (float64, bool) {
	vm, present := m.vehicles[name]
	if !present {
		return 0, false
	}
	return vm.LastEvent - vm.FirstEnter, vm.ArrivalSeen
}
