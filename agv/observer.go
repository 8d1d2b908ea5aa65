package agv

// observer.go defines the engine's event-hook surface: observers are
// handles registered with the engine and invoked synchronously, in
// registration order. They receive immutable snapshots of the vehicle or
// segment involved, never live pointers, so a misbehaving observer cannot
// mutate engine state.

// VehicleSnapshot is an immutable, point-in-time view of a vehicle handed
// to observers.
type VehicleSnapshot struct {
	Name           string
	Speed          float64
	CapacityNeeded int
}

// SegmentSnapshot is an immutable, point-in-time view of a segment handed
// to observers.
type SegmentSnapshot struct {
	Name  string
	Start ControlPointID
	End   ControlPointID
}

func snapshotVehicle(v *Vehicle) VehicleSnapshot {
	return VehicleSnapshot{Name: v.Name, Speed: v.Speed, CapacityNeeded: v.CapacityNeeded}
}

func snapshotSegment(s *Segment) SegmentSnapshot {
	return SegmentSnapshot{Name: s.Name, Start: s.Start, End: s.End}
}

// TraceSink is the engine's observer interface: OnEnter, OnArrive,
// OnComplete, OnDepart, OnReadyToExit. Handlers are synchronous and must
// not call back into mutating engine operations except Exit, and only from
// OnReadyToExit.
type TraceSink interface {
	OnEnter(v VehicleSnapshot, cp ControlPointID, clock float64)
	OnArrive(v VehicleSnapshot, seg SegmentSnapshot, clock float64)
	OnComplete(v VehicleSnapshot, seg SegmentSnapshot, clock float64)
	OnDepart(v VehicleSnapshot, seg SegmentSnapshot, clock float64)
	OnReadyToExit(v VehicleSnapshot, cp ControlPointID, clock float64)
}

// NopTraceSink implements TraceSink with no-op methods, so callers can
// embed it and override only the hooks they care about.
type NopTraceSink struct{}

func (NopTraceSink) OnEnter(VehicleSnapshot, ControlPointID, float64)         {}
func (NopTraceSink) OnArrive(VehicleSnapshot, SegmentSnapshot, float64)       {}
func (NopTraceSink) OnComplete(VehicleSnapshot, SegmentSnapshot, float64)     {}
func (NopTraceSink) OnDepart(VehicleSnapshot, SegmentSnapshot, float64)       {}
func (NopTraceSink) OnReadyToExit(VehicleSnapshot, ControlPointID, float64)   {}

// RoutingErrorSink is notified of routing misses and graph inconsistencies:
// the routing table has no entry, or nominates a next-hop for which no
// segment exists. Neither is fatal -- the affected vehicle's progress
// halts and every other vehicle continues.
type RoutingErrorSink func(v *Vehicle, cp ControlPointID, clock float64, reason string)
