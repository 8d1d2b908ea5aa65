package agv

// Vehicle is an AGV with an ordered target list. It advances segment by
// segment, consuming targets, and has arrived when the list is empty.
type Vehicle struct {
	Name           string
	Speed          float64
	CapacityNeeded int

	CurrentSegment *Segment
	PendingSegment *Segment // optional: the downstream segment this vehicle is waiting on

	IsStopped bool
	Stalled   bool // set true on a routing miss; the vehicle's progress simply halts

	Targets []ControlPointID
}

// NewVehicle is a constructor.
func NewVehicle(name string, speed float64, capacityNeeded int, targets []ControlPointID) *Vehicle {
	return &Vehicle{
		Name:           name,
		Speed:          speed,
		CapacityNeeded: capacityNeeded,
		Targets:        append([]ControlPointID(nil), targets...),
	}
}

// NextSegmentOutcome tags the three possible results of NextSegment.
type NextSegmentOutcome int

const (
	// OutcomeSegment indicates a segment was chosen; see the returned segment.
	OutcomeSegment NextSegmentOutcome = iota
	// OutcomeArrived indicates the vehicle's target list is exhausted.
	OutcomeArrived
	// OutcomeNoRoute indicates the routing table (or network) has no
	// onward path toward the vehicle's next target -- a routing miss.
	OutcomeNoRoute
)

// NextSegment chooses the segment the vehicle should enter next, given it
// currently sits at currentPoint. Stale targets (targets already equal to
// currentPoint) are popped before consulting the routing table.
func (v *Vehicle) NextSegment(network *Network, table *RoutingTable, currentPoint ControlPointID) (*Segment, NextSegmentOutcome) {
	if len(v.Targets) == 0 {
		return nil, OutcomeArrived
	}
	v.CollapseStaleTargets(currentPoint)
	if len(v.Targets) == 0 {
		return nil, OutcomeArrived
	}

	dest := v.Targets[0]
	hop, present := table.NextHop(currentPoint, dest)
	if !present {
		return nil, OutcomeNoRoute
	}
	seg, err := network.GetSegment(currentPoint, hop)
	if err != nil {
		return nil, OutcomeNoRoute
	}
	return seg, OutcomeSegment
}

// RemoveTarget pops the head of the target list if, and only if, it equals
// point. Intermediate (non-head) entries are never skipped. The engine
// calls this when a vehicle first occupies a segment starting at point.
func (v *Vehicle) RemoveTarget(point ControlPointID) {
	if len(v.Targets) > 0 && v.Targets[0] == point {
		v.Targets = v.Targets[1:]
	}
}

// Arrived reports whether the vehicle's target list is empty.
func (v *Vehicle) Arrived() bool {
	return len(v.Targets) == 0
}

// CollapseStaleTargets pops every leading target equal to point. It is the
// "stale target pruning" rule shared by NextSegment and RequestToEnter: a
// vehicle that has physically reached a control point already on its
// target list should not be asked to route toward it again.
func (v *Vehicle) CollapseStaleTargets(point ControlPointID) {
	for len(v.Targets) > 0 && v.Targets[0] == point {
		v.Targets = v.Targets[1:]
	}
}
