// Package agv implements the core of an AGV (automated guided vehicle)
// network simulation: a directed graph of control points and
// capacity-limited segments, a precomputed routing table, and the
// discrete-event movement engine that advances vehicles across the graph.
package agv

import "fmt"

// ControlPointID is the compact integer handle for a network node. A
// uint16 is sufficient for networks up to ~65,000 control points.
type ControlPointID uint16

// ControlPoint is a network node. It carries an optional human-readable
// name and passthrough metadata (Region, Kind) that the engine itself never
// interprets -- these exist so loaders and observers can round-trip the
// source network description.
type ControlPoint struct {
	ID     ControlPointID
	Name   string
	X, Y   float64
	Region string
	Kind   string
	InOut  bool // admissible as a route endpoint (entry/exit point)
}

// segKey identifies a directed segment by its endpoints.
type segKey struct {
	From, To ControlPointID
}

// Segment is a directed, capacity-limited edge between two control points.
// All dynamic fields (RemainingCapacity, OutPending, InPending, IsCongested,
// the time stamps) are owned by the Network and mutated only by the
// Movement Engine.
type Segment struct {
	Name string

	Start, End ControlPointID

	TotalCapacity     int
	RemainingCapacity int
	Length            float64
	NumberOfLanes     int

	EnterTimeStamp  float64
	DepartTimeStamp float64

	IsCongested bool

	// OutPending holds vehicles that have finished traversal but have not
	// yet departed -- physically present at the downstream end, in the
	// order they completed traversal (FIFO, no overtaking).
	OutPending []*Vehicle

	// InPending holds vehicles queued on an upstream segment waiting to
	// enter this one, paired with that upstream segment.
	InPending []inPendingEntry
}

type inPendingEntry struct {
	Vehicle  *Vehicle
	Upstream *Segment
}

// neverStamp is the initial value of a segment's Enter/DepartTimeStamp: far
// enough in the past that the smooth_factor check never delays the very
// first admission or departure on a fresh segment.
const neverStamp = -1e18

// NewSegment constructs a Segment with RemainingCapacity initialized to
// TotalCapacity and no vehicles occupying it.
func NewSegment(name string, start, end ControlPointID, totalCapacity int, length float64, lanes int) *Segment {
	return &Segment{
		Name:              name,
		Start:             start,
		End:               end,
		TotalCapacity:     totalCapacity,
		RemainingCapacity: totalCapacity,
		NumberOfLanes:     lanes,
		Length:            length,
		EnterTimeStamp:    neverStamp,
		DepartTimeStamp:   neverStamp,
	}
}

// ErrDuplicateSegment is reported by AddSegment when a segment already
// exists for a (from, to) pair. It is not fatal: the existing segment is
// retained and the caller's segment is discarded.
type ErrDuplicateSegment struct {
	From, To ControlPointID
}

func (e *ErrDuplicateSegment) Error() string {
	return fmt.Sprintf("segment %d->%d already exists, keeping the original", e.From, e.To)
}

// ErrNoSuchSegment is returned by GetSegment when no segment exists for the
// requested (from, to) pair.
type ErrNoSuchSegment struct {
	From, To ControlPointID
}

func (e *ErrNoSuchSegment) Error() string {
	return fmt.Sprintf("no segment %d->%d", e.From, e.To)
}

// Network is a container of control points and segments keyed by integer
// id. Segments are owned by the network; the engine mutates their dynamic
// fields only through the network's accessors.
type Network struct {
	points   map[ControlPointID]*ControlPoint
	nameToID map[string]ControlPointID
	segments map[segKey]*Segment
}

// NewNetwork is a constructor.
func NewNetwork() *Network {
	return &Network{
		points:   make(map[ControlPointID]*ControlPoint),
		nameToID: make(map[string]ControlPointID),
		segments: make(map[segKey]*Segment),
	}
}

// AddControlPoint registers a control point. A control point with a
// duplicate id overwrites the prior entry; callers are expected to assign
// ids uniquely (the JSON loader in package ioformat guarantees this).
func (n *Network) AddControlPoint(cp *ControlPoint) {
	n.points[cp.ID] = cp
	if cp.Name != "" {
		n.nameToID[cp.Name] = cp.ID
	}
}

// ControlPoint returns the control point with the given id, or nil if none
// is registered.
func (n *Network) ControlPoint(id ControlPointID) *ControlPoint {
	return n.points[id]
}

// ControlPointByName resolves a control point by its human-readable name.
func (n *Network) ControlPointByName(name string) (*ControlPoint, bool) {
	id, present := n.nameToID[name]
	if !present {
		return nil, false
	}
	return n.points[id], true
}

// EntryExitPoints returns the ids of every control point flagged InOut --
// the admissible set of route endpoints / routing-table destinations.
func (n *Network) EntryExitPoints() []ControlPointID {
	out := make([]ControlPointID, 0)
	for id, cp := range n.points {
		if cp.InOut {
			out = append(out, id)
		}
	}
	return out
}

// AddSegment is idempotent: if a segment already exists for (from, to) the
// existing one is retained and ErrDuplicateSegment is returned (non-fatal,
// the documented policy for this network per the first-write-wins rule).
func (n *Network) AddSegment(from, to ControlPointID, seg *Segment) error {
	key := segKey{From: from, To: to}
	if _, present := n.segments[key]; present {
		return &ErrDuplicateSegment{From: from, To: to}
	}
	seg.Start = from
	seg.End = to
	n.segments[key] = seg
	return nil
}

// GetSegment returns the segment directed from `from` to `to`, or an
// ErrNoSuchSegment error if none exists.
func (n *Network) GetSegment(from, to ControlPointID) (*Segment, error) {
	seg, present := n.segments[segKey{From: from, To: to}]
	if !present {
		return nil, &ErrNoSuchSegment{From: from, To: to}
	}
	return seg, nil
}

// SegmentExists reports whether a segment is directed from `from` to `to`.
func (n *Network) SegmentExists(from, to ControlPointID) bool {
	_, present := n.segments[segKey{From: from, To: to}]
	return present
}

// Segments calls visit once for every segment in the network, in
// unspecified order.
func (n *Network) Segments(visit func(from, to ControlPointID, seg *Segment)) {
	for key, seg := range n.segments {
		visit(key.From, key.To, seg)
	}
}

// ControlPoints calls visit once for every control point in the network.
func (n *Network) ControlPoints(visit func(cp *ControlPoint)) {
	for _, cp := range n.points {
		visit(cp)
	}
}
