package agv

// engine.go is the discrete-event movement engine: the state machine that
// decides when a vehicle may enter a segment, when it completes traversal,
// when it may depart toward the next segment, and how capacity releases
// propagate backward through congestion chains.
//
// All scheduling routes through an *evtm.EventManager, a schedule(delay,
// action) primitive (github.com/iti/evt/evtm, github.com/iti/evt/vrtime)
// that serializes every state transition against a monotonic simulated
// clock.

import (
	"fmt"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// vehiclePathPair couples a vehicle with the segment it is ready to exit
// from -- nil when the vehicle fired ready-to-exit immediately from
// RequestToEnter without ever occupying a segment. Used to validate the
// matching Exit call.
type vehiclePathPair struct {
	Vehicle *Vehicle
	Segment *Segment
}

// Engine is the movement engine: it owns no network/routing state itself
// (both are supplied at construction) but is the sole mutator of every
// segment's dynamic fields for the lifetime of a simulation run.
type Engine struct {
	network *Network
	table   *RoutingTable
	evtMgr  *evtm.EventManager

	smoothFactor   float64
	coldStartDelay float64
	minimalTick    float64

	entryPending    map[ControlPointID][]*Vehicle
	readyToExitList []vehiclePathPair

	sinks       []TraceSink
	routingErrs RoutingErrorSink
}

// NewEngine is a constructor. smoothFactor and coldStartDelay are the
// engine's timing primitives; minimalTick is the token non-zero delay used
// to force event serialization (any value strictly less than smoothFactor
// is acceptable).
func NewEngine(network *Network, table *RoutingTable, evtMgr *evtm.EventManager, smoothFactor, coldStartDelay, minimalTick float64) *Engine {
	return &Engine{
		network:        network,
		table:          table,
		evtMgr:         evtMgr,
		smoothFactor:   smoothFactor,
		coldStartDelay: coldStartDelay,
		minimalTick:    minimalTick,
		entryPending:   make(map[ControlPointID][]*Vehicle),
	}
}

// AddObserver registers a TraceSink to be invoked synchronously, in
// registration order, for every subsequent engine event.
func (e *Engine) AddObserver(sink TraceSink) {
	e.sinks = append(e.sinks, sink)
}

// SetRoutingErrorSink installs the callback invoked on a routing miss or
// graph inconsistency. A nil sink (the default) silently drops the report.
func (e *Engine) SetRoutingErrorSink(sink RoutingErrorSink) {
	e.routingErrs = sink
}

func (e *Engine) clock() float64 {
	return e.evtMgr.CurrentSeconds()
}

func (e *Engine) fireOnEnter(v *Vehicle, cp ControlPointID, clock float64) {
	snap := snapshotVehicle(v)
	for _, sink := range e.sinks {
		sink.OnEnter(snap, cp, clock)
	}
}

func (e *Engine) fireOnArrive(v *Vehicle, seg *Segment, clock float64) {
	snap, ssnap := snapshotVehicle(v), snapshotSegment(seg)
	for _, sink := range e.sinks {
		sink.OnArrive(snap, ssnap, clock)
	}
}

func (e *Engine) fireOnComplete(v *Vehicle, seg *Segment, clock float64) {
	snap, ssnap := snapshotVehicle(v), snapshotSegment(seg)
	for _, sink := range e.sinks {
		sink.OnComplete(snap, ssnap, clock)
	}
}

func (e *Engine) fireOnDepart(v *Vehicle, seg *Segment, clock float64) {
	snap, ssnap := snapshotVehicle(v), snapshotSegment(seg)
	for _, sink := range e.sinks {
		sink.OnDepart(snap, ssnap, clock)
	}
}

func (e *Engine) fireOnReadyToExit(v *Vehicle, cp ControlPointID, clock float64) {
	snap := snapshotVehicle(v)
	for _, sink := range e.sinks {
		sink.OnReadyToExit(snap, cp, clock)
	}
}

// reportRoutingError marks v stalled and, if a sink is installed, reports
// the routing miss / graph inconsistency. Not fatal: v's progress simply
// halts, every other vehicle continues.
func (e *Engine) reportRoutingError(v *Vehicle, cp ControlPointID, clock float64, reason string) {
	v.Stalled = true
	if e.routingErrs != nil {
		e.routingErrs(v, cp, clock, reason)
	}
}

// invariantViolation halts the run: remaining_capacity would drop below
// zero or exceed total_capacity.
func invariantViolation(seg *Segment, event string) {
	panic(fmt.Sprintf("invariant violation on segment %s during %s: remaining capacity %d outside [0, %d]",
		seg.Name, event, seg.RemainingCapacity, seg.TotalCapacity))
}

func removeVehicle(list []*Vehicle, v *Vehicle) []*Vehicle {
	for i, w := range list {
		if w == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func (e *Engine) removeFromEntryPending(cp ControlPointID, v *Vehicle) {
	e.entryPending[cp] = removeVehicle(e.entryPending[cp], v)
}

func removeFromOutPending(p *Segment, v *Vehicle) {
	p.OutPending = removeVehicle(p.OutPending, v)
}

// --- public operations --------------------------------------------------

// RequestToEnter appends vehicle to the entry-pending list at cp and
// schedules an entry attempt after the minimal tick. If the vehicle's only
// remaining targets are cp itself, it fires ready-to-exit immediately
// instead of enqueuing.
func (e *Engine) RequestToEnter(v *Vehicle, cp ControlPointID) {
	v.CollapseStaleTargets(cp)
	if v.Arrived() {
		e.readyToExitImmediate(v, cp)
		return
	}
	e.entryPending[cp] = append(e.entryPending[cp], v)
	e.scheduleAttemptToEnter(cp, e.minimalTick)
}

// Exit consumes the matching (vehicle, segment) pair from the ready-to-exit
// list and releases capacity on the vehicle's current segment. A call with
// no matching entry is a silent no-op.
func (e *Engine) Exit(v *Vehicle, cp ControlPointID) {
	idx := -1
	for i, pair := range e.readyToExitList {
		if pair.Vehicle != v {
			continue
		}
		expected := cp
		if pair.Segment != nil {
			expected = pair.Segment.End
		}
		if expected != cp {
			continue
		}
		idx = i
		break
	}
	if idx == -1 {
		return
	}
	pair := e.readyToExitList[idx]
	e.readyToExitList = append(e.readyToExitList[:idx], e.readyToExitList[idx+1:]...)

	seg := pair.Segment
	if seg == nil {
		return
	}

	seg.RemainingCapacity += v.CapacityNeeded
	if seg.RemainingCapacity > seg.TotalCapacity {
		invariantViolation(seg, "exit")
	}

	if len(seg.InPending) > 0 {
		head := seg.InPending[0]
		e.scheduleAttemptToDepart(head.Upstream, head.Vehicle, e.minimalTick)
	}
	e.scheduleAttemptToEnter(seg.Start, e.minimalTick)
}

// --- state transitions ----------------------------------------------------

// readyToExitImmediate handles the RequestToEnter boundary case: a vehicle
// whose sole target is its own entry point never occupies a segment.
func (e *Engine) readyToExitImmediate(v *Vehicle, cp ControlPointID) {
	e.readyToExitList = append(e.readyToExitList, vehiclePathPair{Vehicle: v, Segment: nil})
	e.fireOnReadyToExit(v, cp, e.clock())
}

// readyToExit appends (v, p) to the ready-to-exit list and fires
// OnReadyToExit(v, p.End). The caller must eventually call Exit to release
// capacity.
func (e *Engine) readyToExit(v *Vehicle, p *Segment) {
	e.readyToExitList = append(e.readyToExitList, vehiclePathPair{Vehicle: v, Segment: p})
	e.fireOnReadyToExit(v, p.End, e.clock())
}

// attemptToEnter scans the entry-pending list at cp in FIFO order, admitting
// the first vehicle that has room on its chosen segment and has waited out
// the smoothing gap since that segment's last admission.
func (e *Engine) attemptToEnter(cp ControlPointID) {
	clock := e.clock()
	i := 0
	for i < len(e.entryPending[cp]) {
		v := e.entryPending[cp][i]
		p, outcome := v.NextSegment(e.network, e.table, cp)

		switch outcome {
		case OutcomeArrived:
			e.removeFromEntryPending(cp, v)
			e.readyToExitImmediate(v, cp)
			// list shrank in place; re-examine index i (now the next vehicle)
			continue

		case OutcomeNoRoute:
			e.reportRoutingError(v, cp, clock, "no route from entry point "+fmt.Sprint(cp))
			i++
			continue

		case OutcomeSegment:
			delta := clock - p.EnterTimeStamp
			if p.RemainingCapacity >= v.CapacityNeeded {
				if delta < e.smoothFactor {
					e.scheduleAttemptToEnter(cp, e.smoothFactor-delta)
					return
				}
				e.enter(v, p, cp)
				return
			}
			i++
		}
	}
}

// enter admits v onto segment p: it stamps the segment's entry time, fires
// OnEnter, and marks v stopped before handing off to arrive.
func (e *Engine) enter(v *Vehicle, p *Segment, cp ControlPointID) {
	clock := e.clock()
	p.EnterTimeStamp = clock
	e.fireOnEnter(v, cp, clock)
	e.removeFromEntryPending(cp, v)
	v.IsStopped = true
	e.arrive(v, p)
}

// arrive puts v onto segment p: it fires OnArrive, advances v's target
// list, consumes p's capacity, and schedules the traversal's completion
// (adding the cold-start delay if v was at rest).
func (e *Engine) arrive(v *Vehicle, p *Segment) {
	clock := e.clock()
	e.fireOnArrive(v, p, clock)
	v.CurrentSegment = p
	v.RemoveTarget(p.Start)
	p.RemainingCapacity -= v.CapacityNeeded
	if p.RemainingCapacity < 0 {
		invariantViolation(p, "arrive")
	}

	tau := p.Length / v.Speed
	if v.IsStopped {
		tau += e.coldStartDelay
		v.IsStopped = false
	}
	e.scheduleComplete(v, p, tau)
}

// complete moves v from traversal onto p's out-pending queue once it has
// physically reached p's downstream end, and triggers a departure attempt.
func (e *Engine) complete(v *Vehicle, p *Segment) {
	clock := e.clock()
	p.OutPending = append(p.OutPending, v)
	e.fireOnComplete(v, p, clock)
	e.scheduleAttemptToDepart(p, nil, e.minimalTick)
}

// attemptToDepart decides whether the vehicle at the head of p's
// out-pending queue can move onto its next segment. v may be nil, meaning
// "the current head of p.OutPending".
func (e *Engine) attemptToDepart(p *Segment, v *Vehicle) {
	if len(p.OutPending) == 0 {
		return
	}
	if v == nil {
		v = p.OutPending[0]
	} else {
		found := false
		for _, w := range p.OutPending {
			if w == v {
				found = true
				break
			}
		}
		if !found {
			return
		}
	}

	clock := e.clock()
	v.IsStopped = p.IsCongested

	q, outcome := v.NextSegment(e.network, e.table, p.End)
	switch outcome {
	case OutcomeArrived:
		removeFromOutPending(p, v)
		e.readyToExit(v, p)
		return

	case OutcomeNoRoute:
		e.reportRoutingError(v, p.End, clock, "no route from "+p.Name)
		return

	case OutcomeSegment:
		delta := clock - q.DepartTimeStamp
		if q.RemainingCapacity >= v.CapacityNeeded {
			if delta < e.smoothFactor {
				p.IsCongested = true
				e.scheduleAttemptToDepart(p, v, e.smoothFactor-delta)
				return
			}
			p.IsCongested = false
			removeFromOutPending(p, v)

			if len(p.OutPending) > 0 {
				w := p.OutPending[0]
				r, rOutcome := w.NextSegment(e.network, e.table, p.End)
				if rOutcome == OutcomeSegment {
					r.InPending = append(r.InPending, inPendingEntry{Vehicle: w, Upstream: p})
				}
			}

			if v.PendingSegment != nil {
				ps := v.PendingSegment
				if len(ps.InPending) > 0 {
					ps.InPending = ps.InPending[1:]
				}
				v.PendingSegment = nil
			}

			e.depart(v, p)
			q.DepartTimeStamp = clock
			return
		}

		// q is full.
		if len(p.OutPending) == 1 {
			q.InPending = append(q.InPending, inPendingEntry{Vehicle: v, Upstream: p})
			v.PendingSegment = q
		}
		// else: v is the head and was already inserted by a prior
		// promotion -- do not double-insert.
		return
	}
}

// depart releases v from p onto its next segment: it fires OnDepart,
// returns p's capacity, arrives v onto the next segment, and wakes up any
// vehicle waiting behind it (on p's out-pending queue, on an upstream
// segment blocked on p, or freshly requesting entry at p's start).
func (e *Engine) depart(v *Vehicle, p *Segment) {
	clock := e.clock()
	e.fireOnDepart(v, p, clock)

	p.RemainingCapacity += v.CapacityNeeded
	if p.RemainingCapacity > p.TotalCapacity {
		invariantViolation(p, "depart")
	}

	q, outcome := v.NextSegment(e.network, e.table, p.End)
	switch outcome {
	case OutcomeSegment:
		e.arrive(v, q)
	case OutcomeNoRoute:
		e.reportRoutingError(v, p.End, clock, "no route from "+p.Name)
	case OutcomeArrived:
		// attemptToDepart already filters this case out before calling
		// depart; reaching it here would mean targets mutated between the
		// two NextSegment calls within the same atomic transition, which
		// cannot happen.
	}

	e.scheduleAttemptToDepart(p, nil, e.minimalTick)
	if len(p.InPending) > 0 {
		head := p.InPending[0]
		e.scheduleAttemptToDepart(head.Upstream, head.Vehicle, e.minimalTick)
	}
	e.scheduleAttemptToEnter(p.Start, e.minimalTick)
}

// --- scheduling glue ------------------------------------------------------

func (e *Engine) scheduleAttemptToEnter(cp ControlPointID, delay float64) {
	e.evtMgr.Schedule(e, cp, handleAttemptToEnter, vrtime.SecondsToTime(delay))
}

type departAttempt struct {
	Seg *Segment
	Veh *Vehicle
}

func (e *Engine) scheduleAttemptToDepart(seg *Segment, v *Vehicle, delay float64) {
	e.evtMgr.Schedule(e, departAttempt{Seg: seg, Veh: v}, handleAttemptToDepart, vrtime.SecondsToTime(delay))
}

type completeEvent struct {
	Veh *Vehicle
	Seg *Segment
}

func (e *Engine) scheduleComplete(v *Vehicle, seg *Segment, delay float64) {
	e.evtMgr.Schedule(e, completeEvent{Veh: v, Seg: seg}, handleComplete, vrtime.SecondsToTime(delay))
}

func handleAttemptToEnter(evtMgr *evtm.EventManager, context any, data any) any {
	e := context.(*Engine)
	cp := data.(ControlPointID)
	e.attemptToEnter(cp)
	return nil
}

func handleAttemptToDepart(evtMgr *evtm.EventManager, context any, data any) any {
	e := context.(*Engine)
	da := data.(departAttempt)
	e.attemptToDepart(da.Seg, da.Veh)
	return nil
}

func handleComplete(evtMgr *evtm.EventManager, context any, data any) any {
	e := context.(*Engine)
	ce := data.(completeEvent)
	e.complete(ce.Veh, ce.Seg)
	return nil
}
