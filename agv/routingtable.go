package agv

// RoutingTable is an immutable mapping (from, destination) -> next-hop,
// built once by the Routing Builder and read-only thereafter. Absence of a
// key means "no route": the engine treats this as a routing miss at query
// time, never as a construction-time error.
type RoutingTable struct {
	nextHop map[routeKey]ControlPointID
}

type routeKey struct {
	From, Dest ControlPointID
}

// NewRoutingTable constructs an empty table. The Routing Builder populates
// it via Set; after a table is handed to the engine no further mutation is
// expected.
func NewRoutingTable() *RoutingTable {
	return &RoutingTable{nextHop: make(map[routeKey]ControlPointID)}
}

// Set records that the next hop from `from` toward `dest` is `hop`. Used
// only by the Routing Builder during construction.
func (rt *RoutingTable) Set(from, dest, hop ControlPointID) {
	rt.nextHop[routeKey{From: from, Dest: dest}] = hop
}

// NextHop returns the next hop from `from` toward `dest`, and whether a
// route is known at all.
func (rt *RoutingTable) NextHop(from, dest ControlPointID) (ControlPointID, bool) {
	hop, present := rt.nextHop[routeKey{From: from, Dest: dest}]
	return hop, present
}

// Len reports the number of (from, dest) -> next-hop entries in the table.
func (rt *RoutingTable) Len() int {
	return len(rt.nextHop)
}

// Entries calls visit once per (from, dest, nextHop) record, in unspecified
// order. Used by the binary codec in package ioformat to stream the table
// to disk.
func (rt *RoutingTable) Entries(visit func(from, dest, nextHop ControlPointID)) {
	for k, v := range rt.nextHop {
		visit(k.From, k.Dest, v)
	}
}
