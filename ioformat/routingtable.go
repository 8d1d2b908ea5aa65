package ioformat

// routingtable.go streams the routing table's on-disk binary format: a
// little-endian 32-bit record count followed by that many 6-byte records
// (from:u16 | dest:u16 | next_hop:u16), no checksum, no header magic. The
// codec stream-decodes with a buffered reader so the bytes of a file with
// millions of entries are never read into memory all at once; the decoded
// RoutingTable itself holds every entry.

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/agvnet/agvsim/agv"
)

const recordSize = 6 // 3 * uint16

// WriteRoutingTableFile serializes table to path in the binary format.
func WriteRoutingTableFile(path string, table *agv.RoutingTable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating routing table file %s: %w", path, err)
	}
	defer f.Close()
	return WriteRoutingTable(f, table)
}

// WriteRoutingTable serializes table to w in the binary format.
func WriteRoutingTable(w io.Writer, table *agv.RoutingTable) error {
	bw := bufio.NewWriter(w)

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(table.Len()))
	if _, err := bw.Write(countBuf[:]); err != nil {
		return err
	}

	var recBuf [recordSize]byte
	var writeErr error
	table.Entries(func(from, dest, nextHop agv.ControlPointID) {
		if writeErr != nil {
			return
		}
		binary.LittleEndian.PutUint16(recBuf[0:2], uint16(from))
		binary.LittleEndian.PutUint16(recBuf[2:4], uint16(dest))
		binary.LittleEndian.PutUint16(recBuf[4:6], uint16(nextHop))
		_, writeErr = bw.Write(recBuf[:])
	})
	if writeErr != nil {
		return writeErr
	}

	return bw.Flush()
}

// ReadRoutingTableFile deserializes a routing table from path.
func ReadRoutingTableFile(path string) (*agv.RoutingTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening routing table file %s: %w", path, err)
	}
	defer f.Close()
	return ReadRoutingTable(f)
}

// ReadRoutingTable deserializes a routing table from r, streaming records
// rather than buffering the whole file.
func ReadRoutingTable(r io.Reader) (*agv.RoutingTable, error) {
	br := bufio.NewReader(r)

	var countBuf [4]byte
	if _, err := io.ReadFull(br, countBuf[:]); err != nil {
		return nil, fmt.Errorf("reading routing table record count: %w", err)
	}
	count := binary.LittleEndian.Uint32(countBuf[:])

	table := agv.NewRoutingTable()
	var recBuf [recordSize]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(br, recBuf[:]); err != nil {
			return nil, fmt.Errorf("reading routing table record %d of %d: %w", i, count, err)
		}
		from := agv.ControlPointID(binary.LittleEndian.Uint16(recBuf[0:2]))
		dest := agv.ControlPointID(binary.LittleEndian.Uint16(recBuf[2:4]))
		nextHop := agv.ControlPointID(binary.LittleEndian.Uint16(recBuf[4:6]))
		table.Set(from, dest, nextHop)
	}

	return table, nil
}
