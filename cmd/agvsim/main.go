// Command agvsim runs an AGV network simulation to completion: it loads a
// network description and a vehicle manifest, builds (or loads) a routing
// table, drives the movement engine under a discrete-event clock until the
// configured horizon, and writes a CSV trajectory log plus a one-line
// summary (vehicles that reached ready-to-exit, routing errors, horizon).
//
//	agvsim [flags] <network.json> <vehicles.json>
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/iti/evt/evtm"

	"github.com/agvnet/agvsim/agv"
	"github.com/agvnet/agvsim/ioformat"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "agvsim:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("agvsim", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a SimConfig JSON document (defaults applied when omitted)")
	routesPath := fs.String("routes", "", "path to a precomputed binary routing table (built with --complete when omitted)")
	tracePath := fs.String("trace", "", "path to write the CSV trajectory log (stdout when omitted)")
	horizonFlag := fs.Float64("horizon", 0, "override the run horizon from config, in simulated seconds")
	fs.Usage = func() { usage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}

	pos := fs.Args()
	if len(pos) < 2 {
		fs.Usage()
		return fmt.Errorf("need [network.json] [vehicles.json]")
	}
	networkPath, vehiclesPath := pos[0], pos[1]

	cfg := ioformat.DefaultSimConfig()
	if *configPath != "" {
		loaded, err := ioformat.LoadConfig(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}
	if *horizonFlag > 0 {
		cfg.Horizon = *horizonFlag
	}

	network, err := ioformat.LoadNetworkFile(networkPath, ioformat.SegmentDefaults{
		TotalCapacity: cfg.SegmentCapacity,
		Lanes:         cfg.SegmentLanes,
		Length:        cfg.SegmentLength,
	})
	if err != nil {
		return fmt.Errorf("loading network: %w", err)
	}

	var table *agv.RoutingTable
	if *routesPath != "" {
		table, err = ioformat.ReadRoutingTableFile(*routesPath)
		if err != nil {
			return fmt.Errorf("loading routing table: %w", err)
		}
	} else {
		table = agv.BuildComplete(network, network.EntryExitPoints())
	}

	spawned, err := ioformat.LoadVehiclesFile(vehiclesPath, network)
	if err != nil {
		return fmt.Errorf("loading vehicle manifest: %w", err)
	}

	var traceOut *os.File = os.Stdout
	if *tracePath != "" {
		traceOut, err = os.Create(*tracePath)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer traceOut.Close()
	}

	evtMgr := evtm.New()
	eng := agv.NewEngine(network, table, evtMgr, cfg.SmoothFactor, cfg.ColdStartDelay, cfg.MinimalTick)

	csvLog := agv.NewCSVLogger(traceOut)
	eng.AddObserver(csvLog)

	metrics := agv.NewMetricsAccumulator()
	eng.AddObserver(metrics)

	var routingErrors int
	eng.SetRoutingErrorSink(func(v *agv.Vehicle, cp agv.ControlPointID, clock float64, reason string) {
		routingErrors++
		fmt.Fprintf(os.Stderr, "agvsim: routing error at clock %g: %s\n", clock, reason)
	})

	// A vehicle reaching ready-to-exit must have Exit called on its behalf;
	// OnReadyToExit is the one observer hook allowed to call back into the
	// engine.
	byName := make(map[string]*agv.Vehicle, len(spawned))
	for _, sv := range spawned {
		byName[sv.Vehicle.Name] = sv.Vehicle
	}
	eng.AddObserver(&autoExitSink{eng: eng, byName: byName})

	for _, sv := range spawned {
		eng.RequestToEnter(sv.Vehicle, sv.Entry)
	}

	evtMgr.Run(cfg.Horizon)
	csvLog.Flush()

	arrived := 0
	for _, sv := range spawned {
		if _, ok := metrics.TransitTime(sv.Vehicle.Name); ok {
			arrived++
		}
	}
	fmt.Fprintf(os.Stdout, "agvsim: %d/%d vehicles reached ready-to-exit, %d routing errors, horizon %g\n",
		arrived, len(spawned), routingErrors, cfg.Horizon)
	return nil
}

// autoExitSink calls Exit on behalf of every vehicle that reaches
// ready-to-exit, so a standalone CLI run doesn't need an external consumer
// managing the exit handshake itself.
type autoExitSink struct {
	agv.NopTraceSink
	eng    *agv.Engine
	byName map[string]*agv.Vehicle
}

func (a *autoExitSink) OnReadyToExit(v agv.VehicleSnapshot, cp agv.ControlPointID, clock float64) {
	if vehicle, ok := a.byName[v.Name]; ok {
		a.eng.Exit(vehicle, cp)
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: agvsim [flags] [network.json] [vehicles.json]")
	fs.PrintDefaults()
}
