// Command routebuilder computes a routing table from a network description
// and writes it in the binary on-disk format. Positional arguments:
//
//	routebuilder [input.json] [output.bin] [num_routes] [seed]
//
// Flags: --complete/-c computes the full all-destinations table with
// reverse SSSP instead of random sampling; --seed overrides the positional
// seed argument.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/agvnet/agvsim/agv"
	"github.com/agvnet/agvsim/ioformat"
)

func main() {
	err := run(os.Args[1:])
	if err == nil {
		return
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	fmt.Fprintln(os.Stderr, "routebuilder:", err)
	os.Exit(1)
}

func run(args []string) error {
	fs := flag.NewFlagSet("routebuilder", flag.ContinueOnError)
	complete := fs.Bool("complete", false, "compute the full all-destinations table with reverse SSSP")
	fs.BoolVar(complete, "c", false, "shorthand for --complete")
	seedFlag := fs.Int64("seed", 0, "seed the random route sampler")
	seedSet := false
	fs.Usage = usage

	if err := fs.Parse(args); err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			seedSet = true
		}
	})

	pos := fs.Args()
	if len(pos) < 2 {
		usage()
		return fmt.Errorf("need at least [input.json] [output.bin]")
	}

	inputPath := pos[0]
	outputPath := pos[1]

	numRoutes := 0
	if len(pos) >= 3 {
		n, err := strconv.Atoi(pos[2])
		if err != nil {
			return fmt.Errorf("parsing num_routes %q: %w", pos[2], err)
		}
		numRoutes = n
	}

	seed := *seedFlag
	if !seedSet && len(pos) >= 4 {
		s, err := strconv.ParseInt(pos[3], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing seed %q: %w", pos[3], err)
		}
		seed = s
	}

	network, err := ioformat.LoadNetworkFile(inputPath, ioformat.SegmentDefaults{
		TotalCapacity: 1,
		Lanes:         1,
	})
	if err != nil {
		return fmt.Errorf("loading network: %w", err)
	}

	destinations := network.EntryExitPoints()
	if len(destinations) == 0 {
		return fmt.Errorf("network %s has no entry/exit control points", inputPath)
	}

	if len(destinations) > 0 {
		if unreachable := agv.UnreachableDestinations(network, destinations[0], destinations); len(unreachable) > 0 {
			fmt.Fprintf(os.Stderr, "routebuilder: warning: %d of %d entry/exit points are unreachable from %v\n",
				len(unreachable), len(destinations), destinations[0])
		}
	}

	var table *agv.RoutingTable
	if *complete {
		table = agv.BuildComplete(network, destinations)
	} else {
		table = agv.BuildSampled(network, destinations, numRoutes, seed)
	}

	if err := ioformat.WriteRoutingTableFile(outputPath, table); err != nil {
		return fmt.Errorf("writing routing table: %w", err)
	}

	fmt.Fprintf(os.Stdout, "wrote %d routes to %s\n", table.Len(), outputPath)
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: routebuilder [flags] [input.json] [output.bin] [num_routes] [seed]")
	fmt.Fprintln(os.Stderr, "  -c, --complete   compute the full all-destinations table with reverse SSSP")
	fmt.Fprintln(os.Stderr, "      --seed N     seed the random route sampler")
	fmt.Fprintln(os.Stderr, "  -h, --help       show this message")
}
