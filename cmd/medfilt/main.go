// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/klauspost/cpuid"
	nl "github.com/mlnoga/medfilt/internal"
	"github.com/mlnoga/medfilt/internal/median"
	"github.com/mlnoga/medfilt/internal/ops"
	"github.com/mlnoga/medfilt/internal/ops/filter"
	"github.com/mlnoga/medfilt/internal/rest"
	"github.com/pbnjay/memory"
)

const version = "0.1.0"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var out = flag.String("out", "med%04d.fits", "save filtered images with given filename pattern, %d is replaced by the image id. Suffix .fits, .fits.gz or .tif")
var log = flag.String("log", "", "save log output to `file`")
var job = flag.String("job", "", "run the operator graph from the JSON `file` with the job command")
var csv = flag.String("csv", "", "save image statistics as CSV to `file` with the stats command")

var rx = flag.Int("rx", 1, "horizontal median window radius, window width is 2*rx+1")
var ry = flag.Int("ry", 1, "vertical median window radius, window height is 2*ry+1")
var border = median.BorderFilter

var threads = flag.Int("threads", 0, "number of images to process concurrently, 0=number of logical cores")

var port = flag.Int("port", 8080, "port for the serve command")
var chroot = flag.String("chroot", "", "change filesystem root to `dir` before serving (requires root)")
var setuid = flag.Int("setuid", -1, "change user id before serving, -1=no change")

func init() {
	flag.TextVar(&border, "border", median.BorderFilter, "border handling, one of filter, copy, nop or crop")
}

func main() {
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(nl.LogWriter(), `Medfilt Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (median|stats|job|serve|legal|version) (img0.fits ... imgn.fits)

Commands:
  median  Apply a (2*rx+1)x(2*ry+1) median filter to each input image
  stats   Show input image statistics
  job     Run the operator graph given with -job
  serve   Serve the REST API
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Initialize logging to file in addition to stdout, if selected
	if *log != "" {
		if err := nl.LogAlsoToFile(*log); err != nil {
			nl.LogFatalf("Unable to open logfile '%s': %s\n", *log, err)
		}
	}
	defer nl.LogClose()

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			nl.LogFatal("Could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			nl.LogFatal("Could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	c := ops.NewContext(nl.LogWriter(), *threads)
	var err error
	switch args[0] {
	case "median":
		err = cmdMedian(args[1:], c)

	case "stats":
		err = cmdStats(args[1:], c)

	case "job":
		err = cmdJob(*job, c)

	case "serve":
		if err = rest.MakeSandbox(*chroot, *setuid, nl.LogWriter()); err == nil {
			err = rest.Serve(*port, c.MaxThreads)
		}

	case "legal":
		cmdLegal()

	case "version":
		nl.LogPrintf("Version %s\n", version)
		nl.LogPrintf("Running on %s with %d logical cores and %d MiB memory\n",
			cpuid.CPU.BrandName, cpuid.CPU.LogicalCores, memory.TotalMemory()/1024/1024)

	case "help", "?":
		flag.Usage()

	default:
		nl.LogPrintf("Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	nl.LogPrintf("\nDone after %v\n", time.Since(start))

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			nl.LogFatal("Could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			nl.LogFatal("Could not write allocation profile: ", err)
		}
	}

	if err != nil {
		nl.LogFatalf("Error: %s\n", err.Error())
	}
}

// Runs the given operator on zero inputs and materializes all results, discarding the images
func run(op ops.Operator, c *ops.Context) error {
	m, err := json.MarshalIndent(op, "", "  ")
	if err != nil {
		return err
	}
	nl.LogPrintf("Running with %d threads and %d MiB memory:\n%s\n", c.MaxThreads, c.MemoryMB, string(m))

	promises, err := op.MakePromises(nil, c)
	if err != nil {
		return err
	}
	_, err = ops.MaterializeAll(promises, c.MaxThreads, true)
	median.ClearPools()
	return err
}

// Applies the median filter from the command line flags to each file
func cmdMedian(fileNames []string, c *ops.Context) error {
	return run(ops.NewOpSequence(
		ops.NewOpLoadMany(fileNames),
		filter.NewOpMedian(*rx, *ry, border),
		ops.NewOpSave(*out),
	), c)
}

// Loads each file and logs its statistics, optionally exporting them as CSV
func cmdStats(fileNames []string, c *ops.Context) error {
	seq := ops.NewOpSequence(ops.NewOpLoadMany(fileNames))
	if *csv != "" {
		export := filter.NewOpExportStats(*csv)
		defer export.Close()
		seq.Append(export)
	}
	return run(seq, c)
}

// Runs an operator graph from a JSON file
func cmdJob(fileName string, c *ops.Context) error {
	if fileName == "" {
		return fmt.Errorf("job command needs a -job file")
	}
	b, err := os.ReadFile(fileName)
	if err != nil {
		return err
	}
	op, err := ops.UnmarshalOperator(b)
	if err != nil {
		return err
	}
	return run(op, c)
}
