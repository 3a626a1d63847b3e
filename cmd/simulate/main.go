// Command simulate wires descriptor + engine + recorder together, the
// way main.go wires game.New with flags (-headless, -max-ticks): a thin
// driver with no simulation logic of its own.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pthm-cable/iprd/descriptor"
	"github.com/pthm-cable/iprd/engine"
	"github.com/pthm-cable/iprd/models"
	"github.com/pthm-cable/iprd/recorder"
	"github.com/pthm-cable/iprd/system"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML system descriptor (empty = use -model)")
	modelName    = flag.String("model", "pure-diffusion", "Built-in model to run when -config is empty: pure-diffusion, double-well, conversion, fusion, lotka-volterra, michaelis-menten")
	steps        = flag.Int("steps", 1000, "Number of integration steps to run")
	h            = flag.Float64("h", 1e-3, "Integration timestep")
	recordEvery  = flag.Int("record-every", 100, "Record a snapshot every N steps (0 = never)")
	outCSV       = flag.String("out", "", "CSV output path (empty = discard output)")
	numWorkers   = flag.Int("workers", 0, "Number of TaskPool workers (0 = GOMAXPROCS)")
	numParticles = flag.Int("particles", 1000, "Number of particles to seed on a grid across the system's box (built-in model or -config)")
)

func builtinModel(name string) (*system.System, error) {
	switch name {
	case "pure-diffusion":
		return models.PureDiffusion(), nil
	case "double-well":
		return models.DoubleWell(), nil
	case "conversion":
		return models.Conversion(), nil
	case "fusion":
		return models.Fusion(), nil
	case "lotka-volterra":
		return models.LotkaVolterra(), nil
	case "michaelis-menten":
		return models.MichaelisMenten(), nil
	default:
		return nil, fmt.Errorf("unknown built-in model %q", name)
	}
}

func main() {
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var sys *system.System
	var err error
	if *configPath != "" {
		sys, err = descriptor.Load(*configPath)
	} else {
		sys, err = builtinModel(*modelName)
	}
	if err != nil {
		logger.Error("loading system descriptor", "error", err)
		os.Exit(1)
	}

	var rec recorder.Recorder = recorder.Null{}
	if *outCSV != "" {
		csvRec, err := recorder.NewCSV(*outCSV)
		if err != nil {
			logger.Error("opening CSV output", "error", err)
			os.Exit(1)
		}
		defer csvRec.Close()
		rec = csvRec
	}

	e, err := engine.New(sys, engine.Options{NumWorkers: *numWorkers, Recorder: rec})
	if err != nil {
		logger.Error("constructing engine", "error", err)
		os.Exit(1)
	}
	defer e.Close()

	seedSystem(e, sys, *numParticles)

	logger.Info("starting simulation", "model", sys.Name, "steps", *steps, "h", *h, "particles", e.NumLive())

	for step := 0; step < *steps; step++ {
		e.Step(*h)
		if *recordEvery > 0 && (step+1)%*recordEvery == 0 {
			if err := e.RecordTo(rec); err != nil {
				logger.Error("recording snapshot", "tick", e.Tick(), "error", err)
			}
		}
	}

	logger.Info("simulation complete", "ticks", e.Tick(), "live", e.NumLive())
}

// seedSystem places n particles of the first declared type (or, for
// models with multiple types, splits them evenly) on a grid spanning the
// system's box.
func seedSystem(e *engine.Engine, sys *system.System, n int) {
	if len(sys.Types) == 0 || n <= 0 {
		return
	}
	perType := n / len(sys.Types)
	if perType == 0 {
		perType = 1
	}
	side := 1
	for side*side < perType {
		side++
	}
	for ti, td := range sys.Types {
		for i := 0; i < perType; i++ {
			pos := make([]float64, sys.Dim)
			for d := 0; d < sys.Dim; d++ {
				frac := float64((i/pow(side, d))%side) / float64(side)
				pos[d] = (frac - 0.5) * sys.Box[d]
			}
			if _, err := e.AddParticle(pos, td.Name); err != nil {
				panic(fmt.Sprintf("cmd/simulate: seeding type %d: %v", ti, err))
			}
		}
	}
}

func pow(base, exp int) int {
	r := 1
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
