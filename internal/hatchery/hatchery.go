// Package hatchery implements the multi-engine carousel that executes
// genomes in instrumented emulators to obtain phenotypes (spec.md section
// 4.3). Grounded on original_source/src/emu/hatchery.rs (spawn_hatchery's
// carousel dispatch and has-hatched short-circuit, spawn_coop's per-worker
// loop, hatch_cases/hatch's single-run protocol) and
// yaricom-goNEAT/examples/pole2/cart2pole_parallel.go's worker-pool shape.
package hatchery

import (
	"sync"

	"github.com/rop-evo/roper/internal/config"
	"github.com/rop-evo/roper/internal/emu"
	"github.com/rop-evo/roper/internal/metrics"
	"github.com/rop-evo/roper/internal/phenome"
)

// InstructionBudget is the per-run instruction budget, per spec.md section
// 4.3 step 5. It is the only timeout in the system (spec.md section 5).
const InstructionBudget = 1024

// EngineFactory constructs one worker's thread-local emulator. Each Engine
// returned is used by exactly one carousel worker for its entire lifetime
// (spec.md section 5): it is never shared or sent across goroutines.
type EngineFactory func() (emu.Engine, error)

// Config configures the hatchery's carousel.
type Config struct {
	NumEngines        int
	ChannelSize       int
	Image             emu.MemoryImage
	Arch              emu.Arch
	Mode              emu.Mode
	InstructionBudget int
}

// Hatchery owns the carousel of worker goroutines and the round-robin
// dispatcher between the pipeline's In and Out channels.
type Hatchery struct {
	cfg     Config
	workers []chan phenome.Creature
	out     chan phenome.Creature
	wg      sync.WaitGroup
}

// Spawn starts the hatchery: NumEngines worker goroutines, each with its own
// emulator built by newEngine, plus a dispatcher goroutine reading in and
// round-robining un-hatched creatures to the workers. Every incoming
// creature eventually appears on the returned channel, whether it was
// executed or forwarded via the has-hatched short-circuit.
func Spawn(cfg Config, newEngine EngineFactory, in <-chan phenome.Creature) (*Hatchery, <-chan phenome.Creature) {
	if cfg.InstructionBudget == 0 {
		cfg.InstructionBudget = InstructionBudget
	}
	h := &Hatchery{
		cfg:     cfg,
		workers: make([]chan phenome.Creature, cfg.NumEngines),
		out:     make(chan phenome.Creature, cfg.ChannelSize),
	}

	for i := 0; i < cfg.NumEngines; i++ {
		jobs := make(chan phenome.Creature, cfg.ChannelSize)
		h.workers[i] = jobs
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			runWorker(cfg, newEngine, jobs, h.out)
		}()
	}

	go h.dispatch(in)

	return h, h.out
}

// dispatch is the hatchery's single carousel-management goroutine: it reads
// incoming creatures, forwards already-hatched ones directly (the central
// throughput optimization of spec.md section 4.3), and otherwise
// round-robins them across the worker pool. Once in closes, it closes every
// worker's job channel, waits for workers to drain, then closes out.
func (h *Hatchery) dispatch(in <-chan phenome.Creature) {
	coop := 0
	n := len(h.workers)
	for creature := range in {
		if creature.HasHatched() {
			metrics.HatchShortCircuitsTotal.Inc()
			h.out <- creature
			continue
		}
		h.workers[coop] <- creature
		coop = (coop + 1) % n
	}
	for _, w := range h.workers {
		close(w)
	}
	h.wg.Wait()
	close(h.out)
}
