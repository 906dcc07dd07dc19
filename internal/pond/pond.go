// Package pond wires the five pipeline stages together and drives the
// evolution pond: the reservoir the top level drains from the breeder's
// output, shuffles, and re-emits to break the feedback cycle that would
// otherwise recycle creatures through the hatchery needlessly (spec.md
// sections 4.7 and 5). Grounded on
// original_source/src/evo/evolver.rs's evolution_pond and pipeline.
package pond

import (
	"math/rand"
	"time"

	"github.com/rop-evo/roper/internal/breeder"
	"github.com/rop-evo/roper/internal/evaluator"
	"github.com/rop-evo/roper/internal/hatchery"
	"github.com/rop-evo/roper/internal/logger"
	"github.com/rop-evo/roper/internal/metrics"
	"github.com/rop-evo/roper/internal/phenome"
	"github.com/rop-evo/roper/internal/pipeline"
	"github.com/rop-evo/roper/internal/seeder"
)

// Config bundles one fully-resolved configuration for every pipeline stage.
type Config struct {
	ChannelSize int
	Seeder      seeder.Config
	Hatchery    hatchery.Config
	Evaluator   evaluator.Config
	Breeder     breeder.Config
	Logger      logger.Config
	ProblemSet  []phenome.Input

	// WindowSize is the pond reservoir's drain threshold (spec.md section
	// 4.7's W); it is ordinarily the same as Breeder.WindowSize.
	WindowSize int
	// Loops bounds how many times the pond drains and refills before Run
	// returns; 0 means run forever (the breeder/hatchery cycle never closes
	// its channels, so the pond keeps cycling after the seeder finishes).
	Loops int
}

// Run wires seeder -> hatchery -> evaluator -> {breeder, logger} ->
// breeder-output-pond -> {breeder, hatchery} and blocks. With Loops > 0 it
// returns once that many pond refill cycles have run; with Loops == 0 it
// does not return.
func Run(cfg Config, newEngine hatchery.EngineFactory, rng *rand.Rand) {
	seedOut := seeder.Run(cfg.Seeder, cfg.ProblemSet, rng)

	hatchIn := make(chan phenome.Creature, cfg.ChannelSize)
	_, hatchOut := hatchery.Spawn(cfg.Hatchery, newEngine, hatchIn)

	seedHatch := &pipeline.Node{
		Label:   "seed/hatch",
		In:      seedOut,
		Outputs: []chan<- phenome.Creature{hatchIn},
	}
	go seedHatch.Run()

	evalOut := evaluator.Run(cfg.Evaluator, hatchOut)

	breedIn := make(chan phenome.Creature, cfg.ChannelSize)
	loggerIn := make(chan phenome.Creature, cfg.ChannelSize*10)

	evalBreedLog := &pipeline.Node{
		Label:   "eval/breed+log",
		In:      evalOut,
		Outputs: []chan<- phenome.Creature{breedIn, loggerIn},
	}
	go evalBreedLog.Run()

	go logger.Run(cfg.Logger, loggerIn)

	breedOut := make(chan phenome.Creature, cfg.ChannelSize)
	go breeder.Run(cfg.Breeder, rng, breedIn, breedOut, hatchIn)

	go pollChannelDepths(map[string]<-chan phenome.Creature{
		"hatchery_in":    hatchIn,
		"hatchery_out":   hatchOut,
		"evaluator_out":  evalOut,
		"breeder_window": breedIn,
		"logger_window":  loggerIn,
	})

	drainPond(cfg, rng, breedOut, breedIn, hatchIn)
}

// drainPond implements the reservoir of spec.md section 4.7: every creature
// draining out of the breeder is pushed into an in-memory pond; once the
// pond exceeds WindowSize elements it is shuffled and WindowSize creatures
// are popped off and routed onward -- already-hatched creatures go back to
// the breeder (ready for another tournament), unhatched ones go to the
// hatchery.
func drainPond(cfg Config, rng *rand.Rand, in <-chan phenome.Creature, toBreeder, toHatchery chan<- phenome.Creature) {
	var reservoir []phenome.Creature
	loops := 0
	for creature := range in {
		reservoir = append(reservoir, creature)
		if len(reservoir) <= cfg.WindowSize {
			continue
		}

		rng.Shuffle(len(reservoir), func(i, j int) { reservoir[i], reservoir[j] = reservoir[j], reservoir[i] })
		for i := 0; i < cfg.WindowSize && len(reservoir) > 0; i++ {
			last := len(reservoir) - 1
			critter := reservoir[last]
			reservoir = reservoir[:last]
			if critter.HasHatched() {
				toBreeder <- critter
			} else {
				toHatchery <- critter
			}
		}

		loops++
		if cfg.Loops > 0 && loops >= cfg.Loops {
			return
		}
	}
}

// pollChannelDepths periodically sets the ChannelDepth gauge from each named
// channel's len(), since Go's built-in len() on a buffered channel already
// gives an accurate instantaneous queue depth -- no increment/decrement
// bookkeeping is needed at each send site.
func pollChannelDepths(channels map[string]<-chan phenome.Creature) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		for name, ch := range channels {
			metrics.ChannelDepth.WithLabelValues(name).Set(float64(len(ch)))
		}
	}
}
