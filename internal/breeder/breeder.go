package breeder

import (
	"math/rand"

	"github.com/rop-evo/roper/internal/phenome"
)

// Config bundles the breeder's top-level loop settings: the selection
// window capacity and the per-tournament configuration. The RNG is passed
// to Run separately.
type Config struct {
	WindowSize int
	Tournament TournamentConfig
}

// Run drives the breeder stage: it appends every creature arriving on in to
// an in-memory selection window; once the window reaches WindowSize it runs
// one Tournament, drains the (now window-2) survivors onto the outputs
// channel, and sends the two fresh offspring onto hatch (spec.md section
// 4.5). Closes both output channels once in closes and the final partial
// window has been drained. Grounded on
// original_source/src/evo/selector.rs's spawn_breeder.
func Run(cfg Config, rng *rand.Rand, in <-chan phenome.Creature, outputs chan<- phenome.Creature, hatch chan<- phenome.Creature) {
	defer close(outputs)
	defer close(hatch)

	window := make([]phenome.Creature, 0, cfg.WindowSize)
	for creature := range in {
		window = append(window, creature)
		if len(window) < cfg.WindowSize {
			continue
		}

		offspring := Tournament(cfg.Tournament, &window, rng)

		for len(window) > 0 {
			last := len(window) - 1
			outputs <- window[last]
			window = window[:last]
		}
		hatch <- offspring[0]
		hatch <- offspring[1]
	}

	for _, creature := range window {
		outputs <- creature
	}
}
