// Package seeder implements the pipeline's origin stage: it draws
// num_wanted fresh creatures from a seeded PRNG and closes its output
// channel (spec.md section 4.2). Grounded on
// original_source/src/gen/seeder.rs.
package seeder

import (
	"math/rand"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/emu"
	"github.com/rop-evo/roper/internal/phenome"
)

// Config bundles the seeder's length bounds and InputSlot draw frequency.
type Config struct {
	NumWanted         int
	MinCreatureLength int
	MaxCreatureLength int
	InputSlotFreq     float32
	Image             emu.MemoryImage
}

// Run emits Config.NumWanted freshly-seeded creatures on the returned
// channel, each posed with every input in problemSet, then closes it.
// Chains with no gadget entry are rejected and redrawn, per spec.md section
// 4.2's invariant (i).
func Run(cfg Config, problemSet []phenome.Input, rng *rand.Rand) <-chan phenome.Creature {
	out := make(chan phenome.Creature)
	go func() {
		defer close(out)
		for index := 0; index < cfg.NumWanted; index++ {
			out <- NewCreature(cfg, problemSet, index, rng)
		}
	}()
	return out
}

// NewCreature draws one fresh creature, redrawing its genome until it has a
// gadget entry, then poses every input in problemSet.
func NewCreature(cfg Config, problemSet []phenome.Input, index int, rng *rand.Rand) phenome.Creature {
	var genome allele.Chain
	for {
		genome = allele.FromSeed(rng, cfg.MinCreatureLength, cfg.MaxCreatureLength, cfg.InputSlotFreq, cfg.Image)
		if genome.HasEntry() {
			break
		}
	}

	creature := phenome.NewCreature(genome, index, cfg.Image.Arch)
	for _, problem := range problemSet {
		creature.PoseProblem(problem)
	}
	return creature
}
