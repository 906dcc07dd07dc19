package phenome

import (
	"hash/fnv"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/emu"
)

// Creature is the unit that flows through the pipeline channels: a Chain, a
// Phenome, a stable index, a display name, a metadata side-table, and an
// optional Fitness. Grounded on original_source/src/gen/phenotype.rs's
// Creature.
type Creature struct {
	Genome   allele.Chain
	Phenome  Phenome
	Index    int
	Name     string
	Metadata map[string]float32
	Fitness  Fitness // nil until the evaluator sets it
}

// NewCreature builds a Creature around genome, deriving its display name
// deterministically from the packed genome hash.
func NewCreature(genome allele.Chain, index int, arch emu.Arch) Creature {
	return Creature{
		Genome:   genome,
		Phenome:  NewPhenome(),
		Index:    index,
		Name:     baptiseChain(genome, arch),
		Metadata: map[string]float32{},
	}
}

// Clone deep-copies c's Phenome and Metadata so that a fanout consumer (the
// logger) can observe a creature without aliasing mutable state the primary
// pipeline path still owns.
func (c Creature) Clone() Creature {
	cp := c
	cp.Phenome = c.Phenome.Clone()
	cp.Metadata = make(map[string]float32, len(c.Metadata))
	for k, v := range c.Metadata {
		cp.Metadata[k] = v
	}
	cp.Fitness = append(Fitness(nil), c.Fitness...)
	return cp
}

// HasHatched holds when at least one of the creature's Pods is non-None.
func (c Creature) HasHatched() bool { return c.Phenome.HasHatched() }

// Generation returns the creature's genome generation.
func (c Creature) Generation() int { return c.Genome.Generation }

// PoseProblem installs input as an (initially unsolved) problem.
func (c *Creature) PoseProblem(input Input) { c.Phenome.Pose(input) }

// InheritProblems resets c's phenome to parent's posed inputs, each
// unhatched -- used right after crossover produces an offspring.
func (c *Creature) InheritProblems(parent Creature) {
	c.Phenome = InheritProblems(parent.Phenome)
}

// baptiseChain derives a pronounceable display name from the packed genome
// hash. Per spec.md's design notes: a display convenience, never an
// identity key in correctness-critical code (collisions are possible).
// Grounded on original_source/src/gen/phenotype.rs's baptise_chain.
func baptiseChain(c allele.Chain, arch emu.Arch) string {
	const syllables = 8
	packed := allele.Pack(c, nil, arch)

	h := fnv.New64a()
	_, _ = h.Write(packed)
	hash := h.Sum64()

	consonants := []byte("bcdfghjklmnvwxzy")
	vowels := []byte("aeiou")

	hbytes := make([]byte, 8)
	for i := range hbytes {
		hbytes[i] = byte(hash >> (8 * uint(i)))
	}

	letters := make([]byte, 0, syllables*3+syllables/2)
	for i := 0; i < syllables; i++ {
		b := hbytes[i]
		letters = append(letters,
			consonants[int(b)%len(consonants)],
			vowels[int(b)%len(vowels)],
			consonants[int(b)%len(consonants)],
		)
		if i%2 == 1 && i < syllables-1 {
			letters = append(letters, '-')
		}
	}
	return string(letters)
}
