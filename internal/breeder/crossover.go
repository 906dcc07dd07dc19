// Package breeder implements the tournament-with-Pareto-and-speciation
// selector and homologous crossover of spec.md section 4.5. Grounded on
// original_source/src/evo/selector.rs and
// original_source/src/evo/crossover.rs.
package breeder

import (
	"math/bits"
	"math/rand"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/emu"
	"github.com/rop-evo/roper/internal/phenome"
)

// MaskOp selects the bit-combining strategy used to derive a recombination
// mask (and, separately, a child inheritance mask) from two parents' xbits.
type MaskOp int

const (
	MaskXor MaskOp = iota
	MaskNand
	MaskAnd
	MaskOr
	MaskOnePoint
	MaskUniform
)

// ParseMaskOp maps an INI [Mutation] mask_combiner/mask_inheritance value to
// a MaskOp, defaulting to MaskAnd for an unrecognized string.
func ParseMaskOp(s string) MaskOp {
	switch s {
	case "xor":
		return MaskXor
	case "nand":
		return MaskNand
	case "or":
		return MaskOr
	case "one-point", "onept":
		return MaskOnePoint
	case "uniform":
		return MaskUniform
	default:
		return MaskAnd
	}
}

func combineXbits(m, p uint64, op MaskOp, rng *rand.Rand) uint64 {
	switch op {
	case MaskXor:
		return m ^ p
	case MaskNand:
		return ^(m & p)
	case MaskOr:
		return m | p
	case MaskOnePoint:
		return onePointBits(m, p, rng)
	case MaskUniform:
		return uniformBits(m, p, rng)
	default:
		return m & p
	}
}

// onePointBits performs one-point crossover between a and b treated as
// 64-bit bitvectors, at a uniformly random split point.
func onePointBits(a, b uint64, rng *rand.Rand) uint64 {
	i := uint(rng.Uint64() % 64)
	mask := (^uint64(0) >> i) << i
	if rng.Intn(2) == 1 {
		mask ^= ^uint64(0)
	}
	return (mask & a) | (^mask & b)
}

// uniformBits performs uniform crossover between a and b, one random mask
// bit per position.
func uniformBits(a, b uint64, rng *rand.Rand) uint64 {
	mask := rng.Uint64()
	return (mask & a) | (^mask & b)
}

// randomBitFlip flips one random bit of u with probability rate.
func randomBitFlip(u uint64, rate float64, rng *rand.Rand) uint64 {
	if rng.Float64() < rate {
		return u ^ (1 << uint(rng.Uint64()%64))
	}
	return u
}

// xbitsSites returns the crossover sites: bit positions in [0, bound) whose
// xbits polarity matches wantPolarity, sampled down to a ⌈len·degree⌉-sized
// subset.
func xbitsSites(xbits uint64, bound int, degree float64, wantPolarity bool, rng *rand.Rand) []int {
	var potential []int
	for i := 0; i < bound; i++ {
		bit := (xbits>>uint(i))&1 != 0
		if bit == wantPolarity {
			potential = append(potential, i)
		}
	}
	if len(potential) == 0 {
		return nil
	}
	num := int(float64(len(potential))*degree + 0.999999)
	if num > len(potential) {
		num = len(potential)
	}
	if num <= 0 {
		return nil
	}
	rng.Shuffle(len(potential), func(i, j int) { potential[i], potential[j] = potential[j], potential[i] })
	sites := append([]int(nil), potential[:num]...)
	return sites
}

// CrossoverConfig bundles the [Mutation] knobs homologous crossover needs.
type CrossoverConfig struct {
	PointwiseMutationRate float64
	CrossoverDegree       float64
	CrossoverMaskMutRate  float64
	MaskCombiner          MaskOp
	MaskInheritance       MaskOp
	XbitPolarity          bool
	Image                 emu.MemoryImage
	Arch                  emu.Arch
}

// HomologousCrossover mates mother and father, producing exactly two
// offspring with a non-None entry point, re-drawing mutated sites whenever a
// candidate offspring would otherwise be rejected. Each offspring inherits
// the father's posed Input keys, unhatched. Grounded on
// original_source/src/evo/crossover.rs's homologous_crossover.
func HomologousCrossover(cfg CrossoverConfig, mother, father phenome.Creature, rng *rand.Rand) [2]phenome.Creature {
	bound := mother.Genome.Len()
	if father.Genome.Len() < bound {
		bound = father.Genome.Len()
	}

	xbits := combineXbits(mother.Genome.Xbits, father.Genome.Xbits, cfg.MaskCombiner, rng)
	childXbits := combineXbits(mother.Genome.Xbits, father.Genome.Xbits, cfg.MaskInheritance, rng)
	sites := xbitsSites(xbits, bound, cfg.CrossoverDegree, cfg.XbitPolarity, rng)

	parents := [2]phenome.Creature{mother, father}
	var offspring []phenome.Creature
	i := 0
	for len(offspring) < 2 {
		p0 := parents[i%2]
		p1 := parents[(i+1)%2]
		i++

		egg := append([]allele.Allele(nil), p0.Genome.Alleles...)
		sem := p1.Genome.Alleles
		for _, site := range sites {
			codon := sem[site]
			if rng.Float64() < cfg.PointwiseMutationRate {
				delta := int64(rng.Intn(33) - 16)
				codon = codon.Add(delta, cfg.Image)
			}
			egg[site] = codon
		}

		childGen := p0.Genome.Generation
		if p1.Genome.Generation > childGen {
			childGen = p1.Genome.Generation
		}
		childGen++

		zygote := allele.Chain{
			Alleles:    egg,
			Xbits:      randomBitFlip(childXbits, cfg.CrossoverMaskMutRate, rng),
			Generation: childGen,
		}
		if !zygote.HasEntry() {
			continue
		}

		child := phenome.NewCreature(zygote, 0, cfg.Arch)
		child.InheritProblems(father)
		child.Metadata["parent0"] = float32(mother.Index)
		child.Metadata["parent1"] = float32(father.Index)
		offspring = append(offspring, child)
	}

	return [2]phenome.Creature{offspring[0], offspring[1]}
}

// popcompat returns the xbits compatibility key used by speciation pruning:
// lower is more compatible, per spec.md section 4.5 step 2.
func popcompat(reference, candidate uint64) int {
	return 64 - bits.OnesCount64(reference&candidate)
}
