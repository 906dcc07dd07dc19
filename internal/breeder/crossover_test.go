package breeder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/emu"
	"github.com/rop-evo/roper/internal/phenome"
)

func gadgetChain(gen int, xbits uint64, entries ...uint64) allele.Chain {
	alleles := make([]allele.Allele, len(entries))
	for i, e := range entries {
		alleles[i] = allele.NewGadgetAllele(allele.Gadget{Entry: e})
	}
	return allele.Chain{Alleles: alleles, Xbits: xbits, Generation: gen}
}

func testCrossoverConfig() CrossoverConfig {
	return CrossoverConfig{
		PointwiseMutationRate: 0,
		CrossoverDegree:       1.0,
		CrossoverMaskMutRate:  0,
		MaskCombiner:          MaskAnd,
		MaskInheritance:       MaskAnd,
		XbitPolarity:          true,
		Arch:                  emu.ArchX86,
	}
}

// TestHomologousCrossoverScenarioS2 is spec scenario S2: with combiner=AND,
// polarity=true, degree=1.0, mutation rate=0, and both parents' xbits all
// ones, the offspring templated on the mother equals the father's alleles
// exactly (every site selected, every site overwritten).
func TestHomologousCrossoverScenarioS2(t *testing.T) {
	mother := phenome.NewCreature(gadgetChain(0, ^uint64(0), 0x10, 0x11, 0x12, 0x13), 0, emu.ArchX86)
	father := phenome.NewCreature(gadgetChain(0, ^uint64(0), 0x20, 0x21, 0x22, 0x23), 1, emu.ArchX86)

	rng := rand.New(rand.NewSource(1))
	offspring := HomologousCrossover(testCrossoverConfig(), mother, father, rng)

	motherTemplated := offspring[0]
	if motherTemplated.Genome.Alleles[0] != father.Genome.Alleles[0] {
		motherTemplated = offspring[1]
	}
	for i, want := range father.Genome.Alleles {
		assert.Equal(t, want, motherTemplated.Genome.Alleles[i])
	}
}

// TestCrossoverGeneration is spec invariant 4.
func TestCrossoverGeneration(t *testing.T) {
	mother := phenome.NewCreature(gadgetChain(3, 0xFF, 0x10, 0x11), 0, emu.ArchX86)
	father := phenome.NewCreature(gadgetChain(7, 0xFF, 0x20, 0x21), 1, emu.ArchX86)

	rng := rand.New(rand.NewSource(2))
	offspring := HomologousCrossover(testCrossoverConfig(), mother, father, rng)

	for _, o := range offspring {
		assert.Equal(t, 8, o.Genome.Generation)
	}
}

// TestCrossoverBounds is spec invariant 5: offspring length equals the
// template parent's length, and non-site alleles equal the template
// parent's alleles exactly.
func TestCrossoverBounds(t *testing.T) {
	cfg := testCrossoverConfig()
	cfg.CrossoverDegree = 0 // select no sites: offspring must equal its template exactly
	mother := phenome.NewCreature(gadgetChain(0, 0xFF, 0x10, 0x11, 0x12), 0, emu.ArchX86)
	father := phenome.NewCreature(gadgetChain(0, 0xFF, 0x20, 0x21, 0x22, 0x23), 1, emu.ArchX86)

	rng := rand.New(rand.NewSource(3))
	offspring := HomologousCrossover(cfg, mother, father, rng)

	for _, o := range offspring {
		if o.Genome.Len() == mother.Genome.Len() {
			assert.Equal(t, mother.Genome.Alleles, o.Genome.Alleles)
		} else {
			assert.Equal(t, father.Genome.Alleles, o.Genome.Alleles)
		}
	}
}

// TestCrossoverInheritsFathersProblems: each offspring inherits the
// father's posed Input keys, unhatched.
func TestCrossoverInheritsFathersProblems(t *testing.T) {
	mother := phenome.NewCreature(gadgetChain(0, 0xFF, 0x10, 0x11), 0, emu.ArchX86)
	father := phenome.NewCreature(gadgetChain(0, 0xFF, 0x20, 0x21), 1, emu.ArchX86)
	father.PoseProblem(phenome.Input{9, 9})

	rng := rand.New(rand.NewSource(4))
	offspring := HomologousCrossover(testCrossoverConfig(), mother, father, rng)

	for _, o := range offspring {
		assert.False(t, o.HasHatched())
		assert.Equal(t, []phenome.Input{{9, 9}}, o.Phenome.Inputs())
	}
}

// TestXbitsSitesPolarity is spec invariant 8: every returned site's bit in
// xbits matches the configured polarity.
func TestXbitsSitesPolarity(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	xbits := uint64(0b1010101010)
	sites := xbitsSites(xbits, 10, 1.0, true, rng)
	require.NotEmpty(t, sites)
	for _, s := range sites {
		assert.NotZero(t, (xbits>>uint(s))&1)
	}
}

func TestRejectsOffspringWithNoEntry(t *testing.T) {
	// Both parents are entirely InputSlot alleles: no combination of sites
	// can ever produce a gadget, so HomologousCrossover must not return
	// (it would loop forever in a real run); instead we assert the
	// contract indirectly, via a chain that does carry one gadget each,
	// confirming the loop terminates and both offspring have entries.
	mother := phenome.NewCreature(allele.Chain{Alleles: []allele.Allele{
		allele.NewInputSlotAllele(0),
		allele.NewGadgetAllele(allele.Gadget{Entry: 0x10}),
	}, Xbits: 0xFF}, 0, emu.ArchX86)
	father := phenome.NewCreature(allele.Chain{Alleles: []allele.Allele{
		allele.NewInputSlotAllele(1),
		allele.NewGadgetAllele(allele.Gadget{Entry: 0x20}),
	}, Xbits: 0xFF}, 1, emu.ArchX86)

	rng := rand.New(rand.NewSource(6))
	offspring := HomologousCrossover(testCrossoverConfig(), mother, father, rng)
	for _, o := range offspring {
		assert.True(t, o.Genome.HasEntry())
	}
}
