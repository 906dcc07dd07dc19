package phenome

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/emu"
)

func TestBaptiseChainIsDeterministic(t *testing.T) {
	genome := allele.Chain{Alleles: []allele.Allele{allele.NewGadgetAllele(allele.Gadget{Entry: 0xdead})}}
	a := NewCreature(genome, 0, emu.ArchX86)
	b := NewCreature(genome, 1, emu.ArchX86)
	assert.Equal(t, a.Name, b.Name, "name is a pure function of the packed genome, not the index")
}

func TestBaptiseChainDiffersAcrossGenomes(t *testing.T) {
	g1 := allele.Chain{Alleles: []allele.Allele{allele.NewGadgetAllele(allele.Gadget{Entry: 0xdead})}}
	g2 := allele.Chain{Alleles: []allele.Allele{allele.NewGadgetAllele(allele.Gadget{Entry: 0xbeef})}}
	a := NewCreature(g1, 0, emu.ArchX86)
	b := NewCreature(g2, 0, emu.ArchX86)
	assert.NotEqual(t, a.Name, b.Name)
}

func TestCreatureCloneDeepCopies(t *testing.T) {
	genome := allele.Chain{Alleles: []allele.Allele{allele.NewGadgetAllele(allele.Gadget{Entry: 0x1})}}
	c := NewCreature(genome, 0, emu.ArchX86)
	c.Metadata["k"] = 1
	in := Input{1}
	c.PoseProblem(in)
	c.Phenome.Install(in, Pod{Registers: []uint64{1}})
	c.Fitness = Fitness{1, 2}

	clone := c.Clone()
	clone.Metadata["k"] = 2
	clone.Phenome.Install(in, Pod{Registers: []uint64{9}})
	clone.Fitness[0] = 9

	assert.Equal(t, float32(1), c.Metadata["k"])
	pod, _ := c.Phenome.Pod(in)
	assert.Equal(t, uint64(1), pod.Registers[0])
	assert.Equal(t, float32(1), c.Fitness[0])
}

func TestCreatureHasHatched(t *testing.T) {
	genome := allele.Chain{Alleles: []allele.Allele{allele.NewGadgetAllele(allele.Gadget{Entry: 0x1})}}
	c := NewCreature(genome, 0, emu.ArchX86)
	in := Input{1}
	c.PoseProblem(in)
	assert.False(t, c.HasHatched())
	c.Phenome.Install(in, Pod{})
	assert.True(t, c.HasHatched())
}
