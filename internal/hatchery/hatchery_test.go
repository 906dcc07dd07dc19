package hatchery

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/emu"
	"github.com/rop-evo/roper/internal/phenome"
)

func testImage() emu.MemoryImage {
	return emu.MemoryImage{
		Arch: emu.ArchX86,
		Mode: emu.ModeX86Bits64,
		Segments: []emu.Segment{
			{Addr: 0x1000, Size: 0x1000, Executable: true},
		},
	}
}

func gadgetCreature(index int) phenome.Creature {
	genome := allele.Chain{Alleles: []allele.Allele{
		allele.NewGadgetAllele(allele.Gadget{Entry: 0x1100}),
		allele.NewGadgetAllele(allele.Gadget{Entry: 0x1200}),
	}}
	c := phenome.NewCreature(genome, index, emu.ArchX86)
	c.PoseProblem(phenome.Input{1, 2})
	return c
}

func TestSpawnHatchesEveryCreature(t *testing.T) {
	image := testImage()
	cfg := Config{NumEngines: 2, ChannelSize: 4, Image: image, Arch: image.Arch, Mode: image.Mode}
	in := make(chan phenome.Creature, 4)
	_, out := Spawn(cfg, func() (emu.Engine, error) { return emu.NewTestEngine(), nil }, in)

	for i := 0; i < 4; i++ {
		in <- gadgetCreature(i)
	}
	close(in)

	seen := map[int]bool{}
	for i := 0; i < 4; i++ {
		select {
		case c := <-out:
			assert.True(t, c.HasHatched())
			seen[c.Index] = true
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for hatched creature")
		}
	}
	assert.Len(t, seen, 4)
}

// TestHasHatchedShortCircuit is spec scenario S5: a batch of already-hatched
// creatures passes through without consuming an emulator slot, observable
// here via a spy Engine that counts its Start calls (hatching only happens
// inside a worker, so a short-circuited creature never touches any engine's
// Start method).
func TestHasHatchedShortCircuit(t *testing.T) {
	image := testImage()
	cfg := Config{NumEngines: 2, ChannelSize: 1, Image: image, Arch: image.Arch, Mode: image.Mode}

	var starts int
	in := make(chan phenome.Creature, 1)
	_, out := Spawn(cfg, func() (emu.Engine, error) { return &countingEngine{TestEngine: emu.NewTestEngine(), starts: &starts}, nil }, in)

	already := gadgetCreature(0)
	already.Phenome.Install(phenome.Input{1, 2}, phenome.Pod{})
	require.True(t, already.HasHatched())

	const n = 50
	go func() {
		for i := 0; i < n; i++ {
			in <- already
		}
		close(in)
	}()

	count := 0
	for range out {
		count++
	}
	assert.Equal(t, n, count)
	assert.Equal(t, 0, starts, "has-hatched creatures must never reach an engine")
}

type countingEngine struct {
	*emu.TestEngine
	starts *int
}

func (c *countingEngine) Start(entry uint64, maxInstructions int) (emu.StopReason, error) {
	*c.starts++
	return c.TestEngine.Start(entry, maxInstructions)
}
