package seeder

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// TestRunEmitsExactlyNumWanted is spec scenario S1: N=100, min_len=4,
// max_len=8 produces exactly 100 creatures, each within bounds.
func TestRunEmitsExactlyNumWanted(t *testing.T) {
	cfg := Config{
		NumWanted:         100,
		MinCreatureLength: 4,
		MaxCreatureLength: 8,
		InputSlotFreq:     0.2,
		Image:             testImage(),
	}
	problemSet := []phenome.Input{{1, 2}}

	out := Run(cfg, problemSet, rand.New(rand.NewSource(1)))

	count := 0
	for {
		select {
		case c, ok := <-out:
			if !ok {
				assert.Equal(t, 100, count)
				return
			}
			assert.GreaterOrEqual(t, c.Genome.Len(), 4)
			assert.Less(t, c.Genome.Len(), 8)
			assert.True(t, c.Genome.HasEntry())
			count++
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for seeded creatures")
		}
	}
}

func TestRunPosesEveryProblem(t *testing.T) {
	cfg := Config{NumWanted: 1, MinCreatureLength: 2, MaxCreatureLength: 3, Image: testImage()}
	problemSet := []phenome.Input{{1}, {2, 3}}

	out := Run(cfg, problemSet, rand.New(rand.NewSource(2)))
	creature := <-out
	assert.ElementsMatch(t, problemSet, creature.Phenome.Inputs())
	assert.False(t, creature.HasHatched())
}

// TestNewCreatureLengthOneNeverRejects: position 0 of a chain is never an
// InputSlot allele, so a chain of length exactly 1 always has a gadget entry
// on the very first draw regardless of InputSlotFreq.
func TestNewCreatureLengthOneNeverRejects(t *testing.T) {
	cfg := Config{MinCreatureLength: 1, MaxCreatureLength: 1, InputSlotFreq: 1.0, Image: testImage()}

	done := make(chan phenome.Creature, 1)
	go func() { done <- NewCreature(cfg, nil, 0, rand.New(rand.NewSource(3))) }()

	select {
	case c := <-done:
		require.Len(t, c.Genome.Alleles, 1)
		assert.True(t, c.Genome.HasEntry())
	case <-time.After(time.Second):
		t.Fatal("NewCreature did not terminate for a length-1 chain")
	}
}
