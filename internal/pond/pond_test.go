package pond

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/phenome"
)

func drain(ch <-chan phenome.Creature, timeout time.Duration) []phenome.Creature {
	var got []phenome.Creature
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, c)
		case <-time.After(timeout):
			return got
		}
	}
}

func creature(index int, hatched bool) phenome.Creature {
	genome := allele.Chain{Alleles: []allele.Allele{allele.NewGadgetAllele(allele.Gadget{Entry: uint64(0x10 + index)})}}
	c := phenome.NewCreature(genome, index, 0)
	in := phenome.Input{1}
	c.PoseProblem(in)
	if hatched {
		c.Phenome.Install(in, phenome.Pod{})
	}
	return c
}

// TestDrainPondRoutesByHatchedStatus: once the reservoir exceeds WindowSize,
// hatched creatures are routed back to the breeder and unhatched ones go to
// the hatchery.
func TestDrainPondRoutesByHatchedStatus(t *testing.T) {
	cfg := Config{WindowSize: 2, Loops: 1}
	in := make(chan phenome.Creature, 3)
	in <- creature(0, true)
	in <- creature(1, false)
	in <- creature(2, true)
	close(in)

	toBreeder := make(chan phenome.Creature, 3)
	toHatchery := make(chan phenome.Creature, 3)

	drainPond(cfg, rand.New(rand.NewSource(1)), in, toBreeder, toHatchery)
	close(toBreeder)
	close(toHatchery)

	breederSide := drain(toBreeder, 100*time.Millisecond)
	hatcherySide := drain(toHatchery, 100*time.Millisecond)

	for _, c := range breederSide {
		assert.True(t, c.HasHatched())
	}
	for _, c := range hatcherySide {
		assert.False(t, c.HasHatched())
	}
	assert.Equal(t, 2, len(breederSide)+len(hatcherySide))
}

// TestDrainPondStopsAfterLoops confirms the reservoir cycles exactly Loops
// times then returns even though the input channel remains open.
func TestDrainPondStopsAfterLoops(t *testing.T) {
	cfg := Config{WindowSize: 1, Loops: 2}
	in := make(chan phenome.Creature)
	toBreeder := make(chan phenome.Creature, 10)
	toHatchery := make(chan phenome.Creature, 10)

	done := make(chan struct{})
	go func() {
		drainPond(cfg, rand.New(rand.NewSource(2)), in, toBreeder, toHatchery)
		close(done)
	}()

	// With WindowSize 1 the first creature fills the reservoir and each
	// later one triggers a drain, so Loops=2 consumes exactly 3 creatures.
	for i := 0; i < 3; i++ {
		in <- creature(i, true)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("drainPond did not stop after Loops cycles")
	}
}

func TestDrainPondBufferUnderThresholdNeverDrains(t *testing.T) {
	cfg := Config{WindowSize: 10}
	in := make(chan phenome.Creature, 1)
	in <- creature(0, true)
	close(in)

	toBreeder := make(chan phenome.Creature, 1)
	toHatchery := make(chan phenome.Creature, 1)
	drainPond(cfg, rand.New(rand.NewSource(3)), in, toBreeder, toHatchery)
	close(toBreeder)
	close(toHatchery)

	require.Empty(t, drain(toBreeder, 50*time.Millisecond))
	require.Empty(t, drain(toHatchery, 50*time.Millisecond))
}
