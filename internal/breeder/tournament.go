package breeder

import (
	"math/rand"
	"sort"

	"github.com/rop-evo/roper/internal/metrics"
	"github.com/rop-evo/roper/internal/phenome"
)

// TournamentConfig bundles the [Selection] knobs plus the crossover
// configuration a tournament needs to produce its two offspring.
type TournamentConfig struct {
	TournamentSize      int
	MateSelectionFactor float64
	Crossover           CrossoverConfig
}

// Tournament runs one selection-and-reproduction round over window,
// in place: it samples ⌊T·F⌋ combatants, speciation-prunes to T, filters to
// the Pareto front, picks parents and a doomed pair, crosses the parents,
// swap-removes the doomed pair (higher index first), and returns the two
// offspring. window is left with len(window)-2 survivors; the caller is
// responsible for draining those onto its output channel (spec.md section
// 4.5 step 6). Grounded on original_source/src/evo/selector.rs's tournament.
func Tournament(cfg TournamentConfig, window *[]phenome.Creature, rng *rand.Rand) [2]phenome.Creature {
	win := *window
	sampleSize := int(float64(cfg.TournamentSize) * cfg.MateSelectionFactor)
	indices := sampleIndices(rng, len(win), sampleSize)

	reference := win[0].Genome.Xbits
	sort.SliceStable(indices, func(i, j int) bool {
		return popcompat(reference, win[indices[i]].Genome.Xbits) < popcompat(reference, win[indices[j]].Genome.Xbits)
	})
	if len(indices) > cfg.TournamentSize {
		indices = indices[:cfg.TournamentSize]
	}

	sort.SliceStable(indices, func(i, j int) bool {
		return win[indices[i]].Fitness.Mean() > win[indices[j]].Fitness.Mean()
	})

	front := paretoFront(win, indices)
	rng.Shuffle(len(front), func(i, j int) { front[i], front[j] = front[j], front[i] })

	p0 := front[0]
	var p1 int
	if len(front) >= 2 {
		p1 = front[1]
	} else {
		// highest-fitness survivor outside the single-member front
		for _, idx := range indices {
			if idx != p0 {
				p1 = idx
				break
			}
		}
	}

	deadIdx := len(indices) - 1
	for deadIdx > 0 && (indices[deadIdx] == p0 || indices[deadIdx] == p1) {
		deadIdx--
	}
	d0 := indices[deadIdx]
	deadIdx--
	for deadIdx > 0 && (indices[deadIdx] == p0 || indices[deadIdx] == p1) {
		deadIdx--
	}
	d1 := indices[deadIdx]

	mother, father := win[p0], win[p1]
	offspring := HomologousCrossover(cfg.Crossover, mother, father, rng)
	metrics.TournamentsTotal.Inc()
	metrics.CrossoversTotal.Inc()

	first, second := d0, d1
	if first < second {
		first, second = second, first
	}
	win = swapRemove(win, first)
	win = swapRemove(win, second)
	*window = win

	return offspring
}

// sampleIndices draws n distinct indices uniformly from [0, size).
func sampleIndices(rng *rand.Rand, size, n int) []int {
	if n > size {
		n = size
	}
	perm := rng.Perm(size)
	return append([]int(nil), perm[:n]...)
}

// paretoFront returns the subset of indices (drawn from candidates) not
// strictly dominated by any other candidate, per spec.md section 4.5 step 3.
func paretoFront(win []phenome.Creature, candidates []int) []int {
	var front []int
	for _, i := range candidates {
		dominated := false
		for _, j := range candidates {
			if i == j {
				continue
			}
			if win[i].Fitness.StrictlyDominatedBy(win[j].Fitness) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, i)
		}
	}
	return front
}

// swapRemove removes the element at i by swapping it with the last element
// and truncating, matching original_source's Vec::swap_remove.
func swapRemove(s []phenome.Creature, i int) []phenome.Creature {
	last := len(s) - 1
	s[i] = s[last]
	return s[:last]
}
