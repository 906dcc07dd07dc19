// Package evaluator implements the pipeline stage that turns observed
// phenotypes into a multi-objective Fitness vector (spec.md section 4.4).
// Grounded on original_source/src/gen/phenotype.rs's ff_mean_uniq_retcount,
// ff_mean_retcount, and ff_mean_writecount, plus
// yaricom-goNEAT/examples/pole2/cart2pole_parallel.go's worker-pool shape,
// here expressed with golang.org/x/sync/errgroup rather than a hand-rolled
// jobs/results/WaitGroup trio, since the per-creature work here is a pure
// function with no partial-failure case to report back through a results
// channel.
package evaluator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/rop-evo/roper/internal/phenome"
)

// Config configures the evaluator's concurrency.
type Config struct {
	// Workers bounds how many creatures are scored concurrently. 0 or 1
	// scores creatures one at a time on a single goroutine.
	Workers int
}

// Run reads creatures from in, scores each one's Fitness in place, and
// forwards it on the returned channel. Closes the output once in closes.
func Run(cfg Config, in <-chan phenome.Creature) <-chan phenome.Creature {
	out := make(chan phenome.Creature, cap(in))
	go func() {
		defer close(out)

		if cfg.Workers <= 1 {
			for creature := range in {
				creature.Fitness = Score(creature)
				out <- creature
			}
			return
		}

		sem := make(chan struct{}, cfg.Workers)
		g, _ := errgroup.WithContext(context.Background())
		for creature := range in {
			creature := creature
			sem <- struct{}{}
			g.Go(func() error {
				defer func() { <-sem }()
				creature.Fitness = Score(creature)
				out <- creature
				return nil
			})
		}
		_ = g.Wait()
	}()
	return out
}

// Score computes the reference fitness vector for a creature: pod-wise
// averages, across every input the creature has been posed with, of (1) the
// count of unique return addresses, (2) the total return-instruction count,
// and (3) the total writable-memory write count. Pure with respect to the
// creature's already-hatched Phenome -- safe to call concurrently for
// distinct creatures.
func Score(c phenome.Creature) phenome.Fitness {
	pods := c.Phenome.Pods()
	if len(pods) == 0 {
		return phenome.Fitness{0, 0, 0}
	}

	var uniqueRets, totalRets, totalWrites float32
	for _, pod := range pods {
		seen := make(map[uint64]struct{}, len(pod.RetLog))
		for _, addr := range pod.RetLog {
			seen[addr] = struct{}{}
		}
		uniqueRets += float32(len(seen))
		totalRets += float32(len(pod.RetLog))
		totalWrites += float32(len(pod.WriteLog))
	}

	n := float32(len(pods))
	return phenome.Fitness{uniqueRets / n, totalRets / n, totalWrites / n}
}
