// Package logger implements the pipeline's terminal observation stage: a
// rolling window of recently-evaluated creatures, periodic descriptive
// statistics, periodic .npy dumps, and an on-demand genealogy print
// (spec.md section 4.6). Grounded on
// original_source/src/log/logger.rs (circular buffer behind a read/write
// lock, ingest-thread/stats-thread split, analysis trigger every
// log_freq arrivals).
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sbinet/npyio"
	"github.com/xlab/treeprint"
	"gonum.org/v1/gonum/stat"

	"github.com/rop-evo/roper/internal/config"
	"github.com/rop-evo/roper/internal/phenome"
)

// Config configures the logger's window size, analysis cadence, and the
// directory periodic .npy dumps are written under.
type Config struct {
	WindowSize   int
	LogFreq      int
	LogDirectory string
}

// Logger owns the rolling window: a single-writer/multi-reader lock guards
// it, with the ingest goroutine holding the write side and the stats
// goroutine holding the read side while it computes, per spec.md section 5.
type Logger struct {
	mu     sync.RWMutex
	buf    []phenome.Creature
	cap    int
	cursor int

	maxFitnessEver float32
}

// NewLogger allocates an empty rolling window of the given capacity.
func NewLogger(capacity int) *Logger {
	return &Logger{buf: make([]phenome.Creature, 0, capacity), cap: capacity}
}

// push appends creature, overwriting the oldest entry once the window is at
// capacity (a true circular buffer, matching original_source's CircBuf).
func (l *Logger) push(creature phenome.Creature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.buf) < l.cap {
		l.buf = append(l.buf, creature)
		return
	}
	l.buf[l.cursor] = creature
	l.cursor = (l.cursor + 1) % l.cap
}

// snapshot returns a shallow copy of the window's current contents, safe to
// range over without holding the lock for the duration of an analysis pass.
func (l *Logger) snapshot() []phenome.Creature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]phenome.Creature, len(l.buf))
	copy(out, l.buf)
	return out
}

// Run drives the logger: every arrival is pushed into the window by the
// calling (ingest) goroutine; every LogFreq arrivals, a separate stats
// goroutine computes and prints statistics and dumps the window to a .npy
// file. Returns once in closes and the stats goroutine has finished.
func Run(cfg Config, in <-chan phenome.Creature) {
	logger := NewLogger(cfg.WindowSize)
	freq := cfg.LogFreq
	if freq <= 0 {
		freq = 1
	}

	ticks := make(chan struct{}, 1)
	statsDone := make(chan struct{})
	go func() {
		defer close(statsDone)
		for range ticks {
			logger.analyse()
			if cfg.LogDirectory != "" {
				logger.dump(cfg.LogDirectory)
			}
		}
	}()

	var count uint64
	for creature := range in {
		logger.push(creature)
		if count%uint64(freq) == 0 {
			ticks <- struct{}{}
		}
		count++
	}
	close(ticks)
	<-statsDone
}

// analyse computes and prints the window's summary statistics: max
// generation, mean generation, mean fitness (mean-of-means), the maximum
// fitness ever observed across the logger's lifetime, and mean genome
// length. Grounded on original_source's stats thread; descriptive-statistics
// arithmetic delegated to gonum.org/v1/gonum/stat rather than hand-summed,
// since this corpus already depends on gonum for exactly this purpose
// (the teacher's own neat/utils package computes comparable summaries).
func (l *Logger) analyse() {
	window := l.snapshot()
	if len(window) == 0 {
		return
	}

	fitnesses := make([]float64, 0, len(window))
	generations := make([]float64, 0, len(window))
	lengths := make([]float64, 0, len(window))
	var maxGen int
	best := window[0]
	bestFit := float64(best.Fitness.Mean())

	for _, creature := range window {
		fit := float64(creature.Fitness.Mean())
		fitnesses = append(fitnesses, fit)
		generations = append(generations, float64(creature.Generation()))
		lengths = append(lengths, float64(creature.Genome.Len()))
		if creature.Generation() > maxGen {
			maxGen = creature.Generation()
		}
		if fit > bestFit {
			bestFit = fit
			best = creature
		}
		if float32(fit) > l.maxFitnessEver {
			l.maxFitnessEver = float32(fit)
			config.InfoLog(fmt.Sprintf("[LOGGER] new best fitness %0.5f: %s", fit, creature.Name))
		}
	}

	meanFitness := stat.Mean(fitnesses, nil)
	meanGen := stat.Mean(generations, nil)
	meanLen := stat.Mean(lengths, nil)

	config.InfoLog(fmt.Sprintf(
		"[LOGGER] max gen: %d, mean gen: %.4f, mean fitness: %.5f, max fitness: %.5f, mean length: %.2f",
		maxGen, meanGen, meanFitness, l.maxFitnessEver, meanLen,
	))
	config.InfoLog("[LOGGER] genealogy of best:\n" + Genealogy(best))
}

// dump writes the window's per-creature [generation, fitness_mean, length]
// triples, flattened into one 1-D float64 array, to dir/window.npy via
// github.com/sbinet/npyio, overwriting the previous dump.
func (l *Logger) dump(dir string) {
	window := l.snapshot()
	if len(window) == 0 {
		return
	}

	rows := make([]float64, 0, len(window)*3)
	for _, creature := range window {
		rows = append(rows, float64(creature.Generation()), float64(creature.Fitness.Mean()), float64(creature.Genome.Len()))
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		config.WarnLog("logger: mkdir failed: " + err.Error())
		return
	}
	path := filepath.Join(dir, "window.npy")
	f, err := os.Create(path)
	if err != nil {
		config.WarnLog("logger: npy create failed: " + err.Error())
		return
	}
	defer f.Close()

	if err := npyio.Write(f, rows); err != nil {
		config.WarnLog("logger: npy write failed: " + err.Error())
	}
}

// Genealogy renders a two-level parent/offspring tree for creature: itself
// at the root, its two most recent crossover parents (recorded in its
// Metadata side-table under "parent0"/"parent1" by
// internal/breeder.HomologousCrossover) as children, via
// github.com/xlab/treeprint. Called once per analyse() tick for the
// window's best creature; purely a display convenience, never used for
// selection.
func Genealogy(creature phenome.Creature) string {
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("%s (gen %d)", creature.Name, creature.Generation()))

	p0, hasP0 := creature.Metadata["parent0"]
	p1, hasP1 := creature.Metadata["parent1"]
	if !hasP0 && !hasP1 {
		tree.AddNode("seed generation: no recorded parents")
		return tree.String()
	}
	if hasP0 {
		tree.AddBranch(fmt.Sprintf("parent0: creature #%d", int(p0)))
	}
	if hasP1 {
		tree.AddBranch(fmt.Sprintf("parent1: creature #%d", int(p1)))
	}
	return tree.String()
}
