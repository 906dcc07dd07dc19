// Package pipeline implements the pipeline connector of spec.md section
// 4.1: a node that fans a stream of creatures out to N-1 observational
// outputs and then to one primary output, terminating the process on a
// primary-channel send failure. Grounded on
// original_source/src/evo/evolver.rs's pipeline function.
package pipeline

import (
	"fmt"
	"os"

	"github.com/rop-evo/roper/internal/config"
	"github.com/rop-evo/roper/internal/metrics"
	"github.com/rop-evo/roper/internal/phenome"
)

// FatalExitCode is the process exit code used when the primary output
// channel's send fails, per spec.md section 7.
const FatalExitCode = 99

// exiter abstracts os.Exit so tests can observe primary-channel failures
// without actually killing the test binary.
var exiter = os.Exit

// Node owns one input channel and N output channels plus a label used in
// log lines. For every received item it sends clones to outputs[1:] and
// then the original to outputs[0]; a send failure on outputs[0] is fatal
// (pipeline integrity lost), a failure on a fanout output is logged but
// does not abort.
type Node struct {
	Label   string
	In      <-chan phenome.Creature
	Outputs []chan<- phenome.Creature
	// Limit causes the node to terminate the process (exit code 0) when an
	// item arrives after Limit items have been forwarded; that item is not
	// forwarded. 0 means run until In closes.
	Limit int

	warnf func(format string, args ...interface{})
}

// Run drives the node until In closes or Limit is reached. It is meant to
// be called in its own goroutine.
func (n *Node) Run() {
	warnf := n.warnf
	if warnf == nil {
		warnf = defaultWarnf
	}

	count := 0
	for creature := range n.In {
		if n.Limit > 0 && count >= n.Limit {
			warnf("[!] limit of %d on %q pipeline reached, concluding", n.Limit, n.Label)
			exiter(0)
			return
		}
		count++

		for i, out := range n.Outputs[1:] {
			if !trySend(out, creature.Clone()) {
				metrics.PipelineObservationalFailuresTotal.Inc()
				warnf("[tx:%d] %s: fanout send failed", i+1, n.Label)
			}
		}

		if len(n.Outputs) > 0 {
			if !trySend(n.Outputs[0], creature) {
				metrics.PipelineIntegrityFailuresTotal.Inc()
				warnf("[tx:0] %s: primary send failed, pipeline integrity lost", n.Label)
				exiter(FatalExitCode)
				return
			}
		}
	}
}

// trySend performs a blocking send, recovering from a send-on-closed-channel
// panic and reporting it as a failure rather than crashing the worker.
func trySend(out chan<- phenome.Creature, creature phenome.Creature) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	out <- creature
	return true
}

func defaultWarnf(format string, args ...interface{}) {
	config.WarnLog(fmt.Sprintf(format, args...))
}
