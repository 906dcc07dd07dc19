package hatchery

import (
	"github.com/rop-evo/roper/internal/allele"
	"github.com/rop-evo/roper/internal/config"
	"github.com/rop-evo/roper/internal/emu"
	"github.com/rop-evo/roper/internal/metrics"
	"github.com/rop-evo/roper/internal/phenome"
	"go.uber.org/multierr"
)

// runWorker is one carousel slot: it owns a thread-local emulator for its
// entire lifetime and serialises runs through it, since the emulator is not
// shareable across goroutines (spec.md section 5).
func runWorker(cfg Config, newEngine EngineFactory, jobs <-chan phenome.Creature, out chan<- phenome.Creature) {
	engine, err := newEngine()
	if err != nil {
		config.ErrorLog("hatchery: failed to construct engine: " + err.Error())
		for creature := range jobs {
			out <- creature
		}
		return
	}
	if err := engine.Construct(cfg.Arch, cfg.Mode, cfg.Image); err != nil {
		config.ErrorLog("hatchery: engine.Construct failed: " + err.Error())
		for creature := range jobs {
			out <- creature
		}
		return
	}

	for creature := range jobs {
		hatchCases(&creature, engine, cfg.Arch, cfg.InstructionBudget)
		out <- creature
	}
}

// hatchCases performs one emulator run per posed input key in the
// creature's phenome and installs the resulting Pod, mutating creature in
// place. Grounded on original_source/src/emu/hatchery.rs's hatch_cases.
func hatchCases(creature *phenome.Creature, engine emu.Engine, arch emu.Arch, budget int) {
	for _, input := range creature.Phenome.Inputs() {
		pod := hatch(creature.Genome, input, engine, arch, budget)
		creature.Phenome.Install(input, pod)
		metrics.HatchesTotal.Inc()
	}
}

// hatch performs a single emulator run of chain against input and returns
// the observed Pod. Grounded on original_source/src/emu/hatchery.rs's hatch.
// Every emulator run is expected to terminate (normally or with a fault)
// within the instruction budget; no single run may abort the pipeline
// (spec.md section 4.3 "Failure semantics").
func hatch(chain allele.Chain, input phenome.Input, engine emu.Engine, arch emu.Arch, budget int) phenome.Pod {
	entry, err := chain.Entry()
	if err != nil {
		// A missing entry point should never reach the hatchery -- the
		// seeder and breeder both reject chains with no entry -- but a
		// defensive empty Pod keeps this run from taking down the worker.
		return phenome.NewPod(nil, nil, nil, nil)
	}

	payload := allele.Pack(chain, []uint64(input), arch)
	stackAddr, stackSize, err := engine.FindStack()
	if err != nil {
		config.ErrorLog("hatchery: FindStack failed: " + err.Error())
		return phenome.NewPod(nil, nil, nil, nil)
	}
	if len(payload) > int(stackSize)/2 {
		payload = payload[:stackSize/2]
	}
	stackEntry := stackAddr + stackSize/2

	if err := engine.RestoreState(); err != nil {
		config.ErrorLog("hatchery: RestoreState failed: " + err.Error())
		return phenome.NewPod(nil, nil, nil, nil)
	}
	if err := engine.MemWrite(stackEntry, payload); err != nil {
		config.ErrorLog("hatchery: MemWrite failed: " + err.Error())
		return phenome.NewPod(nil, nil, nil, nil)
	}
	if err := engine.SetSP(stackEntry + uint64(emu.AddrWidth(arch))); err != nil {
		config.ErrorLog("hatchery: SetSP failed: " + err.Error())
		return phenome.NewPod(nil, nil, nil, nil)
	}

	var visited []phenome.VisitRecord
	var writeLog []phenome.WriteRecord
	var retLog []uint64

	writeHandle, writeErr := engine.HookWritableMem(func(pc, dest, value uint64, size int) {
		writeLog = append(writeLog, phenome.WriteRecord{PC: pc, Dest: dest, Value: value, Size: size})
	})
	execHandle, execErr := engine.HookExec(func(pc uint64, mode emu.Mode, instSize int, regs []uint64) {
		visited = append(visited, phenome.VisitRecord{PC: pc, Mode: mode, InstSize: instSize, Regs: regs})
	})
	retHandle, retErr := engine.HookReturns(func(pc uint64) {
		retLog = append(retLog, pc)
	})
	jmpHandle, jmpErr := engine.HookIndirectJumps(func(pc uint64) {
		// Indirect jumps are observed but, per spec.md section 3, do not
		// contribute to the Pod's fields beyond what visited/retLog already
		// capture; a future fitness component may consume them directly
		// from hooks installed by a caller with a different Pod shape.
	})

	// Runs are permitted to fault, time out, or return normally -- the stop
	// reason itself is not part of the Pod and is deliberately ignored.
	_, _ = engine.Start(entry, budget)

	var removeErr error
	if writeErr == nil {
		removeErr = multierr.Append(removeErr, engine.RemoveHook(writeHandle))
	}
	if execErr == nil {
		removeErr = multierr.Append(removeErr, engine.RemoveHook(execHandle))
	}
	if retErr == nil {
		removeErr = multierr.Append(removeErr, engine.RemoveHook(retHandle))
	}
	if jmpErr == nil {
		removeErr = multierr.Append(removeErr, engine.RemoveHook(jmpHandle))
	}
	if removeErr != nil {
		config.WarnLog("hatchery: hook removal failures: " + removeErr.Error())
	}

	registers, err := engine.ReadRegisters()
	if err != nil {
		config.ErrorLog("hatchery: ReadRegisters failed: " + err.Error())
	}

	return phenome.NewPod(registers, visited, writeLog, retLog)
}
