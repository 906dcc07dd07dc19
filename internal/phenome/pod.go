// Package phenome implements the phenotype/observation data model: Pod,
// Phenome, Fitness, and the Creature that carries a genome and its
// phenotype together through the pipeline. Grounded on
// original_source/src/gen/phenotype.rs.
package phenome

import "github.com/rop-evo/roper/internal/emu"

// WriteRecord is one observed write to writable memory during a hatch run.
type WriteRecord struct {
	PC      uint64
	Dest    uint64
	Value   uint64
	Size    int
	ordinal int // execution order, used only by collapseWriteLog
}

// VisitRecord is one observed instruction execution during a hatch run.
type VisitRecord struct {
	PC       uint64
	Mode     emu.Mode
	InstSize int
	Regs     []uint64
}

// Pod is the phenotype observation for one input: final register file, the
// ordered instructions visited, the collapsed write log, and the ordered
// list of return-instruction addresses.
type Pod struct {
	Registers []uint64
	Visited   []VisitRecord
	WriteLog  []WriteRecord
	RetLog    []uint64
}

// NewPod builds a Pod, collapsing rawWriteLog per spec.md section 3: at most
// one record per destination address, preserving the relative execution
// order of the surviving write.
func NewPod(registers []uint64, visited []VisitRecord, rawWriteLog []WriteRecord, retLog []uint64) Pod {
	return Pod{
		Registers: registers,
		Visited:   visited,
		WriteLog:  collapseWriteLog(rawWriteLog),
		RetLog:    retLog,
	}
}

// collapseWriteLog keeps only the last write to each destination address,
// emitting survivors in original execution order. Grounded on
// original_source/src/gen/phenotype.rs's collapse_writelog.
func collapseWriteLog(raw []WriteRecord) []WriteRecord {
	latest := make(map[uint64]WriteRecord, len(raw))
	for i, wr := range raw {
		wr.ordinal = i
		latest[wr.Dest] = wr
	}
	out := make([]WriteRecord, 0, len(latest))
	for _, wr := range latest {
		out = append(out, wr)
	}
	// insertion sort by ordinal: len(out) is small (bounded by distinct
	// destination addresses touched in a single 1024-instruction run)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].ordinal > out[j].ordinal; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	for i := range out {
		out[i].ordinal = 0
	}
	return out
}
