// Package allele implements the genome data model: the Allele/Gadget union
// and the Chain it is assembled into. Grounded on
// original_source/src/gen/genotype.rs (Allele, Gadget, Chain).
package allele

import (
	"fmt"

	"github.com/rop-evo/roper/internal/emu"
)

// Kind tags which variant an Allele holds.
type Kind int

const (
	// KindGadget is an executable address harvested from the target binary.
	KindGadget Kind = iota
	// KindInputSlot references one of the problem's input words.
	KindInputSlot
)

// MaxInputSlots bounds InputSlot's k to [0, maxInputSlots), per spec.md
// section 3 ("InputSlot(k) where k in [0, 16)").
const MaxInputSlots = 16

// Gadget is a GadgetRef allele: an executable address with mode, plus cached
// metadata. RetAddr and SpDelta analysis is stubbed upstream (spec.md
// section 9 (i)) -- every gadget is treated as a single-word pop.
type Gadget struct {
	Entry   uint64
	RetAddr uint64
	SpDelta int
	Mode    emu.Mode
}

// add shifts the gadget's entry by delta modulo the size of the segment
// containing it, per spec.md section 3's wraparound arithmetic mutation.
//
// TODO: once sp_delta/ret_addr analysis lands upstream, re-derive both
// fields for the shifted entry instead of carrying the parent's values
// forward unchanged.
func (g Gadget) add(delta int64, image emu.MemoryImage) Gadget {
	seg, ok := image.FindSegment(g.Entry)
	if !ok {
		return g
	}
	offset := int64(g.Entry) - int64(seg.Addr)
	newOffset := (offset + delta) % int64(seg.Size)
	if newOffset < 0 {
		newOffset += int64(seg.Size)
	}
	return Gadget{
		Entry:   uint64(int64(seg.Addr) + newOffset),
		RetAddr: g.RetAddr,
		SpDelta: g.SpDelta,
		Mode:    g.Mode,
	}
}

func (g Gadget) String() string {
	return fmt.Sprintf("[Entry: %#x, Ret: %#x, SpD: %#x, Mode: %s]", g.Entry, g.RetAddr, g.SpDelta, g.Mode)
}

// Allele is the atomic genome unit: either a Gadget or an InputSlot.
type Allele struct {
	Kind      Kind
	Gadget    Gadget
	InputSlot int
}

// NewGadgetAllele builds a GadgetRef allele.
func NewGadgetAllele(g Gadget) Allele {
	return Allele{Kind: KindGadget, Gadget: g}
}

// NewInputSlotAllele builds an InputSlot allele, wrapping k into
// [0, MaxInputSlots).
func NewInputSlotAllele(k int) Allele {
	k %= MaxInputSlots
	if k < 0 {
		k += MaxInputSlots
	}
	return Allele{Kind: KindInputSlot, InputSlot: k}
}

// Entry returns the gadget's executable address, or (0, false) for an
// InputSlot.
func (a Allele) Entry() (uint64, bool) {
	if a.Kind == KindGadget {
		return a.Gadget.Entry, true
	}
	return 0, false
}

// Add applies wraparound arithmetic mutation: for a GadgetRef, shift the
// entry by delta modulo the containing segment's size; for an InputSlot,
// shift k mod MaxInputSlots.
func (a Allele) Add(delta int64, image emu.MemoryImage) Allele {
	switch a.Kind {
	case KindGadget:
		return NewGadgetAllele(a.Gadget.add(delta, image))
	default:
		return NewInputSlotAllele(a.InputSlot + int(delta))
	}
}

func (a Allele) String() string {
	if a.Kind == KindInputSlot {
		return fmt.Sprintf("[Input Slot #%d]", a.InputSlot)
	}
	return a.Gadget.String()
}
