package allele

import (
	"errors"
	"math/rand"

	"github.com/rop-evo/roper/internal/emu"
)

// ErrNoEntry is returned when a Chain has no allele with a non-None entry --
// such a chain is rejected at birth, per spec.md section 3 invariant (i).
var ErrNoEntry = errors.New("allele: chain has no gadget entry")

// Chain is the genome: an ordered sequence of Alleles, a 64-bit xbits mask
// coordinating speciation and crossover, and a generation counter.
type Chain struct {
	Alleles    []Allele
	Xbits      uint64
	Generation int
}

// Entry returns the first allele's non-None entry, or ErrNoEntry if none of
// the chain's alleles are gadgets.
func (c Chain) Entry() (uint64, error) {
	for _, a := range c.Alleles {
		if e, ok := a.Entry(); ok {
			return e, nil
		}
	}
	return 0, ErrNoEntry
}

// HasEntry reports whether Entry would succeed.
func (c Chain) HasEntry() bool {
	_, err := c.Entry()
	return err == nil
}

// Len returns the number of alleles in the chain.
func (c Chain) Len() int { return len(c.Alleles) }

// Pack serialises the chain into a byte payload for the given input vector:
// each allele's effective word (gadget entry, or input[k mod len(input)], or
// 0 if input is empty) is emitted in the target architecture's endianness and
// word width, starting at the first gadget (leading InputSlot alleles before
// the first gadget are skipped, matching original_source's Chain::pack).
func Pack(c Chain, input []uint64, arch emu.Arch) []byte {
	width := emu.AddrWidth(arch)
	out := make([]byte, 0, len(c.Alleles)*width)
	started := false
	for _, a := range c.Alleles {
		if _, ok := a.Entry(); !ok && !started {
			continue
		}
		started = true
		out = append(out, packWord(effectiveWord(a, input), width)...)
	}
	return out
}

func effectiveWord(a Allele, input []uint64) uint64 {
	switch a.Kind {
	case KindGadget:
		return a.Gadget.Entry
	case KindInputSlot:
		if len(input) == 0 {
			return 0
		}
		return input[a.InputSlot%len(input)]
	default:
		return 0
	}
}

// packWord little-endian encodes word into size bytes (4 or 8).
func packWord(word uint64, size int) []byte {
	p := make([]byte, size)
	for i := 0; i < size; i++ {
		p[i] = byte(word >> (8 * uint(i)))
	}
	return p
}

// FromSeed draws a random chain whose length is uniform in
// [minLen, maxLen) (exactly minLen when maxLen <= minLen), using rng and the
// target's executable segments. Per
// spec.md section 4.2: with probability inputSlotFreq (never at position 0)
// choose an InputSlot, otherwise a random, instruction-aligned, mode-tagged
// executable address.
func FromSeed(rng *rand.Rand, minLen, maxLen int, inputSlotFreq float32, image emu.MemoryImage) Chain {
	xbits := rng.Uint64()

	execSegs := image.Executable()

	length := minLen
	if span := maxLen - minLen; span > 0 {
		length = minLen + rng.Intn(span)
	}

	alleles := make([]Allele, 0, length)
	for i := 0; i < length; i++ {
		if i > 0 && rng.Float32() < inputSlotFreq {
			alleles = append(alleles, NewInputSlotAllele(int(rng.Uint64()&0x0F)))
			continue
		}
		seg := execSegs[rng.Intn(len(execSegs))]
		unaligned := seg.AlignedStart() + rng.Uint64()%seg.AlignedSize()
		mode := image.Mode
		addr := emu.AlignInstAddr(unaligned, mode)
		alleles = append(alleles, NewGadgetAllele(Gadget{Entry: addr, Mode: mode}))
	}

	return Chain{Alleles: alleles, Xbits: xbits, Generation: 0}
}
