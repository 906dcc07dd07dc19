package emu

// StopReason describes why Start returned. All three outcomes are
// permissible (spec.md section 4.3 step 5): no single run may abort the
// pipeline regardless of which one occurred.
type StopReason int

const (
	StopUnknown StopReason = iota
	StopInstructionBudgetExhausted
	StopFault
	StopNormalReturn
)

// WriteHook observes one write to writable memory during a run.
type WriteHook func(pc, dest, value uint64, size int)

// ExecHook observes one instruction executed during a run.
type ExecHook func(pc uint64, mode Mode, instSize int, registers []uint64)

// PCHook observes a bare program-counter event (a return instruction or an
// indirect jump).
type PCHook func(pc uint64)

// HookHandle identifies an installed hook so it can later be removed.
type HookHandle int

// Engine is the contract this module requires of a Unicorn-family CPU
// emulator (spec.md section 6). No real emulator implementation is provided
// by this module -- construction, state capture/restore, and the hook
// mechanism are external collaborator responsibilities; TestEngine is the
// only implementation here. An Engine is owned by exactly
// one worker goroutine for its entire lifetime (spec.md section 5): it is
// never shared or sent across goroutines.
type Engine interface {
	// Construct prepares the engine for the given architecture, loading the
	// target binary's memory image and capturing the canonical initial
	// register/memory state used by RestoreState.
	Construct(arch Arch, mode Mode, image MemoryImage) error

	// RestoreState resets registers and writable memory to the state
	// captured at Construct time.
	RestoreState() error

	// FindStack reports the address and size of the writable stack region.
	FindStack() (addr uint64, size uint64, err error)

	// MemWrite writes data into memory starting at addr.
	MemWrite(addr uint64, data []byte) error

	// ReadRegisters returns a snapshot of the general-purpose register file.
	ReadRegisters() ([]uint64, error)

	// SetSP sets the stack-pointer register.
	SetSP(addr uint64) error

	// HookWritableMem installs a hook fired on every write to writable
	// memory, for the lifetime of the next Start call.
	HookWritableMem(WriteHook) (HookHandle, error)
	// HookExec installs a hook fired on every instruction executed.
	HookExec(ExecHook) (HookHandle, error)
	// HookReturns installs a hook fired on every return instruction.
	HookReturns(PCHook) (HookHandle, error)
	// HookIndirectJumps installs a hook fired on every indirect jump.
	HookIndirectJumps(PCHook) (HookHandle, error)
	// RemoveHook uninstalls a previously installed hook.
	RemoveHook(HookHandle) error

	// Start begins execution at entry and runs until a return-to-zero, a
	// fault, or maxInstructions is reached, whichever comes first.
	Start(entry uint64, maxInstructions int) (StopReason, error)
}
