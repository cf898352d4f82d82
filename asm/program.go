package asm

import "github.com/tastier-lang/tastiervm/vm"

// Program is a fully assembled, label-resolved Tastier image.
type Program struct {
	Instructions []vm.Instruction

	// DataSize is the number of data-memory slots reserved by .var,
	// .const and .external var declarations, starting at user address 3.
	DataSize int
}

// Load installs prog's instructions into a fresh vm.VM and returns it,
// ready to Run from PC 0. Data memory is left zero-filled, matching the
// VM's own initial state; any initializers a compiler wants to run are
// ordinary instructions in the assembled program itself.
func Load(prog *Program) *vm.VM {
	m := vm.New()
	m.Load(prog.Instructions)
	return m
}

// LoadInto installs prog's instructions into an already-constructed VM,
// for callers that need to attach options (output, input, logging)
// before running.
func LoadInto(m *vm.VM, prog *Program) {
	m.Load(prog.Instructions)
}
