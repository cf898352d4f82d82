package vm

import (
	"context"
	"errors"

	"github.com/tastier-lang/tastiervm/internal/panicerr"
	"github.com/tastier-lang/tastiervm/internal/wordio"
)

// New constructs a VM ready to have a program installed with Load,
// applying opts. All registers start at 0 and all three memories are
// zero-filled, which is simply the zero value of VM; options only attach
// I/O and logging around it.
func New(opts ...Option) *VM {
	var vm VM
	defaultOptions.apply(&vm)
	Options(opts...).apply(&vm)
	if vm.in == nil {
		vm.in = wordio.NewQueue()
	}
	return &vm
}

// Close releases any resources (input readers, output writers) registered
// by options that own a Closer.
func (vm *VM) Close() (err error) {
	for i := len(vm.closers) - 1; i >= 0; i-- {
		if cerr := vm.closers[i].Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Load installs instrs as instruction memory, as produced by an external
// loader (package asm), ready to run from PC 0.
func (vm *VM) Load(instrs []Instruction) {
	vm.nInstr = 0
	for i := range vm.I {
		vm.I[i] = Instruction{}
	}
	n := copy(vm.I[:], instrs)
	vm.nInstr = n
}

// Run executes the loaded program until Halt, a Ret with no active call
// frame, ctx cancellation, or a fault. Faults surface as *Fault; ctx
// cancellation surfaces as ctx.Err(); anything else abnormal reaching the
// run loop (a Go panic that isn't one of our own faults) is reported via
// internal/panicerr exactly as gothird's own (*VM).Run does.
func (vm *VM) Run(ctx context.Context) error {
	err := panicerr.Recover("VM", func() error {
		return vm.run(ctx)
	})
	if err == nil {
		return nil
	}
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return err
}
