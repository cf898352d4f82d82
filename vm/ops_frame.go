package vm

// followChain walks n static-link hops out from bp: the static link, not
// the dynamic link, so that nested procedures see their *lexically*
// enclosing frame's locals regardless of who actually called them.
// Implemented iteratively since n is bounded by lexical nesting depth,
// not call depth, and need not touch the host call stack at all.
func (vm *VM) followChain(n, bp Word) Word {
	for n > 0 {
		bp = vm.loadS(bp + 2)
		n--
	}
	return bp
}

// opLoad pushes a local of the frame n static-link hops out.
func opLoad(vm *VM, a, b Word) {
	base := vm.followChain(a, vm.BP)
	v := vm.loadS(base + 4 + b)
	vm.storeS(vm.TOP, v)
	vm.TOP++
}

// opSto pops the top of stack into a local of the frame n static-link
// hops out.
func opSto(vm *VM, a, b Word) {
	base := vm.followChain(a, vm.BP)
	v := vm.loadS(vm.TOP - 1)
	vm.TOP--
	vm.storeS(base+4+b, v)
}

// opCall pushes the return address and the lexical-level delta for Enter
// to read, then jumps to the procedure entry point. PC has already been
// advanced past this Call instruction by Step, so vm.PC already holds
// the address to resume at on return.
func opCall(vm *VM, a, b Word) {
	vm.calls++
	vm.storeS(vm.TOP, vm.PC)
	vm.storeS(vm.TOP+1, a)
	vm.TOP += 2
	vm.PC = b
}

// opEnter completes the frame Call began: chases the static link from
// the *caller's* BP, lays down the new frame base, and reserves locals.
func opEnter(vm *VM, a, _ Word) {
	lld := vm.loadS(vm.TOP - 1)
	sl := vm.followChain(lld, vm.BP)
	newBP := vm.TOP - 2
	vm.storeS(vm.TOP, sl)
	vm.storeS(vm.TOP+1, vm.BP)
	vm.BP = newBP
	vm.TOP = vm.TOP + a + 2
}

// opLeave restores the caller's BP and rewinds TOP to just past this
// frame's own return address, ready for a following Ret to pop it. The
// two assignments must use the frame's BP *before* it is overwritten:
// TOP needs to expose this frame's own RA slot (at its own BP+0), not
// the restored caller's, or a following Ret would jump clean through
// every pending caller frame instead of returning one level at a time
// (see DESIGN.md for how this was diagnosed).
func opLeave(vm *VM, _, _ Word) {
	frameBP := vm.BP
	vm.BP = vm.loadS(vm.BP + 3)
	vm.TOP = frameBP + 1
}

// opRet pops a return address into PC. A Ret executed with no
// outstanding Call ends the run gracefully instead of jumping to
// whatever garbage address the top of stack holds.
func opRet(vm *VM, _, _ Word) {
	if vm.calls == 0 {
		vm.halted = true
		return
	}
	vm.calls--
	vm.PC = vm.loadS(vm.TOP - 1)
	vm.TOP--
}
