package vm

// opConst pushes its immediate.
func opConst(vm *VM, a, _ Word) {
	vm.storeS(vm.TOP, a)
	vm.TOP++
}

// opJmp sets PC unconditionally.
func opJmp(vm *VM, a, _ Word) { vm.PC = a }

// opFJmp pops the top of stack; jumps to a if it was zero, otherwise
// falls through to the already-advanced PC.
func opFJmp(vm *VM, a, _ Word) {
	v := vm.loadS(vm.TOP - 1)
	vm.TOP--
	if v == 0 {
		vm.PC = a
	}
}

// opLoadG pushes the value of the control register or data cell selected
// by a: 0=PC, 1=TOP, 2=BP, else D[a-3]. For a=1 the pushed value is TOP
// as observed before this push's own increment; for a=0 it is PC as
// already advanced past the LoadG instruction itself.
func opLoadG(vm *VM, a, _ Word) {
	var v Word
	switch {
	case a == 0:
		v = vm.PC
	case a == 1:
		v = vm.TOP
	case a == 2:
		v = vm.BP
	default:
		v = vm.loadD(a - 3)
	}
	vm.storeS(vm.TOP, v)
	vm.TOP++
}

// opStoG pops the top of stack and writes it to the control register or
// data cell selected by a. a=0 sets PC directly (the store itself is the
// jump, overwriting the pre-advanced PC); a=1 overwrites TOP with the
// popped value (replacing the post-decrement value); a=2 sets BP; a>=3
// writes D[a-3].
func opStoG(vm *VM, a, _ Word) {
	v := vm.loadS(vm.TOP - 1)
	vm.TOP--
	switch {
	case a == 0:
		vm.PC = v
	case a == 1:
		vm.TOP = v
	case a == 2:
		vm.BP = v
	default:
		vm.storeD(a-3, v)
	}
}
