package vm

import "fmt"

// loadS reads the stack memory at i, raising MemoryFault if i falls
// outside [0, MemSize).
func (vm *VM) loadS(i Word) Word {
	if i < 0 || int(i) >= MemSize {
		vm.fault(MemoryFault, fmt.Errorf("stack index %d out of [0,%d)", i, MemSize))
	}
	return vm.S[i]
}

// storeS writes v into stack memory at i, with the same bounds check as loadS.
func (vm *VM) storeS(i, v Word) {
	if i < 0 || int(i) >= MemSize {
		vm.fault(MemoryFault, fmt.Errorf("stack index %d out of [0,%d)", i, MemSize))
	}
	vm.S[i] = v
}

// loadD reads data memory at i (an already-adjusted D-relative index,
// i.e. a-3 for user address a), with the same bounds check as loadS.
func (vm *VM) loadD(i Word) Word {
	if i < 0 || int(i) >= MemSize {
		vm.fault(MemoryFault, fmt.Errorf("data index %d out of [0,%d)", i, MemSize))
	}
	return vm.D[i]
}

// storeD writes v into data memory at i, with the same bounds check as loadD.
func (vm *VM) storeD(i, v Word) {
	if i < 0 || int(i) >= MemSize {
		vm.fault(MemoryFault, fmt.Errorf("data index %d out of [0,%d)", i, MemSize))
	}
	vm.D[i] = v
}
