package vm

import (
	"fmt"
	"io"
)

// Dump writes a human-readable snapshot of the register file and the
// live stack region to w, for post-mortem inspection after a fault.
// It is the driver's opt-in extra; the VM core never calls it itself.
func (vm *VM) Dump(w io.Writer) {
	fmt.Fprintf(w, "PC=%d TOP=%d BP=%d\n", vm.PC, vm.TOP, vm.BP)
	if vm.TOP > 0 {
		fmt.Fprintf(w, "stack: %v\n", vm.S[:vm.TOP])
	} else {
		fmt.Fprintf(w, "stack: []\n")
	}
	if vm.BP+3 < MemSize && vm.TOP > vm.BP {
		fmt.Fprintf(w, "frame: RA=%d LLD=%d SL=%d DL=%d\n",
			vm.S[vm.BP], vm.S[vm.BP+1], vm.S[vm.BP+2], vm.S[vm.BP+3])
	}
}
