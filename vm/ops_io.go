package vm

import (
	"fmt"
	"strconv"

	"github.com/tastier-lang/tastiervm/internal/chario"
)

// opRead consumes the next word from the input sequence, faulting
// InputExhausted once it is drained.
func opRead(vm *VM, _, _ Word) {
	w, err := vm.in.Next()
	if err != nil {
		vm.fault(InputExhausted, err)
	}
	vm.storeS(vm.TOP, w)
	vm.TOP++
}

// opWrite appends the decimal string of the top of stack to the print
// buffer. Per the Open Question resolution in DESIGN.md, TOP is
// incremented with a copy of the printed value re-pushed, so a following
// Write or Print still finds the same value one below the new top
// (matching the compiler's Write;Write;...;Print emission pattern).
func opWrite(vm *VM, _, _ Word) {
	v := vm.loadS(vm.TOP - 1)
	vm.print.WriteString(strconv.FormatInt(int64(v), 10))
	vm.storeS(vm.TOP, v)
	vm.TOP++
}

// opWriteS walks data memory downward from D[ptr-3], appending the ASCII
// character for each word value until a 0 terminator, which is not
// itself appended. It shares Write's stack-accounting convention so a
// following Print balances correctly.
func opWriteS(vm *VM, _, _ Word) {
	ptr := vm.loadS(vm.TOP - 1)
	if ptr < 3 {
		vm.fault(NullStringPointer, fmt.Errorf("string pointer %d < 3", ptr))
	}
	for addr := ptr - 3; ; addr-- {
		ch := vm.loadD(addr)
		if ch == 0 {
			break
		}
		chario.WriteByte(&vm.print, ch)
		if addr == 0 {
			break
		}
	}
	vm.storeS(vm.TOP, ptr)
	vm.TOP++
}

// opPrint emits the print buffer as one output line and clears it.
func opPrint(vm *VM, _, _ Word) {
	vm.emit(vm.print.String())
	vm.print.Reset()
	vm.TOP--
}

func (vm *VM) emit(line string) {
	if vm.out == nil {
		return
	}
	if _, err := vm.out.Write([]byte(line + "\n")); err != nil {
		vm.logf("# output write error: %v", err)
		return
	}
	if err := vm.out.Flush(); err != nil {
		vm.logf("# output flush error: %v", err)
	}
}
