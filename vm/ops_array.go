package vm

import "fmt"

// arrayOffset computes the row-major offset for a rank-dimensional array
// access, given that base is the index of the first of 2*rank
// operand-stack slots: dim[0..rank-1] at base..base+rank-1 and
// idx[0..rank-1] at base+rank..base+2*rank-1.
//
// The code generator pushes the declared dimensions before evaluating the
// index expressions, so the index group is the one nearer the top of
// stack for both LoadArr and StoArr.
func (vm *VM) arrayOffset(base, rank Word) Word {
	var offset Word
	for i := Word(0); i < rank; i++ {
		dim := vm.loadS(base + i)
		idx := vm.loadS(base + rank + i)
		if idx < 0 || idx >= dim {
			vm.fault(IndexOutOfBounds, fmt.Errorf("index %d out of bounds for dimension %d of size %d", idx, i, dim))
		}
		if i == 0 {
			offset = idx
		} else {
			offset = offset*dim + idx
		}
	}
	return offset
}

// opLoadArr loads D[a-3+offset] for the rank-b array at user address a,
// consuming the 2b dimension/index operands and pushing the one result.
func opLoadArr(vm *VM, a, b Word) {
	base := vm.TOP - 2*b
	offset := vm.arrayOffset(base, b)
	v := vm.loadD(a - 3 + offset)
	vm.TOP = base + 1
	vm.storeS(base, v)
}

// opStoArr stores the value beneath the 2b dimension/index operands into
// D[a-3+offset] for the rank-b array at user address a, consuming all
// 2b+1 operands.
func opStoArr(vm *VM, a, b Word) {
	base := vm.TOP - 2*b
	offset := vm.arrayOffset(base, b)
	v := vm.loadS(base - 1)
	vm.storeD(a-3+offset, v)
	vm.TOP = base - 1
}
