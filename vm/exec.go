package vm

import (
	"context"
	"fmt"
)

// opFunc executes one dispatched instruction's effect on vm, given its
// immediate operands (zero for arities the opcode doesn't carry).
type opFunc func(vm *VM, a, b Word)

// opTable dispatches on Opcode. Every entry advances PC implicitly:
// Step advances PC by one *before* dispatch, so an opFunc that needs an
// absolute jump (Jmp, FJmp-taken, Call, Ret, StoG a=0, ...) simply
// overwrites vm.PC again; one that doesn't touch PC leaves the
// pre-advance in place, giving every other op its default advance-by-one
// for free.
var opTable = [opcodeMax]opFunc{
	Halt: opHalt,
	Nop:  opNop,
	Dup:  opDup,

	Add: opAdd,
	Sub: opSub,
	Mul: opMul,
	Div: opDiv,

	Equ:   opEqu,
	NEqu:  opNEqu,
	Lss:   opLss,
	LssEq: opLssEq,
	Gtr:   opGtr,
	GtrEq: opGtrEq,
	Neg:   opNeg,

	StoG:  opStoG,
	LoadG: opLoadG,
	Const: opConst,
	Jmp:   opJmp,
	FJmp:  opFJmp,

	Load: opLoad,
	Sto:  opSto,

	Call:  opCall,
	Enter: opEnter,
	Leave: opLeave,
	Ret:   opRet,

	LoadArr: opLoadArr,
	StoArr:  opStoArr,

	Read:   opRead,
	Write:  opWrite,
	WriteS: opWriteS,
	Print:  opPrint,
}

// fetch returns the instruction at the current PC, faulting
// IllegalInstruction if PC falls outside the loaded program.
func (vm *VM) fetch() Instruction {
	if vm.PC < 0 || int(vm.PC) >= vm.nInstr {
		vm.fault(IllegalInstruction, fmt.Errorf("PC %d outside loaded program [0,%d)", vm.PC, vm.nInstr))
	}
	ins := vm.I[vm.PC]
	if !ins.Op.Valid() {
		vm.fault(IllegalInstruction, fmt.Errorf("opcode %d", uint8(ins.Op)))
	}
	return ins
}

// Step fetches and executes exactly one instruction. A fault raised while
// executing it is reported against that instruction's own address rather
// than the already-advanced PC.
func (vm *VM) Step() {
	ins := vm.fetch()
	vm.logStep(ins)
	pc := vm.PC
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*Fault); ok {
				f.PC = pc
			}
			panic(r)
		}
	}()
	vm.PC++
	opTable[ins.Op](vm, ins.A, ins.B)
}

func (vm *VM) logStep(ins Instruction) {
	if vm.logfn == nil {
		return
	}
	vm.logf("@%-4d %-16v TOP=%-4d BP=%-4d S=%v", vm.PC, ins, vm.TOP, vm.BP, vm.S[:vm.TOP])
}

// run drives the fetch-dispatch loop until Halt, a Ret with no active
// call frame, or ctx is done.
func (vm *VM) run(ctx context.Context) error {
	vm.halted = false
	for !vm.halted {
		if err := ctx.Err(); err != nil {
			return err
		}
		vm.Step()
	}
	if vm.out != nil {
		return vm.out.Flush()
	}
	return nil
}
