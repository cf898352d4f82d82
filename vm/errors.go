package vm

import "fmt"

// Kind names one of the closed set of fault kinds a Tastier program can
// raise at run time. All faults abort the run.
type Kind int

const (
	_ Kind = iota
	IndexOutOfBounds
	NullStringPointer
	InputExhausted
	IllegalInstruction
	DivideByZero
	MemoryFault
)

var kindNames = [...]string{
	IndexOutOfBounds:   "IndexOutOfBounds",
	NullStringPointer:  "NullStringPointer",
	InputExhausted:     "InputExhausted",
	IllegalInstruction: "IllegalInstruction",
	DivideByZero:       "DivideByZero",
	MemoryFault:        "MemoryFault",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Fault is the error type the VM raises for every member of the closed
// fault set in Kind. Every fault is reported against the PC that raised it.
type Fault struct {
	Kind Kind
	PC   Word
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%v @%d: %v", f.Kind, f.PC, f.Err)
	}
	return fmt.Sprintf("%v @%d", f.Kind, f.PC)
}

func (f *Fault) Unwrap() error { return f.Err }

// fault raises kind as the cause of aborting the run, carrying the
// current PC (which Step replaces with the executing instruction's own
// address). It never returns; callers rely on the panic unwinding to
// (*VM).Run's recover.
func (vm *VM) fault(kind Kind, err error) {
	f := &Fault{Kind: kind, PC: vm.PC, Err: err}
	vm.logf("# fault: %v", f)
	panic(f)
}
