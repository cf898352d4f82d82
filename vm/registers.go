package vm

// Registers holds the three named registers of the Tastier machine: PC
// indexes instruction memory, TOP indexes the next free stack slot, BP
// indexes the current frame's base. All three are 16-bit signed words,
// though in practice their live range is [0, MemSize].
type Registers struct {
	PC  Word
	TOP Word
	BP  Word
}
