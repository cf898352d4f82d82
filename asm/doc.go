// Package asm assembles the Tastier line-oriented assembly text format
// into a resolved program image ready to load into a vm.VM.
//
// A source file is a sequence of lines, each optionally prefixed by
// "label:", followed by either a header directive (.names, .var, .proc,
// .const, .external) or an instruction mnemonic with 0-2 operands.
// Header directives declare the symbol table and reserve data-memory
// slots; instruction lines are assembled in two passes, the first
// recording every label's resolved address, the second emitting
// vm.Instruction values with label operands replaced by those addresses.
package asm
