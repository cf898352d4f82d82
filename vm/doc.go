/* Package vm implements the Tastier virtual machine: a 16-bit stack
machine with separate instruction, data, and stack memories, nested
lexical scoping via static/dynamic links, and a procedure calling
convention built on an explicit activation-frame layout.

The machine has three fixed 4096-word memories. Instruction memory holds
the program, populated once by an external loader (see package asm) and
never mutated afterward. Data memory holds globals, arrays, and the
character cells used by string literals; addresses 0, 1, and 2 are not
data cells at all but select the PC, TOP, and BP registers when used as
the immediate operand of LoadG/StoG. Stack memory holds both expression
operands and activation frames, the two freely interleaved as a
procedure's locals make room for the next call's operands.

A frame, once entered, looks like this relative to its own BP:

	BP+0  return address
	BP+1  lexical-level delta (saved by CALL, read back by ENTER)
	BP+2  static link (set by ENTER)
	BP+3  dynamic link = caller's BP (set by ENTER)
	BP+4… local variables

Static-link chasing (not dynamic-link chasing) is what gives nested
procedures access to their enclosing procedure's locals: Load and Sto
both take a lexical-level delta naming how many static links to follow
before indexing into a frame's locals, rather than assuming the caller is
the lexically enclosing scope.

The VM fails fast on a closed set of faults (Fault, below) and never
recovers mid-run: any fault aborts the program and is reported against
the instruction that raised it.
*/
package vm
