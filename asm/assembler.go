package asm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tastier-lang/tastiervm/vm"
)

// Parse reads the Tastier assembly text format from r and assembles it
// into a resolved Program.
func Parse(r io.Reader) (*Program, error) {
	lines, err := scanLines(r)
	if err != nil {
		return nil, err
	}

	a := &assembler{
		syms:       newSymbolTable(),
		codeLabels: make(map[string]int),
		dataNext:   3,
	}
	if err := a.firstPass(lines); err != nil {
		return nil, err
	}
	instrs, err := a.secondPass()
	if err != nil {
		return nil, err
	}

	return &Program{Instructions: instrs, DataSize: a.dataNext - 3}, nil
}

func scanLines(r io.Reader) ([]*line, error) {
	var lines []*line
	sc := bufio.NewScanner(r)
	no := 0
	for sc.Scan() {
		no++
		l, err := tokenizeLine(no, sc.Text())
		if err != nil {
			return nil, err
		}
		if l != nil {
			lines = append(lines, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// codeLine is an instruction line retained from the first pass, along
// with the fully-qualified procedure scope it was assembled within (for
// resolving bare Call targets in the second pass).
type codeLine struct {
	*line
	index int
	scope string
}

type assembler struct {
	syms       *symbolTable
	codeLabels map[string]int // label -> instruction index
	dataNext   int            // next free user data address

	code []codeLine

	namesDeclared int
	namesWant     int
	namesLine     int
	haveNames     bool

	scope string // enclosing procedure's fully-qualified label, "" at top level
}

func (a *assembler) firstPass(lines []*line) error {
	for _, l := range lines {
		if l.directive() {
			if err := a.directive(l); err != nil {
				return err
			}
			continue
		}
		if err := a.instrLine(l); err != nil {
			return err
		}
	}
	if a.haveNames && a.namesDeclared != a.namesWant {
		return &BadOperandError{Line: a.namesLine, Reason: fmt.Sprintf(
			".names %d but %d symbols declared", a.namesWant, a.namesDeclared)}
	}
	return nil
}

func (a *assembler) directive(l *line) error {
	switch l.fields[0] {
	case ".names":
		if len(l.fields) != 2 {
			return &BadOperandError{Line: l.no, Reason: ".names wants exactly one operand"}
		}
		n, err := strconv.Atoi(l.fields[1])
		if err != nil {
			return &BadOperandError{Line: l.no, Reason: "bad .names operand: " + err.Error()}
		}
		a.namesWant = n
		a.namesLine = l.no
		a.haveNames = true
		return nil

	case ".var":
		if len(l.fields) != 3 {
			return &BadOperandError{Line: l.no, Reason: ".var wants TYPE NAME"}
		}
		typ, err := parseValueType(l.fields[1])
		if err != nil {
			return &BadOperandError{Line: l.no, Reason: err.Error()}
		}
		addr := a.dataNext
		a.dataNext++
		a.namesDeclared++
		return a.syms.declare(l.no, l.fields[2], symbol{kind: symVar, typ: typ, addr: addr})

	case ".proc":
		if len(l.fields) != 2 {
			return &BadOperandError{Line: l.no, Reason: ".proc wants NAME"}
		}
		a.namesDeclared++
		return a.syms.declare(l.no, l.fields[1], symbol{kind: symProc})

	case ".const":
		if len(l.fields) != 2 {
			return &BadOperandError{Line: l.no, Reason: ".const wants NAME"}
		}
		addr := a.dataNext
		a.dataNext++
		a.namesDeclared++
		return a.syms.declare(l.no, l.fields[1], symbol{kind: symConst, addr: addr})

	case ".external":
		if len(l.fields) < 2 {
			return &BadOperandError{Line: l.no, Reason: ".external wants var/proc NAME"}
		}
		switch l.fields[1] {
		case "var":
			if len(l.fields) != 4 {
				return &BadOperandError{Line: l.no, Reason: ".external var wants TYPE NAME"}
			}
			typ, err := parseValueType(l.fields[2])
			if err != nil {
				return &BadOperandError{Line: l.no, Reason: err.Error()}
			}
			addr := a.dataNext
			a.dataNext++
			a.namesDeclared++
			return a.syms.declare(l.no, l.fields[3], symbol{kind: symExternalVar, typ: typ, addr: addr})
		case "proc":
			if len(l.fields) != 3 {
				return &BadOperandError{Line: l.no, Reason: ".external proc wants NAME"}
			}
			a.namesDeclared++
			return a.syms.declare(l.no, l.fields[2], symbol{kind: symExternalProc})
		default:
			return &BadOperandError{Line: l.no, Reason: "unknown .external kind " + l.fields[1]}
		}

	default:
		return &BadOperandError{Line: l.no, Reason: "unknown directive " + l.fields[0]}
	}
}

func parseValueType(s string) (ValueType, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad type %q", s)
	}
	switch ValueType(n) {
	case Integer, Boolean, String:
		return ValueType(n), nil
	default:
		return 0, fmt.Errorf("unknown type %q", s)
	}
}

func (a *assembler) instrLine(l *line) error {
	if len(l.fields) == 0 {
		return &BadOperandError{Line: l.no, Reason: "label with no instruction"}
	}
	op, ok := vm.ParseOpcode(l.fields[0])
	if !ok {
		return &BadOperandError{Line: l.no, Reason: "unknown mnemonic " + l.fields[0]}
	}
	if want := int(op.Arity()); len(l.fields)-1 != want {
		return &BadOperandError{Line: l.no, Reason: fmt.Sprintf(
			"%s wants %d operand(s), got %d", op, want, len(l.fields)-1)}
	}

	index := len(a.code)
	if l.label != "" {
		if prevIdx, exists := a.codeLabels[l.label]; exists {
			return &DuplicateLabelError{Line: l.no, Name: l.label, AtLine: a.code[prevIdx].no}
		}
		a.codeLabels[l.label] = index
		if op == vm.Enter {
			a.scope = l.label
		}
	}

	a.code = append(a.code, codeLine{line: l, index: index, scope: a.scope})
	return nil
}

func (a *assembler) secondPass() ([]vm.Instruction, error) {
	instrs := make([]vm.Instruction, len(a.code))
	for i, c := range a.code {
		op, _ := vm.ParseOpcode(c.fields[0])
		operands := c.fields[1:]

		var words [2]vm.Word
		for oi, tok := range operands {
			w, err := a.resolveOperand(c.no, op, oi, tok, c.scope)
			if err != nil {
				return nil, err
			}
			words[oi] = w
		}

		switch op.Arity() {
		case vm.Nullary:
			instrs[i] = vm.Nullary0(op)
		case vm.Unary:
			instrs[i] = vm.Unary1(op, words[0])
		case vm.Binary:
			instrs[i] = vm.Binary2(op, words[0], words[1])
		}
	}
	return instrs, nil
}

// resolveOperand resolves operand index oi of an instruction with opcode
// op to a Word: a plain integer, a data symbol (global variable or
// constant address), or a code label (instruction index), depending on
// which the opcode's operand form requires.
func (a *assembler) resolveOperand(no int, op vm.Opcode, oi int, tok, scope string) (vm.Word, error) {
	if n, err := strconv.ParseInt(tok, 10, 16); err == nil {
		return vm.Word(n), nil
	}

	switch {
	case (op == vm.Jmp || op == vm.FJmp) && oi == 0:
		if idx, ok := a.resolveCodeLabel(tok, ""); ok {
			return vm.Word(idx), nil
		}
	case op == vm.Call && oi == 1:
		if idx, ok := a.resolveCodeLabel(tok, scope); ok {
			return vm.Word(idx), nil
		}
		if a.syms.isProc(tok) {
			if idx, ok := a.codeLabels[tok]; ok {
				return vm.Word(idx), nil
			}
		}
	case op == vm.LoadG || op == vm.StoG || op == vm.LoadArr || op == vm.StoArr:
		if addr, ok := a.syms.dataSymbol(tok); ok {
			return vm.Word(addr), nil
		}
	}

	return 0, &UndefinedLabelError{Line: no, Name: tok}
}

// resolveCodeLabel first searches the enclosing scope chain of scope
// outward, if scope is non-empty: scope$tok, then each shorter prefix of
// scope joined with tok. Only then does it look tok up as an exact code
// label, so a bare Call target resolves to the innermost visible
// procedure of that name.
func (a *assembler) resolveCodeLabel(tok, scope string) (int, bool) {
	if scope != "" {
		segs := strings.Split(scope, "$")
		for i := len(segs); i > 0; i-- {
			candidate := strings.Join(segs[:i], "$") + "$" + tok
			if idx, ok := a.codeLabels[candidate]; ok {
				return idx, true
			}
		}
	}
	idx, ok := a.codeLabels[tok]
	return idx, ok
}
