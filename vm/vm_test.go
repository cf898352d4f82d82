package vm

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run assembles nothing (tests build Instruction slices directly) and
// drives prog to completion, returning the VM and any Run error.
func run(t *testing.T, prog []Instruction, opts ...Option) (*VM, error) {
	t.Helper()
	m := New(opts...)
	m.Load(prog)
	err := m.Run(context.Background())
	return m, err
}

func runOK(t *testing.T, prog []Instruction, opts ...Option) *VM {
	t.Helper()
	m, err := run(t, prog, opts...)
	require.NoError(t, err)
	return m
}

func TestHaltEndsRun(t *testing.T) {
	m := runOK(t, []Instruction{Nullary0(Halt)})
	assert.EqualValues(t, 1, m.PC)
	assert.EqualValues(t, 0, m.TOP)
}

func TestConstAndArithmetic(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 7),
		Unary1(Const, 5),
		Nullary0(Sub), // 7 - 5 = 2
		Unary1(StoG, 3),
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, 2, m.D[0])
}

func TestArithmeticWraparound(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 32767),
		Unary1(Const, 1),
		Nullary0(Add), // wraps to -32768
		Unary1(StoG, 3),
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, -32768, m.D[0])
}

func TestDivFloors(t *testing.T) {
	// -7 / 2 should floor to -4, not truncate to -3.
	prog := []Instruction{
		Unary1(Const, -7),
		Unary1(Const, 2),
		Nullary0(Div),
		Unary1(StoG, 3),
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, -4, m.D[0])
}

func TestDivByZeroFaults(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 1),
		Unary1(Const, 0),
		Nullary0(Div),
		Nullary0(Halt),
	}
	_, err := run(t, prog)
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, DivideByZero, f.Kind)
}

func TestNegIsBitwiseComplement(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 5),
		Nullary0(Neg),
		Unary1(StoG, 3),
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, ^int16(5), m.D[0])
}

func TestNegNegRoundTrip(t *testing.T) {
	// Const v; Neg; Neg leaves v, since one's-complement is its own
	// inverse.
	prog := []Instruction{
		Unary1(Const, 42),
		Nullary0(Neg),
		Nullary0(Neg),
		Unary1(StoG, 3),
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, 42, m.D[0])
}

func TestRelationalOps(t *testing.T) {
	cases := []struct {
		op       Opcode
		b, a     Word
		expected Word
	}{
		{Equ, 3, 3, 1}, {Equ, 3, 4, 0},
		{NEqu, 3, 4, 1}, {NEqu, 3, 3, 0},
		{Lss, 3, 4, 1}, {Lss, 4, 3, 0},
		{LssEq, 3, 3, 1}, {LssEq, 4, 3, 0},
		{Gtr, 4, 3, 1}, {Gtr, 3, 4, 0},
		{GtrEq, 3, 3, 1}, {GtrEq, 3, 4, 0},
	}
	for _, c := range cases {
		prog := []Instruction{
			Unary1(Const, c.b),
			Unary1(Const, c.a),
			Nullary0(c.op),
			Unary1(StoG, 3),
			Nullary0(Halt),
		}
		m := runOK(t, prog)
		assert.EqualValuesf(t, c.expected, m.D[0], "%v(%v,%v)", c.op, c.b, c.a)
	}
}

func TestDupOperatesOnEqualOperands(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 9),
		Nullary0(Dup),
		Nullary0(Sub), // 9 - 9 = 0
		Unary1(StoG, 3),
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, 0, m.D[0])
}

func TestFJmpTakesOnlyOnZero(t *testing.T) {
	// top=0 -> jump to the Const 99 store; top=nonzero (incl. negative)
	// -> fall through to the Const 1 store.
	for _, v := range []Word{0, 1, -1, 5} {
		prog := []Instruction{
			Unary1(Const, v),
			Unary1(FJmp, 5),
			Unary1(Const, 1),
			Unary1(StoG, 3),
			Unary1(Jmp, 7),
			Unary1(Const, 99),
			Unary1(StoG, 3),
			Nullary0(Halt),
		}
		m := runOK(t, prog)
		if v == 0 {
			assert.EqualValues(t, 99, m.D[0])
		} else {
			assert.EqualValues(t, 1, m.D[0])
		}
	}
}

func TestLoadGTopObservesPreIncrementValue(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 111),
		Unary1(LoadG, 1), // pushes TOP as observed before this push
		Nullary0(Halt),
	}
	m := runOK(t, prog)
	// Before LoadG, one value (111) had been pushed, so TOP was 1; that
	// 1 is now sitting at S[1], with TOP advanced to 2.
	assert.EqualValues(t, 2, m.TOP)
	assert.EqualValues(t, 1, m.S[1])
}

func TestStoGPCJumps(t *testing.T) {
	prog := []Instruction{
		/*0*/ Unary1(Const, 4), // jump target index
		/*1*/ Unary1(StoG, 0), // PC <- 4, skipping 2 and 3
		/*2*/ Unary1(Const, 111),
		/*3*/ Unary1(StoG, 3), // would set D[0]=111 if not skipped
		/*4*/ Unary1(Const, 222),
		/*5*/ Unary1(StoG, 3), // D[0] = 222
		/*6*/ Nullary0(Halt),
	}
	m := runOK(t, prog)
	assert.EqualValues(t, 222, m.D[0])
}

func TestWriteLeavesValueAndAdvancesTOP(t *testing.T) {
	var out bytes.Buffer
	prog := []Instruction{
		Unary1(Const, 42),
		Nullary0(Write),
		Nullary0(Write),
		Nullary0(Print),
		Nullary0(Halt),
	}
	m := runOK(t, prog, WithOutput(&out))
	assert.Equal(t, "4242\n", out.String())
	assert.EqualValues(t, 2, m.TOP)
}

func TestReadThenInputExhausted(t *testing.T) {
	prog := []Instruction{
		Nullary0(Read),
		Unary1(StoG, 3),
		Nullary0(Read),
		Nullary0(Halt),
	}
	_, err := run(t, prog, WithInputWords(7))
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, InputExhausted, f.Kind)
}

func TestEchoPositiveSum(t *testing.T) {
	// read n, while n>0 push running sum 1..n, write it, read again;
	// input [3,5,0] -> output ["6","15"]. Globals: D[0]=n, D[1]=sum, D[2]=i.
	const (
		aN   = 3
		aSum = 4
		aI   = 5
	)
	prog := []Instruction{
		/*0*/ Nullary0(Read),
		/*1*/ Unary1(StoG, aN),
		/*2*/ Unary1(LoadG, aN),
		/*3*/ Unary1(FJmp, 28), // n==0 -> Done
		/*4*/ Unary1(Const, 0),
		/*5*/ Unary1(StoG, aSum), // sum = 0
		/*6*/ Unary1(Const, 1),
		/*7*/ Unary1(StoG, aI), // i = 1
		/*8*/ Unary1(LoadG, aI), // Loop:
		/*9*/ Unary1(LoadG, aN),
		/*10*/ Nullary0(Gtr), // i > n ?
		/*11*/ Unary1(FJmp, 13), // i<=n -> Body
		/*12*/ Unary1(Jmp, 22), // i>n -> End
		/*13*/ Unary1(LoadG, aSum), // Body:
		/*14*/ Unary1(LoadG, aI),
		/*15*/ Nullary0(Add),
		/*16*/ Unary1(StoG, aSum), // sum += i
		/*17*/ Unary1(LoadG, aI),
		/*18*/ Unary1(Const, 1),
		/*19*/ Nullary0(Add),
		/*20*/ Unary1(StoG, aI), // i += 1
		/*21*/ Unary1(Jmp, 8),
		/*22*/ Unary1(LoadG, aSum), // End:
		/*23*/ Nullary0(Write),
		/*24*/ Nullary0(Print),
		/*25*/ Nullary0(Read),
		/*26*/ Unary1(StoG, aN),
		/*27*/ Unary1(Jmp, 2),
		/*28*/ Nullary0(Halt), // Done:
	}
	var out bytes.Buffer
	runOK(t, prog, WithOutput(&out), WithInputWords(3, 5, 0))
	assert.Equal(t, "6\n15\n", out.String())
}

func TestArray2DIndexing(t *testing.T) {
	// int a[2][3] at user address 3 -> D[0..5]. Store 42 at a[1][2]
	// (offset 1*3+2=5), load it back, write it.
	var out bytes.Buffer
	prog := []Instruction{
		// StoArr 3 2: v dim0 dim1 idx0 idx1
		Unary1(Const, 42),
		Unary1(Const, 2), Unary1(Const, 3), // dims
		Unary1(Const, 1), Unary1(Const, 2), // idx
		Binary2(StoArr, 3, 2),
		// LoadArr 3 2: same dim/idx group order
		Unary1(Const, 2), Unary1(Const, 3),
		Unary1(Const, 1), Unary1(Const, 2),
		Binary2(LoadArr, 3, 2),
		Nullary0(Write),
		Nullary0(Print),
		Nullary0(Halt),
	}
	m := runOK(t, prog, WithOutput(&out))
	assert.Equal(t, "42\n", out.String())
	assert.EqualValues(t, 42, m.D[5])
}

func TestArrayOutOfBoundsFaults(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 1),
		Unary1(Const, 2), Unary1(Const, 3),
		Unary1(Const, 2), Unary1(Const, 0), // idx0=2 >= dim0=2
		Binary2(StoArr, 3, 2),
		Nullary0(Halt),
	}
	_, err := run(t, prog)
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, IndexOutOfBounds, f.Kind)
}

func TestArrayNegativeIndexFaults(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 1),
		Unary1(Const, 2), Unary1(Const, 3),
		Unary1(Const, -1), Unary1(Const, 0),
		Binary2(StoArr, 3, 2),
		Nullary0(Halt),
	}
	_, err := run(t, prog)
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, IndexOutOfBounds, f.Kind)
}

func TestWriteSWalksDownwardToTerminator(t *testing.T) {
	var out bytes.Buffer
	m := New(WithOutput(&out))
	// Lay out "Hi" last-char-first with the terminator at the lowest
	// index: D[0]=0 (terminator), D[1]='i', D[2]='H'; ptr=5 -> D[ptr-3]=D[2].
	m.D[0] = 0
	m.D[1] = 'i'
	m.D[2] = 'H'
	prog := []Instruction{
		Unary1(Const, 5),
		Nullary0(WriteS),
		Nullary0(Print),
		Nullary0(Halt),
	}
	m.Load(prog)
	err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Hi\n", out.String())
}

func TestWriteSNullPointerFaults(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 2), // < 3
		Nullary0(WriteS),
		Nullary0(Halt),
	}
	_, err := run(t, prog)
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, NullStringPointer, f.Kind)
}

func TestIllegalInstructionAtEndOfProgram(t *testing.T) {
	prog := []Instruction{
		Unary1(Const, 1),
	}
	_, err := run(t, prog)
	var f *Fault
	require.ErrorAs(t, err, &f)
	assert.Equal(t, IllegalInstruction, f.Kind)
	assert.EqualValues(t, 1, f.PC)
}

func TestFollowChainZeroIsIdentity(t *testing.T) {
	m := New()
	m.BP = 17
	assert.EqualValues(t, 17, m.followChain(0, m.BP))
}

func TestNestedScopeLoad(t *testing.T) {
	// Outer frame declares local x=7 at BP+4 (lexical level 0, slot 0).
	// A procedure nested directly inside it issues Load 1 0 to read x
	// non-locally.
	var out bytes.Buffer
	prog := []Instruction{
		/*0*/ Binary2(Call, 0, 2), // call outer from the ground frame
		/*1*/ Nullary0(Halt),
		/*2*/ Unary1(Enter, 1), // outer: 1 local
		/*3*/ Unary1(Const, 7),
		/*4*/ Binary2(Sto, 0, 0), // x = 7
		/*5*/ Binary2(Call, 0, 8), // call inner; inner is lexically nested directly in outer
		/*6*/ Nullary0(Leave),
		/*7*/ Nullary0(Ret),
		/*8*/ Unary1(Enter, 0), // inner: no locals
		/*9*/ Binary2(Load, 1, 0), // load outer's x
		/*10*/ Nullary0(Write),
		/*11*/ Nullary0(Print),
		/*12*/ Nullary0(Leave),
		/*13*/ Nullary0(Ret),
	}
	m := runOK(t, prog, WithOutput(&out))
	assert.Equal(t, "7\n", out.String())
}

func TestRecursionFactorial(t *testing.T) {
	// factorial(5) via a directly-recursive procedure, communicating its
	// argument and accumulator through globals rather than frame locals,
	// so the test stays independent of any particular compiler
	// parameter-passing convention: D[0]=n, D[1]=acc. Fact(): if n<=0
	// return; acc*=n; n--; Fact(); return.
	const (
		aN   = 3
		aAcc = 4
	)
	prog := []Instruction{
		/*0*/ Unary1(Const, 5),
		/*1*/ Unary1(StoG, aN), // n = 5
		/*2*/ Unary1(Const, 1),
		/*3*/ Unary1(StoG, aAcc), // acc = 1
		/*4*/ Binary2(Call, 0, 9), // call Fact
		/*5*/ Unary1(LoadG, aAcc),
		/*6*/ Nullary0(Write),
		/*7*/ Nullary0(Print),
		/*8*/ Nullary0(Halt),

		/*9*/ Unary1(Enter, 0), // Fact:
		/*10*/ Unary1(LoadG, aN),
		/*11*/ Unary1(Const, 0),
		/*12*/ Nullary0(LssEq), // n<=0 ?
		/*13*/ Unary1(FJmp, 16), // n>0 -> continue (fall through on n<=0)
		/*14*/ Nullary0(Leave),
		/*15*/ Nullary0(Ret),
		/*16*/ Unary1(LoadG, aAcc),
		/*17*/ Unary1(LoadG, aN),
		/*18*/ Nullary0(Mul),
		/*19*/ Unary1(StoG, aAcc), // acc *= n
		/*20*/ Unary1(LoadG, aN),
		/*21*/ Unary1(Const, 1),
		/*22*/ Nullary0(Sub),
		/*23*/ Unary1(StoG, aN), // n -= 1
		/*24*/ Binary2(Call, 0, 9), // recurse
		/*25*/ Nullary0(Leave),
		/*26*/ Nullary0(Ret),
	}
	var out bytes.Buffer
	runOK(t, prog, WithOutput(&out))
	assert.Equal(t, "120\n", out.String())
}

func TestRetWithEmptyCallChainHalts(t *testing.T) {
	// The VM runs until Halt, or a Ret with an empty call chain. A
	// top-level Ret with no outstanding Call ends the run gracefully
	// rather than jumping through stale stack contents.
	prog := []Instruction{
		Unary1(Const, 123),
		Nullary0(Ret),
	}
	m := runOK(t, prog)
	assert.True(t, m.halted)
}
