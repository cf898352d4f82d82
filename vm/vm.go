package vm

import (
	"io"
	"strings"

	"github.com/tastier-lang/tastiervm/internal/flushio"
	"github.com/tastier-lang/tastiervm/internal/wordio"
)

// VM is a single Tastier machine: three fixed memories, the PC/TOP/BP
// register file, a print buffer, and the I/O plumbing around them. The
// zero value is not ready to run; construct one with New and install a
// program with Load.
type VM struct {
	logging
	Registers

	I [MemSize]Instruction
	D [MemSize]Word
	S [MemSize]Word

	nInstr int  // number of instructions installed by Load
	calls  int  // active Call/Ret nesting depth
	halted bool // set by Halt, or by Ret with calls == 0

	in    *wordio.Queue
	out   flushio.WriteFlusher
	print strings.Builder

	closers []io.Closer
}

// logging mirrors gothird's own logging embed, narrowed to a single
// optional trace line per executed instruction when a log function is
// installed.
type logging struct {
	logfn func(mess string, args ...interface{})
}

func (log logging) logf(mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if len(args) > 0 {
		log.logfn(mess, args...)
	} else {
		log.logfn(mess)
	}
}
