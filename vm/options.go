package vm

import (
	"io"
	"io/ioutil"
	"strconv"
	"strings"

	"github.com/tastier-lang/tastiervm/internal/flushio"
	"github.com/tastier-lang/tastiervm/internal/wordio"
)

// Option configures a VM at construction time, mirroring gothird's own
// VMOption/options/noption flattening idiom (options.go/api.go).
type Option interface{ apply(vm *VM) }

var defaultOptions = Options(
	withOutput(ioutil.Discard),
)

// Options flattens a list of Options into one, so New need only ever
// apply a single combined Option.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*VM) {}

type options []Option

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

// WithLogf installs a logging function that receives one line per
// executed instruction.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

type withLogfn func(mess string, args ...interface{})

func (fn withLogfn) apply(vm *VM) { vm.logfn = fn }

// WithOutput directs Print's output lines to w.
func WithOutput(w io.Writer) Option { return withOutput(w) }

type outputOption struct{ io.Writer }

func withOutput(w io.Writer) outputOption { return outputOption{w} }

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
	if cl, ok := o.Writer.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

// WithInputReader queues r as a source of whitespace-separated decimal
// words for Read, a lazily-consumed finite sequence. Multiple
// WithInputReader options queue their sources in order.
func WithInputReader(r io.Reader) Option { return inputReaderOption{r} }

type inputReaderOption struct{ io.Reader }

func (i inputReaderOption) apply(vm *VM) {
	if vm.in == nil {
		vm.in = wordio.NewQueue()
	}
	vm.in.Add(i.Reader)
	if cl, ok := i.Reader.(io.Closer); ok {
		vm.closers = append(vm.closers, cl)
	}
}

// WithInputWords queues an explicit, in-memory sequence of words for
// Read, convenient for tests and for small driver-supplied inputs.
func WithInputWords(words ...int16) Option {
	var sb strings.Builder
	for i, w := range words {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.FormatInt(int64(w), 10))
	}
	return WithInputReader(strings.NewReader(sb.String()))
}
