// Command tastier assembles and runs a single Tastier program: it
// assembles a .tas file via package asm, feeds it an input file of
// whitespace-separated 16-bit words, runs the VM, and prints output
// lines to stdout, exiting nonzero on any VM fault.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tastier-lang/tastiervm/asm"
	"github.com/tastier-lang/tastiervm/internal/logio"
	"github.com/tastier-lang/tastiervm/vm"
)

// config holds the subset of flags that may also be set from a TOML file;
// an explicitly-passed flag always overrides the file.
type config struct {
	Timeout string `toml:"timeout"`
}

func main() {
	var (
		trace      bool
		dump       bool
		timeout    time.Duration
		configPath string
	)
	flag.BoolVar(&trace, "trace", false, "enable per-instruction trace logging")
	flag.BoolVar(&dump, "dump", false, "print a register/stack dump after execution")
	flag.DurationVar(&timeout, "timeout", 0, "abort the run after this long")
	flag.StringVar(&configPath, "config", "", "optional TOML file overriding defaults")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	if configPath != "" {
		var cfg config
		if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
			log.Errorf("reading config: %v", err)
			return
		}
		if timeout == 0 && cfg.Timeout != "" {
			d, err := time.ParseDuration(cfg.Timeout)
			if err != nil {
				log.Errorf("config timeout: %v", err)
				return
			}
			timeout = d
		}
	}

	if flag.NArg() < 1 {
		log.Errorf("usage: tastier [flags] program.tas [input-file]")
		return
	}

	progFile, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Errorf("%v", err)
		return
	}
	defer progFile.Close()

	prog, err := asm.Parse(progFile)
	if err != nil {
		log.Errorf("assembling %s: %v", flag.Arg(0), err)
		return
	}

	opts := []vm.Option{vm.WithOutput(os.Stdout)}
	if trace {
		opts = append(opts, vm.WithLogf(log.Leveledf("TRACE")))
	}
	if flag.NArg() >= 2 {
		inFile, err := os.Open(flag.Arg(1))
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		defer inFile.Close()
		opts = append(opts, vm.WithInputReader(inFile))
	} else {
		opts = append(opts, vm.WithInputReader(os.Stdin))
	}

	m := vm.New(opts...)
	defer m.Close()
	asm.LoadInto(m, prog)

	if dump {
		defer m.Dump(os.Stderr)
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := m.Run(ctx); err != nil {
		var f *vm.Fault
		if errors.As(err, &f) {
			fmt.Fprintf(os.Stderr, "fault: %v\n", f)
		}
		log.ErrorIf(err)
	}
}
