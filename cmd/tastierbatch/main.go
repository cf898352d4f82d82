// Command tastierbatch is a regression runner: given a directory of
// <name>.tas/<name>.in/<name>.out triples, it assembles and runs each
// program concurrently, bounded parallelism, independent VM instances
// per program, and reports any output mismatches.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"github.com/tastier-lang/tastiervm/asm"
	"github.com/tastier-lang/tastiervm/vm"
)

// config holds settings that may come from a TOML file; an explicitly
// passed flag always overrides the file.
type config struct {
	Workers int    `toml:"workers"`
	Timeout string `toml:"timeout"`
}

func main() {
	var (
		configPath string
		workers    int
		timeout    time.Duration
	)
	flag.StringVar(&configPath, "config", "", "optional TOML file (workers, timeout)")
	flag.IntVar(&workers, "workers", 0, "bounded parallelism (0: use config or a small default)")
	flag.DurationVar(&timeout, "timeout", 0, "overall run timeout (0: use config or 5s default)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: tastierbatch [flags] <directory-of-.tas/.in/.out-triples>")
		os.Exit(2)
	}
	dir := flag.Arg(0)

	cfg := config{Workers: workers}
	if timeout != 0 {
		cfg.Timeout = timeout.String()
	}
	if configPath != "" {
		var fileCfg config
		if _, err := toml.DecodeFile(configPath, &fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "reading config: %v\n", err)
			os.Exit(2)
		}
		if workers == 0 {
			cfg.Workers = fileCfg.Workers
		}
		if timeout == 0 {
			cfg.Timeout = fileCfg.Timeout
		}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	runTimeout := 5 * time.Second
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil {
			runTimeout = d
		}
	}

	cases, err := discoverCases(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	results, err := runCases(ctx, cases, cfg.Workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	fail := 0
	for _, r := range results {
		status := "ok"
		if !r.ok {
			status = "FAIL: " + r.reason
			fail++
		}
		fmt.Printf("%-32s %s\n", r.name, status)
	}
	if fail > 0 {
		fmt.Fprintf(os.Stderr, "%d/%d failed\n", fail, len(results))
		os.Exit(1)
	}
}

type testCase struct {
	name    string
	tasPath string
	inPath  string
	outPath string
}

func discoverCases(dir string) ([]testCase, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".tas") {
			names = append(names, strings.TrimSuffix(e.Name(), ".tas"))
		}
	}
	sort.Strings(names)

	cases := make([]testCase, 0, len(names))
	for _, name := range names {
		cases = append(cases, testCase{
			name:    name,
			tasPath: filepath.Join(dir, name+".tas"),
			inPath:  filepath.Join(dir, name+".in"),
			outPath: filepath.Join(dir, name+".out"),
		})
	}
	return cases, nil
}

type result struct {
	name   string
	ok     bool
	reason string
}

// runCases assembles and runs every case concurrently, bounded to workers
// at a time, each against its own VM instance; an errgroup with a shared
// context cancels the remaining work the moment the timeout fires.
func runCases(ctx context.Context, cases []testCase, workers int) ([]result, error) {
	eg, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	results := make([]result, len(cases))
	for i, tc := range cases {
		i, tc := i, tc
		eg.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()

			results[i] = runCase(ctx, tc)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runCase(ctx context.Context, tc testCase) result {
	progFile, err := os.Open(tc.tasPath)
	if err != nil {
		return result{name: tc.name, reason: err.Error()}
	}
	defer progFile.Close()

	prog, err := asm.Parse(progFile)
	if err != nil {
		return result{name: tc.name, reason: fmt.Sprintf("assemble: %v", err)}
	}

	wantBytes, err := os.ReadFile(tc.outPath)
	if err != nil {
		return result{name: tc.name, reason: err.Error()}
	}

	var out bytes.Buffer
	opts := []vm.Option{vm.WithOutput(&out)}
	if input, ierr := os.Open(tc.inPath); ierr == nil {
		defer input.Close()
		opts = append(opts, vm.WithInputReader(input))
	}

	m := vm.New(opts...)
	defer m.Close()
	asm.LoadInto(m, prog)

	if err := m.Run(ctx); err != nil {
		return result{name: tc.name, reason: fmt.Sprintf("run: %v", err)}
	}

	if got := out.String(); got != string(wantBytes) {
		return result{name: tc.name, reason: fmt.Sprintf(
			"output mismatch:\n--- want ---\n%s--- got ---\n%s", wantBytes, got)}
	}
	return result{name: tc.name, ok: true}
}
