package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/backend"
	"github.com/wippyai/native-link/linker"
	"github.com/wippyai/native-link/strategy"
	"github.com/wippyai/native-link/target"
)

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type config struct {
	objFile     string
	triple      string
	backendName string
	lldProgram  string
	lldWasm     string
	libDirs     []string
	libs        []string
	strategy    strategy.Options
	printOnly   bool
	verbose     bool
}

func main() {
	defaults := strategy.DefaultOptions()
	var libDirs, libs stringList
	var (
		objFile     = flag.String("obj", "", "Path to the compiled object file")
		triple      = flag.String("target", target.HostTriple(), "Target triple")
		backendName = flag.String("backend", "exec", "Linker backend: exec, wasm or dry")
		lldProgram  = flag.String("lld", "", "lld executable for the exec backend (default: search PATH)")
		lldWasm     = flag.String("lld-wasm", "", "WASI lld module for the wasm backend")
		rpath       = flag.String("rpath", defaults.RuntimeSearchPath, "Runtime search path for ELF and Mach-O (empty disables)")
		syslib      = flag.String("syslib", defaults.SystemLibPath, "System C library directory for ELF links")
		sdkVersion  = flag.String("sdk-version", defaults.SDKVersion, "Mach-O -sdk_version")
		subsystem   = flag.String("subsystem", defaults.Subsystem, "PE subsystem for Windows links")
		printOnly   = flag.Bool("print", false, "Print the link plan and exit")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Var(&libDirs, "L", "Library search directory (repeatable)")
	flag.Var(&libs, "l", "Library to link against (repeatable)")
	flag.Parse()

	if *objFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: nativelink -obj <file.o> [-target triple] [-L dir]... [-l lib]...")
		fmt.Fprintln(os.Stderr, "       nativelink -obj <file.o> -print")
		fmt.Fprintln(os.Stderr, "       nativelink -obj <file.o> -i  (interactive mode)")
		os.Exit(1)
	}

	opts := defaults
	opts.RuntimeSearchPath = *rpath
	opts.SystemLibPath = *syslib
	opts.SDKVersion = *sdkVersion
	opts.Subsystem = *subsystem

	cfg := config{
		objFile:     *objFile,
		triple:      *triple,
		backendName: *backendName,
		lldProgram:  *lldProgram,
		lldWasm:     *lldWasm,
		libDirs:     libDirs,
		libs:        libs,
		strategy:    opts,
		printOnly:   *printOnly,
		verbose:     *verbose && !*interactive,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	if *interactive {
		err = runInteractive(ctx, cfg)
	} else {
		err = run(ctx, cfg, os.Stdout, os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, stdout, stderr io.Writer) error {
	log := zap.NewNop()
	if cfg.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()
	linker.SetLogger(log.Named("linker"))

	b, closeBackend, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBackend()

	l := linker.New(b, linker.Options{Strategy: cfg.strategy})
	cc := cfg.context()
	lopts := cfg.linkerOptions()

	inv, err := l.Plan(cc, lopts)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	styled := isTerminal(stdout)
	printPlan(stdout, inv, b.Name(), styled)
	if cfg.printOnly {
		return nil
	}

	res, err := l.Run(ctx, inv)
	if err != nil {
		return fmt.Errorf("link: %w", err)
	}
	if !res.Success {
		if res.Diagnostics != "" {
			fmt.Fprint(stderr, res.Diagnostics)
			if !strings.HasSuffix(res.Diagnostics, "\n") {
				fmt.Fprintln(stderr)
			}
		}
		return res.Err()
	}

	fmt.Fprintln(stdout, render(styled, resultStyle, "linked "+res.Output))
	return nil
}

func (c config) context() nativelink.StaticContext {
	return nativelink.StaticContext{Triple: c.triple, Output: c.objFile}
}

func (c config) linkerOptions() nativelink.LinkerOptions {
	return nativelink.LinkerOptions{LibraryDirs: c.libDirs, Libraries: c.libs}
}

// newBackend returns the selected backend and a function releasing it.
func newBackend(ctx context.Context, cfg config) (backend.Backend, func(), error) {
	switch cfg.backendName {
	case "exec":
		return backend.NewExec(backend.ExecConfig{Program: cfg.lldProgram}), func() {}, nil
	case "wasm":
		if cfg.lldWasm == "" {
			return nil, nil, fmt.Errorf("wasm backend requires -lld-wasm")
		}
		w, err := backend.LoadWasm(ctx, cfg.lldWasm, backend.WasmConfig{})
		if err != nil {
			return nil, nil, fmt.Errorf("load %s: %w", cfg.lldWasm, err)
		}
		return w, func() { _ = w.Close(context.Background()) }, nil
	case "dry":
		return backend.NewRecorder(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want exec, wasm or dry)", cfg.backendName)
	}
}

func printPlan(w io.Writer, inv nativelink.Invocation, backendName string, styled bool) {
	fmt.Fprintf(w, "%s %s (flavor %s, backend %s)\n",
		render(styled, titleStyle, "plan"), inv.Strategy, inv.Flavor, backendName)
	fmt.Fprintf(w, "output: %s\n", render(styled, outputStyle, inv.Output))
	for _, dir := range inv.Omitted {
		fmt.Fprintln(w, render(styled, warnStyle, "warning: "+dir+" not found, omitted"))
	}
	fmt.Fprintln(w, formatArgv(styled, inv.Argv()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
