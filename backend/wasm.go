package backend

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
	"go.uber.org/zap"

	nativelink "github.com/wippyai/native-link"
	"github.com/wippyai/native-link/errors"
)

// WasmConfig configures the Wasm backend.
type WasmConfig struct {
	// Mounts maps host directories to guest paths. Nil mounts the host
	// root at "/" so absolute artifact paths resolve unchanged.
	Mounts map[string]string
	// Env is the guest environment.
	Env map[string]string
	// ProgramName is argv[0] inside the guest. Defaults to "lld".
	ProgramName string
	// CacheDir enables wazero's on-disk compilation cache.
	CacheDir string
}

// Wasm runs a WASI (preview1) build of lld inside the process. The module
// is compiled once; each Link instantiates it anonymously, runs _start and
// discards the instance.
type Wasm struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	cache    wazero.CompilationCache
	cfg      WasmConfig
}

// LoadWasm reads a linker module from disk and creates a Wasm backend.
func LoadWasm(ctx context.Context, path string, cfg WasmConfig) (*Wasm, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.BackendNotFound("wasm", path, err)
	}
	return NewWasm(ctx, data, cfg)
}

// NewWasm compiles a linker module and creates a Wasm backend.
func NewWasm(ctx context.Context, module []byte, cfg WasmConfig) (*Wasm, error) {
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)

	var cache wazero.CompilationCache
	if cfg.CacheDir != "" {
		c, err := wazero.NewCompilationCacheWithDir(cfg.CacheDir)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseBackend, errors.KindInvalidInput, err, "open compilation cache")
		}
		cache = c
		runtimeCfg = runtimeCfg.WithCompilationCache(cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	closeAll := func() {
		rt.Close(ctx)
		if cache != nil {
			cache.Close(ctx)
		}
	}

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		closeAll()
		return nil, errors.Wrap(errors.PhaseBackend, errors.KindNotInitialized, err, "instantiate WASI")
	}

	compiled, err := rt.CompileModule(ctx, module)
	if err != nil {
		closeAll()
		return nil, errors.Wrap(errors.PhaseBackend, errors.KindInvalidInput, err, "compile linker module")
	}

	return &Wasm{
		runtime:  rt,
		compiled: compiled,
		cache:    cache,
		cfg:      cfg,
	}, nil
}

func (w *Wasm) Name() string { return "wasm" }

func (w *Wasm) programName() string {
	if w.cfg.ProgramName == "" {
		return multiCallDriver
	}
	return w.cfg.ProgramName
}

func (w *Wasm) moduleConfig(inv nativelink.Invocation, stdout, stderr *bytes.Buffer) wazero.ModuleConfig {
	fsCfg := wazero.NewFSConfig()
	if w.cfg.Mounts == nil {
		fsCfg = fsCfg.WithDirMount("/", "/")
	} else {
		hosts := make([]string, 0, len(w.cfg.Mounts))
		for host := range w.cfg.Mounts {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)
		for _, host := range hosts {
			fsCfg = fsCfg.WithDirMount(host, w.cfg.Mounts[host])
		}
	}

	argv := append([]string{w.programName()}, inv.Argv()...)
	modCfg := wazero.NewModuleConfig().
		WithName("").
		WithArgs(argv...).
		WithStdout(stdout).
		WithStderr(stderr).
		WithFSConfig(fsCfg).
		WithSysWalltime().
		WithSysNanotime()

	keys := make([]string, 0, len(w.cfg.Env))
	for k := range w.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		modCfg = modCfg.WithEnv(k, w.cfg.Env[k])
	}
	return modCfg
}

// Link runs the guest linker to completion.
func (w *Wasm) Link(ctx context.Context, inv nativelink.Invocation) (nativelink.Result, error) {
	var stdout, stderr bytes.Buffer

	mod, err := w.runtime.InstantiateModule(ctx, w.compiled, w.moduleConfig(inv, &stdout, &stderr))
	if mod != nil {
		defer mod.Close(ctx)
	}

	res := nativelink.Result{
		Strategy:    inv.Strategy,
		Output:      inv.Output,
		Diagnostics: stdout.String() + stderr.String(),
	}

	if err == nil {
		res.Success = true
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("wasm backend: link of %s interrupted: %w", inv.Output, ctxErr)
	}

	var exitErr *sys.ExitError
	if stderrors.As(err, &exitErr) {
		if exitErr.ExitCode() == 0 {
			res.Success = true
			return res, nil
		}
		res.ExitCode = int(exitErr.ExitCode())
		return res, nil
	}

	// A trap inside the guest is a crashed linker, reported like any failed link
	Logger().Warn("guest linker trapped", zap.String("output", inv.Output), zap.Error(err))
	if res.Diagnostics != "" && res.Diagnostics[len(res.Diagnostics)-1] != '\n' {
		res.Diagnostics += "\n"
	}
	res.Diagnostics += err.Error()
	res.ExitCode = -1
	return res, nil
}

// Close releases the compiled module and the runtime.
func (w *Wasm) Close(ctx context.Context) error {
	err := w.runtime.Close(ctx)
	if w.cache != nil {
		if cerr := w.cache.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
