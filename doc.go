// Package nativelink turns a compiled object file into a shared library
// using the native linking convention of the build target.
//
// Three incompatible conventions are reconciled behind one call: MSVC/COFF
// (lld-link), ELF (ld.lld) and Mach-O (ld64.lld), plus MinGW on Windows
// hosts. The caller supplies a compilation context (target triple and
// object path) and LinkerOptions; the library picks a strategy, builds the
// argument list and hands it to a backend.
//
// # Architecture Overview
//
//	nativelink/          Root package with the shared data model
//	├── target/          Target triple parsing and host detection
//	├── artifact/        Directory and stem derivation for the object file
//	├── strategy/        Per-platform argument builders and the selector
//	├── toolchain/       MSVC library directory discovery
//	├── backend/         Serialized backend invocation (exec, wasm, recorder)
//	├── linker/          Plan and Link entry points
//	├── errors/          Structured error types
//	└── cmd/nativelink/  Command line front end
//
// # Quick Start
//
//	l := linker.New(backend.NewExec(backend.ExecConfig{}), linker.DefaultOptions())
//
//	cc := nativelink.StaticContext{
//	    Triple: "x86_64-unknown-linux-gnu",
//	    Output: "/build/out/mylib.o",
//	}
//	res, err := l.Link(ctx, cc, nativelink.LinkerOptions{Libraries: []string{"m"}})
//	if err != nil {
//	    log.Fatal(err) // unsupported target, bad path, backend missing
//	}
//	if !res.Success {
//	    fmt.Fprint(os.Stderr, res.Diagnostics)
//	}
//	fmt.Println(res.Output) // /build/out/libmylib.so
//
// # Output Naming
//
// The shared library is written next to the object file:
//
//   - Windows: <stem>.dll
//   - Linux:   lib<stem>.so
//   - macOS:   lib<stem>.dylib
//
// # Thread Safety
//
// Linker is safe for concurrent use. Backend calls are serialized by a
// process-wide lock because in-process linkers keep global state.
package nativelink
