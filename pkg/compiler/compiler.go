// Package compiler is the public entry point of the template compiler.
package compiler

import "github.com/kilianc/tidos/internal/tidos/compile"

// Options configures a compile. The zero value targets the default runtime
// and derives site ids from the path as given.
type Options struct {
	// Runtime is the import path of the runtime package generated code
	// calls into.
	Runtime string
	// Root makes site ids relative to a module root.
	Root string
}

// CompileFile compiles a .tidos source (a Go file with embedded view!{…},
// page!{…}, head!{…} and css!(…) sites) into a gofmt'd Go source file.
//
// The result is suitable for writing to "<path>.go" (i.e. "*.tidos.go") and checking in.
func CompileFile(path string, src []byte) ([]byte, error) {
	return compile.CompileFile(path, src)
}

// CompileFileWith is CompileFile with explicit options.
func CompileFileWith(path string, src []byte, opts Options) ([]byte, error) {
	c := &compile.Compiler{Runtime: opts.Runtime, Root: opts.Root}
	return c.CompileFile(path, src)
}
