// Package compile expands the template macro sites of a .tidos source file
// into plain Go and returns the gofmt'd result.
package compile

import (
	"errors"
	"fmt"
	"go/format"
	"go/parser"
	gotoken "go/token"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kilianc/tidos/internal/tidos/source"
	"github.com/kilianc/tidos/internal/tidos/token"
)

// DefaultRuntime is the import path generated code calls into.
const DefaultRuntime = "github.com/kilianc/tidos/pkg/tidos"

type Compiler struct {
	// Runtime is the runtime import path; DefaultRuntime when empty.
	Runtime string
	// Root, when set, is the directory site ids are made relative to, so
	// generated output does not depend on where the module is checked out.
	Root string
	// ReadFile loads the stylesheets named by css!(…); os.ReadFile when nil.
	ReadFile func(name string) ([]byte, error)
}

// CompileFile compiles src with the default Compiler.
func CompileFile(path string, src []byte) ([]byte, error) {
	return (&Compiler{}).CompileFile(path, src)
}

// CompileFile rewrites every view!, page!, head! and css! site in src and
// returns formatted Go source. Template errors are *source.Error values
// positioned in path.
func (c *Compiler) CompileFile(path string, src []byte) ([]byte, error) {
	fset := gotoken.NewFileSet()
	file := fset.AddFile(path, -1, len(src))

	flat, err := token.Scan(file, src)
	if err != nil {
		return nil, locate(err, file)
	}

	runtime := c.Runtime
	if runtime == "" {
		runtime = DefaultRuntime
	}
	qualifier, imported := runtimeName(path, src, runtime)

	u := &unit{
		c:         c,
		path:      path,
		key:       c.siteKey(path),
		src:       src,
		flat:      flat,
		qualifier: qualifier,
	}
	out, err := u.expand(0, len(src))
	if err != nil {
		return nil, locate(err, file)
	}
	if u.runtime && !imported {
		if at := packageEnd(flat); at >= 0 {
			out = out[:at] + "\n\nimport " + qualifier + " " + strconv.Quote(runtime) + "\n" + out[at:]
		}
	}

	header := "// Code generated by tidos from " + filepath.Base(path) + ". DO NOT EDIT.\n\n"
	formatted, err := format.Source([]byte(header + out))
	if err != nil {
		return nil, fmt.Errorf("%s: generated code is not valid Go: %w", path, err)
	}
	return formatted, nil
}

func (c *Compiler) siteKey(path string) string {
	if c.Root != "" {
		if rel, err := filepath.Rel(c.Root, path); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(path)
}

func (c *Compiler) readFile(name string) ([]byte, error) {
	if c.ReadFile != nil {
		return c.ReadFile(name)
	}
	return os.ReadFile(name)
}

func locate(err error, file *gotoken.File) error {
	var se *source.Error
	if errors.As(err, &se) {
		se.Locate(file)
	}
	return err
}

// runtimeName returns the name the file imports the runtime under, and
// whether it imports it at all. Files that do not import it get the
// default name.
func runtimeName(path string, src []byte, runtime string) (string, bool) {
	f, err := parser.ParseFile(gotoken.NewFileSet(), path, src, parser.ImportsOnly)
	if err != nil {
		return "tidos", false
	}
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil || p != runtime {
			continue
		}
		if imp.Name == nil {
			return "tidos", true
		}
		switch imp.Name.Name {
		case "_":
			continue
		case ".":
			return "", true
		default:
			return imp.Name.Name, true
		}
	}
	return "tidos", false
}

// packageEnd returns the byte offset just past the package clause.
func packageEnd(flat []token.Token) int {
	for i := 0; i+1 < len(flat); i++ {
		if flat[i].IsIdent("package") && flat[i+1].Kind == token.Ident {
			return flat[i+1].Span.End
		}
	}
	return -1
}
