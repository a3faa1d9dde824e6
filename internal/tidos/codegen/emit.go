package codegen

import (
	"fmt"
	"go/parser"
	"regexp"
	"strconv"
	"strings"

	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/source"
)

// Buffer is the variable generated code accumulates output in.
const Buffer = "_tidos"

var binderIdent = regexp.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_]*$`)

type Options struct {
	// Runtime is the qualifier of the runtime package, "" for a dot import.
	Runtime string
	// Page names the *Page variable components render against.
	Page string
	// Rewrite returns the Go source emitted for an opaque fragment. Nil
	// emits fragments verbatim.
	Rewrite func(ast.Code) (string, error)
}

// Expr prints steps as a Go expression of type string. A plan that is a
// single literal prints as that string literal.
func Expr(steps []Step, opts Options) (string, error) {
	if lit, ok := Literal(steps); ok {
		return strconv.Quote(lit), nil
	}
	if opts.Page == "" {
		opts.Page = "page"
	}
	e := &emitter{opts: opts}
	e.line("func() string {")
	e.line("var %s %s", Buffer, e.qualify("Buffer"))
	if err := e.steps(steps); err != nil {
		return "", err
	}
	e.line("return %s.String()", Buffer)
	e.b.WriteString("}()")
	return e.b.String(), nil
}

// Literal returns the output of a plan that needs no runtime support.
func Literal(steps []Step) (string, bool) {
	switch len(steps) {
	case 0:
		return "", true
	case 1:
		t, ok := steps[0].(Text)
		return t.Value, ok
	}
	return "", false
}

type emitter struct {
	b    strings.Builder
	opts Options
}

func (e *emitter) line(format string, args ...any) {
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) qualify(name string) string {
	if e.opts.Runtime == "" {
		return name
	}
	return e.opts.Runtime + "." + name
}

func (e *emitter) code(c ast.Code) (string, error) {
	if e.opts.Rewrite == nil {
		return c.Src, nil
	}
	return e.opts.Rewrite(c)
}

// expr is code for a fragment that must be a single Go expression. It is
// checked with go/parser so a typo is reported at its template position
// instead of somewhere in the generated file.
func (e *emitter) expr(c ast.Code) (string, error) {
	src, err := e.code(c)
	if err != nil {
		return "", err
	}
	if _, err := parser.ParseExpr(src); err != nil {
		return "", source.Errorf(c.Span, "invalid Go expression `%s`: %v", c.Src, err)
	}
	return src, nil
}

func (e *emitter) write(expr string) {
	e.line("%s.WriteString(%s)", Buffer, expr)
}

func (e *emitter) steps(steps []Step) error {
	for _, s := range steps {
		if err := e.step(s); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) step(s Step) error {
	switch s := s.(type) {
	case Text:
		e.write(strconv.Quote(s.Value))
	case Escaped:
		src, err := e.expr(s.Expr)
		if err != nil {
			return err
		}
		e.write(e.qualify("Escape") + "(" + src + ")")
	case Raw:
		src, err := e.expr(s.Expr)
		if err != nil {
			return err
		}
		e.write(src)
	case Toggle:
		cond, err := e.expr(s.Cond)
		if err != nil {
			return err
		}
		e.line("if %s {", cond)
		e.write(strconv.Quote(" " + s.Name))
		e.line("}")
	case Call:
		fields := make([]string, 0, len(s.Fields))
		for _, f := range s.Fields {
			v, err := e.expr(f.Value)
			if err != nil {
				return err
			}
			fields = append(fields, f.Name+": "+v)
		}
		e.write(fmt.Sprintf("%s(%s, &%s{%s})", e.qualify("Render"), e.opts.Page, s.Component, strings.Join(fields, ", ")))
	case Loop:
		return e.loop(s)
	case If:
		return e.ifChain(s)
	case Switch:
		return e.switchCases(s)
	default:
		return fmt.Errorf("codegen: unknown step %T", s)
	}
	return nil
}

func (e *emitter) loop(s Loop) error {
	iterable, err := e.expr(s.Iterable)
	if err != nil {
		return err
	}
	binder := ""
	if !s.Binder.Empty() {
		if binder, err = e.code(s.Binder); err != nil {
			return err
		}
		binder = strings.TrimSpace(binder)
	}
	switch {
	case binder == "" || binder == "_":
		e.line("for range %s {", iterable)
	default:
		// A single binder names the element, as in `for x in xs`; Go's
		// one-variable range would bind the index instead.
		if !strings.Contains(binder, ",") {
			binder = "_, " + binder
		}
		e.line("for %s := range %s {", binder, iterable)
		// A body that ignores its binder must still compile.
		for _, name := range strings.Split(binder, ",") {
			name = strings.TrimSpace(name)
			if name != "_" && binderIdent.MatchString(name) {
				e.line("_ = %s", name)
			}
		}
	}
	if err := e.steps(s.Body); err != nil {
		return err
	}
	e.line("}")
	return nil
}

func (e *emitter) ifChain(s If) error {
	for i, br := range s.Branches {
		cond, err := e.expr(br.Cond)
		if err != nil {
			return err
		}
		if i == 0 {
			e.line("if %s {", cond)
		} else {
			e.line("} else if %s {", cond)
		}
		if err := e.steps(br.Body); err != nil {
			return err
		}
	}
	if s.HasElse {
		e.line("} else {")
		if err := e.steps(s.Else); err != nil {
			return err
		}
	}
	e.line("}")
	return nil
}

func (e *emitter) switchCases(s Switch) error {
	subject, err := e.expr(s.Subject)
	if err != nil {
		return err
	}
	e.line("switch %s {", subject)
	for _, c := range s.Cases {
		if c.Default {
			e.line("default:")
		} else {
			pattern, err := e.code(c.Pattern)
			if err != nil {
				return err
			}
			e.line("case %s:", pattern)
		}
		if err := e.steps(c.Body); err != nil {
			return err
		}
	}
	e.line("}")
	return nil
}
