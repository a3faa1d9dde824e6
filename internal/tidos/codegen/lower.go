// Package codegen lowers a parsed template into an ordered plan of text
// emissions and prints that plan as Go source.
package codegen

import (
	"strings"

	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/plan"
)

// Step is one emission in a lowered template.
type Step interface {
	step()
}

// Text writes a literal.
type Text struct {
	Value string
}

// Escaped writes the escaped value of a string expression.
type Escaped struct {
	Expr ast.Code
}

// Raw writes the value of a string expression as is.
type Raw struct {
	Expr ast.Code
}

// Toggle writes ` Name` when Cond is true.
type Toggle struct {
	Name string
	Cond ast.Code
}

// Call renders a component built from Fields against the current page.
type Call struct {
	Component string
	Fields    []Field
}

type Field struct {
	Name  string
	Value ast.Code
}

type Loop struct {
	Binder   ast.Code
	Iterable ast.Code
	Body     []Step
}

type Branch struct {
	Cond ast.Code
	Body []Step
}

type If struct {
	Branches []Branch
	Else     []Step
	HasElse  bool
}

type Case struct {
	Pattern ast.Code
	Default bool
	Body    []Step
}

type Switch struct {
	Subject ast.Code
	Cases   []Case
}

func (Text) step()    {}
func (Escaped) step() {}
func (Raw) step()     {}
func (Toggle) step()  {}
func (Call) step()    {}
func (Loop) step()    {}
func (If) step()      {}
func (Switch) step()  {}

// Lower turns t into its emission plan. Static islands become single Text
// steps, and adjacent Text steps are always fused.
func Lower(t *ast.Template) []Step {
	l := &lowerer{cls: plan.NewClassifier()}
	return l.nodes(nil, t.Nodes)
}

type lowerer struct {
	cls *plan.Classifier
}

// push appends s, folding a literal into a preceding literal.
func push(steps []Step, s Step) []Step {
	t, ok := s.(Text)
	if !ok {
		return append(steps, s)
	}
	if t.Value == "" {
		return steps
	}
	if n := len(steps); n > 0 {
		if prev, ok := steps[n-1].(Text); ok {
			steps[n-1] = Text{Value: prev.Value + t.Value}
			return steps
		}
	}
	return append(steps, t)
}

func (l *lowerer) nodes(steps []Step, nodes []ast.Node) []Step {
	for _, is := range l.cls.Islands(nodes) {
		if is.Static {
			var b strings.Builder
			for _, n := range is.Nodes {
				renderStatic(&b, n)
			}
			steps = push(steps, Text{Value: b.String()})
			continue
		}
		steps = l.node(steps, is.Nodes[0])
	}
	return steps
}

func (l *lowerer) node(steps []Step, n ast.Node) []Step {
	switch t := n.(type) {
	case *ast.Text:
		return push(steps, Text{Value: t.Value})
	case *ast.Expr:
		return push(steps, Escaped{Expr: t.Code})
	case *ast.RawExpr:
		return push(steps, Raw{Expr: t.Code})
	case *ast.Element:
		if t.Kind == ast.Component {
			return push(steps, call(t))
		}
		return l.element(steps, t)
	case *ast.For:
		return push(steps, Loop{Binder: t.Binder, Iterable: t.Iterable, Body: l.nodes(nil, t.Body)})
	case *ast.If:
		s := If{HasElse: t.HasElse}
		for _, br := range t.Branches {
			s.Branches = append(s.Branches, Branch{Cond: br.Cond, Body: l.nodes(nil, br.Body)})
		}
		if t.HasElse {
			s.Else = l.nodes(nil, t.Else)
		}
		return push(steps, s)
	case *ast.Match:
		s := Switch{Subject: t.Subject}
		for _, cs := range t.Cases {
			s.Cases = append(s.Cases, Case{Pattern: cs.Pattern, Default: cs.Default, Body: l.nodes(nil, cs.Body)})
		}
		return push(steps, s)
	default:
		return steps
	}
}

// element lowers a markup element with at least one dynamic part. Static
// attributes are emitted first, fused into the `<tag` prefix; each dynamic
// attribute follows as its own step. Whether the prefix, the children and
// the closing tag end up in one literal or several depends only on which
// neighbours are dynamic, and push takes care of that.
func (l *lowerer) element(steps []Step, el *ast.Element) []Step {
	var open strings.Builder
	open.WriteString("<" + el.Tag)
	var dynamic []ast.Attr
	for _, a := range el.Attrs {
		if plan.IsStaticAttr(a) {
			writeAttr(&open, a)
		} else {
			dynamic = append(dynamic, a)
		}
	}
	steps = push(steps, Text{Value: open.String()})

	for _, a := range dynamic {
		if a.Toggle {
			cond := a.Expr
			if a.Kind == ast.AttrBool {
				// :checked reads the variable of the same name.
				cond = ast.Code{Src: a.Key}
			}
			steps = push(steps, Toggle{Name: a.Key, Cond: cond})
			continue
		}
		steps = push(steps, Text{Value: " " + a.Key + `="`})
		steps = push(steps, Escaped{Expr: a.Expr})
		steps = push(steps, Text{Value: `"`})
	}

	if el.SelfClosing {
		return push(steps, Text{Value: " />"})
	}
	steps = push(steps, Text{Value: ">"})
	steps = l.nodes(steps, el.Children)
	return push(steps, Text{Value: "</" + el.Tag + ">"})
}

func call(el *ast.Element) Call {
	c := Call{Component: el.Tag}
	for _, a := range el.Attrs {
		c.Fields = append(c.Fields, Field{Name: a.Key, Value: a.Expr})
	}
	return c
}

// renderStatic writes the fixed rendering of a static node.
func renderStatic(b *strings.Builder, n ast.Node) {
	switch t := n.(type) {
	case *ast.Text:
		b.WriteString(t.Value)
	case *ast.Element:
		b.WriteString("<" + t.Tag)
		for _, a := range t.Attrs {
			writeAttr(b, a)
		}
		if t.SelfClosing {
			b.WriteString(" />")
			return
		}
		b.WriteByte('>')
		for _, ch := range t.Children {
			renderStatic(b, ch)
		}
		b.WriteString("</" + t.Tag + ">")
	}
}

// writeAttr writes a static attribute. Literal values are source-controlled
// and written unescaped.
func writeAttr(b *strings.Builder, a ast.Attr) {
	b.WriteString(" " + a.Key)
	if a.Kind == ast.AttrString {
		b.WriteString(`="` + a.Value + `"`)
	}
}
