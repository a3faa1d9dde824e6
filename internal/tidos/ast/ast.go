package ast

import "github.com/kilianc/tidos/internal/tidos/source"

// Template is the root of one parsed macro body.
type Template struct {
	Nodes []Node
	Span  source.Span
}

type Node interface {
	node()
	Pos() source.Span
}

// Code is an opaque host-language fragment, re-emitted verbatim.
type Code struct {
	Src  string
	Span source.Span
}

func (c Code) Empty() bool { return c.Src == "" }

// Text is normalized literal text between tags.
type Text struct {
	Value string
	Span  source.Span
}

func (*Text) node()              {}
func (t *Text) Pos() source.Span { return t.Span }

// Expr is an interpolation whose value is escaped on output.
type Expr struct {
	Code
}

func (*Expr) node()              {}
func (e *Expr) Pos() source.Span { return e.Span }

// RawExpr is an @html{...} interpolation inserted without escaping.
type RawExpr struct {
	Code
}

func (*RawExpr) node()              {}
func (e *RawExpr) Pos() source.Span { return e.Span }

type AttrKind int

const (
	AttrBool AttrKind = iota
	AttrString
	AttrExpr
)

type Attr struct {
	Key  string
	Kind AttrKind
	// Value is the literal text (for AttrString).
	Value string
	// Expr is the value's source: the literal as written for AttrString,
	// the group contents for AttrExpr.
	Expr Code
	// Toggle marks :name attributes, rendered bare when Expr (or the
	// variable named Key, for AttrBool) is true and omitted otherwise.
	Toggle bool
	Span   source.Span
}

type ElementKind int

const (
	Markup ElementKind = iota
	Component
)

func (k ElementKind) String() string {
	if k == Component {
		return "component"
	}
	return "element"
}

type Element struct {
	Tag         string
	Kind        ElementKind
	Attrs       []Attr
	Children    []Node
	SelfClosing bool
	// Span covers the opening tag only; diagnostics for unterminated
	// elements point there.
	Span source.Span
}

func (*Element) node()              {}
func (e *Element) Pos() source.Span { return e.Span }

// Control is implemented by the {#...} constructs.
type Control interface {
	Node
	control()
}

// For is {#for Binder in Iterable} Body {/for}.
type For struct {
	Binder   Code
	Iterable Code
	Body     []Node
	Span     source.Span
}

func (*For) node()              {}
func (*For) control()           {}
func (f *For) Pos() source.Span { return f.Span }

type Branch struct {
	Cond Code
	Body []Node
}

// If is an {#if}/{:else if}/{:else} chain. Else is nil when there is no
// {:else}; HasElse distinguishes an empty else body from a missing one.
type If struct {
	Branches []Branch
	Else     []Node
	HasElse  bool
	Span     source.Span
}

func (*If) node()              {}
func (*If) control()           {}
func (i *If) Pos() source.Span { return i.Span }

type Case struct {
	Pattern Code
	// Default is set for the `_` and `default` patterns.
	Default bool
	Body    []Node
}

// Match is {#match Subject} {:case Pattern} Body ... {/match}.
type Match struct {
	Subject Code
	Cases   []Case
	Span    source.Span
}

func (*Match) node()              {}
func (*Match) control()           {}
func (m *Match) Pos() source.Span { return m.Span }
