// Package parse is the recursive-descent parser for template bodies. It
// consumes token trees and builds an ast.Template, stopping at the first
// structural error.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/source"
	"github.com/kilianc/tidos/internal/tidos/token"
)

var (
	tagName   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*(-[A-Za-z0-9]+)*$`)
	goIdent   = regexp.MustCompile(`^[\p{L}_][\p{L}\p{Nd}_]*$`)
	blankCase = map[string]bool{"_": true, "default": true}
)

type parser struct {
	src []byte
}

// Parse parses the token trees of one macro body. src is the whole file the
// tokens were scanned from; span is the body's extent, used for the
// template's own position.
func Parse(src []byte, toks []token.Token, span source.Span) (*ast.Template, error) {
	p := &parser{src: src}
	c := token.NewCursor(toks)
	nodes, err := p.nodes(c)
	if err != nil {
		return nil, err
	}
	if !c.EOF() {
		return nil, p.stray(c)
	}
	return &ast.Template{Nodes: nodes, Span: span}, nil
}

// nodes parses content until EOF or a boundary: a closing tag or a {/...}
// or {:...} marker. The caller decides whether the boundary is its own.
func (p *parser) nodes(c *token.Cursor) ([]ast.Node, error) {
	var out []ast.Node
	for !c.EOF() && !atBoundary(c) {
		n, err := p.node(c)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func atBoundary(c *token.Cursor) bool {
	if c.PeekPunct(0, "<") && c.PeekPunct(1, "/") {
		return true
	}
	t, ok := c.Peek(0)
	return ok && (isMarker(t, "/") || isMarker(t, ":"))
}

func (p *parser) node(c *token.Cursor) (ast.Node, error) {
	t, _ := c.Peek(0)
	switch {
	case t.IsPunct("<"):
		if !c.PeekKind(1, token.Ident) {
			return nil, source.Errorf(t.Span, "expected a tag name after `<`, like <p> or <custom-element>")
		}
		return p.element(c)
	case t.IsPunct("@"):
		return p.raw(c)
	case t.IsGroup(token.Brace):
		return p.brace(c)
	default:
		return p.text(c), nil
	}
}

// raw parses @html{expr}.
func (p *parser) raw(c *token.Cursor) (ast.Node, error) {
	at := c.Next()
	kw, ok := c.Peek(0)
	if !ok || !kw.IsIdent("html") {
		span := at.Span
		found := "end of input"
		if ok {
			span = at.Span.To(kw.Span)
			found = kw.Describe()
		}
		return nil, source.Errorf(span, "expected `html` after `@`, found %s; raw markup is written @html{expr}", found)
	}
	c.Next()
	g, ok := c.Peek(0)
	if !ok || g.Kind != token.Group {
		return nil, source.Errorf(at.Span.To(kw.Span), "expected a group after @html, like @html{expr}")
	}
	c.Next()
	code := codeOf(p.src, g.Children)
	if code.Empty() {
		return nil, source.Errorf(at.Span.To(g.Span), "@html{} has no expression")
	}
	return &ast.RawExpr{Code: code}, nil
}

// brace parses {expr} or dispatches a {#...} control construct.
func (p *parser) brace(c *token.Cursor) (ast.Node, error) {
	g := c.Next()
	if len(g.Children) > 0 && g.Children[0].IsPunct("#") {
		return p.control(c, g)
	}
	code := codeOf(p.src, g.Children)
	if code.Empty() {
		return nil, source.Errorf(g.Span, "empty interpolation `{}`")
	}
	return &ast.Expr{Code: code}, nil
}

// text accumulates plain tokens until `<` or a brace group.
func (p *parser) text(c *token.Cursor) ast.Node {
	var run []token.Token
	for !c.EOF() {
		t, _ := c.Peek(0)
		if t.IsPunct("<") || t.IsGroup(token.Brace) {
			break
		}
		run = append(run, c.Next())
	}
	span := run[0].Span.To(run[len(run)-1].Span)
	return &ast.Text{Value: normalize(run), Span: span}
}

// normalize joins a token run into display text. Adjacent words always get
// one space; punctuation glues to the word on its left; otherwise a single
// space is kept only where the source had whitespace.
func normalize(run []token.Token) string {
	var b strings.Builder
	for i, t := range run {
		if i > 0 && separated(run[i-1], t) {
			b.WriteByte(' ')
		}
		switch t.Kind {
		case token.Group:
			b.WriteString(t.Text)
			b.WriteString(normalize(t.Children))
			b.WriteString(closer(t.Delim))
		case token.Literal:
			b.WriteString(literalText(t))
		default:
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

func separated(prev, cur token.Token) bool {
	prevWord := prev.Kind == token.Ident || prev.Kind == token.Literal
	curWord := cur.Kind == token.Ident || cur.Kind == token.Literal
	switch {
	case prevWord && curWord:
		return true
	case cur.Kind == token.Punct:
		return !prevWord && prev.Spacing == token.Alone
	default:
		return prev.Spacing == token.Alone
	}
}

func closer(d token.Delim) string {
	switch d {
	case token.Paren:
		return ")"
	case token.Bracket:
		return "]"
	default:
		return "}"
	}
}

// literalText is the rendered value of a literal token: string and rune
// literals are unquoted, numbers are kept as written.
func literalText(t token.Token) string {
	if t.Text == "" {
		return ""
	}
	switch t.Text[0] {
	case '"', '`', '\'':
		if s, err := strconv.Unquote(t.Text); err == nil {
			return s
		}
	}
	return t.Text
}

// codeOf returns the source text spanned by toks as an opaque fragment.
func codeOf(src []byte, toks []token.Token) ast.Code {
	if len(toks) == 0 {
		return ast.Code{}
	}
	span := toks[0].Span.To(toks[len(toks)-1].Span)
	return ast.Code{Src: string(src[span.Start:span.End]), Span: span}
}

// isMarker reports whether t is a brace group whose contents start with the
// punctuation ch followed by the given identifiers.
func isMarker(t token.Token, ch string, words ...string) bool {
	if !t.IsGroup(token.Brace) || len(t.Children) < 1+len(words) || !t.Children[0].IsPunct(ch) {
		return false
	}
	for i, w := range words {
		if !t.Children[i+1].IsIdent(w) {
			return false
		}
	}
	return true
}

func markerName(t token.Token) string {
	if len(t.Children) > 1 && t.Children[1].Kind == token.Ident {
		return t.Children[0].Text + t.Children[1].Text
	}
	return t.Children[0].Text
}

// stray reports a boundary that no enclosing construct claimed.
func (p *parser) stray(c *token.Cursor) error {
	t, _ := c.Peek(0)
	if t.IsPunct("<") {
		if name, n, ok := peekName(c, 2); ok && c.PeekPunct(n, ">") {
			end, _ := c.Peek(n)
			return source.Errorf(t.Span.To(end.Span), "unexpected closing tag </%s> without a matching opening tag", name)
		}
		return source.Errorf(t.Span, "unexpected `</`")
	}
	switch {
	case isMarker(t, ":", "case"):
		return source.Errorf(t.Span, "{:case} outside of {#match}")
	case isMarker(t, ":"):
		return source.Errorf(t.Span, "{%s} outside of {#if}", markerName(t))
	default:
		return source.Errorf(t.Span, "unexpected {%s} without a matching opening tag", markerName(t))
	}
}

// name consumes an identifier with hyphenated continuations, such as
// custom-element or data-id.
func (p *parser) name(c *token.Cursor, what string) (string, source.Span, error) {
	t, ok := c.Peek(0)
	if !ok || t.Kind != token.Ident {
		found := "end of input"
		span := source.Span{Start: len(p.src), End: len(p.src)}
		if ok {
			found, span = t.Describe(), t.Span
		}
		return "", span, source.Errorf(span, "expected %s, found %s", what, found)
	}
	name, n, _ := peekName(c, 0)
	last, _ := c.Peek(n - 1)
	span := t.Span.To(last.Span)
	for i := 0; i < n; i++ {
		c.Next()
	}
	return name, span, nil
}

// peekName reads a hyphenated name starting k tokens ahead without
// consuming it. It returns the name and the lookahead index just past it.
func peekName(c *token.Cursor, k int) (string, int, bool) {
	t, ok := c.Peek(k)
	if !ok || t.Kind != token.Ident {
		return "", k, false
	}
	name := t.Text
	k++
	for c.PeekPunct(k, "-") {
		next, ok := c.Peek(k + 1)
		if !ok || !(next.Kind == token.Ident || next.Kind == token.Literal && isDigits(next.Text)) {
			break
		}
		name += "-" + next.Text
		k += 2
	}
	return name, k, true
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isComponentName(tag string) bool {
	r, _ := utf8.DecodeRuneInString(tag)
	return unicode.IsUpper(r)
}
