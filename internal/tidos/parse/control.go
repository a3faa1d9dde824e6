package parse

import (
	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/source"
	"github.com/kilianc/tidos/internal/tidos/token"
)

// control dispatches on the keyword after `{#`.
func (p *parser) control(c *token.Cursor, g token.Token) (ast.Node, error) {
	if len(g.Children) < 2 || g.Children[1].Kind != token.Ident {
		return nil, source.Errorf(g.Span, "expected for, if or match after `{#`")
	}
	switch kw := g.Children[1]; kw.Text {
	case "for":
		return p.forLoop(c, g)
	case "if":
		return p.ifChain(c, g)
	case "match":
		return p.match(c, g)
	default:
		return nil, source.Errorf(kw.Span, "unknown control tag {#%s}: expected for, if or match", kw.Text)
	}
}

// forLoop parses {#for binder in iterable} body {/for}. The split happens on
// the first `in` at the group's top level.
func (p *parser) forLoop(c *token.Cursor, g token.Token) (ast.Node, error) {
	head := g.Children[2:]
	in := -1
	for i, t := range head {
		if t.IsIdent("in") {
			in = i
			break
		}
	}
	if in < 0 {
		return nil, source.Errorf(g.Span, "missing `in` in {#for}: write {#for item in items}")
	}
	iterable := codeOf(p.src, head[in+1:])
	if iterable.Empty() {
		return nil, source.Errorf(g.Span, "empty right side of `in` in {#for}")
	}
	body, err := p.nodes(c)
	if err != nil {
		return nil, err
	}
	if err := expectClose(c, g, "for"); err != nil {
		return nil, err
	}
	return &ast.For{
		Binder:   codeOf(p.src, head[:in]),
		Iterable: iterable,
		Body:     body,
		Span:     g.Span,
	}, nil
}

func (p *parser) ifChain(c *token.Cursor, g token.Token) (ast.Node, error) {
	cond := codeOf(p.src, g.Children[2:])
	if cond.Empty() {
		return nil, source.Errorf(g.Span, "{#if} has an empty condition")
	}
	body, err := p.nodes(c)
	if err != nil {
		return nil, err
	}
	n := &ast.If{Branches: []ast.Branch{{Cond: cond, Body: body}}, Span: g.Span}

	for {
		t, ok := c.Peek(0)
		if !ok {
			break
		}
		if isMarker(t, ":", "else", "if") {
			if n.HasElse {
				return nil, source.Errorf(t.Span, "{:else if} after {:else}")
			}
			c.Next()
			cond := codeOf(p.src, t.Children[3:])
			if cond.Empty() {
				return nil, source.Errorf(t.Span, "{:else if} has an empty condition")
			}
			body, err := p.nodes(c)
			if err != nil {
				return nil, err
			}
			n.Branches = append(n.Branches, ast.Branch{Cond: cond, Body: body})
			continue
		}
		if isMarker(t, ":", "else") {
			if n.HasElse {
				return nil, source.Errorf(t.Span, "duplicate {:else}")
			}
			if len(t.Children) > 2 {
				return nil, source.Errorf(t.Span, "unexpected tokens after {:else}; did you mean {:else if …}?")
			}
			c.Next()
			body, err := p.nodes(c)
			if err != nil {
				return nil, err
			}
			n.Else, n.HasElse = body, true
			continue
		}
		break
	}
	if err := expectClose(c, g, "if"); err != nil {
		return nil, err
	}
	return n, nil
}

func (p *parser) match(c *token.Cursor, g token.Token) (ast.Node, error) {
	subject := codeOf(p.src, g.Children[2:])
	if subject.Empty() {
		return nil, source.Errorf(g.Span, "{#match} has no subject to match against")
	}
	m := &ast.Match{Subject: subject, Span: g.Span}
	if t, ok := c.Peek(0); ok && !atBoundary(c) {
		return nil, source.Errorf(t.Span, "expected {:case …} or {/match}, found %s", t.Describe())
	}

	hasDefault := false
	for {
		t, ok := c.Peek(0)
		if !ok || !isMarker(t, ":", "case") {
			break
		}
		c.Next()
		pattern := codeOf(p.src, t.Children[2:])
		if pattern.Empty() {
			return nil, source.Errorf(t.Span, "{:case} is missing a pattern")
		}
		if hasDefault {
			return nil, source.Errorf(t.Span, "unreachable {:case %s} after {:case _}: the catch-all case must come last", pattern.Src)
		}
		def := blankCase[pattern.Src]
		hasDefault = def
		body, err := p.nodes(c)
		if err != nil {
			return nil, err
		}
		m.Cases = append(m.Cases, ast.Case{Pattern: pattern, Default: def, Body: body})
	}
	if err := expectClose(c, g, "match"); err != nil {
		return nil, err
	}
	return m, nil
}

// expectClose consumes {/kw}. A missing marker is reported at the opening
// group so the diagnostic points at the unterminated construct.
func expectClose(c *token.Cursor, open token.Token, kw string) error {
	t, ok := c.Peek(0)
	if !ok || !isMarker(t, "/", kw) {
		return source.Errorf(open.Span, "unterminated {#%s}: missing {/%s}", kw, kw)
	}
	if len(t.Children) > 2 {
		return source.Errorf(t.Span, "unexpected tokens in {/%s}", kw)
	}
	c.Next()
	return nil
}
