package parse

import (
	"strings"

	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/source"
	"github.com/kilianc/tidos/internal/tidos/token"
)

func (p *parser) element(c *token.Cursor) (ast.Node, error) {
	open := c.Next()
	tag, tagSpan, err := p.name(c, "a tag name")
	if err != nil {
		return nil, err
	}
	if !tagName.MatchString(tag) {
		return nil, source.Errorf(tagSpan, "invalid tag name %q: use letters, digits and inner hyphens", tag)
	}
	el := &ast.Element{Tag: tag, Span: open.Span.To(tagSpan)}
	if isComponentName(tag) {
		el.Kind = ast.Component
	}

	for {
		if c.EOF() {
			return nil, source.Errorf(el.Span, "unterminated start tag <%s: expected `>` or `/>`", tag)
		}
		if c.PeekPunct(0, "/") && c.PeekPunct(1, ">") {
			c.Next()
			end := c.Next()
			el.SelfClosing = true
			el.Span = el.Span.To(end.Span)
			break
		}
		if c.PeekPunct(0, ">") {
			end := c.Next()
			el.Span = el.Span.To(end.Span)
			break
		}
		a, err := p.attr(c)
		if err != nil {
			return nil, err
		}
		el.Attrs = append(el.Attrs, a)
	}
	if err := checkAttrs(el); err != nil {
		return nil, err
	}
	if el.SelfClosing {
		return el, nil
	}

	children, err := p.nodes(c)
	if err != nil {
		return nil, err
	}
	if !closes(c, tag) {
		return nil, source.Errorf(el.Span, "missing closing tag </%s>", tag)
	}
	if el.Kind == ast.Component && len(children) > 0 {
		return nil, source.Errorf(el.Span, "component <%s> cannot have children", tag)
	}
	el.Children = children
	return el, nil
}

// closes consumes `</tag>` if it comes next.
func closes(c *token.Cursor, tag string) bool {
	if !c.PeekPunct(0, "<") || !c.PeekPunct(1, "/") {
		return false
	}
	name, n, ok := peekName(c, 2)
	if !ok || name != tag || !c.PeekPunct(n, ">") {
		return false
	}
	for i := 0; i <= n; i++ {
		c.Next()
	}
	return true
}

func (p *parser) attr(c *token.Cursor) (ast.Attr, error) {
	start, _ := c.Peek(0)
	var a ast.Attr
	if start.IsPunct(":") {
		c.Next()
		a.Toggle = true
	}
	name, span, err := p.name(c, "an attribute name, `>` or `/>`")
	if err != nil {
		return a, err
	}
	a.Key = name
	a.Span = start.Span.To(span)

	if !c.PeekPunct(0, "=") {
		a.Kind = ast.AttrBool
		return a, nil
	}
	eq := c.Next()
	v, ok := c.Peek(0)
	switch {
	case ok && v.Kind == token.Literal:
		if a.Toggle {
			return a, source.Errorf(a.Span.To(v.Span),
				"toggle attribute :%s cannot take a literal value; write %s=%s or :%s={%s}",
				name, name, v.Text, name, v.Text)
		}
		c.Next()
		a.Kind = ast.AttrString
		a.Value = literalText(v)
		a.Expr = ast.Code{Src: v.Text, Span: v.Span}
	case ok && v.IsGroup(token.Brace):
		c.Next()
		code := codeOf(p.src, v.Children)
		if code.Empty() {
			return a, source.Errorf(v.Span, "empty value `{}` for attribute %s", name)
		}
		a.Kind = ast.AttrExpr
		a.Expr = code
	default:
		return a, source.Errorf(a.Span.To(eq.Span), "expected a literal \"…\" or a group {…} after %s=", name)
	}
	a.Span = a.Span.To(v.Span)
	return a, nil
}

// checkAttrs enforces the attribute forms each element kind can lower.
func checkAttrs(el *ast.Element) error {
	for _, a := range el.Attrs {
		if el.Kind == ast.Component {
			switch {
			case a.Kind == ast.AttrBool:
				return source.Errorf(a.Span, "component attribute %s needs a value: %s={…}", a.Key, a.Key)
			case a.Toggle:
				return source.Errorf(a.Span, "toggle attribute :%s is not supported on component <%s>", a.Key, el.Tag)
			case !goIdent.MatchString(a.Key):
				return source.Errorf(a.Span, "component field %q is not a valid Go identifier", a.Key)
			}
			continue
		}
		if a.Toggle && a.Kind == ast.AttrBool && !goIdent.MatchString(a.Key) {
			return source.Errorf(a.Span, "toggle attribute :%s needs a condition since %s is not a Go identifier; write :%s={cond}",
				a.Key, a.Key, a.Key)
		}
		if strings.ContainsAny(a.Key, "\"'<>=/") {
			return source.Errorf(a.Span, "invalid attribute name %q", a.Key)
		}
	}
	return nil
}
