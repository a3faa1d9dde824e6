package compile

import (
	gotoken "go/token"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kilianc/tidos/internal/tidos/ast"
	"github.com/kilianc/tidos/internal/tidos/codegen"
	"github.com/kilianc/tidos/internal/tidos/parse"
	"github.com/kilianc/tidos/internal/tidos/source"
	"github.com/kilianc/tidos/internal/tidos/token"
)

// pageVar is the *Page identifier page! binds and components render against.
const pageVar = "page"

type macro uint8

const (
	viewMacro macro = iota + 1
	pageMacro
	headMacro
	cssMacro
)

var macros = map[string]macro{
	"view": viewMacro,
	"page": pageMacro,
	"head": headMacro,
	"css":  cssMacro,
}

// site is one name!{…} or css!(…) occurrence in the flat stream.
type site struct {
	kind  macro
	name  token.Token
	open  int // index of the opening delimiter
	close int // index of the matching closing delimiter
	span  source.Span
}

// unit is the state of one file compilation.
type unit struct {
	c         *Compiler
	path      string
	key       string
	src       []byte
	flat      []token.Token
	qualifier string
	// runtime is set once generated code refers to the runtime package.
	runtime bool
}

// expand copies src[start:end], replacing every macro site that begins in
// the range with its generated Go.
func (u *unit) expand(start, end int) (string, error) {
	var b strings.Builder
	pos := start
	i := sort.Search(len(u.flat), func(i int) bool { return u.flat[i].Span.Start >= start })
	for i < len(u.flat) && u.flat[i].Span.Start < end {
		s, ok, err := u.site(i)
		if err != nil {
			return "", err
		}
		if !ok {
			i++
			continue
		}
		out, err := u.expandSite(s)
		if err != nil {
			return "", err
		}
		b.Write(u.src[pos:s.span.Start])
		b.WriteString(out)
		pos = s.span.End
		i = s.close + 1
	}
	b.Write(u.src[pos:end])
	return b.String(), nil
}

// site reports whether a macro site starts at flat[i].
func (u *unit) site(i int) (site, bool, error) {
	name := u.flat[i]
	kind, ok := macros[name.Text]
	if name.Kind != token.Ident || !ok || i+2 >= len(u.flat) {
		return site{}, false, nil
	}
	if i > 0 && u.flat[i-1].IsPunct(".") {
		return site{}, false, nil
	}
	bang, open := u.flat[i+1], u.flat[i+2]
	if !bang.IsPunct("!") || bang.Span.Start != name.Span.End || open.Kind != token.Open {
		return site{}, false, nil
	}
	want := "{"
	if kind == cssMacro {
		want = "("
	}
	if open.Text != want {
		return site{}, false, source.Errorf(name.Span.To(open.Span), "%s! takes %s…%s, found `%s`", name.Text, want, closeOf(want), open.Text)
	}

	var stack []token.Token
	for j := i + 2; j < len(u.flat); j++ {
		switch t := u.flat[j]; t.Kind {
		case token.Open:
			stack = append(stack, t)
		case token.Close:
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closeOf(top.Text) != t.Text {
				return site{}, false, source.Errorf(top.Span, "unclosed `%s`: found `%s` instead of `%s`", top.Text, t.Text, closeOf(top.Text))
			}
			if len(stack) == 0 {
				return site{
					kind:  kind,
					name:  name,
					open:  i + 2,
					close: j,
					span:  name.Span.To(u.flat[j].Span),
				}, true, nil
			}
		}
	}
	return site{}, false, source.Errorf(name.Span.To(open.Span), "unclosed %s!%s", name.Text, want)
}

func closeOf(open string) string {
	switch open {
	case "(":
		return ")"
	case "[":
		return "]"
	default:
		return "}"
	}
}

func (u *unit) expandSite(s site) (string, error) {
	inner := u.flat[s.open+1 : s.close]
	if s.kind == cssMacro {
		return u.css(s, inner)
	}

	trees, err := token.Tree(inner)
	if err != nil {
		return "", err
	}
	body := source.Span{Start: u.flat[s.open].Span.End, End: u.flat[s.close].Span.Start}
	tpl, err := parse.Parse(u.src, trees, body)
	if err != nil {
		return "", err
	}
	steps := codegen.Lower(tpl)
	if _, ok := codegen.Literal(steps); !ok || s.kind == pageMacro {
		u.runtime = true
	}
	expr, err := codegen.Expr(steps, codegen.Options{
		Runtime: u.qualifier,
		Page:    pageVar,
		Rewrite: u.rewrite,
	})
	if err != nil {
		return "", err
	}

	switch s.kind {
	case pageMacro:
		return "func() *" + u.qualify("Page") + " {\n" +
			pageVar + " := " + u.qualify("NewPage") + "()\n" +
			pageVar + ".Body = " + expr + "\n" +
			"return " + pageVar + "\n}()", nil
	case headMacro:
		return pageVar + ".AddHead(" + strconv.Quote(u.id(s)) + ", " + expr + ")", nil
	default:
		return expr, nil
	}
}

// css inlines the stylesheet named by css!("path") under a class unique to
// the site. The path is relative to the file being compiled.
func (u *unit) css(s site, inner []token.Token) (string, error) {
	if len(inner) != 1 || inner[0].Lit != gotoken.STRING {
		return "", source.Errorf(s.span, `css! takes a single string literal path, like css!("./card.css")`)
	}
	rel, err := strconv.Unquote(inner[0].Text)
	if err != nil || rel == "" {
		return "", source.Errorf(inner[0].Span, "invalid stylesheet path %s", inner[0].Text)
	}
	name := rel
	if !filepath.IsAbs(name) {
		name = filepath.Join(filepath.Dir(u.path), filepath.FromSlash(rel))
	}
	css, err := u.c.readFile(name)
	if err != nil {
		return "", source.Errorf(inner[0].Span, "reading stylesheet: %v", err)
	}
	class := "tidos-" + u.id(s)
	u.runtime = true
	return u.qualify("ScopedCSS") + "(" + pageVar + ", " + strconv.Quote(class) + ", " + strconv.Quote(string(css)) + ")", nil
}

// rewrite expands macro sites nested in an opaque fragment. Fragments that
// did not come from the source, such as the condition of an implicit
// toggle, are returned as is.
func (u *unit) rewrite(c ast.Code) (string, error) {
	if c.Span.End <= c.Span.Start {
		return c.Src, nil
	}
	return u.expand(c.Span.Start, c.Span.End)
}

func (u *unit) qualify(name string) string {
	if u.qualifier == "" {
		return name
	}
	return u.qualifier + "." + name
}

// id is a stable identifier for a site: the same file and offset always
// produce the same id, so regenerating unchanged sources is a no-op.
func (u *unit) id(s site) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(u.key+"#"+strconv.Itoa(s.span.Start))).String()
}
