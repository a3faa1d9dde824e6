package token

import (
	"errors"
	gotoken "go/token"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kilianc/tidos/internal/tidos/source"
)

func scan(t *testing.T, src string) ([]Token, error) {
	t.Helper()
	file := gotoken.NewFileSet().AddFile("t.tidos", -1, len(src))
	return Scan(file, []byte(src))
}

type flat struct {
	Kind    Kind
	Text    string
	Spacing Spacing
}

func summarize(toks []Token) []flat {
	out := make([]flat, len(toks))
	for i, t := range toks {
		out[i] = flat{Kind: t.Kind, Text: t.Text, Spacing: t.Spacing}
	}
	return out
}

func TestScan(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []flat
	}{
		{
			name: "tag",
			src:  `<p class="x">`,
			want: []flat{
				{Punct, "<", Joint},
				{Ident, "p", Alone},
				{Ident, "class", Joint},
				{Punct, "=", Joint},
				{Literal, `"x"`, Joint},
				{Punct, ">", Alone},
			},
		},
		{
			name: "operators split into single characters",
			src:  `a := b`,
			want: []flat{
				{Ident, "a", Alone},
				{Punct, ":", Joint},
				{Punct, "=", Alone},
				{Ident, "b", Alone},
			},
		},
		{
			name: "characters go does not tokenize",
			src:  `{#for} @html $ ?`,
			want: []flat{
				{Open, "{", Joint},
				{Punct, "#", Joint},
				{Ident, "for", Joint},
				{Close, "}", Alone},
				{Punct, "@", Joint},
				{Ident, "html", Alone},
				{Punct, "$", Alone},
				{Punct, "?", Alone},
			},
		},
		{
			name: "keywords are identifiers",
			src:  "if else\nfor",
			want: []flat{
				{Ident, "if", Alone},
				{Ident, "else", Alone},
				{Ident, "for", Alone},
			},
		},
		{
			name: "inserted semicolons dropped",
			src:  "a\nb;",
			want: []flat{
				{Ident, "a", Alone},
				{Ident, "b", Joint},
				{Punct, ";", Alone},
			},
		},
		{
			name: "comments skipped",
			src:  "a /* note */ b",
			want: []flat{
				{Ident, "a", Alone},
				{Ident, "b", Alone},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			toks, err := scan(t, tc.src)
			if err != nil {
				t.Fatalf("Scan: %v", err)
			}
			if diff := cmp.Diff(tc.want, summarize(toks)); diff != "" {
				t.Errorf("Scan(%q) mismatch (-want +got):\n%s", tc.src, diff)
			}
		})
	}
}

func TestScanSpans(t *testing.T) {
	src := `ab  "cd"`
	toks, err := scan(t, src)
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if got := src[tok.Span.Start:tok.Span.End]; got != tok.Text {
			t.Errorf("span of %q covers %q", tok.Text, got)
		}
	}
	if toks[1].Lit != gotoken.STRING {
		t.Errorf("Lit = %v, want STRING", toks[1].Lit)
	}
}

func TestScanError(t *testing.T) {
	_, err := scan(t, `<p>don't</p>`)
	var se *source.Error
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *source.Error", err)
	}
	if se.Span.Start != 6 {
		t.Errorf("error at %d, want 6", se.Span.Start)
	}
}

func TestTree(t *testing.T) {
	src := `x {a (b) [c]} y`
	toks, err := scan(t, src)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := Tree(toks)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree) != 3 {
		t.Fatalf("got %d top-level tokens, want 3", len(tree))
	}
	g := tree[1]
	if !g.IsGroup(Brace) {
		t.Fatalf("tree[1] = %v, want brace group", g.Describe())
	}
	if got := src[g.Inner.Start:g.Inner.End]; got != "a (b) [c]" {
		t.Errorf("inner = %q", got)
	}
	if got := src[g.Span.Start:g.Span.End]; got != "{a (b) [c]}" {
		t.Errorf("span = %q", got)
	}
	if len(g.Children) != 3 || !g.Children[1].IsGroup(Paren) || !g.Children[2].IsGroup(Bracket) {
		t.Errorf("children = %+v", g.Children)
	}
	if g.Spacing != Alone {
		t.Errorf("group spacing = %v, want Alone", g.Spacing)
	}
}

func TestTreeErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
		at   int
	}{
		{src: `a )`, want: "unexpected `)`", at: 2},
		{src: `( ]`, want: "unclosed `(`", at: 0},
		{src: `x {a`, want: "unclosed `{`", at: 2},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			toks, err := scan(t, tc.src)
			if err != nil {
				t.Fatal(err)
			}
			_, err = Tree(toks)
			var se *source.Error
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *source.Error", err)
			}
			if !strings.Contains(se.Msg, tc.want) {
				t.Errorf("msg = %q, want it to contain %q", se.Msg, tc.want)
			}
			if se.Span.Start != tc.at {
				t.Errorf("error at %d, want %d", se.Span.Start, tc.at)
			}
		})
	}
}

func TestCursor(t *testing.T) {
	toks, err := scan(t, `< p >`)
	if err != nil {
		t.Fatal(err)
	}
	c := NewCursor(toks)
	if !c.PeekPunct(0, "<") || !c.PeekKind(1, Ident) || c.PeekPunct(5, ">") {
		t.Fatalf("lookahead mismatch")
	}
	c.Next()
	if got := len(c.Rest()); got != 2 {
		t.Errorf("Rest() has %d tokens, want 2", got)
	}
	c.Next()
	c.Next()
	if !c.EOF() {
		t.Errorf("EOF() = false after consuming everything")
	}
	if _, ok := c.Peek(0); ok {
		t.Errorf("Peek at EOF returned a token")
	}
}
