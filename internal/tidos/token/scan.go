package token

import (
	"go/scanner"
	gotoken "go/token"
	"strings"

	"github.com/kilianc/tidos/internal/tidos/source"
)

// extraPunct are characters Go does not tokenize but templates use as
// markers or in plain text.
const extraPunct = "#@$?\\"

// Scan lexes src (registered as file) into a flat token stream. Operators
// are split into single-character Punct tokens and delimiters are reported
// as Open/Close tokens. The first scanner error aborts the scan.
func Scan(file *gotoken.File, src []byte) ([]Token, error) {
	var (
		s    scanner.Scanner
		errs scanner.ErrorList
	)
	s.Init(file, src, func(pos gotoken.Position, msg string) {
		errs.Add(pos, msg)
	}, 0)

	var out []Token
	accepted := map[int]bool{}
	for {
		pos, tok, lit := s.Scan()
		if tok == gotoken.EOF {
			break
		}
		off := file.Offset(pos)
		switch {
		case tok == gotoken.SEMICOLON && lit != ";":
			// Inserted by the scanner at line ends; not part of the source.
			continue
		case tok == gotoken.IDENT || tok.IsKeyword():
			if lit == "" {
				lit = tok.String()
			}
			out = append(out, Token{Kind: Ident, Text: lit, Span: source.Span{Start: off, End: off + len(lit)}})
		case tok.IsLiteral():
			out = append(out, Token{Kind: Literal, Text: lit, Lit: tok, Span: source.Span{Start: off, End: off + len(lit)}})
		case tok == gotoken.ILLEGAL:
			if len(lit) == 1 && strings.Contains(extraPunct, lit) {
				accepted[off] = true
				out = append(out, Token{Kind: Punct, Text: lit, Span: source.Span{Start: off, End: off + 1}})
			}
		case tok == gotoken.LPAREN || tok == gotoken.LBRACE || tok == gotoken.LBRACK:
			text := tok.String()
			out = append(out, Token{Kind: Open, Text: text, Delim: delimOf(text), Span: source.Span{Start: off, End: off + 1}})
		case tok == gotoken.RPAREN || tok == gotoken.RBRACE || tok == gotoken.RBRACK:
			out = append(out, Token{Kind: Close, Text: tok.String(), Span: source.Span{Start: off, End: off + 1}})
		default:
			for i, ch := range tok.String() {
				out = append(out, Token{Kind: Punct, Text: string(ch), Span: source.Span{Start: off + i, End: off + i + 1}})
			}
		}
	}

	for _, e := range errs {
		if accepted[e.Pos.Offset] {
			continue
		}
		return nil, source.Errorf(source.Span{Start: e.Pos.Offset, End: e.Pos.Offset + 1}, "%s", e.Msg)
	}

	for i := range out {
		if i+1 < len(out) && out[i+1].Span.Start == out[i].Span.End {
			out[i].Spacing = Joint
		}
	}
	return out, nil
}

// Tree folds a flat stream into token trees, pairing delimiters.
func Tree(flat []Token) ([]Token, error) {
	type frame struct {
		open     Token
		children []Token
	}
	stack := []frame{{}}
	for _, t := range flat {
		switch t.Kind {
		case Open:
			stack = append(stack, frame{open: t})
		case Close:
			if len(stack) == 1 {
				return nil, source.Errorf(t.Span, "unexpected `%s`", t.Text)
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if closerOf(top.open.Text) != t.Text {
				return nil, source.Errorf(top.open.Span, "unclosed `%s`: found `%s` instead of `%s`", top.open.Text, t.Text, closerOf(top.open.Text))
			}
			g := Token{
				Kind:     Group,
				Text:     top.open.Text,
				Delim:    top.open.Delim,
				Spacing:  t.Spacing,
				Span:     top.open.Span.To(t.Span),
				Inner:    source.Span{Start: top.open.Span.End, End: t.Span.Start},
				Children: top.children,
			}
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, g)
		default:
			stack[len(stack)-1].children = append(stack[len(stack)-1].children, t)
		}
	}
	if len(stack) > 1 {
		open := stack[len(stack)-1].open
		return nil, source.Errorf(open.Span, "unclosed `%s`", open.Text)
	}
	return stack[0].children, nil
}
