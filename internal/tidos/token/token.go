// Package token turns template source into token trees: identifiers,
// literals, single-character punctuation and delimited groups, lexed with
// Go's own scanner so opaque host expressions keep their exact spelling.
package token

import (
	gotoken "go/token"

	"github.com/kilianc/tidos/internal/tidos/source"
)

type Kind uint8

const (
	Ident Kind = iota + 1
	Punct
	Literal
	Group
	// Open and Close only appear in flat streams returned by Scan; Tree
	// folds them into Group tokens.
	Open
	Close
)

func (k Kind) String() string {
	switch k {
	case Ident:
		return "identifier"
	case Punct:
		return "punctuation"
	case Literal:
		return "literal"
	case Group:
		return "group"
	case Open:
		return "opening delimiter"
	case Close:
		return "closing delimiter"
	default:
		return "invalid"
	}
}

type Delim uint8

const (
	NoDelim Delim = iota
	Paren
	Brace
	Bracket
)

// Spacing tells whether a token is immediately followed by the next one
// (Joint) or separated from it by whitespace or end of input (Alone).
type Spacing uint8

const (
	Alone Spacing = iota
	Joint
)

type Token struct {
	Kind Kind
	// Text is the identifier, the punctuation character, the literal as
	// written, or the opening delimiter of a group.
	Text string
	// Lit is the Go literal kind (STRING, CHAR, INT, FLOAT, IMAG).
	Lit     gotoken.Token
	Delim   Delim
	Spacing Spacing
	Span    source.Span
	// Inner is the span between a group's delimiters.
	Inner    source.Span
	Children []Token
}

func (t Token) IsIdent(name string) bool {
	return t.Kind == Ident && t.Text == name
}

func (t Token) IsPunct(ch string) bool {
	return t.Kind == Punct && t.Text == ch
}

func (t Token) IsGroup(d Delim) bool {
	return t.Kind == Group && t.Delim == d
}

// Describe renders t for error messages.
func (t Token) Describe() string {
	switch t.Kind {
	case Group:
		return "`" + t.Text + "…" + closerOf(t.Text) + "`"
	case Literal:
		return "literal " + t.Text
	default:
		return "`" + t.Text + "`"
	}
}

func delimOf(open string) Delim {
	switch open {
	case "(":
		return Paren
	case "{":
		return Brace
	case "[":
		return Bracket
	default:
		return NoDelim
	}
}

func closerOf(open string) string {
	switch open {
	case "(":
		return ")"
	case "{":
		return "}"
	case "[":
		return "]"
	default:
		return ""
	}
}
