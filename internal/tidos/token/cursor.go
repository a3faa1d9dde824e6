package token

// Cursor walks a token-tree level left to right with bounded lookahead.
// It never backtracks.
type Cursor struct {
	toks []Token
	pos  int
}

func NewCursor(toks []Token) *Cursor {
	return &Cursor{toks: toks}
}

func (c *Cursor) EOF() bool {
	return c.pos >= len(c.toks)
}

// Peek returns the token n positions ahead of the current one.
func (c *Cursor) Peek(n int) (Token, bool) {
	if c.pos+n >= len(c.toks) {
		return Token{}, false
	}
	return c.toks[c.pos+n], true
}

// Next consumes and returns the current token. It must not be called at EOF.
func (c *Cursor) Next() Token {
	t := c.toks[c.pos]
	c.pos++
	return t
}

// Rest returns the unconsumed tokens without consuming them.
func (c *Cursor) Rest() []Token {
	return c.toks[c.pos:]
}

// PeekPunct reports whether the token n ahead is the punctuation ch.
func (c *Cursor) PeekPunct(n int, ch string) bool {
	t, ok := c.Peek(n)
	return ok && t.IsPunct(ch)
}

// PeekKind reports whether the token n ahead has kind k.
func (c *Cursor) PeekKind(n int, k Kind) bool {
	t, ok := c.Peek(n)
	return ok && t.Kind == k
}

// PeekGroup reports whether the current token is a group delimited by d.
func (c *Cursor) PeekGroup(d Delim) bool {
	t, ok := c.Peek(0)
	return ok && t.IsGroup(d)
}
