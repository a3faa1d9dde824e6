// Package source holds byte spans into template sources and the positioned
// errors every compilation stage reports.
package source

import (
	"fmt"
	gotoken "go/token"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Span is the half-open byte range [Start, End) of a construct in its file.
type Span struct {
	Start int
	End   int
}

// To returns the span covering s through end.
func (s Span) To(end Span) Span {
	return Span{Start: s.Start, End: end.End}
}

// Error is a structural template error. A compilation stops at the first one.
type Error struct {
	Span Span
	Msg  string
	// Pos is resolved by Locate; it stays invalid for errors that never
	// leave the parser (e.g. in unit tests).
	Pos gotoken.Position
}

// Errorf builds an Error anchored at span.
func Errorf(span Span, format string, args ...any) *Error {
	return &Error{Span: span, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// Locate resolves the error's span start to a file position.
func (e *Error) Locate(f *gotoken.File) {
	if f == nil {
		return
	}
	off := e.Span.Start
	if off < 0 {
		off = 0
	}
	if off > f.Size() {
		off = f.Size()
	}
	e.Pos = f.Position(f.Pos(off))
}

const (
	ansiRed   = "\x1b[1;31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// ColorTerminal reports whether f is a terminal that Caret's ANSI
// highlighting can be written to, Cygwin and MSYS ptys included.
func ColorTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Caret renders e as a compiler-style diagnostic: the message, the offending
// source line, and a caret underline below the span. With color set, the
// message and underline are highlighted with ANSI escapes.
func Caret(src []byte, e *Error, color bool) string {
	var b strings.Builder
	head := e.Msg
	if e.Pos.IsValid() {
		head = e.Pos.String() + ": " + e.Msg
	}
	if color {
		b.WriteString(ansiBold + head + ansiReset)
	} else {
		b.WriteString(head)
	}
	b.WriteByte('\n')

	start := e.Span.Start
	if start < 0 || start > len(src) {
		return b.String()
	}
	lineStart := strings.LastIndexByte(string(src[:start]), '\n') + 1
	lineEnd := len(src)
	if i := strings.IndexByte(string(src[start:]), '\n'); i >= 0 {
		lineEnd = start + i
	}
	line := strings.TrimRight(string(src[lineStart:lineEnd]), "\r")

	width := e.Span.End - start
	if e.Span.End > lineEnd || width < 1 {
		width = lineEnd - start
	}
	if width < 1 {
		width = 1
	}

	// Keep tabs so the caret lines up under the source in any tab width.
	var pad strings.Builder
	for _, r := range string(src[lineStart:start]) {
		if r == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}

	b.WriteString("    ")
	b.WriteString(line)
	b.WriteString("\n    ")
	b.WriteString(pad.String())
	mark := "^" + strings.Repeat("~", width-1)
	if color {
		b.WriteString(ansiRed + mark + ansiReset)
	} else {
		b.WriteString(mark)
	}
	b.WriteByte('\n')
	return b.String()
}
