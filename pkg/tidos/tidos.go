// Package tidos is the runtime that code generated from *.tidos files
// calls into: escaping, components, and the page that collects body and
// head markup.
//
// A component is any type with a Render(*Page) string method:
//
//	type Card struct{ title string }
//
//	func (c *Card) Render(page *tidos.Page) string {
//		return view!{
//			<div class={css!("./card.css")}>
//				<h2>{c.title}</h2>
//			</div>
//		}
//	}
//
// and is invoked from a template as <Card title={"News"} />.
package tidos

import (
	"strings"

	g "maragu.dev/gomponents"
)

// Buffer accumulates the output of one expanded template.
type Buffer = strings.Builder

type Component interface {
	Render(page *Page) string
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func(page *Page) string

func (f ComponentFunc) Render(page *Page) string {
	return f(page)
}

// Render invokes c against page. Generated code calls it once per
// component occurrence, in document order.
func Render(page *Page, c Component) string {
	return c.Render(page)
}

// ScopedCSS registers `<style>.class {css}</style>` in the page head once
// per class and returns class for use in a class attribute.
func ScopedCSS(page *Page, class, css string) string {
	page.AddHead(class, "<style>."+class+" {"+css+"}</style>")
	return class
}

// Node renders a gomponents tree to a string for insertion with @html{…}.
func Node(n g.Node) string {
	var b strings.Builder
	if err := n.Render(&b); err != nil {
		return ""
	}
	return b.String()
}
