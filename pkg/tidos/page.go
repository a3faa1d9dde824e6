package tidos

import (
	"io"
	"net/http"
	"strings"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"
)

// Page collects the body and <head> markup of one response. It is not safe
// for concurrent use; render one page per request.
type Page struct {
	Lang string
	Body string

	head    strings.Builder
	headIDs map[string]struct{}
}

func NewPage() *Page {
	return &Page{Lang: "en", headIDs: map[string]struct{}{}}
}

// AddHead appends markup to <head> the first time id is seen. Later calls
// with the same id are no-ops, so components rendered in a loop inject
// their head content once.
func (p *Page) AddHead(id, markup string) {
	if p.headIDs == nil {
		p.headIDs = map[string]struct{}{}
	}
	if _, ok := p.headIDs[id]; ok {
		return
	}
	p.headIDs[id] = struct{}{}
	p.head.WriteString(markup)
}

// Head returns the registered head markup in registration order.
func (p *Page) Head() string {
	return p.head.String()
}

// Document is the full HTML document for the page.
func (p *Page) Document() g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang(p.Lang),
			h.Head(
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1.0")),
				h.Meta(h.Charset("utf-8")),
				g.Raw(p.Head()),
			),
			h.Body(g.Raw(p.Body)),
		),
	)
}

func (p *Page) Render(w io.Writer) error {
	return p.Document().Render(w)
}

func (p *Page) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = p.Render(w)
}
