// Package plan classifies template nodes as static or dynamic and groups
// runs of static siblings into islands that lower to one literal.
package plan

import "github.com/kilianc/tidos/internal/tidos/ast"

// IsStaticAttr reports whether an attribute renders the same text on every
// expansion: no toggle, and no value or a literal one.
func IsStaticAttr(a ast.Attr) bool {
	return !a.Toggle && (a.Kind == ast.AttrBool || a.Kind == ast.AttrString)
}

// Classifier memoizes static classification per node. The zero value is
// not usable; call NewClassifier.
type Classifier struct {
	static map[ast.Node]bool
}

func NewClassifier() *Classifier {
	return &Classifier{static: map[ast.Node]bool{}}
}

// IsStatic reports whether n is static: a text node, or a markup element
// whose attributes and children are all static. Expressions, control
// constructs and components are always dynamic.
func (c *Classifier) IsStatic(n ast.Node) bool {
	if v, ok := c.static[n]; ok {
		return v
	}
	v := c.classify(n)
	c.static[n] = v
	return v
}

func (c *Classifier) classify(n ast.Node) bool {
	switch t := n.(type) {
	case *ast.Text:
		return true
	case *ast.Element:
		if t.Kind == ast.Component {
			return false
		}
		for _, a := range t.Attrs {
			if !IsStaticAttr(a) {
				return false
			}
		}
		for _, ch := range t.Children {
			if !c.IsStatic(ch) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Island is a run of sibling nodes lowered as one unit: either consecutive
// static nodes fused into a single literal, or exactly one dynamic node.
type Island struct {
	Static bool
	Nodes  []ast.Node
}

// Islands groups nodes left to right without reordering them.
func (c *Classifier) Islands(nodes []ast.Node) []Island {
	var (
		out []Island
		run []ast.Node
	)
	for _, n := range nodes {
		if c.IsStatic(n) {
			run = append(run, n)
			continue
		}
		if len(run) > 0 {
			out = append(out, Island{Static: true, Nodes: run})
			run = nil
		}
		out = append(out, Island{Nodes: []ast.Node{n}})
	}
	if len(run) > 0 {
		out = append(out, Island{Static: true, Nodes: run})
	}
	return out
}
