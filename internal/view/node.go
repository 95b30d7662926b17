// Package view is the typed view tree the renderers write into. A Document
// holds one container node per region; the page shell paints it and the
// HTML writer serializes it.
package view

import (
	"slices"
	"strings"
)

// TagMarkup marks a node whose Text is already-rendered markdown output and
// must be painted verbatim.
const TagMarkup = "markup"

// Node is one element of the view tree. A node with an empty Tag is a text
// node.
type Node struct {
	Tag      string
	Classes  []string
	Attrs    map[string]string
	Text     string
	Children []*Node
}

// El builds an element.
func El(tag string, children ...*Node) *Node {
	return (&Node{Tag: tag}).Append(children...)
}

// Text builds a text node.
func Text(s string) *Node {
	return &Node{Text: s}
}

// Markup builds a node carrying pre-rendered markdown.
func Markup(rendered string) *Node {
	return &Node{Tag: TagMarkup, Text: rendered}
}

// Class appends classes and returns n.
func (n *Node) Class(classes ...string) *Node {
	for _, c := range classes {
		if c != "" && !n.HasClass(c) {
			n.Classes = append(n.Classes, c)
		}
	}
	return n
}

// Attr sets an attribute and returns n.
func (n *Node) Attr(key, value string) *Node {
	if n.Attrs == nil {
		n.Attrs = make(map[string]string)
	}
	n.Attrs[key] = value
	return n
}

// Append adds children and returns n. Nil children are skipped.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// HasClass reports whether n carries class c.
func (n *Node) HasClass(c string) bool {
	return n != nil && slices.Contains(n.Classes, c)
}

// Get returns an attribute value.
func (n *Node) Get(key string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool {
	return n != nil && n.Tag == ""
}

// TextContent concatenates the text of n and all descendants, depth first.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.walk(func(m *Node) bool {
		if m.Tag == "" || m.Tag == TagMarkup {
			b.WriteString(m.Text)
		}
		return true
	})
	return b.String()
}

// Find returns every descendant (including n) matching pred, in document
// order.
func (n *Node) Find(pred func(*Node) bool) []*Node {
	var out []*Node
	n.walk(func(m *Node) bool {
		if pred(m) {
			out = append(out, m)
		}
		return true
	})
	return out
}

// FindClass returns the descendants carrying class c.
func (n *Node) FindClass(c string) []*Node {
	return n.Find(func(m *Node) bool { return m.HasClass(c) })
}

// First returns the first descendant carrying class c, or nil.
func (n *Node) First(c string) *Node {
	var found *Node
	n.walk(func(m *Node) bool {
		if m.HasClass(c) {
			found = m
			return false
		}
		return true
	})
	return found
}

// walk visits n depth first until fn returns false.
func (n *Node) walk(fn func(*Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}
