package view

import (
	"bufio"
	"html"
	"io"
	"slices"
	"strings"
)

var voidTags = map[string]bool{"img": true, "br": true, "hr": true}

// WriteHTML serializes the document as a standalone HTML page. All text and
// attribute values are escaped here; renderers never build markup strings.
func WriteHTML(w io.Writer, d *Document) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	bw.WriteString(html.EscapeString(d.Title()))
	bw.WriteString("</title>\n</head>\n<body")
	if classes := d.BodyClasses(); len(classes) > 0 {
		bw.WriteString(` class="`)
		bw.WriteString(html.EscapeString(strings.Join(classes, " ")))
		bw.WriteString(`"`)
	}
	bw.WriteString(">\n")
	for _, id := range d.Regions() {
		region, _ := d.Region(id)
		writeNode(bw, region)
		bw.WriteString("\n")
	}
	bw.WriteString("</body>\n</html>\n")
	return bw.Flush()
}

// HTML serializes a single node.
func (n *Node) HTML() string {
	var b strings.Builder
	bw := bufio.NewWriter(&b)
	writeNode(bw, n)
	_ = bw.Flush()
	return b.String()
}

func writeNode(w *bufio.Writer, n *Node) {
	if n == nil {
		return
	}
	if n.Tag == "" {
		w.WriteString(html.EscapeString(n.Text))
		return
	}

	tag := n.Tag
	if tag == TagMarkup {
		tag = "div"
		n = &Node{Tag: tag, Classes: append([]string{"markdown-body"}, n.Classes...), Attrs: n.Attrs, Children: []*Node{El("pre", Text(n.Text))}}
	}

	w.WriteString("<")
	w.WriteString(tag)
	if len(n.Classes) > 0 {
		w.WriteString(` class="`)
		w.WriteString(html.EscapeString(strings.Join(n.Classes, " ")))
		w.WriteString(`"`)
	}
	keys := make([]string, 0, len(n.Attrs))
	for k := range n.Attrs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		w.WriteString(" ")
		w.WriteString(k)
		w.WriteString(`="`)
		w.WriteString(html.EscapeString(n.Attrs[k]))
		w.WriteString(`"`)
	}
	w.WriteString(">")
	if voidTags[tag] {
		return
	}
	if n.Text != "" {
		w.WriteString(html.EscapeString(n.Text))
	}
	for _, c := range n.Children {
		writeNode(w, c)
	}
	w.WriteString("</")
	w.WriteString(tag)
	w.WriteString(">")
}
