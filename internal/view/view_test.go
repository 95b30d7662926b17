package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNode_Builders(t *testing.T) {
	n := El("li", Text("a"), nil, El("span", Text("b")).Class("x")).Class("item", "item", "").Attr("data-kind", "+1")

	require.Equal(t, []string{"item"}, n.Classes)
	require.Len(t, n.Children, 2, "nil children are skipped")
	require.Equal(t, "ab", n.TextContent())
	v, ok := n.Get("data-kind")
	require.True(t, ok)
	require.Equal(t, "+1", v)
	require.Same(t, n.Children[1], n.First("x"))
	require.Nil(t, n.First("missing"))
	require.Len(t, n.FindClass("x"), 1)
}

func TestDocument_ReplaceDiscardsPriorContent(t *testing.T) {
	d := NewPageDocument()
	require.NoError(t, d.Replace(LabelsList, Text("one"), Text("two")))
	require.NoError(t, d.Replace(LabelsList, Text("three")))
	require.Equal(t, "three", d.Text(LabelsList))

	region, ok := d.Region(LabelsList)
	require.True(t, ok)
	require.Len(t, region.Children, 1)
}

func TestDocument_MissingTarget(t *testing.T) {
	d := NewDocument(IssueTitle)
	err := d.Replace(IssueBody, Text("x"))
	require.ErrorIs(t, err, ErrMissingTarget)
	require.Contains(t, err.Error(), "issue-body")
	require.Empty(t, d.Text(IssueBody))
}

func TestDocument_StoryMarker(t *testing.T) {
	d := NewPageDocument()
	d.AddBodyClass("dark")
	d.SetStoryMarker("midnight")
	d.SetStoryMarker("uuid")
	d.SetStoryMarker("uuid")

	require.Equal(t, []string{"dark", "story-uuid"}, d.BodyClasses())
	require.True(t, d.HasBodyClass("story-uuid"))

	d.RemoveBodyClass("dark")
	require.Equal(t, []string{"story-uuid"}, d.BodyClasses())
}

func TestDocument_RegionsInPaintOrder(t *testing.T) {
	d := NewDocument(IssueTitle, IssueBody, IssueTitle)
	require.Equal(t, []RegionID{IssueTitle, IssueBody}, d.Regions())
	require.Len(t, NewPageDocument().Regions(), 17)
}

func TestWriteHTML_Escapes(t *testing.T) {
	d := NewDocument(IssueTitle, IssueBody)
	d.SetTitle(`<script> & "quotes"`)
	d.SetStoryMarker("uuid")
	require.NoError(t, d.Replace(IssueTitle, El("span", Text("a < b")).Attr("title", `"x"`)))
	require.NoError(t, d.Replace(IssueBody, Markup("**bold** <b>")))

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, d))
	out := buf.String()

	require.Contains(t, out, "<title>&lt;script&gt; &amp; &#34;quotes&#34;</title>")
	require.Contains(t, out, `<body class="story-uuid">`)
	require.Contains(t, out, `<div id="issue-title"><span title="&#34;x&#34;">a &lt; b</span></div>`)
	require.Contains(t, out, `<div class="markdown-body"><pre>**bold** &lt;b&gt;</pre></div>`)
	require.NotContains(t, out, "<script>")
}

func TestNode_HTMLVoidElements(t *testing.T) {
	n := El("img").Attr("src", "a.png").Attr("alt", "a")
	require.Equal(t, `<img alt="a" src="a.png">`, n.HTML())
}
