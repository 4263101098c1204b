package htmlutil

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// SpanOrCellText prefers the text of a <span> inside the cell, which is
// how the portal wraps most values, falling back to the cell itself.
func SpanOrCellText(cell *goquery.Selection) string {
	span := cell.Find("span")
	if span.Length() > 0 {
		return nodeText(span.First())
	}
	return nodeText(cell)
}

func nodeText(sel *goquery.Selection) string {
	if len(sel.Nodes) == 0 {
		return ""
	}
	return strings.TrimSpace(GetText(sel.Nodes[0]))
}

// HasClass reports whether any node in the selection carries the class,
// matching on the raw class attribute rather than a compiled selector.
func HasClass(sel *goquery.Selection, class string) bool {
	attr := sel.AttrOr("class", "")
	for _, c := range strings.Fields(attr) {
		if c == class {
			return true
		}
	}
	return false
}
