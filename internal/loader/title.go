package loader

import (
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FallbackTitle parses the markdown body and returns the text of the first
// level-1 heading, or "" when the document has none. Used to fill a missing
// front matter title so sparse documents still render with a usable name.
func FallbackTitle(body []byte) string {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(body))

	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering || title != "" {
			return gmast.WalkContinue, nil
		}
		heading, ok := n.(*gmast.Heading)
		if !ok || heading.Level != 1 {
			return gmast.WalkContinue, nil
		}
		var b strings.Builder
		for child := heading.FirstChild(); child != nil; child = child.NextSibling() {
			if textNode, ok := child.(*gmast.Text); ok {
				b.Write(textNode.Segment.Value(body))
			}
		}
		title = strings.TrimSpace(b.String())
		return gmast.WalkStop, nil
	})
	return title
}
