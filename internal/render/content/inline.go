package content

import (
	"strings"

	nethtml "golang.org/x/net/html"
)

func (r statusRenderer) renderInlineChildren(node *nethtml.Node) string {
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(r.renderInlineNode(child))
	}
	return b.String()
}

func (r statusRenderer) renderInlineNode(node *nethtml.Node) string {
	if node == nil {
		return ""
	}
	switch node.Type {
	case nethtml.TextNode:
		return node.Data
	case nethtml.ElementNode:
		switch strings.ToLower(node.Data) {
		case "script", "style", "noscript", "img":
			return ""
		case "br":
			return "\n"
		case "span":
			// Mastodon hides the scheme and the tail of long URLs in invisible spans.
			if hasClass(node, "invisible") {
				return ""
			}
			return r.renderInlineChildren(node)
		case "a":
			return r.renderLink(node)
		case "code":
			text := normalizeInlineText(r.renderInlineChildren(node))
			if text == "" {
				return ""
			}
			return "`" + text + "`"
		default:
			return r.renderInlineChildren(node)
		}
	default:
		return ""
	}
}

// renderLink keeps mentions and hashtags as their text and replaces every
// other link with its full href.
func (r statusRenderer) renderLink(node *nethtml.Node) string {
	text := normalizeInlineText(textContent(node))
	href := attr(node, "href")
	if hasClass(node, "mention") || hasClass(node, "hashtag") || strings.HasPrefix(text, "@") || strings.HasPrefix(text, "#") {
		if text != "" {
			return text
		}
	}
	if href == "" {
		return text
	}
	return href
}

func normalizeInlineText(s string) string {
	parts := strings.Split(s, "\n")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		out = append(out, strings.Join(strings.Fields(part), " "))
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}
