package content

import (
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var reANSICodes = regexp.MustCompile(`\x1b\[[0-9;]*m`)
var reHTTPURL = regexp.MustCompile(`https?://[^\s)]+`)

type Options struct {
	StyleLinks bool
}

var DefaultOptions = Options{StyleLinks: true}

type statusRenderer struct {
	width int
	opts  Options
}

// Lines renders status HTML into terminal lines no wider than width.
func Lines(raw string, width int) []string {
	return LinesWithOptions(raw, width, DefaultOptions)
}

func LinesWithOptions(raw string, width int, opts Options) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	nodes, err := nethtml.ParseFragment(strings.NewReader(raw), &nethtml.Node{
		Type:     nethtml.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return wrapText(strings.TrimSpace(html.UnescapeString(raw)), width)
	}
	root := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	r := statusRenderer{width: width, opts: opts}
	lines := squeezeBlankLines(r.renderNodes(children(root)))
	if opts.StyleLinks {
		lines = styleLinks(lines)
	}
	return lines
}

// PlainText is the unwrapped, unstyled text of a status.
func PlainText(raw string) string {
	return strings.Join(LinesWithOptions(raw, 0, Options{}), "\n")
}

// Preview flattens a status to a single line for table cells.
func Preview(raw string) string {
	return strings.Join(strings.Fields(PlainText(raw)), " ")
}

func (r statusRenderer) renderNodes(nodes []*nethtml.Node) []string {
	lines := make([]string, 0, len(nodes)*2)
	inline := make([]string, 0, 4)
	appendBlock := func(block []string) {
		if len(block) == 0 {
			return
		}
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, block...)
	}
	flushInline := func() {
		text := normalizeInlineText(strings.Join(inline, ""))
		inline = inline[:0]
		if text != "" {
			appendBlock(wrapText(text, r.width))
		}
	}

	for _, node := range nodes {
		switch node.Type {
		case nethtml.TextNode:
			inline = append(inline, node.Data)
		case nethtml.ElementNode:
			if isBlockElement(node.Data) {
				flushInline()
				appendBlock(r.renderBlock(node))
				continue
			}
			inline = append(inline, r.renderInlineNode(node))
		}
	}
	flushInline()
	return squeezeBlankLines(lines)
}

func (r statusRenderer) renderBlock(node *nethtml.Node) []string {
	switch strings.ToLower(node.Data) {
	case "script", "style", "noscript":
		return nil
	case "p", "div":
		if hasBlockChild(node) {
			return r.renderNodes(children(node))
		}
		return wrapText(normalizeInlineText(r.renderInlineChildren(node)), r.width)
	case "blockquote":
		inner := statusRenderer{width: r.width - 2, opts: r.opts}.renderNodes(children(node))
		out := make([]string, 0, len(inner))
		for _, line := range inner {
			if strings.TrimSpace(line) == "" {
				out = append(out, "")
				continue
			}
			if !r.opts.StyleLinks {
				out = append(out, "│ "+line)
				continue
			}
			out = append(out, quotePrefix+quoteText.Render(line))
		}
		return out
	case "ul":
		return r.renderList(node, false)
	case "ol":
		return r.renderList(node, true)
	case "pre":
		text := strings.ReplaceAll(textContent(node), "\r\n", "\n")
		out := make([]string, 0, 4)
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			out = append(out, "    "+strings.TrimRight(line, " \t"))
		}
		return out
	default:
		return wrapText(normalizeInlineText(r.renderInlineChildren(node)), r.width)
	}
}

func (r statusRenderer) renderList(node *nethtml.Node, ordered bool) []string {
	lines := make([]string, 0, 8)
	n := 0
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != nethtml.ElementNode || strings.ToLower(child.Data) != "li" {
			continue
		}
		n++
		marker := "• "
		if ordered {
			marker = strconv.Itoa(n) + ". "
		}
		text := normalizeInlineText(r.renderInlineChildren(child))
		if text == "" {
			continue
		}
		indent := strings.Repeat(" ", runewidth.StringWidth(marker))
		for i, line := range wrapText(text, max(1, r.width-runewidth.StringWidth(marker))) {
			if i == 0 {
				lines = append(lines, marker+line)
				continue
			}
			lines = append(lines, indent+line)
		}
	}
	return lines
}

func isBlockElement(tag string) bool {
	switch strings.ToLower(tag) {
	case "p", "div", "blockquote", "ul", "ol", "pre", "script", "style", "noscript":
		return true
	default:
		return false
	}
}

func hasBlockChild(node *nethtml.Node) bool {
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == nethtml.ElementNode && isBlockElement(child.Data) {
			return true
		}
	}
	return false
}

func styleLinks(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = reHTTPURL.ReplaceAllStringFunc(line, func(m string) string {
			return linkStyle.Render(m)
		})
	}
	return out
}

// squeezeBlankLines drops leading and trailing blank lines and collapses runs
// of blank lines into one.
func squeezeBlankLines(lines []string) []string {
	var out []string
	pending := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			pending = len(out) > 0
			continue
		}
		if pending {
			out = append(out, "")
			pending = false
		}
		out = append(out, line)
	}
	return out
}

// wrapText breaks text on spaces by display width. Words wider than width are
// split. A width below 1 disables wrapping.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if width < 1 {
		return strings.Split(text, "\n")
	}
	out := make([]string, 0, 4)
	for _, p := range strings.Split(text, "\n") {
		words := strings.Fields(p)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := ""
		for _, word := range words {
			for runewidth.StringWidth(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				head := runewidth.Truncate(word, width, "")
				if head == "" {
					head = string([]rune(word)[:1])
				}
				out = append(out, head)
				word = word[len(head):]
			}
			if line == "" {
				line = word
				continue
			}
			if runewidth.StringWidth(line)+1+runewidth.StringWidth(word) <= width {
				line += " " + word
				continue
			}
			out = append(out, line)
			line = word
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func StripANSI(s string) string {
	return reANSICodes.ReplaceAllString(s, "")
}

// children skips whitespace-only text nodes between elements.
func children(node *nethtml.Node) []*nethtml.Node {
	var out []*nethtml.Node
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != nethtml.TextNode || strings.TrimSpace(c.Data) != "" {
			out = append(out, c)
		}
	}
	return out
}

func attr(node *nethtml.Node, key string) string {
	for _, a := range node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func hasClass(node *nethtml.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(node, "class")), class)
}

func textContent(node *nethtml.Node) string {
	var b strings.Builder
	var walk func(*nethtml.Node)
	walk = func(n *nethtml.Node) {
		if n.Type == nethtml.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	if node != nil {
		walk(node)
	}
	return b.String()
}
