// Package soup builds a lenient, navigable tag tree from HTML or XML-ish
// provider responses.
//
// It tokenizes with golang.org/x/net/html but does not apply the HTML5 tree
// construction algorithm: provider payloads are XML documents (EuropePMC,
// OpenAIRE) or loose HTML (IDEAS/RePEc), and both need a tree that mirrors the
// markup as written. Tag and attribute names are lower-cased, self-closing
// tags are honoured, void HTML elements never take children, and stray end
// tags are ignored. CDATA sections become text; only script and style
// content is kept raw.
package soup

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// NodeType distinguishes the kinds of node in a tree.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
)

// rawTextElements keep their content as literal text. Every other element,
// including title and textarea, has its content tokenized as markup so that
// CDATA sections and inline tags inside XML fields survive.
var rawTextElements = map[string]bool{"script": true, "style": true}

// voidElements never contain children, whether or not they are written
// self-closed.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Node is one element, text run, or the document root.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []html.Attribute
	Data     string
	Parent   *Node
	Children []*Node
}

// Parse reads a whole document and returns its root node.
func Parse(r io.Reader) (*Node, error) {
	root := &Node{Type: DocumentNode}
	stack := []*Node{root}

	z := html.NewTokenizer(r)
	z.AllowCDATA(true)

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return root, nil
			}
			return nil, fmt.Errorf("tokenizing document: %w", z.Err())

		case html.TextToken:
			current := stack[len(stack)-1]
			current.appendChild(&Node{Type: TextNode, Data: string(z.Text())})

		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			el := &Node{Type: ElementNode, Tag: string(name)}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				el.Attrs = append(el.Attrs, html.Attribute{Key: string(key), Val: string(val)})
			}
			current := stack[len(stack)-1]
			current.appendChild(el)
			if !rawTextElements[el.Tag] {
				z.NextIsNotRawText()
			}
			if tt == html.StartTagToken && !voidElements[el.Tag] {
				stack = append(stack, el)
			}

		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i > 0; i-- {
				if stack[i].Tag == tag {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// ParseString parses a document held in a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func (n *Node) appendChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Find returns the first descendant element named tag in document order,
// or nil. It is safe to call on a nil node.
func (n *Node) Find(tag string) *Node {
	if n == nil {
		return nil
	}
	tag = strings.ToLower(tag)
	for _, c := range n.Children {
		if c.Type != ElementNode {
			continue
		}
		if c.Tag == tag {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant element named tag whose attributes match
// attrs. The "class" attribute matches when any of its whitespace-separated
// values equals the wanted one; other attributes must match exactly.
func (n *Node) FindAll(tag string, attrs map[string]string) []*Node {
	var out []*Node
	tag = strings.ToLower(tag)
	for _, d := range n.Descendants() {
		if d.Tag == tag && d.matches(attrs) {
			out = append(out, d)
		}
	}
	return out
}

// FindWith returns the first descendant element matching tag and attrs.
func (n *Node) FindWith(tag string, attrs map[string]string) *Node {
	if all := n.FindAll(tag, attrs); len(all) > 0 {
		return all[0]
	}
	return nil
}

// Descendants returns all descendant elements in document order.
func (n *Node) Descendants() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.Children {
			if c.Type == ElementNode {
				out = append(out, c)
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// Elements returns the direct child elements.
func (n *Node) Elements() []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Text returns the concatenated text of the node and all its descendants.
func (n *Node) Text() string {
	if n == nil {
		return ""
	}
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	for _, c := range n.Children {
		b.WriteString(c.Text())
	}
	return b.String()
}

// FindText returns the text of the first descendant named tag. The boolean
// is false when no such element exists, which callers distinguish from an
// element that is present but empty.
func (n *Node) FindText(tag string) (string, bool) {
	found := n.Find(tag)
	if found == nil {
		return "", false
	}
	return found.Text(), true
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil {
		return "", false
	}
	name = strings.ToLower(name)
	for _, a := range n.Attrs {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func (n *Node) matches(attrs map[string]string) bool {
	for key, want := range attrs {
		got, ok := n.Attr(key)
		if !ok {
			return false
		}
		if strings.ToLower(key) == "class" {
			if !containsField(got, want) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func containsField(s, want string) bool {
	for _, f := range strings.Fields(s) {
		if f == want {
			return true
		}
	}
	return false
}

// Pretty renders the tree with one tag or text run per line, indented by
// depth. It is meant for debug logging, not for round-tripping.
func (n *Node) Pretty() string {
	var b strings.Builder
	n.pretty(&b, 0)
	return b.String()
}

func (n *Node) pretty(b *strings.Builder, depth int) {
	if n == nil {
		return
	}
	indent := strings.Repeat(" ", depth)
	switch n.Type {
	case DocumentNode:
		for _, c := range n.Children {
			c.pretty(b, depth)
		}
	case TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			b.WriteString(indent)
			b.WriteString(text)
			b.WriteByte('\n')
		}
	case ElementNode:
		b.WriteString(indent)
		b.WriteByte('<')
		b.WriteString(n.Tag)
		for _, a := range n.Attrs {
			fmt.Fprintf(b, " %s=%q", a.Key, a.Val)
		}
		b.WriteString(">\n")
		for _, c := range n.Children {
			c.pretty(b, depth+1)
		}
		b.WriteString(indent)
		b.WriteString("</")
		b.WriteString(n.Tag)
		b.WriteString(">\n")
	}
}
