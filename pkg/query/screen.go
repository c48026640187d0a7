package query

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Screen is a parsed document that queries run against. Like a browser
// screen it only covers rendered content: elements under <head> are skipped.
type Screen struct {
	root     *html.Node
	elements []*html.Node
	byID     map[string]*html.Node
}

// Parse reads an HTML document or fragment.
func Parse(r io.Reader) (*Screen, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("query: parse html: %w", err)
	}

	s := &Screen{root: root, byID: make(map[string]*html.Node)}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "head" {
			return
		}
		if n.Type == html.ElementNode {
			s.elements = append(s.elements, n)
			if id, ok := attr(n, "id"); ok && id != "" {
				if _, dup := s.byID[id]; !dup {
					s.byID[id] = n
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return s, nil
}

// ParseString parses markup held in a string.
func ParseString(markup string) (*Screen, error) {
	return Parse(strings.NewReader(markup))
}

// ParseBytes parses markup held in a byte slice.
func ParseBytes(markup []byte) (*Screen, error) {
	return Parse(bytes.NewReader(markup))
}

// Get returns the single element matching q.
func (s *Screen) Get(q Query) (*Element, error) {
	found := s.run(q)
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, q)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %d elements match %s", ErrMultipleFound, len(found), q)
	}
}

// GetAll returns every element matching q, failing when there are none.
func (s *Screen) GetAll(q Query) ([]*Element, error) {
	found := s.run(q)
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, q)
	}
	return found, nil
}

// Query returns the single element matching q, or nil when none does.
// More than one match is still an error.
func (s *Screen) Query(q Query) (*Element, error) {
	found := s.run(q)
	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%w: %d elements match %s", ErrMultipleFound, len(found), q)
	}
}

// QueryAll returns every element matching q, possibly none.
func (s *Screen) QueryAll(q Query) []*Element {
	return s.run(q)
}

func (s *Screen) run(q Query) []*Element {
	if s == nil || q.collect == nil {
		return nil
	}
	nodes := q.collect(s)
	wanted := make(map[*html.Node]struct{}, len(nodes))
	for _, n := range nodes {
		wanted[n] = struct{}{}
	}

	// Results follow document order and drop duplicates regardless of how
	// the query collected them.
	var out []*Element
	for _, n := range s.elements {
		if _, ok := wanted[n]; ok {
			out = append(out, &Element{node: n, screen: s})
		}
	}
	return out
}

// Element is a matched node.
type Element struct {
	node   *html.Node
	screen *Screen
}

// Tag returns the lower-case element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return attr(e.node, name)
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := attr(e.node, name)
	return ok
}

// Text returns the whitespace-normalised text content.
func (e *Element) Text() string {
	return normalize(textContent(e.node))
}

// Role returns the explicit or implicit ARIA role, or "" when none applies.
func (e *Element) Role() string {
	return role(e.node)
}

// Name returns the accessible name.
func (e *Element) Name() string {
	return e.screen.accessibleName(e.node)
}

// Value returns the value a user would see in a form control.
func (e *Element) Value() string {
	value, _ := displayValue(e.node)
	return value
}

func (e *Element) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(e.node.Data)
	for _, key := range []string{"id", "name", "type", "role", "data-testid"} {
		if value, ok := attr(e.node, key); ok {
			fmt.Fprintf(&b, " %s=%q", key, value)
		}
	}
	b.WriteString(">")
	return b.String()
}

func attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// textContent concatenates descendant text, skipping script and style.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// ownText joins the element's direct text children, the text a user reads
// as belonging to that element rather than to a nested one.
func ownText(n *html.Node) string {
	if n.Data == "input" {
		switch inputType(n) {
		case "submit", "button", "reset":
			value, _ := attr(n, "value")
			return value
		}
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func inputType(n *html.Node) string {
	value, _ := attr(n, "type")
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "text"
	}
	return value
}

func displayValue(n *html.Node) (string, bool) {
	switch n.Data {
	case "input":
		switch inputType(n) {
		case "submit", "button", "reset", "image", "checkbox", "radio", "hidden", "file":
			return "", false
		}
		value, _ := attr(n, "value")
		return value, true
	case "textarea":
		return textContent(n), true
	case "select":
		var first, selected *html.Node
		var walk func(*html.Node)
		walk = func(c *html.Node) {
			if c.Type == html.ElementNode && c.Data == "option" {
				if first == nil {
					first = c
				}
				if _, ok := attr(c, "selected"); ok && selected == nil {
					selected = c
				}
			}
			for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
				walk(cc)
			}
		}
		walk(n)
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return "", true
		}
		return normalize(textContent(selected)), true
	default:
		return "", false
	}
}
