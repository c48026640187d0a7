package query

import (
	"strings"

	"golang.org/x/net/html"
)

func role(n *html.Node) string {
	if explicit, ok := attr(n, "role"); ok {
		if fields := strings.Fields(explicit); len(fields) > 0 {
			return strings.ToLower(fields[0])
		}
	}
	return implicitRole(n)
}

func implicitRole(n *html.Node) string {
	switch n.Data {
	case "a", "area":
		if _, ok := attr(n, "href"); ok {
			return "link"
		}
		return ""
	case "button":
		return "button"
	case "input":
		switch inputType(n) {
		case "button", "submit", "reset", "image":
			return "button"
		case "checkbox":
			return "checkbox"
		case "radio":
			return "radio"
		case "range":
			return "slider"
		case "number":
			return "spinbutton"
		case "search":
			return "searchbox"
		case "text", "email", "tel", "url":
			if _, ok := attr(n, "list"); ok {
				return "combobox"
			}
			return "textbox"
		default:
			// password, hidden, file, colour and date inputs have no role.
			return ""
		}
	case "textarea":
		return "textbox"
	case "select":
		if _, multiple := attr(n, "multiple"); multiple {
			return "listbox"
		}
		return "combobox"
	case "option":
		return "option"
	case "img":
		if alt, ok := attr(n, "alt"); ok && alt == "" {
			return "presentation"
		}
		return "img"
	case "form":
		return "form"
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return "heading"
	case "ul", "ol":
		return "list"
	case "li":
		return "listitem"
	case "header":
		return "banner"
	case "footer":
		return "contentinfo"
	case "main":
		return "main"
	case "nav":
		return "navigation"
	case "aside":
		return "complementary"
	case "p":
		return "paragraph"
	case "fieldset":
		return "group"
	case "dialog":
		return "dialog"
	case "article":
		return "article"
	case "table":
		return "table"
	case "tr":
		return "row"
	case "td":
		return "cell"
	case "th":
		return "columnheader"
	default:
		return ""
	}
}

// nameFromContent lists roles whose accessible name falls back to their
// text content.
var nameFromContent = map[string]struct{}{
	"button": {}, "link": {}, "heading": {}, "alert": {}, "cell": {},
	"columnheader": {}, "option": {}, "tab": {}, "menuitem": {},
	"checkbox": {}, "radio": {}, "listitem": {}, "tooltip": {}, "status": {},
}

// hidden reports whether n or an ancestor is excluded from the
// accessibility tree.
func hidden(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if _, ok := attr(cur, "hidden"); ok {
			return true
		}
		if value, ok := attr(cur, "aria-hidden"); ok && strings.EqualFold(value, "true") {
			return true
		}
		if style, ok := attr(cur, "style"); ok {
			compact := strings.ReplaceAll(strings.ToLower(style), " ", "")
			if strings.Contains(compact, "display:none") || strings.Contains(compact, "visibility:hidden") {
				return true
			}
		}
		if cur.Data == "input" && inputType(cur) == "hidden" {
			return true
		}
	}
	return false
}

func labelable(n *html.Node) bool {
	switch n.Data {
	case "input":
		return inputType(n) != "hidden"
	case "select", "textarea", "button", "meter", "output", "progress":
		return true
	default:
		return false
	}
}

// labelsFor returns the label elements associated with a control, either
// through for= or by nesting.
func (s *Screen) labelsFor(control *html.Node) []*html.Node {
	var labels []*html.Node
	if id, ok := attr(control, "id"); ok && id != "" {
		for _, n := range s.elements {
			if n.Data != "label" {
				continue
			}
			if target, ok := attr(n, "for"); ok && target == id {
				labels = append(labels, n)
			}
		}
	}
	for cur := control.Parent; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode && cur.Data == "label" {
			if _, hasFor := attr(cur, "for"); !hasFor {
				labels = append(labels, cur)
			}
			break
		}
	}
	return labels
}

// controlsFor returns the controls a label element labels.
func (s *Screen) controlsFor(label *html.Node) []*html.Node {
	if target, ok := attr(label, "for"); ok {
		if control, ok := s.byID[target]; ok && labelable(control) {
			return []*html.Node{control}
		}
		return nil
	}
	var controls []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && labelable(c) {
				controls = append(controls, c)
				continue
			}
			walk(c)
		}
	}
	walk(label)
	if len(controls) > 1 {
		controls = controls[:1]
	}
	return controls
}

// labelText is the label's text without the text of controls nested in it.
func labelText(label *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.TextNode:
				b.WriteString(c.Data)
			case c.Type == html.ElementNode && (labelable(c) || c.Data == "script" || c.Data == "style"):
			default:
				walk(c)
			}
		}
	}
	walk(label)
	return normalize(b.String())
}

func (s *Screen) labelledBy(n *html.Node) (string, bool) {
	ids, ok := attr(n, "aria-labelledby")
	if !ok {
		return "", false
	}
	var parts []string
	for _, id := range strings.Fields(ids) {
		if target, ok := s.byID[id]; ok {
			parts = append(parts, normalize(textContent(target)))
		}
	}
	name := strings.Join(parts, " ")
	return name, name != ""
}

// accessibleName approximates the accessible name computation for the
// element kinds a form surface renders.
func (s *Screen) accessibleName(n *html.Node) string {
	if name, ok := s.labelledBy(n); ok {
		return name
	}
	if label, ok := attr(n, "aria-label"); ok && strings.TrimSpace(label) != "" {
		return normalize(label)
	}

	if n.Data == "input" {
		switch inputType(n) {
		case "submit", "reset", "button":
			if value, ok := attr(n, "value"); ok && strings.TrimSpace(value) != "" {
				return normalize(value)
			}
			switch inputType(n) {
			case "submit":
				return "Submit"
			case "reset":
				return "Reset"
			}
			return ""
		case "image":
			if alt, ok := attr(n, "alt"); ok {
				return normalize(alt)
			}
		}
	}

	if labelable(n) {
		var parts []string
		for _, label := range s.labelsFor(n) {
			if text := labelText(label); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, " ")
		}
	}

	if n.Data == "img" || n.Data == "area" {
		if alt, ok := attr(n, "alt"); ok && strings.TrimSpace(alt) != "" {
			return normalize(alt)
		}
	}

	if _, ok := nameFromContent[role(n)]; ok || n.Data == "button" {
		if text := normalize(textContent(n)); text != "" {
			return text
		}
	}

	if title, ok := attr(n, "title"); ok && strings.TrimSpace(title) != "" {
		return normalize(title)
	}
	if placeholder, ok := attr(n, "placeholder"); ok {
		return normalize(placeholder)
	}
	return ""
}
