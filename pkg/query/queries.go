package query

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Matcher decides whether a piece of element text matches.
type Matcher interface {
	Match(text string) bool
	String() string
}

type exactMatcher string

// Exact matches text equal to want after whitespace normalisation.
func Exact(want string) Matcher {
	return exactMatcher(normalize(want))
}

func (m exactMatcher) Match(text string) bool {
	return normalize(text) == string(m)
}

func (m exactMatcher) String() string {
	return fmt.Sprintf("%q", string(m))
}

type patternMatcher struct{ re *regexp.Regexp }

// Pattern matches normalised text against re.
func Pattern(re *regexp.Regexp) Matcher {
	return patternMatcher{re: re}
}

func (m patternMatcher) Match(text string) bool {
	return m.re != nil && m.re.MatchString(normalize(text))
}

func (m patternMatcher) String() string {
	if m.re == nil {
		return "/<nil>/"
	}
	return "/" + m.re.String() + "/"
}

// Query selects elements from a Screen. Build one with the By* functions.
type Query struct {
	desc    string
	collect func(*Screen) []*html.Node
}

func (q Query) String() string {
	return q.desc
}

// RoleOption narrows a role query.
type RoleOption func(*roleQuery)

type roleQuery struct {
	name          Matcher
	includeHidden bool
}

// Name requires the accessible name to equal name.
func Name(name string) RoleOption {
	return func(q *roleQuery) { q.name = Exact(name) }
}

// NamePattern requires the accessible name to match re.
func NamePattern(re *regexp.Regexp) RoleOption {
	return func(q *roleQuery) { q.name = Pattern(re) }
}

// IncludeHidden also matches elements excluded from the accessibility tree.
func IncludeHidden() RoleOption {
	return func(q *roleQuery) { q.includeHidden = true }
}

// ByRole matches elements by explicit or implicit ARIA role.
func ByRole(roleName string, options ...RoleOption) Query {
	cfg := roleQuery{}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	roleName = strings.ToLower(strings.TrimSpace(roleName))

	desc := fmt.Sprintf("role %q", roleName)
	if cfg.name != nil {
		desc += " with name " + cfg.name.String()
	}
	return Query{
		desc: desc,
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				if role(n) != roleName {
					continue
				}
				if !cfg.includeHidden && hidden(n) {
					continue
				}
				if cfg.name != nil && !cfg.name.Match(s.accessibleName(n)) {
					continue
				}
				out = append(out, n)
			}
			return out
		},
	}
}

// ByLabelText matches the controls labelled by text, through <label>
// elements, aria-labelledby or aria-label.
func ByLabelText(text string) Query {
	return byLabel(Exact(text))
}

// ByLabelPattern is ByLabelText with a regular expression.
func ByLabelPattern(re *regexp.Regexp) Query {
	return byLabel(Pattern(re))
}

func byLabel(m Matcher) Query {
	return Query{
		desc: "label text " + m.String(),
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				switch {
				case n.Data == "label":
					if m.Match(labelText(n)) {
						out = append(out, s.controlsFor(n)...)
					}
				default:
					if label, ok := attr(n, "aria-label"); ok && m.Match(label) {
						out = append(out, n)
						continue
					}
					if name, ok := s.labelledBy(n); ok && m.Match(name) {
						out = append(out, n)
					}
				}
			}
			return out
		},
	}
}

// ByPlaceholderText matches elements by their placeholder attribute.
func ByPlaceholderText(text string) Query {
	return byAttr("placeholder", Exact(text), nil)
}

// ByText matches elements whose own text equals text. Submit and button
// inputs match on their value.
func ByText(text string) Query {
	return byText(Exact(text))
}

// ByTextPattern is ByText with a regular expression.
func ByTextPattern(re *regexp.Regexp) Query {
	return byText(Pattern(re))
}

func byText(m Matcher) Query {
	return Query{
		desc: "text " + m.String(),
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				switch n.Data {
				case "html", "script", "style":
					continue
				}
				text := ownText(n)
				if strings.TrimSpace(text) == "" {
					continue
				}
				if m.Match(text) {
					out = append(out, n)
				}
			}
			return out
		},
	}
}

// ByDisplayValue matches form controls by the value they currently show.
func ByDisplayValue(value string) Query {
	m := Exact(value)
	return Query{
		desc: "display value " + m.String(),
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				if current, ok := displayValue(n); ok && m.Match(current) {
					out = append(out, n)
				}
			}
			return out
		},
	}
}

// ByAltText matches images, image inputs and areas by alt text.
func ByAltText(text string) Query {
	return byAttr("alt", Exact(text), func(n *html.Node) bool {
		switch n.Data {
		case "img", "area":
			return true
		case "input":
			return inputType(n) == "image"
		default:
			return false
		}
	})
}

// ByTitle matches elements by title attribute, and SVG elements by their
// <title> child.
func ByTitle(text string) Query {
	m := Exact(text)
	return Query{
		desc: "title " + m.String(),
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				if title, ok := attr(n, "title"); ok && m.Match(title) {
					out = append(out, n)
					continue
				}
				if n.Data == "title" && n.Parent != nil && n.Parent.Data == "svg" && m.Match(textContent(n)) {
					out = append(out, n)
				}
			}
			return out
		},
	}
}

// ByTestID matches the data-testid attribute exactly.
func ByTestID(id string) Query {
	return Query{
		desc: fmt.Sprintf("test id %q", id),
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				if value, ok := attr(n, "data-testid"); ok && value == id {
					out = append(out, n)
				}
			}
			return out
		},
	}
}

func byAttr(name string, m Matcher, accept func(*html.Node) bool) Query {
	return Query{
		desc: name + " " + m.String(),
		collect: func(s *Screen) []*html.Node {
			var out []*html.Node
			for _, n := range s.elements {
				if accept != nil && !accept(n) {
					continue
				}
				if value, ok := attr(n, name); ok && m.Match(value) {
					out = append(out, n)
				}
			}
			return out
		},
	}
}
