package vanilla

import (
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"
)

var (
	hintPolicyOnce sync.Once
	hintPolicy     *bluemonday.Policy
)

// sanitizeHint keeps inline formatting in hint markup and strips the rest.
func sanitizeHint(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(hintSanitizer().Sanitize(trimmed))
}

func hintSanitizer() *bluemonday.Policy {
	hintPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("strong", "em", "b", "i", "code", "br", "small")
		hintPolicy = policy
	})
	return hintPolicy
}

// themeStyle flattens manifest tokens, with variant overrides applied, into
// CSS custom property declarations ordered by name.
func themeStyle(manifest *theme.Manifest, variant string) string {
	if manifest == nil {
		return ""
	}

	tokens := make(map[string]string, len(manifest.Tokens))
	for key, value := range manifest.Tokens {
		tokens[key] = value
	}
	if variant != "" {
		if v, ok := manifest.Variants[variant]; ok {
			for key, value := range v.Tokens {
				tokens[key] = value
			}
		}
	}

	names := make([]string, 0, len(tokens))
	for name := range tokens {
		if validTokenName(name) && validTokenValue(tokens[name]) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	decls := make([]string, 0, len(names))
	for _, name := range names {
		decls = append(decls, "--"+name+": "+strings.TrimSpace(tokens[name]))
	}
	return strings.Join(decls, "; ")
}

func validTokenName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

func validTokenValue(value string) bool {
	value = strings.TrimSpace(value)
	return value != "" && !strings.ContainsAny(value, ";{}<>\\")
}
