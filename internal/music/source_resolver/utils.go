package source_resolver

import (
	"net/url"
	"strings"

	"musa/internal/music/providers"
)

// IsURL reports whether the input looks like an http(s) link rather
// than a free-text query.
func IsURL(input string) bool {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return false
	}
	u, err := url.Parse(input)
	return err == nil && u.Host != ""
}

// FindExpander returns the first enabled provider, in priority order,
// that recognizes the input as an expandable playlist link.
func (r *SourceResolver) FindExpander(input string) (providers.PlaylistExpander, bool) {
	if !IsURL(input) {
		return nil, false
	}
	for _, p := range r.registry.Enabled() {
		exp, ok := p.(providers.PlaylistExpander)
		if ok && exp.CanExpand(input) {
			return exp, true
		}
	}
	return nil, false
}
