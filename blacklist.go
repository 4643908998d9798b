package docspider

import (
	"net/url"
	"strings"
)

// Blacklist rejects same-host URLs whose path starts with any configured
// prefix. Cross-host URLs are never rejected by this predicate; host
// filtering happens earlier, at link extraction, where only same-host
// http/https URLs are kept as candidates at all.
type Blacklist struct {
	hostname string
	prefixes []string
}

// NewBlacklist creates a Blacklist scoped to the given hostname.
func NewBlacklist(hostname string, prefixes []string) *Blacklist {
	return &Blacklist{hostname: hostname, prefixes: prefixes}
}

// Blocked reports whether the URL is excluded from crawling.
// A URL that fails to parse is treated as blocked (fail-closed) to keep
// malformed input out of the pipeline.
func (b *Blacklist) Blocked(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return true
	}
	if u.Hostname() != b.hostname {
		return false
	}
	for _, prefix := range b.prefixes {
		if strings.HasPrefix(u.Path, prefix) {
			return true
		}
	}
	return false
}
