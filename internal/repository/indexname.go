package repository

import (
	"regexp"
	"strings"
)

// indexNamePrefix namespaces every derived index so crawl output never
// collides with unrelated indices on a shared cluster.
const indexNamePrefix = "crawl-"

var (
	schemeRe   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// DeriveIndexName converts a merchant domain or URL into a stable,
// safe index name. Example: https://www.example.com/shop -> crawl-example-com.
// The transform is lossy: distinct domains collide only when they
// normalize to the same token run, which is accepted.
// Parameters:
//   - domain: site domain or URL in any common form.
// Returns:
//   - string: namespaced lowercase index name.
func DeriveIndexName(domain string) string {
	clean := schemeRe.ReplaceAllString(strings.TrimSpace(domain), "")
	// Lowercase first so WWW. variants strip like www.
	clean = strings.ToLower(clean)
	clean = strings.TrimPrefix(clean, "www.")
	// Keep only the host, drop path and query
	if idx := strings.IndexAny(clean, "/?"); idx != -1 {
		clean = clean[:idx]
	}
	clean = nonAlnumRe.ReplaceAllString(clean, "-")
	clean = strings.Trim(clean, "-")

	return indexNamePrefix + clean
}
