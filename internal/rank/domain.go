package rank

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// NormalizeDomain canonicalizes a tracked domain string for comparison:
// trimmed, lowercased, protocol and leading www stripped, no trailing slash.
// Normalizing an already-normalized domain is a no-op.
func NormalizeDomain(domain string) string {
	d := strings.ToLower(strings.TrimSpace(domain))
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	return strings.TrimSuffix(d, "/")
}

// MatchesDomain reports whether a result URL belongs to the tracked domain.
// The candidate's host is compared after the same normalization; containment
// is accepted so subdomain results still count. A candidate that fails to
// parse is treated as a non-match so the rest of the batch proceeds.
func MatchesDomain(rawURL, target string) bool {
	t := NormalizeDomain(target)
	if t == "" {
		return false
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		zap.L().Debug("rank: skipping unparseable result link",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == t || strings.Contains(host, t)
}
