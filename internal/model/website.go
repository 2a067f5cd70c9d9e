package model

import (
	"strings"
	"time"
)

// Website is a tracked site: the domain to look for in result pages and the
// comma-separated keyword list to check.
type Website struct {
	ID       string `json:"id"`
	Domain   string `json:"domain"`
	Keywords string `json:"keywords"`
}

// KeywordList splits the stored comma-separated keyword list, trimming
// whitespace and dropping empty entries.
func (w Website) KeywordList() []string {
	var out []string
	for _, k := range strings.Split(w.Keywords, ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// KeywordPreference is the per-(website, keyword) tracking configuration.
// LastDeepSearchAt is the cooldown token: a deep search spends it whether or
// not a match was found.
type KeywordPreference struct {
	WebsiteID         string     `json:"website_id"`
	Keyword           string     `json:"keyword"`
	IsPriority        bool       `json:"is_priority"`
	DeepSearchEnabled bool       `json:"deep_search_enabled"`
	LastDeepSearchAt  *time.Time `json:"last_deep_search_at,omitempty"`
}
