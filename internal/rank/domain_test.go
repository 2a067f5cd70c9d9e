package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare domain", "example.com", "example.com"},
		{"uppercase www with scheme", "https://WWW.Example.com/", "example.com"},
		{"http scheme", "http://example.com", "example.com"},
		{"trailing slash", "example.com/", "example.com"},
		{"surrounding whitespace", "  example.com  ", "example.com"},
		{"www only", "www.example.com", "example.com"},
		{"subdomain kept", "shop.example.com", "shop.example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeDomain(tt.input))
		})
	}
}

func TestNormalizeDomainIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"https://WWW.Example.com/",
		"http://shop.example.co.uk/",
		" example.com ",
		"example.com",
	}
	for _, in := range inputs {
		once := NormalizeDomain(in)
		assert.Equal(t, once, NormalizeDomain(once), "input %q", in)
	}
}

func TestMatchesDomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		rawURL string
		target string
		want   bool
	}{
		{"exact host", "https://example.com/page", "example.com", true},
		{"www and case variance", "https://WWW.Example.com/", "example.com", true},
		{"target with scheme", "https://example.com/shop", "https://www.example.com/", true},
		{"subdomain containment", "https://shop.example.com/sale", "example.com", true},
		{"different domain", "https://other.com/example.com", "example.com", false},
		{"path does not bleed into host", "https://other.com/x?q=example.com", "example.com", false},
		{"schemeless candidate rejected", "example.com/page", "example.com", false},
		{"empty target", "https://example.com", "", false},
		// Loose containment: short targets can match inside longer hosts.
		// Preserved intentionally; see the matcher doc comment.
		{"short target substring", "https://banana.com", "a.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MatchesDomain(tt.rawURL, tt.target))
		})
	}
}
