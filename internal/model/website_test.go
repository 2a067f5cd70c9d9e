package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebsiteKeywordList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		keywords string
		want     []string
	}{
		{"simple list", "shoes,boots,sandals", []string{"shoes", "boots", "sandals"}},
		{"trims whitespace", " shoes , running shoes ", []string{"shoes", "running shoes"}},
		{"drops empty entries", "shoes,,boots,", []string{"shoes", "boots"}},
		{"single keyword", "shoes", []string{"shoes"}},
		{"empty string", "", nil},
		{"only separators", " , ,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := Website{ID: "w1", Domain: "example.com", Keywords: tt.keywords}
			assert.Equal(t, tt.want, w.KeywordList())
		})
	}
}
