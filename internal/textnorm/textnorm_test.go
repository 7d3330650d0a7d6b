package textnorm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/treinwijzer/treinwijzer/internal/textnorm"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "Amsterdam Centraal", "amsterdam centraal"},
		{"strips diacritics", "Hérault", "herault"},
		{"dutch diacritics", "Susteren-Heidé", "susteren heide"},
		{"punctuation to space", "den-haag/hs", "den haag hs"},
		{"collapses whitespace", "  utrecht   centraal  ", "utrecht centraal"},
		{"apostrophe", "'s-Hertogenbosch", "s hertogenbosch"},
		{"empty", "", ""},
		{"only punctuation", "---", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textnorm.Fold(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"amsterdam", "zuid"}, textnorm.Tokens("Amsterdam-Zuid"))
	assert.Empty(t, textnorm.Tokens("  "))
}
