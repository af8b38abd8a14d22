package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"issuu-scraper/config"
)

func defaultMatcher() *Matcher {
	return NewMatcher(config.DefaultConfig().Match)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Acme Corp", []string{"acme", "corp"}},
		{"acme-corp", []string{"acme", "corp"}},
		{"Sécurité-Et Signalisation S.A.S.", []string{"securite", "et", "signalisation", "s", "a", "s"}},
		{"  GLOBEX_inc.  ", []string{"globex", "inc"}},
		{"---", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch(t *testing.T) {
	m := defaultMatcher()

	tests := []struct {
		name    string
		author  string
		company string
		want    bool
	}{
		{"identical after normalization", "acme-corp", "Acme Corp", true},
		{"joined slug", "acmecorp", "ACME CORP", true},
		{"accents and legal suffix", "securite-et-signalisation", "Sécurité Et Signalisation S.A.S.", true},
		{"company contains author", "acme", "Acme Corp", true},
		{"small typo", "acme-crop", "Acme Corp", true},
		{"token overlap", "acme-holdings-corp", "Acme Corp", true},
		{"no shared tokens", "globex-inc", "Acme Corp", false},
		{"similar letters but no shared token", "acne-corq", "Acme Corp", false},
		{"generic word among many", "group", "Springer Media Group", false},
		{"middle word among many", "media", "Acme Media Corp", false},
		{"author slug contains company", "acmecorporation", "Acme Corp", true},
		{"slug spanning company tokens", "acmecorp", "Acme Corp International", true},
		{"too short to contain", "ac", "Acme Corp", false},
		{"empty author", "", "Acme Corp", false},
		{"separator only author", "--", "Acme Corp", false},
		{"empty company", "acme-corp", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.author, tt.company))
		})
	}
}

func TestMatchDeterministic(t *testing.T) {
	m := defaultMatcher()
	for _, author := range []string{"acme-corp", "globex-inc", "acme-crop", "initech"} {
		first := m.Match(author, "Acme Corp")
		second := m.Match(author, "Acme Corp")
		assert.Equal(t, first, second, author)
		assert.Equal(t, m.Score(author, "Acme Corp"), m.Score(author, "Acme Corp"), author)
	}
}

func TestMatchThresholdIsConfigurable(t *testing.T) {
	strict := NewMatcher(config.MatchConfig{Threshold: 0.9})

	assert.False(t, strict.Match("acme-crop", "Acme Corp"))
	assert.True(t, strict.Match("acme-corp", "Acme Corp"))

	noContain := NewMatcher(config.MatchConfig{Threshold: 0.6, MinContainLength: 0})
	assert.False(t, noContain.Match("acme", "Acme Corporation International"))
}

func TestScore(t *testing.T) {
	m := defaultMatcher()

	assert.Equal(t, 1.0, m.Score("acme-corp", "Acme Corp"))
	assert.Equal(t, 0.0, m.Score("", "Acme Corp"))
	assert.InDelta(t, 0.75, m.Score("acme-crop", "Acme Corp"), 0.001)
	assert.Less(t, m.Score("globex-inc", "Acme Corp"), 0.6)
}
