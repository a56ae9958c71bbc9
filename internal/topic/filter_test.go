package topic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllows(t *testing.T) {
	f := Default()

	tests := []struct {
		name     string
		question string
		want     bool
	}{
		{"plain keyword", "How far is the nearest star?", true},
		{"upper case", "WHAT IS A NEBULA", true},
		{"multi word keyword", "What happened before the Big Bang?", true},
		{"substring inside word", "Tell me about planetary rings", true},
		{"starfish still matches star", "Do starfish sleep?", true},
		{"off topic", "What is the capital of France?", false},
		{"empty", "", false},
		{"whitespace only", "   ", false},
		{"split keyword does not match", "black and white hole", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Allows(tt.question))
		})
	}
}

func TestAllowsNoKeywords(t *testing.T) {
	f := New("nothing", nil)
	assert.False(t, f.Allows("planet"))
}

func TestNewNormalizesKeywords(t *testing.T) {
	f := New("", []string{" Planet ", "planet", "", "STAR", "  "})

	assert.Equal(t, []string{"planet", "star"}, f.Keywords())
	assert.Equal(t, DefaultName, f.Name())
}

func TestMatchesKeepsKeywordOrder(t *testing.T) {
	f := Default()

	got := f.Matches("Does the galaxy orbit a black hole like a planet orbits its star?")
	assert.Equal(t, []string{"planet", "star", "galaxy", "black hole", "orbit"}, got)
	assert.Nil(t, f.Matches(""))
	assert.Empty(t, f.Matches("cooking pasta"))
}

func TestKeywordsReturnsCopy(t *testing.T) {
	f := Default()
	kws := f.Keywords()
	kws[0] = "pasta"

	assert.False(t, f.Allows("pasta recipes"))
	assert.Equal(t, "planet", f.Keywords()[0])
}
