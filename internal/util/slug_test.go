package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"punctuation stripped", "Cool Club!!", "cool-club"},
		{"already normalized", "cool-club", "cool-club"},
		{"mixed case", "GoLang Fans", "golang-fans"},
		{"multiple spaces", "a   b", "a-b"},
		{"leading and trailing space", "  spaced out  ", "spaced-out"},
		{"digits kept", "Top 10 Clips", "top-10-clips"},
		{"unicode stripped", "café corner", "caf-corner"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeSlug(tt.input))
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 1, ClampLimit(0, 50))
	assert.Equal(t, 50, ClampLimit(100, 50))
	assert.Equal(t, 20, ClampLimit(20, 50))
}
