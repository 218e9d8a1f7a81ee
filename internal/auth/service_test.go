package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameFromName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Jamie Rivera", "jamierivera"},
		{"digits kept", "DJ 2000", "dj2000"},
		{"symbols stripped", "M@x!", "mx"},
		{"empty falls back", "!!!", "viewer"},
		{"long names truncated", "averyveryverylongdisplayname", "averyveryverylongdis"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usernameFromName(tt.in))
		})
	}
}

func TestGenerateOTPCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		code, err := generateOTPCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
		seen[code] = true
	}
	// 20 draws from a million values should not all collide
	assert.Greater(t, len(seen), 1)
}

func TestHashOTPIsStable(t *testing.T) {
	assert.Equal(t, hashOTP("123456"), hashOTP("123456"))
	assert.NotEqual(t, hashOTP("123456"), hashOTP("123457"))
	assert.Len(t, hashOTP("123456"), 64)
}
