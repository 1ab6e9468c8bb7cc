package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"urban-auto-server/config"
)

func setTestJWTConfig(t *testing.T) {
	t.Helper()
	config.Load()
}

func TestValidatePhoneNumber(t *testing.T) {
	valid := []string{"9876543210", "6123456789", "7000000000", "8999999999"}
	for _, phone := range valid {
		assert.True(t, ValidatePhoneNumber(phone), phone)
	}

	invalid := []string{
		"1234567890",  // starts below 6
		"987654321",   // too short
		"98765432101", // too long
		"98765abc10",  // letters
		"",
	}
	for _, phone := range invalid {
		assert.False(t, ValidatePhoneNumber(phone), phone)
	}
}

func TestNormalizePhoneNumber(t *testing.T) {
	cases := map[string]string{
		"+919876543210": "9876543210",
		"919876543210":  "9876543210",
		"9876543210":    "9876543210",
		" 9876543210 ":  "9876543210",
		// 10 digits starting with 91 must not be truncated
		"9198765432": "9198765432",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePhoneNumber(input), input)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	setTestJWTConfig(t)

	token, err := GenerateToken(42, "customer")
	assert.NoError(t, err)

	claims, err := VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "customer", claims.Role)
}

func TestVerifyToken_Garbage(t *testing.T) {
	setTestJWTConfig(t)

	_, err := VerifyToken("not.a.token")
	assert.Error(t, err)
}
