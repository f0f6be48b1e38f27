package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomOTP(t *testing.T) {
	for i := 0; i < 100; i++ {
		otp := GenerateRandomOTP()
		assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), otp)
	}
}

func TestGenerateUsernameFromChineseName(t *testing.T) {
	for i := 0; i < 100; i++ {
		username := GenerateUsernameFromChineseName(GenerateRandomChineseName())
		assert.Regexp(t, regexp.MustCompile(`^[a-z]+\d{1,3}$`), username)
	}
}

func TestGenerateRandomUser(t *testing.T) {
	user, err := GenerateRandomUser("test-password", "example.com")
	require.NoError(t, err)

	assert.NotEmpty(t, user.Username)
	assert.NotEmpty(t, user.FullName)
	assert.Equal(t, user.Username+"@example.com", user.Email)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("test-password")))
}
