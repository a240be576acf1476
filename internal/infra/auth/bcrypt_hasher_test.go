package auth

import (
	"testing"

	"bizhub/config"
	domainerrors "bizhub/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func strictHasherConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost},
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength:        8,
			MaxLength:        64,
			RequireUppercase: true,
			RequireLowercase: true,
			RequireNumbers:   true,
			RequireSpecial:   true,
		},
	}
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasher(strictHasherConfig())

	password := "StrongPass123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongPass123!", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_ValidatePasswordStrength(t *testing.T) {
	hasher := NewBcryptHasher(strictHasherConfig())

	weakPasswords := []string{
		"123",         // Too short
		"password123", // No uppercase
		"PASSWORD123", // No lowercase
		"PasswordABC", // No numbers
		"Password123", // No special characters
	}

	for _, weak := range weakPasswords {
		err := hasher.ValidatePasswordStrength(weak)
		assert.Error(t, err, "expected error for weak password: %s", weak)
		assert.ErrorIs(t, err, domainerrors.ErrPasswordStrength)
	}

	assert.NoError(t, hasher.ValidatePasswordStrength("StrongPass123!"))
}

func TestBcryptHasher_DefaultPolicy(t *testing.T) {
	// Without a configured policy only the length bounds apply.
	hasher := NewBcryptHasher(&config.Config{Auth: &config.AuthConfig{BcryptCost: bcrypt.MinCost}})

	assert.Error(t, hasher.ValidatePasswordStrength("short"))
	assert.NoError(t, hasher.ValidatePasswordStrength("lowercase only is fine"))
}
