package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for key, value := range map[string]string{
		"DATABASE_DSN":           "postgres://localhost:5432/claimly",
		"INITIAL_ADMIN_PASSWORD": "admin-password",
		"INITIAL_ADMIN_EMAIL":    "admin@example.com",
		"JWT_SECRET":             "secret",
		"SEED_USER_PASSWORD":     "seed-password",
		"EMAIL_USER_DOMAIN":      "example.com",
		"EMAIL_SMTP_USERNAME":    "mailer",
		"EMAIL_SMTP_PASSWORD":    "mailer-password",
		"EMAIL_SMTP_HOST":        "smtp.example.com",
		"RABBITMQ_DSN":           "amqp://localhost:5672",
		"REDIS_PASSWORD":         "redis-password",
	} {
		t.Setenv(key, value)
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:8081", "claimly://"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 1209600, cfg.JWT.Expiration)
	assert.Equal(t, 900, cfg.OTP.Expiration)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Setenv("SERVER_READ_TIMEOUT", "不是数字")

	cfg, err := LoadConfig()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}
