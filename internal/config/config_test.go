package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_LoadEnv(t *testing.T) {
	var (
		serverAddress = "localhost:8081"
		databaseURI   = "dsn"
		publicBaseURL = "https://entrega.tradutema.com"
		adminEmail    = "admin@tradutema.com"
		smtpHost      = "smtp.example.com"
		builder       = &Builder{
			parameters: &parameters{},
		}
	)

	require.NoError(t, os.Setenv("RUN_ADDRESS", serverAddress))
	require.NoError(t, os.Setenv("DATABASE_URI", databaseURI))
	require.NoError(t, os.Setenv("PUBLIC_BASE_URL", publicBaseURL))
	require.NoError(t, os.Setenv("ADMIN_EMAIL", adminEmail))
	require.NoError(t, os.Setenv("SMTP_HOST", smtpHost))
	require.NoError(t, os.Setenv("SMTP_PORT", "465"))

	cfg, err := builder.LoadEnv().Build()
	require.NoError(t, err)
	assert.Equal(t, serverAddress, cfg.ServerAddress())
	assert.Equal(t, databaseURI, cfg.DatabaseURI())
	assert.Equal(t, publicBaseURL, cfg.PublicBaseURL())
	assert.Equal(t, adminEmail, cfg.AdminEmail())
	assert.Equal(t, smtpHost, cfg.SMTPHost())
	assert.Equal(t, 465, cfg.SMTPPort())
}

func TestBuilder_LoadFlags(t *testing.T) {
	var (
		serverAddress = "localhost:8081"
		databaseURI   = "dsn"
		publicBaseURL = "https://entrega.tradutema.com"
		logLevel      = "debug"
		builder       = &Builder{
			parameters: &parameters{},
			arguments: []string{
				"-a", serverAddress,
				"-d", databaseURI,
				"-u", publicBaseURL,
				"-l", logLevel,
			},
		}
	)

	cfg, err := builder.LoadFlags().Build()
	require.NoError(t, err)
	assert.Equal(t, serverAddress, cfg.ServerAddress())
	assert.Equal(t, databaseURI, cfg.DatabaseURI())
	assert.Equal(t, publicBaseURL, cfg.PublicBaseURL())
	assert.Equal(t, logLevel, cfg.LogLevel())
}

func TestNewBuilderDefaults(t *testing.T) {
	b := NewBuilder()

	assert.Equal(t, defaultServerAddress, b.ServerAddress())
	assert.Equal(t, defaultOAuthTokenURL, b.OAuthTokenURL())
	assert.Equal(t, defaultSMTPPort, b.SMTPPort())
	assert.Equal(t, defaultLogLevel, b.LogLevel())
}
