package config

import (
	"flag"
	"os"

	"github.com/caarlos0/env/v8"
)

type Config interface {
	ServerAddress() string
	DatabaseURI() string
	PublicBaseURL() string
	AdminPanelURL() string
	AdminEmail() string
	MailFrom() string
	MailBCC() string
	SMTPHost() string
	SMTPPort() int
	SMTPUsername() string
	SMTPPassword() string
	DriveAPIURL() string
	DriveUploadURL() string
	OAuthTokenURL() string
	OAuthClientID() string
	OAuthClientSecret() string
	OAuthRefreshToken() string
	LogLevel() string
}

type Builder struct {
	parameters *parameters
	arguments  []string
	err        error
}

type parameters struct {
	ServerAddress     string `env:"RUN_ADDRESS"`
	DatabaseURI       string `env:"DATABASE_URI"`
	PublicBaseURL     string `env:"PUBLIC_BASE_URL"`
	AdminPanelURL     string `env:"ADMIN_PANEL_URL"`
	AdminEmail        string `env:"ADMIN_EMAIL"`
	MailFrom          string `env:"MAIL_FROM"`
	MailBCC           string `env:"MAIL_BCC"`
	SMTPHost          string `env:"SMTP_HOST"`
	SMTPPort          int    `env:"SMTP_PORT"`
	SMTPUsername      string `env:"SMTP_USERNAME"`
	SMTPPassword      string `env:"SMTP_PASSWORD"`
	DriveAPIURL       string `env:"DRIVE_API_URL"`
	DriveUploadURL    string `env:"DRIVE_UPLOAD_URL"`
	OAuthTokenURL     string `env:"OAUTH_TOKEN_URL"`
	OAuthClientID     string `env:"OAUTH_CLIENT_ID"`
	OAuthClientSecret string `env:"OAUTH_CLIENT_SECRET"`
	OAuthRefreshToken string `env:"OAUTH_REFRESH_TOKEN"`
	LogLevel          string `env:"LOG_LEVEL"`
}

const (
	defaultServerAddress = "localhost:8080"
	defaultOAuthTokenURL = "https://oauth2.googleapis.com/token"
	defaultSMTPPort      = 587
	defaultLogLevel      = "info"
)

func NewBuilder() *Builder {
	return &Builder{
		parameters: &parameters{
			ServerAddress: defaultServerAddress,
			OAuthTokenURL: defaultOAuthTokenURL,
			SMTPPort:      defaultSMTPPort,
			LogLevel:      defaultLogLevel,
		},
		arguments: os.Args[1:],
	}
}

func (b *Builder) LoadEnv() *Builder {
	if err := env.Parse(b.parameters); err != nil {
		b.err = err
	}

	return b
}

func (b *Builder) LoadFlags() *Builder {
	flags := flag.NewFlagSet("delivery", flag.ContinueOnError)
	flags.StringVar(&b.parameters.ServerAddress, "a", b.parameters.ServerAddress, "dirección y puerto del servidor HTTP")
	flags.StringVar(&b.parameters.DatabaseURI, "d", b.parameters.DatabaseURI, "cadena de conexión a PostgreSQL")
	flags.StringVar(&b.parameters.PublicBaseURL, "u", b.parameters.PublicBaseURL, "url base pública de los enlaces de entrega")
	flags.StringVar(&b.parameters.LogLevel, "l", b.parameters.LogLevel, "nivel de log")
	if err := flags.Parse(b.arguments); err != nil {
		b.err = err
	}

	return b
}

func (b *Builder) Build() (Config, error) {
	return b, b.err
}

func (b *Builder) ServerAddress() string {
	return b.parameters.ServerAddress
}

func (b *Builder) DatabaseURI() string {
	return b.parameters.DatabaseURI
}

func (b *Builder) PublicBaseURL() string {
	return b.parameters.PublicBaseURL
}

func (b *Builder) AdminPanelURL() string {
	return b.parameters.AdminPanelURL
}

func (b *Builder) AdminEmail() string {
	return b.parameters.AdminEmail
}

func (b *Builder) MailFrom() string {
	return b.parameters.MailFrom
}

func (b *Builder) MailBCC() string {
	return b.parameters.MailBCC
}

func (b *Builder) SMTPHost() string {
	return b.parameters.SMTPHost
}

func (b *Builder) SMTPPort() int {
	return b.parameters.SMTPPort
}

func (b *Builder) SMTPUsername() string {
	return b.parameters.SMTPUsername
}

func (b *Builder) SMTPPassword() string {
	return b.parameters.SMTPPassword
}

func (b *Builder) DriveAPIURL() string {
	return b.parameters.DriveAPIURL
}

func (b *Builder) DriveUploadURL() string {
	return b.parameters.DriveUploadURL
}

func (b *Builder) OAuthTokenURL() string {
	return b.parameters.OAuthTokenURL
}

func (b *Builder) OAuthClientID() string {
	return b.parameters.OAuthClientID
}

func (b *Builder) OAuthClientSecret() string {
	return b.parameters.OAuthClientSecret
}

func (b *Builder) OAuthRefreshToken() string {
	return b.parameters.OAuthRefreshToken
}

func (b *Builder) LogLevel() string {
	return b.parameters.LogLevel
}
