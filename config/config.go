package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port    string
	SiteURL string // public base URL used in enrollment links

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	MailTransport string // graph, smtp or sendgrid

	GraphTenantID     string
	GraphClientID     string
	GraphClientSecret string
	GraphSender       string // sender mailbox for Graph sendMail

	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	EmailFrom    string

	SendGridAPIKey string

	TemplatePath  string // certificate background image
	DeliverySweep bool   // opt-in automatic redelivery of failed sends
}

// Load initializes configuration from environment variables or defaults.
// The returned Config is passed to the components that need it instead of
// living in a package-level variable.
func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:    getEnv("PORT", "3000"),
		SiteURL: getEnv("SITE_URL", "http://localhost:3000"),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "certificados"),

		MailTransport: getEnv("MAIL_TRANSPORT", "graph"),

		GraphTenantID:     getEnv("GRAPH_TENANT_ID", ""),
		GraphClientID:     getEnv("GRAPH_CLIENT_ID", ""),
		GraphClientSecret: getEnv("GRAPH_CLIENT_SECRET", ""),
		GraphSender:       getEnv("GRAPH_SENDER", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		EmailFrom:    getEnv("EMAIL_FROM", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),

		TemplatePath:  getEnv("CERT_TEMPLATE_PATH", "static/img/certificado_base.png"),
		DeliverySweep: getEnvBool("DELIVERY_SWEEP", false),
	}

	if cfg.SiteURL == "http://localhost:3000" {
		log.Println("Warning: Using default SITE_URL. Enrollment QR codes will point at localhost.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool retrieves an environment variable as a bool or returns the default bool value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}
