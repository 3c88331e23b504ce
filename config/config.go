package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	JWTKey string

	EmailSender string
	Password    string // SMTP Password

	GatewayApiURL    string // Payment gateway base URL
	GatewayApiKey    string
	GatewaySecretKey string

	ReconcileCron   string // Cron spec for the pending-payment reconciliation pass
	GatewayTimeoutS int    // Per-call gateway timeout in seconds
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		EmailSender: getEnv("EMAIL_SENDER", "defaultSecret"),
		Password:    getEnv("PASSWORD", "defaultSecret"),

		GatewayApiURL:    getEnv("GATEWAY_API_URL", "https://api.sandbox.credpay.io/v1/"),
		GatewayApiKey:    getEnv("GATEWAY_API_KEY", "key_sandbox_changeme"),
		GatewaySecretKey: getEnv("GATEWAY_SECRET_KEY", "secret_sandbox_changeme"),

		ReconcileCron:   getEnv("RECONCILE_CRON", "*/15 * * * *"),
		GatewayTimeoutS: getEnvInt("GATEWAY_TIMEOUT_SECONDS", 10),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GatewayApiKey == "key_sandbox_changeme" {
		log.Println("Warning: Using placeholder gateway credentials. Online payments will not reconcile.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
