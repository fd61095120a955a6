package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB     int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB      int    `mapstructure:"REDIS_AUTH_DB"`
	RedisTaskQueueDB int    `mapstructure:"REDIS_TASK_QUEUE_DB"`

	// Stripe key for wallet card top-ups.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	// Admin key used to envelope-encrypt KYC documents before upload.
	KYCAdminKey string `mapstructure:"KYC_ADMIN_KEY"`

	// Firebase service account for FCM pushes.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Transactional email API.
	MailAPIURL   string `mapstructure:"MAIL_API_URL"`
	MailAPIKey   string `mapstructure:"MAIL_API_KEY"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	SalesEmail   string `mapstructure:"SALES_EMAIL"`
	MailDisabled bool   `mapstructure:"MAIL_DISABLED"`

	// Platform fee taken on ride transfers, in percent of the fare.
	WalletFeePct int `mapstructure:"WALLET_FEE_PCT"`

	// Delay before a pending reservation request is auto-accepted, in seconds.
	AutoAcceptSec int `mapstructure:"RESERVATION_AUTO_ACCEPT_SEC"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_TASK_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "campusride")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "config/firebase-service-account.json")
	viper.SetDefault("MAIL_FROM", "no-reply@campusride.app")
	viper.SetDefault("SALES_EMAIL", "sales@campusride.app")
	viper.SetDefault("MAIL_DISABLED", false)
	viper.SetDefault("WALLET_FEE_PCT", 10)
	viper.SetDefault("RESERVATION_AUTO_ACCEPT_SEC", 120)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
