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
	SessionTTLMinutes int    `mapstructure:"SESSION_TTL_MINUTES"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payments and identity (Stripe).
	StripeSecretKey             string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret         string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeIdentityWebhookSecret string `mapstructure:"STRIPE_IDENTITY_WEBHOOK_SECRET"`
	DefaultCurrency             string `mapstructure:"DEFAULT_CURRENCY"`
	CheckoutSuccessURL          string `mapstructure:"CHECKOUT_SUCCESS_URL"`
	CheckoutCancelURL           string `mapstructure:"CHECKOUT_CANCEL_URL"`
	IdentityReturnURL           string `mapstructure:"IDENTITY_RETURN_URL"`

	// Messaging (Twilio Conversations).
	TwilioAccountSID      string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken       string `mapstructure:"TWILIO_AUTH_TOKEN"`
	MessagingMarkReadMode string `mapstructure:"MESSAGING_MARK_READ_MODE"`

	// Banking (Plaid).
	PlaidClientID    string `mapstructure:"PLAID_CLIENT_ID"`
	PlaidSecret      string `mapstructure:"PLAID_SECRET"`
	PlaidEnv         string `mapstructure:"PLAID_ENV"`
	PlaidClientName  string `mapstructure:"PLAID_CLIENT_NAME"`
	PlaidCountryCode string `mapstructure:"PLAID_COUNTRY_CODE"`
	BankTokenKey     string `mapstructure:"BANK_TOKEN_KEY"`

	// Document storage (Cloudinary).
	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	// Push notifications (Firebase Cloud Messaging).
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Contact form delivery.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
	ContactInbox string `mapstructure:"CONTACT_INBOX"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("SESSION_TTL_MINUTES", 60*12)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "bookinghub")
	viper.SetDefault("DEFAULT_CURRENCY", "usd")
	viper.SetDefault("MESSAGING_MARK_READ_MODE", "latest_index")
	viper.SetDefault("PLAID_ENV", "sandbox")
	viper.SetDefault("PLAID_CLIENT_NAME", "BookingHub")
	viper.SetDefault("PLAID_COUNTRY_CODE", "US")
	viper.SetDefault("SMTP_PORT", "587")

	// Every key is registered with a default so AutomaticEnv can resolve it during Unmarshal.
	for _, key := range []string{
		"JWT_SECRET",
		"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET", "STRIPE_IDENTITY_WEBHOOK_SECRET",
		"CHECKOUT_SUCCESS_URL", "CHECKOUT_CANCEL_URL", "IDENTITY_RETURN_URL",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN",
		"PLAID_CLIENT_ID", "PLAID_SECRET", "BANK_TOKEN_KEY",
		"CLOUDINARY_CLOUD_NAME", "CLOUDINARY_API_KEY", "CLOUDINARY_API_SECRET",
		"FIREBASE_CREDENTIALS_FILE",
		"SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD", "SMTP_FROM", "CONTACT_INBOX",
	} {
		viper.SetDefault(key, "")
	}

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
