package config

import (
	"database/sql"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// RazorpayConfig holds the gateway credentials. KeySecret signs checkout
// verification signatures; WebhookSecret signs webhook bodies.
type RazorpayConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
}

// StripeConfig is carried for the not-yet-configured Stripe endpoints.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// WhatsAppConfig holds the Meta Graph API settings for rent reminders.
type WhatsAppConfig struct {
	Token            string
	PhoneNumberID    string
	BusinessName     string
	APIVersion       string
	TemplateName     string
	TemplateLanguage string
	MaxRetries       int
	RemindersEnabled bool
}

// CloudinaryConfig holds the keys used to sign direct client uploads.
type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// PushConfig holds the FCM server key for push notifications.
type PushConfig struct {
	ServerKey string
}

// Config is assembled once at startup and passed by reference; nothing reads
// gateway keys from the environment at call time.
type Config struct {
	DB         *sql.DB
	Razorpay   RazorpayConfig
	Stripe     StripeConfig
	WhatsApp   WhatsAppConfig
	Cloudinary CloudinaryConfig
	Push       PushConfig
	AdminKey   string
}

var AppConfig *Config

// InitDB opens the PostgreSQL connection pool.
func InitDB() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres dbname=rentdone sslmode=disable"
		log.Println("DATABASE_URL not set, using local PostgreSQL database")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Testing database connection...")
	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppConfig = &Config{DB: db}
	loadSettings(AppConfig)
	log.Println("Database connected successfully")
}

func loadSettings(cfg *Config) {
	cfg.Razorpay = RazorpayConfig{
		KeyID:         os.Getenv("RAZORPAY_KEY_ID"),
		KeySecret:     os.Getenv("RAZORPAY_KEY_SECRET"),
		WebhookSecret: os.Getenv("RAZORPAY_WEBHOOK_SECRET"),
		BaseURL:       envOr("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
	}
	cfg.Stripe = StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
	}
	cfg.WhatsApp = WhatsAppConfig{
		Token:            os.Getenv("WHATSAPP_TOKEN"),
		PhoneNumberID:    os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		BusinessName:     envOr("WHATSAPP_BUSINESS_NAME", "RentDone"),
		APIVersion:       envOr("WHATSAPP_API_VERSION", "v21.0"),
		TemplateName:     os.Getenv("WHATSAPP_TEMPLATE_NAME"),
		TemplateLanguage: envOr("WHATSAPP_TEMPLATE_LANGUAGE", "en"),
		MaxRetries:       envIntOr("WHATSAPP_MAX_RETRIES", 3),
		RemindersEnabled: os.Getenv("WHATSAPP_REMINDERS_ENABLED") != "false",
	}
	cfg.Cloudinary = CloudinaryConfig{
		CloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		APIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		APISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}
	cfg.Push = PushConfig{
		ServerKey: os.Getenv("FCM_SERVER_KEY"),
	}
	cfg.AdminKey = os.Getenv("ADMIN_KEY")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

// Get returns the process-wide configuration built by InitDB.
func Get() *Config {
	return AppConfig
}
