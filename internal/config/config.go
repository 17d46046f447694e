package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Politiques de persistance quand le panier devient vide par suppression.
const (
	EmptyCartDelete = "delete"
	EmptyCartRetain = "retain"
)

type ScyllaConfig struct {
	Hosts            []string
	Username         string
	Password         string
	SSLEnabled       bool
	CACertPath       string
	ProductsKeyspace string
	OrdersKeyspace   string
	Timeout          time.Duration
	NumConns         int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type ElasticConfig struct {
	URL      string
	Username string
	Password string
	Index    string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PresignTTL time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type CartConfig struct {
	TTL         time.Duration
	MaxQuantity int
	EmptyPolicy string
}

type Config struct {
	Env       string
	Port      string
	LogLevel  string
	LogFormat string

	AllowedOrigins []string
	SessionSecret  string
	SessionSecure  bool

	JWTSecret         string
	AdminEmail        string
	AdminPasswordHash string

	Scylla  ScyllaConfig
	Redis   RedisConfig
	Elastic ElasticConfig
	MinIO   MinIOConfig
	SMTP    SMTPConfig
	Cart    CartConfig

	// Codes promo → pourcentage de réduction
	Coupons map[string]float64

	StripeSecretKey     string
	StripeWebhookSecret string
	Currency            string

	KafkaBrokers []string

	OrdersBaseURL  string
	OrdersTimeout  time.Duration
	IdempotencyTTL time.Duration

	ShopName    string
	FrontendURL string
}

// Load charge le fichier .env (s'il existe) puis lit l'environnement.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		logrus.Warn("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		logrus.Info("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration à partir des variables d'environnement courantes.
func FromEnv() (*Config, error) {
	coupons, err := ParseCoupons(getenv("COUPON_CODES", "SAVE10:10"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Env:       getenv("APP_ENV", "development"),
		Port:      getenv("PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),

		AllowedOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
		SessionSecret:  os.Getenv("SESSION_SECRET"),
		SessionSecure:  getBool("SESSION_SECURE", false),

		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminEmail:        os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),

		Scylla: ScyllaConfig{
			Hosts:            splitList(os.Getenv("SCYLLA_HOSTS")),
			Username:         os.Getenv("SCYLLA_USERNAME"),
			Password:         os.Getenv("SCYLLA_PASSWORD"),
			SSLEnabled:       getBool("SCYLLA_SSL_ENABLED", false),
			CACertPath:       os.Getenv("SCYLLA_SSL_CA_PATH"),
			ProductsKeyspace: getenv("SCYLLA_KS_PRODUCTS", "ks_products"),
			OrdersKeyspace:   getenv("SCYLLA_KS_ORDERS", "ks_orders"),
			Timeout:          getDuration("SCYLLA_TIMEOUT", 5*time.Second),
			NumConns:         getInt("SCYLLA_NUM_CONNS", 20),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		Elastic: ElasticConfig{
			URL:      os.Getenv("ELASTIC_URL"),
			Username: os.Getenv("ELASTIC_USER"),
			Password: os.Getenv("ELASTIC_PASSWORD"),
			Index:    getenv("ELASTIC_INDEX", "products"),
		},
		MinIO: MinIOConfig{
			Endpoint:   os.Getenv("MINIO_ENDPOINT"),
			AccessKey:  os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey:  os.Getenv("MINIO_SECRET_KEY"),
			Bucket:     getenv("MINIO_BUCKET", "maeva-images"),
			UseSSL:     getBool("MINIO_USE_SSL", false),
			PresignTTL: getDuration("MINIO_PRESIGN_TTL", 24*time.Hour),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getenv("SMTP_FROM", "noreply@maeva.dz"),
		},
		Cart: CartConfig{
			TTL:         getDuration("CART_TTL", 30*24*time.Hour),
			MaxQuantity: getInt("CART_MAX_QUANTITY", 20),
			EmptyPolicy: strings.ToLower(getenv("CART_EMPTY_POLICY", EmptyCartDelete)),
		},
		Coupons: coupons,

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		Currency:            getenv("CURRENCY", "dzd"),

		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),

		OrdersBaseURL:  strings.TrimRight(os.Getenv("ORDERS_BASE_URL"), "/"),
		OrdersTimeout:  getDuration("ORDERS_TIMEOUT", 15*time.Second),
		IdempotencyTTL: getDuration("IDEMPOTENCY_TTL", 24*time.Hour),

		ShopName:    getenv("SHOP_NAME", "MAEVA"),
		FrontendURL: strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
	}

	if cfg.Cart.EmptyPolicy != EmptyCartDelete && cfg.Cart.EmptyPolicy != EmptyCartRetain {
		return nil, fmt.Errorf("CART_EMPTY_POLICY invalide: %q (attendu %q ou %q)",
			cfg.Cart.EmptyPolicy, EmptyCartDelete, EmptyCartRetain)
	}
	if cfg.Cart.MaxQuantity <= 0 {
		return nil, fmt.Errorf("CART_MAX_QUANTITY doit être positif")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ParseCoupons lit une liste "CODE:POURCENTAGE,CODE2:POURCENTAGE".
// Les codes sont normalisés en majuscules.
func ParseCoupons(raw string) (map[string]float64, error) {
	coupons := make(map[string]float64)
	for _, entry := range splitList(raw) {
		code, pct, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("code promo mal formé: %q", entry)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || value <= 0 || value > 100 {
			return nil, fmt.Errorf("pourcentage invalide pour %q", code)
		}
		coupons[strings.ToUpper(strings.TrimSpace(code))] = value
	}
	return coupons, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
