package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	Env      string `env:"ENV,default=development"`
	Port     string `env:"PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	JWTSecret string        `env:"JWT_SECRET,default=dev-secret-change-me"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=24h"`

	UploadDir   string `env:"UPLOAD_DIR,default=./uploads"`
	FrontendURL string `env:"FRONTEND_URL,default=http://localhost:5173"`
	CORSOrigin  string `env:"CORS_ORIGIN,default=*"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `env:"GOOGLE_REDIRECT_URL,default=http://localhost:8080/api/auth/google/callback"`

	VNPayTmnCode    string `env:"VNPAY_TMN_CODE"`
	VNPayHashSecret string `env:"VNPAY_HASH_SECRET"`
	VNPayURL        string `env:"VNPAY_URL,default=https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"`
	VNPayReturnURL  string `env:"VNPAY_RETURN_URL,default=http://localhost:8080/api/orders/vnpay-callback"`

	SeedData      bool   `env:"SEED_DATA,default=true"`
	AdminEmail    string `env:"ADMIN_EMAIL,default=admin@cosmetics.local"`
	AdminPassword string `env:"ADMIN_PASSWORD,default=admin123"`

	AuthRateLimit int `env:"AUTH_RATE_LIMIT,default=5"`
	AuthRateBurst int `env:"AUTH_RATE_BURST,default=10"`
}

func (c *Config) IsProduction() bool { return c.Env == "production" }

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func (c *Config) VNPayEnabled() bool {
	return c.VNPayTmnCode != "" && c.VNPayHashSecret != ""
}

// Load reads an optional .env file and decodes the environment into Config.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if cfg.IsProduction() && cfg.JWTSecret == "dev-secret-change-me" {
		return nil, errors.New("JWT_SECRET must be set in production")
	}
	return &cfg, nil
}
