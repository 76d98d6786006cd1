package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends for OTP codes, rate-limit windows and the token blacklist.
const (
	StoreBackendRedis  = "redis"
	StoreBackendMemory = "memory"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort  string
	AppEnv   string
	LogLevel string

	StoreBackend  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTIssuer         string
	JWTExpiry         time.Duration // access token lifetime
	RefreshTokenTTL   time.Duration

	OTPTTL    time.Duration
	OTPPepper string

	SMTPHost      string
	SMTPPort      string
	SMTPFrom      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPSendRate  float64 // messages per second
	SMTPSendBurst int
	SiteName      string

	SNSSecurityTopicARN string

	AllowedOrigins    []string // CORS allowed origins
	TrustProxyHeaders bool
	TrustedProxies    []string // CIDRs or bare IPs of reverse proxies allowed to set X-Forwarded-For
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users        string
	ActivityLogs string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreBackendRedis)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:        getEnv("DYNAMO_TABLE_USERS", "users"),
			ActivityLogs: getEnv("DYNAMO_TABLE_ACTIVITY_LOGS", "user_activity_logs"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTIssuer:         getEnv("JWT_ISSUER", "mindkonnect"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_ACCESS_TTL_MINUTES", 5)) * time.Minute,
		RefreshTokenTTL:   time.Duration(getEnvInt("REFRESH_TOKEN_EXPIRY_DAYS", 1)) * 24 * time.Hour,

		OTPTTL:    time.Duration(getEnvInt("OTP_TTL_SECONDS", 300)) * time.Second,
		OTPPepper: getEnv("OTP_PEPPER", ""),

		SMTPHost:      getEnv("SMTP_HOST", "localhost"),
		SMTPPort:      getEnv("SMTP_PORT", "1025"),
		SMTPFrom:      getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPSendRate:  getEnvFloat("SMTP_SEND_RATE", 10),
		SMTPSendBurst: getEnvInt("SMTP_SEND_BURST", 20),
		SiteName:      getEnv("SITE_NAME", "MindKonnect"),

		SNSSecurityTopicARN: getEnv("SNS_SECURITY_TOPIC_ARN", ""),

		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
		TrustedProxies:    getEnvList("TRUSTED_PROXIES"),
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendRedis, StoreBackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL_MINUTES must be positive")
	}
	if c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("REFRESH_TOKEN_EXPIRY_DAYS must be positive")
	}
	if c.RefreshTokenTTL <= c.JWTExpiry {
		return fmt.Errorf("refresh token lifetime must exceed access token lifetime")
	}
	if c.OTPTTL <= 0 {
		return fmt.Errorf("OTP_TTL_SECONDS must be positive")
	}
	if c.SMTPSendRate <= 0 || c.SMTPSendBurst <= 0 {
		return fmt.Errorf("SMTP_SEND_RATE and SMTP_SEND_BURST must be positive")
	}
	if c.TrustProxyHeaders && len(c.TrustedProxies) == 0 {
		return fmt.Errorf("TRUST_PROXY_HEADERS requires TRUSTED_PROXIES")
	}
	for _, p := range c.TrustedProxies {
		if _, err := ParseProxy(p); err != nil {
			return err
		}
	}
	return nil
}

// ParseProxy parses a TRUSTED_PROXIES entry. A bare IP is a single-host network.
func ParseProxy(s string) (*net.IPNet, error) {
	if !strings.Contains(s, "/") {
		ip := net.ParseIP(s)
		if ip == nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: invalid address %q", s)
		}
		bits := 128
		if ip4 := ip.To4(); ip4 != nil {
			ip, bits = ip4, 32
		}
		return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
	}
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: invalid CIDR %q", s)
	}
	return n, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
