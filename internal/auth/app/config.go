package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/careerhub/internal/auth/service"
	"github.com/aussiebroadwan/careerhub/pkg/jwtx"
	"github.com/joho/godotenv"
)

// Supported DATABASE_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Issuer string // Issuer claim for tokens (default: careerhub-auth)

	AccessSecret  string        // HMAC secret for access tokens, at least 32 bytes (required in prod)
	RefreshSecret string        // HMAC secret for refresh tokens, at least 32 bytes (required in prod)
	AccessTTL     time.Duration // Access token lifetime (default: 15m)
	RefreshTTL    time.Duration // Refresh token lifetime (default: 168h)
	RotateRefresh bool          // Issue a new refresh token on every refresh (default: false)

	MaxSessions int           // Signed-in devices per account (default: 3)
	IdleTimeout time.Duration // Sessions idle this long are swept (default: 720h)
	ReuseDevice bool          // Rebind logins from a known fingerprint to its session (default: false)

	TOTPWindow uint   // Accepted TOTP steps either side of now (default: 1)
	TOTPIssuer string // Issuer shown in authenticator apps (default: Careerhub)

	DatabaseDriver string // sqlite or postgres (default: sqlite)
	DatabaseFile   string // SQLite database file (default: ./auth.db)
	DatabaseURL    string // postgres:// URL, required for the postgres driver
	PepperFile     string // File holding the password/recovery code pepper (default: ./pepper)
	MasterKeyPath  string // File holding the key that seals TOTP secrets (optional)

	CookieSecure bool   // Set Secure on token cookies (default: true)
	CookieDomain string // Domain attribute of token cookies (optional)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	RequestTimeout       time.Duration // Per-request deadline, 0 disables (default: 10s)
}

// LoadConfig reads an optional .env file and then the environment. Values
// already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Issuer:        getEnvOrDefault("CAREERHUB_ISSUER", "careerhub-auth"),
		AccessSecret:  os.Getenv("JWT_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		AccessTTL:     getEnvDurationOrDefault("ACCESS_TOKEN_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL:    getEnvDurationOrDefault("REFRESH_TOKEN_TTL", jwtx.DefaultRefreshTokenTTL),
		RotateRefresh: getEnvBoolOrDefault("REFRESH_ROTATION", false),

		MaxSessions: getEnvIntOrDefault("SESSION_MAX_PER_USER", service.DefaultMaxSessions),
		IdleTimeout: getEnvDurationOrDefault("SESSION_IDLE_TIMEOUT", service.DefaultIdleTimeout),
		ReuseDevice: getEnvBoolOrDefault("SESSION_REUSE_DEVICE", false),

		TOTPWindow: uint(max(getEnvIntOrDefault("TOTP_WINDOW", service.DefaultTOTPWindow), 0)),
		TOTPIssuer: getEnvOrDefault("TOTP_ISSUER", "Careerhub"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite)),
		DatabaseFile:   getEnvOrDefault("DATABASE_FILE", "auth.db"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PepperFile:     getEnvOrDefault("PEPPER_FILE", "pepper"),
		MasterKeyPath:  os.Getenv("MASTER_KEY_PATH"),

		CookieSecure: getEnvBoolOrDefault("COOKIE_SECURE", true),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		RequestTimeout:       getEnvDurationOrDefault("REQUEST_TIMEOUT", 10*time.Second),
	}

	return cfg, cfg.Validate()
}

// IsProd reports whether the service runs in production.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Env, "prod") || strings.EqualFold(c.Env, "production")
}

// Validate rejects configurations the service cannot start with. Missing
// token secrets are only an error in prod; elsewhere they are generated.
func (c Config) Validate() error {
	var errs []error

	if c.IsProd() {
		if c.AccessSecret == "" {
			errs = append(errs, errors.New("JWT_ACCESS_SECRET is required in prod"))
		}
		if c.RefreshSecret == "" {
			errs = append(errs, errors.New("JWT_REFRESH_SECRET is required in prod"))
		}
		if c.MasterKeyPath == "" && os.Getenv("CAREERHUB_MASTER_KEY") == "" {
			errs = append(errs, errors.New("MASTER_KEY_PATH or CAREERHUB_MASTER_KEY is required in prod"))
		}
	}
	if c.AccessSecret != "" && len(c.AccessSecret) < jwtx.MinHMACKeySize {
		errs = append(errs, fmt.Errorf("JWT_ACCESS_SECRET must be at least %d bytes", jwtx.MinHMACKeySize))
	}
	if c.RefreshSecret != "" && len(c.RefreshSecret) < jwtx.MinHMACKeySize {
		errs = append(errs, fmt.Errorf("JWT_REFRESH_SECRET must be at least %d bytes", jwtx.MinHMACKeySize))
	}
	if c.AccessSecret != "" && c.AccessSecret == c.RefreshSecret {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET must differ"))
	}

	if c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	} else if c.AccessTTL >= c.RefreshTTL {
		errs = append(errs, errors.New("ACCESS_TOKEN_TTL must be shorter than REFRESH_TOKEN_TTL"))
	}
	if c.MaxSessions < 1 {
		errs = append(errs, errors.New("SESSION_MAX_PER_USER must be at least 1"))
	}

	switch c.DatabaseDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver))
	}

	return errors.Join(errs...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
