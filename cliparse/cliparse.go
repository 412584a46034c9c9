package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database types accepted by -t
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMemory   = "memory"
)

// MaxTokenTTL bounds organizer token lifetime. Tokens survive PIN changes,
// so they must expire within a day.
const MaxTokenTTL = 24 * time.Hour

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	JWTSecret    string
	TokenTTL     time.Duration
	PINCost      int
	OpTimeout    time.Duration
	CORSOrigins  []string
	LoginRate    float64 // organizer login attempts per minute per IP
	LoginBurst   int
	TrustProxy   bool // read client IPs from X-Forwarded-For / X-Real-IP
	LogLevel     slog.Level
}

// ParseFlags validates flags and fills unset values from the environment
func ParseFlags(args []string) (Config, error) {
	var (
		cfg      Config
		origins  string
		logLevel string
	)

	fs := flag.NewFlagSet("blind-dram", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite file")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or memory)")
	fs.StringVar(&origins, "cors", "", "Comma separated allowed CORS origins")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "Organizer token signing secret (prefer env)")

	// Tuning
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", 0, "Organizer token lifetime")
	fs.IntVar(&cfg.PINCost, "pin-cost", 0, "bcrypt cost for organizer PINs")
	fs.DurationVar(&cfg.OpTimeout, "op-timeout", 0, "Timeout for storage and hashing per operation")
	fs.Float64Var(&cfg.LoginRate, "login-rate", 0, "Organizer login attempts per minute per IP")
	fs.IntVar(&cfg.LoginBurst, "login-burst", 0, "Organizer login burst per IP")
	fs.BoolVar(&cfg.TrustProxy, "trust-proxy", false, "Trust X-Forwarded-For from a reverse proxy")
	fs.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = 3318 // default
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite, DatabasePostgres, DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		switch cfg.DatabaseType {
		case DatabaseSQLite:
			cfg.DatabaseURL = "blind-dram.db"
		case DatabasePostgres:
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
	}

	if origins == "" {
		origins = os.Getenv("CORS_ORIGINS")
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	var err error
	if cfg.TokenTTL == 0 {
		if cfg.TokenTTL, err = envDuration("TOKEN_TTL", 12*time.Hour); err != nil {
			return Config{}, err
		}
	}
	if cfg.TokenTTL <= 0 || cfg.TokenTTL > MaxTokenTTL {
		return Config{}, fmt.Errorf("token ttl must be between 0 and %v, got %v", MaxTokenTTL, cfg.TokenTTL)
	}
	if cfg.OpTimeout == 0 {
		if cfg.OpTimeout, err = envDuration("OP_TIMEOUT", 5*time.Second); err != nil {
			return Config{}, err
		}
	}
	if cfg.PINCost == 0 {
		if cfg.PINCost, err = envInt("PIN_COST", 10); err != nil {
			return Config{}, err
		}
	}
	if cfg.LoginBurst == 0 {
		if cfg.LoginBurst, err = envInt("LOGIN_BURST", 5); err != nil {
			return Config{}, err
		}
	}
	if cfg.LoginRate == 0 {
		cfg.LoginRate = 10
		if v := os.Getenv("LOGIN_RATE"); v != "" {
			if cfg.LoginRate, err = strconv.ParseFloat(v, 64); err != nil {
				return Config{}, errors.New("invalid LOGIN_RATE env variable")
			}
		}
	}

	if !cfg.TrustProxy {
		if v := os.Getenv("TRUST_PROXY"); v != "" {
			if cfg.TrustProxy, err = strconv.ParseBool(v); err != nil {
				return Config{}, errors.New("invalid TRUST_PROXY env variable")
			}
		}
	}

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
	}
	if logLevel != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(logLevel)); err != nil {
			return Config{}, fmt.Errorf("invalid log level %q", logLevel)
		}
	}

	// Secrets - MUST be provided
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	return cfg, nil
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return d, nil
}
