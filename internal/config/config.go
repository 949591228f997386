package config

import (
	"time" // Durations

	"github.com/joho/godotenv" // For loading .env files
	"github.com/spf13/viper"   // Typed env lookup with defaults
)

// Config holds the application configuration
type Config struct {
	AppPort        string        // Application port
	DBUser         string        // Database user
	DBPassword     string        // Database password
	DBHost         string        // Database host
	DBPort         string        // Database port
	DBName         string        // Database name
	JWTSecret      string        // JWT secret key
	JWTTTL         time.Duration // Token lifetime
	RedisAddr      string        // Redis server address
	RedisPass      string        // Redis password
	RedisDB        int           // Redis database number
	IsProd         bool          // Is production environment
	GatewayTimeout time.Duration // Upper bound on every store call
	AvatarDir      string        // Root directory of the avatar bucket
	PublicBaseURL  string        // Base URL used to build public avatar links
	Currency       string        // Wallet currency
	Timezone       string        // Location used for budget due dates
	ResetTokenTTL  time.Duration // Password reset token lifetime
	CacheTTL       time.Duration // Redis cache lifetime for read models
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "campus_wallet")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IS_PROD", false)
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("AVATAR_DIR", "./data/avatars")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("CURRENCY", "PHP")
	v.SetDefault("TIMEZONE", "Asia/Manila")
	v.SetDefault("RESET_TOKEN_TTL", "15m")
	v.SetDefault("CACHE_TTL", "60s")
	return &Config{
		AppPort:        v.GetString("APP_PORT"),
		DBUser:         v.GetString("DB_USER"),
		DBPassword:     v.GetString("DB_PASSWORD"),
		DBHost:         v.GetString("DB_HOST"),
		DBPort:         v.GetString("DB_PORT"),
		DBName:         v.GetString("DB_NAME"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         v.GetDuration("JWT_TTL"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPass:      v.GetString("REDIS_PASS"),
		RedisDB:        v.GetInt("REDIS_DB"),
		IsProd:         v.GetBool("IS_PROD"),
		GatewayTimeout: v.GetDuration("GATEWAY_TIMEOUT"),
		AvatarDir:      v.GetString("AVATAR_DIR"),
		PublicBaseURL:  v.GetString("PUBLIC_BASE_URL"),
		Currency:       v.GetString("CURRENCY"),
		Timezone:       v.GetString("TIMEZONE"),
		ResetTokenTTL:  v.GetDuration("RESET_TOKEN_TTL"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
	}
}

// DSN builds the MySQL data source name
func (c *Config) DSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true"
}

// Location resolves the configured timezone, falling back to UTC
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
