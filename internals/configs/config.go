package configs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// Config is the typed view over the process environment.
type Config struct {
	Port string

	DBDriver   string // postgres | sqlite
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	JWTSecret string
	JWTTTL    time.Duration

	Timezone string

	RequireCheckedIn bool

	CORSAllowOrigins   string
	RateLimitPerMinute int
}

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("APP_ENV") == "production" {
		log.Println("[INFO] APP_ENV=production, using system environment")
		return
	}
	if err := godotenv.Load(); err != nil {
		log.Println("[WARN] .env not found, using system environment")
	} else {
		log.Println("[INFO] .env loaded")
	}
}

// Load reads every setting; malformed values fall back to their defaults.
func Load() Config {
	cfg := Config{
		Port:               GetEnv("PORT", "3000"),
		DBDriver:           strings.ToLower(GetEnv("DB_DRIVER", "postgres")),
		DBDSN:              GetEnv("DB_DSN"),
		DBHost:             GetEnv("DB_HOST", "localhost"),
		DBPort:             GetEnv("DB_PORT", "5432"),
		DBUser:             GetEnv("DB_USER"),
		DBPassword:         GetEnv("DB_PASSWORD"),
		DBName:             GetEnv("DB_NAME"),
		DBSSLMode:          GetEnv("DB_SSLMODE", "disable"),
		SQLitePath:         GetEnv("SQLITE_PATH", "leadcrm.db"),
		JWTSecret:          GetEnv("JWT_SECRET"),
		JWTTTL:             getDuration("JWT_TTL", 12*time.Hour),
		Timezone:           strings.TrimSpace(GetEnv("APP_TIMEZONE")),
		RequireCheckedIn:   getBool("DISTRIBUTION_REQUIRE_CHECKED_IN", false),
		CORSAllowOrigins:   GetEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000, http://localhost:5173"),
		RateLimitPerMinute: getInt("RATE_LIMIT_PER_MINUTE", 100),
	}

	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		log.Printf("[WARN] unknown DB_DRIVER=%q, falling back to postgres", cfg.DBDriver)
		cfg.DBDriver = "postgres"
	}
	if cfg.JWTSecret == "" {
		log.Println("[WARN] JWT_SECRET is not set")
	}
	return cfg
}

// PostgresDSN builds the connection string unless DB_DSN was given verbatim.
func (c Config) PostgresDSN() string {
	if c.DBDSN != "" {
		return c.DBDSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=leadcrm&options=-c%%20statement_timeout=5000",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location resolves APP_TIMEZONE; empty or unknown names mean the server's local zone.
func (c Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("[WARN] invalid APP_TIMEZONE=%q: %v, using server local time", c.Timezone, err)
		return time.Local
	}
	return loc
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || value == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[WARN] invalid %s=%q, using %v", key, v, def)
		return def
	}
	return b
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		log.Printf("[WARN] invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("[WARN] invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger(level gormLogger.LogLevel) gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      level,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	nl := *l
	nl.LogLevel = level
	return &nl
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	file := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		log.Printf("[ERROR] %s | %v | %s | %d rows | %s", file, err, elapsed, rows, sql)
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		log.Printf("[SLOW SQL] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[QUERY] %s | %s | %d rows | %s", file, elapsed, rows, sql)
	}
}
