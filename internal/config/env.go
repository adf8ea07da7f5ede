package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "abcd1234"

type Env struct {
	AppAddr  string
	GinMode  string
	LogLevel string

	JWTSecret string

	DBDriver      string
	DBDSN         string
	MySQLHost     string
	MySQLPort     int
	MySQLUser     string
	MySQLPassword string
	MySQLDatabase string
	SQLitePath    string
	AutoMigrate   bool

	CORSAllowedOrigins []string
	Location           *time.Location
}

func LoadEnv() Env {
	_ = godotenv.Load(".env")

	env := Env{}

	env.AppAddr = cast.ToString(getOrReturnDefault("APP_ADDR", ""))
	if env.AppAddr == "" {
		env.AppAddr = ":" + cast.ToString(cast.ToInt(getOrReturnDefault("PORT", 5000)))
	}
	env.GinMode = cast.ToString(getOrReturnDefault("GIN_MODE", ""))
	env.LogLevel = cast.ToString(getOrReturnDefault("LOG_LEVEL", "info"))

	env.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", DefaultJWTSecret))

	env.DBDriver = strings.ToLower(cast.ToString(getOrReturnDefault("DB_DRIVER", "mysql")))
	env.DBDSN = cast.ToString(getOrReturnDefault("DB_DSN", ""))
	env.MySQLHost = cast.ToString(getOrReturnDefault("MYSQL_HOST", "127.0.0.1"))
	env.MySQLPort = cast.ToInt(getOrReturnDefault("MYSQL_PORT", 3306))
	env.MySQLUser = cast.ToString(getOrReturnDefault("MYSQL_USER", "root"))
	env.MySQLPassword = cast.ToString(getOrReturnDefault("MYSQL_PASSWORD", ""))
	env.MySQLDatabase = cast.ToString(getOrReturnDefault("MYSQL_DATABASE", "carpool"))
	env.SQLitePath = cast.ToString(getOrReturnDefault("SQLITE_PATH", "./data/carpool.db"))
	env.AutoMigrate = cast.ToBool(getOrReturnDefault("DB_AUTO_MIGRATE", true))

	env.CORSAllowedOrigins = splitList(cast.ToString(getOrReturnDefault("CORS_ALLOWED_ORIGINS",
		"http://localhost:5173,http://localhost:5000")))

	env.Location = time.UTC
	if tz := cast.ToString(getOrReturnDefault("APP_TIMEZONE", "")); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			env.Location = loc
		}
	}

	return env
}

// Release reports whether the service runs in gin release mode.
func (e Env) Release() bool {
	return e.GinMode == gin.ReleaseMode
}

// InsecureSecret is true when the signing secret is still the development default.
func (e Env) InsecureSecret() bool {
	return e.JWTSecret == "" || e.JWTSecret == DefaultJWTSecret
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := strings.TrimSpace(os.Getenv(key))
	if value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	out := []string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
