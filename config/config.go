package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	StorageInMemory = "inmemory"
	StoragePostgres = "postgres"
)

type Config struct {
	Postgres    PostgresConfig
	HTTP        HTTPConfig
	Log         LogConfig
	StorageType string `validate:"oneof=inmemory postgres"`
}

type PostgresConfig struct {
	User       string
	Password   string
	DB         string
	Host       string
	Port       int
	SSLMode    string
	MaxConns   int32
	AutoCreate bool
}

func (pc PostgresConfig) GetDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(pc.User, pc.Password),
		Host:     net.JoinHostPort(pc.Host, strconv.Itoa(pc.Port)),
		Path:     "/" + pc.DB,
		RawQuery: url.Values{"sslmode": {pc.SSLMode}}.Encode(),
	}
	return u.String()
}

type HTTPConfig struct {
	Port         string `validate:"required,numeric"`
	BasePath     string `validate:"omitempty,startswith=/"`
	MaxBodyBytes int64  `validate:"gt=0"`
}

type LogConfig struct {
	Level string `validate:"oneof=debug info warn error"`
	JSON  bool
}

type postgresRules struct {
	User     string `validate:"required"`
	DB       string `validate:"required"`
	Host     string `validate:"required"`
	Port     int    `validate:"gt=0,lte=65535"`
	SSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
	MaxConns int32  `validate:"gt=0"`
}

// LoadConfig reads the environment, picking up a .env file in the working
// directory when there is one. It panics on missing or malformed required keys.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic("load .env: " + err.Error())
	}

	storageType := getEnv("STORAGE_TYPE", StorageInMemory)

	cfg := Config{
		StorageType: storageType,
		HTTP: HTTPConfig{
			Port:         getEnv("HTTP_PORT", "8080"),
			BasePath:     getEnv("HTTP_BASE_PATH", "/api"),
			MaxBodyBytes: int64(getInt("HTTP_MAX_BODY_BYTES", 1<<20)),
		},
		Log: LogConfig{
			Level: normalizeLevel(getEnv("LOG_LEVEL", "info")),
			JSON:  getBool("LOG_JSON", false),
		},
	}

	if storageType == StoragePostgres {
		cfg.Postgres = PostgresConfig{
			User:       mustGetEnv("POSTGRES_USER"),
			Password:   mustGetEnv("POSTGRES_PASSWORD"),
			DB:         mustGetEnv("POSTGRES_DB"),
			Host:       mustGetEnv("POSTGRES_HOST"),
			Port:       mustGetInt("POSTGRES_PORT"),
			SSLMode:    mustGetEnv("POSTGRES_SSLMODE"),
			MaxConns:   int32(getInt("POSTGRES_MAX_CONNS", 10)),
			AutoCreate: getBool("POSTGRES_AUTO_CREATE", true),
		}
	}

	return cfg
}

func (c Config) Validate() error {
	c.Log.Level = normalizeLevel(c.Log.Level)

	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.StorageType != StoragePostgres {
		return nil
	}
	pg := c.Postgres
	if err := v.Struct(postgresRules{
		User:     pg.User,
		DB:       pg.DB,
		Host:     pg.Host,
		Port:     pg.Port,
		SSLMode:  pg.SSLMode,
		MaxConns: pg.MaxConns,
	}); err != nil {
		return fmt.Errorf("invalid postgres config: %w", err)
	}
	return nil
}

func normalizeLevel(level string) string {
	return strings.ToLower(strings.TrimSpace(level))
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("missing required env var: " + key)
	}
	return val
}

func mustGetInt(key string) int {
	val := mustGetEnv(key)
	i, err := strconv.Atoi(val)
	if err != nil {
		panic("invalid int for env var " + key + ": " + val)
	}
	return i
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getInt(key string, def int) int {
	if os.Getenv(key) == "" {
		return def
	}
	return mustGetInt(key)
}

func getBool(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		panic("invalid bool for env var " + key + ": " + val)
	}
	return b
}
