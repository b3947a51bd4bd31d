package config

import (
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	OutputPath  string
	CatalogType string
	Descriptors []string
	Gender      string
	PageStart   int
	PageStop    int // 0 scrapes until the data ends

	SleepSeconds   float64
	TimeoutSeconds float64
	MaxRetries     int

	BaseURL     string
	Backend     string
	ChromeBin   string
	Headless    bool
	ProbeStatus bool

	Sink        string
	MySQLDSN    string
	SQLitePath  string
	CatalogFile string

	LogLevel string
	LogFile  string
}

// Backends and sinks accepted by Validate.
const (
	BackendChromedp = "chromedp"
	BackendRod      = "rod"

	SinkNone     = "none"
	SinkPostgres = "postgres"
	SinkMySQL    = "mysql"
	SinkSQLite   = "sqlite"
)

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "scraper"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "scraper123"),
		PostgresDB:       getEnv("POSTGRES_DB", "catalog_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		OutputPath:  getEnv("OUTPUT_PATH", "./output/catalog.csv"),
		CatalogType: getEnv("CATALOG_TYPE", "running-shoes"),
		Descriptors: getEnvList("DESCRIPTORS"),
		Gender:      getEnv("GENDER", "none"),
		PageStart:   getEnvInt("PAGE_START", 1),
		PageStop:    getEnvInt("PAGE_STOP", 0),

		SleepSeconds:   getEnvFloat("SLEEP_SECONDS", 0.5),
		TimeoutSeconds: getEnvFloat("TIMEOUT_SECONDS", 10),
		MaxRetries:     getEnvInt("MAX_RETRIES", 3),

		BaseURL:     getEnv("BASE_URL", "https://runrepeat.com"),
		Backend:     getEnv("BACKEND", BackendChromedp),
		ChromeBin:   getEnv("CHROME_BIN", ""),
		Headless:    getEnvBool("HEADLESS", true),
		ProbeStatus: getEnvBool("PROBE_STATUS", true),

		Sink:        getEnv("SINK", SinkNone),
		MySQLDSN:    getEnv("MYSQL_DSN", "scraper:scraper123@tcp(localhost:3306)/catalog_db"),
		SQLitePath:  getEnv("SQLITE_PATH", "./output/catalog.db"),
		CatalogFile: getEnv("CATALOG_FILE", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// Sleep is the settle delay after every UI change.
func (c *Config) Sleep() time.Duration { return seconds(c.SleepSeconds) }

// Timeout bounds every element wait.
func (c *Config) Timeout() time.Duration { return seconds(c.TimeoutSeconds) }

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		b, err := strconv.ParseBool(val)
		if err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
