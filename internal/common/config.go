package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/sediment-tracker/constants"
)

// Config holds all application configuration. It is built once at startup and
// handed to components by value.
type Config struct {
	Database   DatabaseConfig
	Extraction ExtractionConfig
	OCR        OCRConfig
	Server     ServerConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	DuplicatePolicy  constants.DuplicatePolicy
}

// ExtractionConfig holds pipeline tuning
type ExtractionConfig struct {
	MinPageChars int
	PageWorkers  int
	DocWorkers   int
	RulesFile    string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftoppm    string
	Tesseract   string
	Lang        string
	TessdataDir string
	DPI         int
	PSM         int
	MetadataPSM int
	Timeout     time.Duration
}

// ServerConfig holds daemon configuration
type ServerConfig struct {
	GRPCAddr       string
	WatchDirs      []string
	WatchDebounce  time.Duration
	QueueWorkers   int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() Config {
	return Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "sediment.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			DuplicatePolicy:  constants.DuplicatePolicy(strings.ToUpper(getEnv("DUPLICATE_POLICY", string(constants.PolicySkip)))),
		},
		Extraction: ExtractionConfig{
			MinPageChars: getEnvAsInt("MIN_PAGE_CHARS", 50),
			PageWorkers:  getEnvAsInt("PAGE_WORKERS", 4),
			DocWorkers:   getEnvAsInt("DOC_WORKERS", 1),
			RulesFile:    getEnv("RULES_FILE", ""),
		},
		OCR: OCRConfig{
			Pdftoppm:    getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			Lang:        getEnv("TESSERACT_LANG", "spa+eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			PSM:         getEnvAsInt("OCR_PSM", 3),
			MetadataPSM: getEnvAsInt("OCR_METADATA_PSM", 6),
			Timeout:     getEnvAsDuration("OCR_TIMEOUT", 60*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			WatchDirs:      getEnvAsList("WATCH_DIRS", nil),
			WatchDebounce:  getEnvAsDuration("WATCH_DEBOUNCE", 2*time.Second),
			QueueWorkers:   getEnvAsInt("QUEUE_WORKERS", 2),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if _, ok := constants.ParseDuplicatePolicy(string(c.Database.DuplicatePolicy)); !ok {
		return NewAppError(CodeConfig, fmt.Sprintf("DUPLICATE_POLICY %q is not one of SKIP, UPDATE, VERSION", c.Database.DuplicatePolicy), ErrInvalidInput)
	}
	if c.Extraction.MinPageChars <= 0 {
		return NewAppError(CodeConfig, "MIN_PAGE_CHARS must be positive", ErrInvalidInput)
	}
	if c.Extraction.PageWorkers <= 0 || c.Extraction.DocWorkers <= 0 {
		return NewAppError(CodeConfig, "PAGE_WORKERS and DOC_WORKERS must be positive", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError(CodeConfig, "OCR_DPI must be positive", ErrInvalidInput)
	}
	return nil
}
