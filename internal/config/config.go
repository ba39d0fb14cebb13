package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/histpath/readingorder/internal/logger"
	"github.com/histpath/readingorder/layout"
	"github.com/histpath/readingorder/ocr"
)

type Config struct {
	// Reading order
	Strategy            string  `env:"ORDER_STRATEGY" validate:"oneof=dbscan density sequential threshold"`
	Eps                 float64 `env:"ORDER_EPS" validate:"gt=0"`
	Threshold           float64 `env:"ORDER_THRESHOLD" validate:"gte=0"`
	MinSamples          int     `env:"ORDER_MIN_SAMPLES" validate:"min=1"`
	MaxReassignDistance float64 `env:"ORDER_MAX_REASSIGN_DISTANCE" validate:"gte=0"`
	NormalizeText       bool    `env:"ORDER_NORMALIZE_TEXT"`

	// Batch processing
	BatchWorkers int `env:"BATCH_WORKERS" validate:"min=1,max=64"`

	// HTTP
	HTTPAddr    string `env:"HTTP_ADDR" validate:"required"`
	BodyLimitMB int    `env:"HTTP_BODY_LIMIT_MB" validate:"min=1"`

	// Job store
	JobStore      string        `env:"JOB_STORE" validate:"oneof=memory redis"`
	JobTTL        time.Duration `env:"JOB_TTL" validate:"gt=0"`
	RedisAddress  string        `env:"REDIS_ADDRESS" validate:"required_if=JobStore redis"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" validate:"min=0"`

	// Tesseract backend
	OCRLanguage          string `env:"OCR_LANG" validate:"required"`
	OCRBinarizeThreshold int    `env:"OCR_BINARIZE_THRESHOLD" validate:"min=0,max=255"`

	// Logging Configuration
	LogLevel      string `env:"LOG_LEVEL" validate:"oneof=trace debug info warn error fatal panic"`
	LogFormat     string `env:"LOG_FORMAT" validate:"oneof=json console"`
	LogTimeFormat string `env:"LOG_TIME_FORMAT"`
	LogOutput     string `env:"LOG_OUTPUT" validate:"required"`
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; variables already set win.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	p := &envParser{}
	config := &Config{
		Strategy:             strings.ToLower(getEnv("ORDER_STRATEGY", layout.StrategyDensityBased)),
		Eps:                  p.float("ORDER_EPS", layout.DefaultEps),
		Threshold:            p.float("ORDER_THRESHOLD", layout.DefaultThreshold),
		MinSamples:           p.int("ORDER_MIN_SAMPLES", layout.DefaultMinSamples),
		MaxReassignDistance:  p.float("ORDER_MAX_REASSIGN_DISTANCE", 0),
		NormalizeText:        p.bool("ORDER_NORMALIZE_TEXT", false),
		BatchWorkers:         p.int("BATCH_WORKERS", 4),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8000"),
		BodyLimitMB:          p.int("HTTP_BODY_LIMIT_MB", 50),
		JobStore:             strings.ToLower(getEnv("JOB_STORE", "memory")),
		JobTTL:               p.duration("JOB_TTL", 24*time.Hour),
		RedisAddress:         getEnv("REDIS_ADDRESS", ""),
		RedisPassword:        getEnv("REDIS_PASSWORD", ""),
		RedisDB:              p.int("REDIS_DB", 0),
		OCRLanguage:          getEnv("OCR_LANG", ocr.DefaultLanguage),
		OCRBinarizeThreshold: p.int("OCR_BINARIZE_THRESHOLD", ocr.DefaultBinarizeThreshold),
		LogLevel:             strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat:            strings.ToLower(getEnv("LOG_FORMAT", "console")),
		LogTimeFormat:        getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:            getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, fmt.Errorf("config parsing failed: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks every field against its validate tag. Errors name the
// environment variable at fault.
func (c *Config) Validate() error {
	err := newValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		if fe.Param() != "" {
			msgs[i] = fmt.Sprintf("%s must satisfy %s=%s (got %v)", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		} else {
			msgs[i] = fmt.Sprintf("%s is %s", fe.Field(), fe.Tag())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}

// StrategyConfig returns the clustering configuration.
func (c *Config) StrategyConfig() layout.StrategyConfig {
	return layout.StrategyConfig{
		Name:                c.Strategy,
		Threshold:           c.Threshold,
		Eps:                 c.Eps,
		MinSamples:          c.MinSamples,
		MaxReassignDistance: c.MaxReassignDistance,
	}
}

// OrderConfig builds the reading order configuration, logging through l.
func (c *Config) OrderConfig(l zerolog.Logger) (layout.ReadingOrderConfig, error) {
	strategy, err := layout.NewStrategy(c.StrategyConfig())
	if err != nil {
		return layout.ReadingOrderConfig{}, err
	}
	return layout.ReadingOrderConfig{Strategy: strategy, Logger: l}, nil
}

// OCRConfig returns the Tesseract client configuration.
func (c *Config) OCRConfig() ocr.Config {
	cfg := ocr.DefaultConfig()
	cfg.Language = c.OCRLanguage
	cfg.BinarizeThreshold = c.OCRBinarizeThreshold
	return cfg
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	cfg := logger.DefaultConfig()
	cfg.Level = c.LogLevel
	cfg.Format = c.LogFormat
	cfg.TimeFormat = c.LogTimeFormat
	cfg.Output = c.LogOutput
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envParser collects conversion errors so all of them are reported at once.
type envParser struct {
	errs []error
}

func (p *envParser) float(key string, def float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a number", key, raw))
		return def
	}
	return v
}

func (p *envParser) int(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not an integer", key, raw))
		return def
	}
	return v
}

func (p *envParser) bool(key string, def bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a boolean", key, raw))
		return def
	}
	return v
}

func (p *envParser) duration(key string, def time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %q is not a duration", key, raw))
		return def
	}
	return v
}
