package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/esimov/jfda"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the detection service settings.
type Config struct {
	Addr string `validate:"required"`

	Nets           []string `validate:"required,min=2,max=6"`
	OrtLib         string
	IntraOpThreads int `validate:"gte=0"`
	Workers        int `validate:"gte=0"`
	RGB            bool
	Resizer        string `validate:"required"`
	Params         jfda.Params

	RateLimit float64 `validate:"gt=0"`
	RateBurst int     `validate:"gt=0"`
	BodyLimit int     `validate:"gt=0"`

	RedisAddr     string
	RedisPassword string
	RedisDB       int           `validate:"gte=0"`
	CacheTTL      time.Duration `validate:"gte=0"`

	LogLevel string
	LogFile  string
}

// LoadConfig reads the optional .env files, or ./.env when none is given, and builds
// the configuration from the environment.
func LoadConfig(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	def := jfda.DefaultParams()
	env := &envReader{}
	cfg := &Config{
		Addr:           getEnv("JFDA_ADDR", ":8080"),
		Nets:           splitList(getEnv("JFDA_NETS", "")),
		OrtLib:         getEnv("JFDA_ORT_LIB", ""),
		IntraOpThreads: env.int("JFDA_ORT_THREADS", 0),
		Workers:        env.int("JFDA_WORKERS", 0),
		RGB:            env.bool("JFDA_RGB", false),
		Resizer:        getEnv("JFDA_RESIZER", "linear"),
		Params: jfda.Params{
			MinFaceSize: env.float("JFDA_MIN_SIZE", def.MinFaceSize),
			Factor:      env.float("JFDA_FACTOR", def.Factor),
		},
		RateLimit:     env.float("JFDA_RATE_LIMIT", 10),
		RateBurst:     env.int("JFDA_RATE_BURST", 20),
		BodyLimit:     env.int("JFDA_BODY_LIMIT", 10<<20),
		RedisAddr:     getEnv("REDIS_ADDRESS", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       env.int("REDIS_DB", 0),
		CacheTTL:      env.duration("JFDA_CACHE_TTL", 10*time.Minute),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFile:       getEnv("LOG_FILE", ""),
	}
	if env.err != nil {
		return nil, env.err
	}

	th, err := jfda.ParseThresholds(getEnv("JFDA_THRESHOLDS", ""), def.Thresholds)
	if err != nil {
		return nil, err
	}
	cfg.Params.Thresholds = th

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var configValidator = validator.New()

// Validate checks the configuration. The error wraps jfda.ErrConfig.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", jfda.ErrConfig, err)
	}
	if _, ok := jfda.ResizerByName(c.Resizer); !ok {
		return fmt.Errorf("%w: unknown resizer %q", jfda.ErrConfig, c.Resizer)
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// envReader parses typed variables and keeps the first error.
type envReader struct {
	err error
}

func (r *envReader) parse(key string, parse func(string) error) {
	val := os.Getenv(key)
	if val == "" || r.err != nil {
		return
	}
	if err := parse(val); err != nil {
		r.err = fmt.Errorf("%w: invalid %s: %w", jfda.ErrConfig, key, err)
	}
}

func (r *envReader) int(key string, def int) int {
	v := def
	r.parse(key, func(s string) (err error) {
		v, err = strconv.Atoi(s)
		return err
	})
	return v
}

func (r *envReader) float(key string, def float64) float64 {
	v := def
	r.parse(key, func(s string) (err error) {
		v, err = strconv.ParseFloat(s, 64)
		return err
	})
	return v
}

func (r *envReader) bool(key string, def bool) bool {
	v := def
	r.parse(key, func(s string) (err error) {
		v, err = strconv.ParseBool(s)
		return err
	})
	return v
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := def
	r.parse(key, func(s string) (err error) {
		v, err = time.ParseDuration(s)
		return err
	})
	return v
}
