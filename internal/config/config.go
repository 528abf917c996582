// Package config holds the run configuration, read from the environment
// (and a .env file loaded by the commands) and overridden by CLI flags.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tyler180/bbref-season-stats/internal/batch"
	"github.com/tyler180/bbref-season-stats/internal/bbref"
	"github.com/tyler180/bbref-season-stats/internal/store"
)

const (
	SinkFile     = "file"
	SinkS3       = "s3"
	SinkDynamoDB = "dynamodb"
	SinkSQLite   = "sqlite"
	SinkPostgres = "postgres"
)

var sinks = []string{SinkFile, SinkS3, SinkDynamoDB, SinkSQLite, SinkPostgres}

type Config struct {
	// Source
	BaseURL           string
	HTTPTimeout       time.Duration
	RequestsPerMinute int
	UserAgent         string

	// Pacing
	BatchSize int
	Cooldown  time.Duration

	// Range
	SeasonStart int
	SeasonEnd   int

	// Persistence
	Sink        string
	Layout      string // wide or long; S3/file only
	OutDir      string
	S3Bucket    string
	S3Prefix    string
	TableName   string
	SQLitePath  string
	DatabaseURL string

	// Athena registration (s3 sink only)
	AthenaDB        string
	AthenaWorkgroup string
	AthenaOutput    string

	Debug bool
}

// Load reads the environment. It never fails; call Validate.
func Load() *Config {
	now := time.Now()
	return &Config{
		BaseURL:           getenv("BBREF_BASE_URL", bbref.DefaultBaseURL),
		HTTPTimeout:       time.Duration(envInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,
		RequestsPerMinute: envInt("REQUESTS_PER_MINUTE", 0),
		UserAgent:         getenv("USER_AGENT", ""),

		BatchSize: envInt("BATCH_SIZE", batch.DefaultSize),
		Cooldown:  time.Duration(envInt("COOLDOWN_SECONDS", 60)) * time.Second,

		SeasonStart: envInt("SEASON_START", bbref.FirstSeason),
		SeasonEnd:   envInt("SEASON_END", now.Year()),

		Sink:        strings.ToLower(getenv("SINK", SinkFile)),
		Layout:      strings.ToLower(getenv("LAYOUT", "")),
		OutDir:      getenv("OUT_DIR", "./data"),
		S3Bucket:    getenv("S3_BUCKET", ""),
		S3Prefix:    getenv("S3_PREFIX", "bbref"),
		TableName:   getenv("TABLE_NAME", ""),
		SQLitePath:  getenv("SQLITE_PATH", "./data/bbref.db"),
		DatabaseURL: getenv("DATABASE_URL", ""),

		AthenaDB:        getenv("ATHENA_DB", ""),
		AthenaWorkgroup: getenv("ATHENA_WORKGROUP", "primary"),
		AthenaOutput:    getenv("ATHENA_OUTPUT", ""),

		Debug: envBool("DEBUG", false),
	}
}

// Athena reports whether partitions should be registered after S3 writes.
func (c *Config) Athena() bool { return c.AthenaDB != "" }

// StoreLayout resolves the file/S3 layout. Athena needs the long layout.
func (c *Config) StoreLayout() (store.Layout, error) {
	if c.Layout == "" && c.Athena() {
		return store.LayoutLong, nil
	}
	return store.ParseLayout(c.Layout)
}

// Validate checks ranges and that the chosen sink has what it needs. now
// bounds the latest season.
func (c *Config) Validate(now time.Time) error {
	if err := ValidateRange(c.SeasonStart, c.SeasonEnd, now); err != nil {
		return err
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be >= 1, got %d", c.BatchSize)
	}
	if c.Cooldown < 0 {
		return fmt.Errorf("COOLDOWN_SECONDS must be >= 0")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be > 0")
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("REQUESTS_PER_MINUTE must be >= 0")
	}
	layout, err := c.StoreLayout()
	if err != nil {
		return err
	}

	switch c.Sink {
	case SinkFile:
		if c.OutDir == "" {
			return fmt.Errorf("OUT_DIR is required for the file sink")
		}
	case SinkS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 sink")
		}
	case SinkDynamoDB:
		if c.TableName == "" {
			return fmt.Errorf("TABLE_NAME is required for the dynamodb sink")
		}
	case SinkSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite sink")
		}
	case SinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres sink")
		}
	default:
		return fmt.Errorf("unknown sink %q (want one of %s)", c.Sink, strings.Join(sinks, ", "))
	}

	if c.Athena() {
		if c.Sink != SinkS3 {
			return fmt.Errorf("ATHENA_DB needs SINK=s3, got %q", c.Sink)
		}
		if layout != store.LayoutLong {
			return fmt.Errorf("ATHENA_DB needs LAYOUT=long")
		}
	}
	return nil
}

// ValidateRange accepts FirstSeason <= start <= end <= now's year.
func ValidateRange(start, end int, now time.Time) error {
	if start < bbref.FirstSeason {
		return fmt.Errorf("start season %d is before %d", start, bbref.FirstSeason)
	}
	if end > now.Year() {
		return fmt.Errorf("end season %d is after %d", end, now.Year())
	}
	if start > end {
		return fmt.Errorf("start season %d is after end season %d", start, end)
	}
	return nil
}

// ParseSeasonRange reads "YYYY-YYYY" or a single "YYYY".
func ParseSeasonRange(s string, now time.Time) (int, int, error) {
	s = strings.TrimSpace(s)
	lo, hi, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("season range %q: want YYYY-YYYY", s)
	}
	end := start
	if found {
		end, err = strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return 0, 0, fmt.Errorf("season range %q: want YYYY-YYYY", s)
		}
	}
	if err := ValidateRange(start, end, now); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
