// Package config loads the batch configuration: the valid capture window and
// how records are fetched and reconciled.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/quidome/media-timefix/pkg/reconcile"
	"github.com/quidome/media-timefix/pkg/timerange"
)

// LocalLayout is the layout of begin and end when they carry no offset.
const LocalLayout = "2006-01-02T15:04:05"

// Defaults describe the window of the original Geogames album.
const (
	DefaultTimezone = "America/Los_Angeles"
	DefaultBegin    = "2023-07-30T17:00:00"
	DefaultEnd      = "2023-07-30T19:00:00"
	DefaultPageSize = 10
	DefaultWorkers  = 1
	DefaultLogLevel = "info"
)

var validate = func() *validator.Validate {
	v := validator.New()
	// Report yaml key names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}()

type Config struct {
	Timezone string   `yaml:"timezone" validate:"required"`
	Begin    string   `yaml:"begin" validate:"required"`
	End      string   `yaml:"end" validate:"required"`
	PageSize int      `yaml:"page_size" validate:"gte=1,lte=100"`
	Workers  int      `yaml:"workers" validate:"gte=1,lte=256"`
	Order    []string `yaml:"order" validate:"min=1,max=2"`
	LogLevel string   `yaml:"log_level" validate:"oneof=debug info warn error"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads the YAML file at path. Environment variables in the file are
// expanded, after loading a .env file from the working directory if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Begin == "" {
		c.Begin = DefaultBegin
	}
	if c.End == "" {
		c.End = DefaultEnd
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if len(c.Order) == 0 {
		c.Order = []string{string(reconcile.InterpretUTC), string(reconcile.InterpretLocal)}
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks field constraints and that the range can be built.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, e := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s", e.Field(), e.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Interpretations(); err != nil {
		return fmt.Errorf("invalid config: order: %w", err)
	}
	if _, err := c.Range(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Range builds the valid range. Bounds without an offset are read in the
// configured timezone; RFC3339 bounds are converted to it.
func (c *Config) Range() (timerange.Range, error) {
	loc, err := c.Location()
	if err != nil {
		return timerange.Range{}, err
	}

	begin, err := parseBound(c.Begin, loc)
	if err != nil {
		return timerange.Range{}, fmt.Errorf("begin: %w", err)
	}
	end, err := parseBound(c.End, loc)
	if err != nil {
		return timerange.Range{}, fmt.Errorf("end: %w", err)
	}

	return timerange.New(begin, end)
}

// Interpretations returns the configured trial order.
func (c *Config) Interpretations() ([]reconcile.Interpretation, error) {
	return reconcile.ParseInterpretations(c.Order)
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps debug, warn and error to their slog levels; anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBound(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(LocalLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is neither %s nor RFC3339", s, LocalLayout)
	}
	return t.In(loc), nil
}
