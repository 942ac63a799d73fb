// Package config provides configuration management for the stream crawler.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"time"

	"livecrawl/pkg/utils"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidAccountID    = errors.New("crawler.account_id must be positive")
	ErrInvalidPageSize     = errors.New("crawler.page_size must be between 1 and 100")
	ErrInvalidConcurrency  = errors.New("crawler.concurrency must be at least 1")
	ErrInvalidListURL      = errors.New("crawler.list_url must be an absolute http(s) URL")
	ErrInvalidDetailURL    = errors.New("crawler.detail_url must be an absolute http(s) URL containing one %d verb")
	ErrInvalidTimeout      = errors.New("crawler.timeout_sec must be at least 1")
	ErrInvalidBufferSize   = errors.New("crawler.buffer_size_kb must be at least 1")
	ErrMissingUserAgent    = errors.New("crawler.user_agent is required")
	ErrMissingMarker       = errors.New("filter.marker is required")
	ErrMissingKeyword      = errors.New("filter.keyword is required")
	ErrMissingOutputDir    = errors.New("output.dir is required")
	ErrMissingOutputFile   = errors.New("output.markdown_file and output.text_file are required")
	ErrSameOutputFile      = errors.New("output.markdown_file and output.text_file must differ")
	ErrInvalidLogLevel     = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidSampleRecord = errors.New("logging.sample_records must be non-negative")
)

// Defaults mirror the account the tool was written for.
const (
	DefaultAccountID    = 37694382
	DefaultPageSize     = 30
	DefaultConcurrency  = 100
	DefaultListURL      = "https://space.bilibili.com/ajax/member/getSubmitVideos"
	DefaultDetailURL    = "https://www.bilibili.com/video/av%d"
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/53.0.2785.143 Safari/537.36"
	DefaultTimeoutSec   = 30
	DefaultBufferSizeKb = 4096
)

// Config represents the complete crawler configuration.
type Config struct {
	Crawler CrawlerConfig `yaml:"crawler"`
	Filter  FilterConfig  `yaml:"filter"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// CrawlerConfig contains the upstream endpoints and fan-out settings.
type CrawlerConfig struct {
	ListURL      string `yaml:"list_url" validate:"abs_http_url"`
	DetailURL    string `yaml:"detail_url" validate:"detail_template"`
	UserAgent    string `yaml:"user_agent" validate:"notblank"`
	AccountID    int64  `yaml:"account_id" validate:"gt=0"`
	PageSize     int    `yaml:"page_size" validate:"min=1,max=100"`
	Concurrency  int    `yaml:"concurrency" validate:"min=1"`
	TimeoutSec   int    `yaml:"timeout_sec" validate:"min=1"`
	BufferSizeKb int    `yaml:"buffer_size_kb" validate:"min=1"`
}

// FilterConfig selects livestream recordings among the submissions.
type FilterConfig struct {
	Marker  string   `yaml:"marker" validate:"required"`
	Keyword string   `yaml:"keyword" validate:"required"`
	Strip   []string `yaml:"strip"`
}

// OutputConfig defines where the two listings are written.
type OutputConfig struct {
	Dir          string `yaml:"dir" validate:"required"`
	MarkdownFile string `yaml:"markdown_file" validate:"required"`
	TextFile     string `yaml:"text_file" validate:"required,nefield=MarkdownFile"`
	TextHeader   string `yaml:"text_header"`
	CreateBackup bool   `yaml:"create_backup"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level         string `yaml:"level" validate:"oneof=debug info warn error"`
	SampleRecords int    `yaml:"sample_records" validate:"min=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			AccountID:    DefaultAccountID,
			PageSize:     DefaultPageSize,
			Concurrency:  DefaultConcurrency,
			ListURL:      DefaultListURL,
			DetailURL:    DefaultDetailURL,
			UserAgent:    DefaultUserAgent,
			TimeoutSec:   DefaultTimeoutSec,
			BufferSizeKb: DefaultBufferSizeKb,
		},
		Filter: FilterConfig{
			Marker:  "口袋48",
			Keyword: "直播",
			Strip:   []string{"【SNH48】", "TeamX"},
		},
		Output: OutputConfig{
			Dir:          ".",
			MarkdownFile: "直播.md",
			TextFile:     "直播.txt",
			TextHeader:   "直播",
		},
		Logging: LoggingConfig{
			Level:         "info",
			SampleRecords: 3,
		},
	}
}

// LoadConfig loads configuration from a YAML file. Keys absent from the file
// keep their Default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration against its struct tags and reports
// the first failing field as one of the package's sentinel errors.
func (c *Config) Validate() error {
	err := structValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	return fieldError(fieldErrs[0])
}

// fieldErrors maps struct namespaces to sentinel errors.
var fieldErrors = map[string]error{
	"Config.Crawler.ListURL":       ErrInvalidListURL,
	"Config.Crawler.DetailURL":     ErrInvalidDetailURL,
	"Config.Crawler.UserAgent":     ErrMissingUserAgent,
	"Config.Crawler.AccountID":     ErrInvalidAccountID,
	"Config.Crawler.PageSize":      ErrInvalidPageSize,
	"Config.Crawler.Concurrency":   ErrInvalidConcurrency,
	"Config.Crawler.TimeoutSec":    ErrInvalidTimeout,
	"Config.Crawler.BufferSizeKb":  ErrInvalidBufferSize,
	"Config.Filter.Marker":         ErrMissingMarker,
	"Config.Filter.Keyword":        ErrMissingKeyword,
	"Config.Output.Dir":            ErrMissingOutputDir,
	"Config.Output.MarkdownFile":   ErrMissingOutputFile,
	"Config.Output.TextFile":       ErrMissingOutputFile,
	"Config.Logging.Level":         ErrInvalidLogLevel,
	"Config.Logging.SampleRecords": ErrInvalidSampleRecord,
}

func fieldError(fe validator.FieldError) error {
	if fe.Tag() == "nefield" {
		return ErrSameOutputFile
	}

	if err, ok := fieldErrors[fe.StructNamespace()]; ok {
		return err
	}

	return fmt.Errorf("%s failed %q validation", fe.Namespace(), fe.Tag())
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// structValidator returns the shared validator with the custom tags
// registered. Namespaces in messages use the yaml key names.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}

			return name
		})

		_ = v.RegisterValidation("abs_http_url", func(fl validator.FieldLevel) bool {
			return utils.IsValidURL(fl.Field().String())
		})

		// detail_template needs exactly one %d verb for the video ID.
		_ = v.RegisterValidation("detail_template", func(fl validator.FieldLevel) bool {
			tmpl := fl.Field().String()

			return strings.Count(tmpl, "%d") == 1 && utils.IsValidURL(fmt.Sprintf(tmpl, 1))
		})

		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		validate = v
	})

	return validate
}

// Timeout returns the per-request timeout.
func (c *CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// MarkdownPath returns the full path of the Markdown listing.
func (c *Config) MarkdownPath() string {
	return filepath.Join(c.Output.Dir, c.Output.MarkdownFile)
}

// TextPath returns the full path of the plain-text listing.
func (c *Config) TextPath() string {
	return filepath.Join(c.Output.Dir, c.Output.TextFile)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Account: %d, PageSize: %d, Concurrency: %d, Filter: %s+%s, Output: %s}",
		c.Crawler.AccountID,
		c.Crawler.PageSize,
		c.Crawler.Concurrency,
		c.Filter.Marker,
		c.Filter.Keyword,
		c.Output.Dir,
	)
}
