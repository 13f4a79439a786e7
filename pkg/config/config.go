// Package config provides configuration loading and validation for bidiboard.
package config

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
	"time"
)

// DateLayout is the layout of start_date.
const DateLayout = "2006-01-02"

// reservedBrowser is the key under which spec histories store pull-request
// results, so it cannot name a browser.
const reservedBrowser = "pullRequests"

var browserPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Sentinel validation errors.
var (
	ErrNoBrowsers         = errors.New("at least one browser is required")
	ErrInvalidBrowser     = errors.New("invalid browser name")
	ErrDuplicateBrowser   = errors.New("duplicate browser")
	ErrInvalidStartDate   = errors.New("invalid start date")
	ErrInvalidStoreFile   = errors.New("store file must be a .json file name")
	ErrInvalidChangesDays = errors.New("changes days must be positive")
	ErrInvalidMinChanges  = errors.New("min changes must be positive")
	ErrInvalidDistance    = errors.New("rename distance must not be negative")
	ErrInvalidTheme       = errors.New("unknown dashboard theme")
	ErrInvalidLogLevel    = errors.New("unknown log level")
	ErrEmptyDir           = errors.New("directory must not be empty")
)

var (
	themes    = []string{"light", "dark"}
	logLevels = []string{"debug", "info", "warn", "error"}
)

// Config is the top-level configuration struct for bidiboard.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	ArtifactsDir string          `mapstructure:"artifacts_dir"`
	OutputDir    string          `mapstructure:"output_dir"`
	Browsers     []string        `mapstructure:"browsers"`
	StartDate    string          `mapstructure:"start_date"`
	ReportEntry  string          `mapstructure:"report_entry"`
	Store        StoreConfig     `mapstructure:"store"`
	Dashboard    DashboardConfig `mapstructure:"dashboard"`
	Logging      LoggingConfig   `mapstructure:"logging"`
	Telemetry    TelemetryConfig `mapstructure:"telemetry"`
}

// StoreConfig holds settings of the persisted history document.
type StoreConfig struct {
	// File is the document name inside the output directory.
	File string `mapstructure:"file"`
	// Backup keeps an LZ4-compressed copy of the previous document.
	Backup bool `mapstructure:"backup"`
}

// DashboardConfig holds HTML rendering settings.
type DashboardConfig struct {
	Title          string        `mapstructure:"title"`
	Theme          string        `mapstructure:"theme"`
	DisabledSuites []string      `mapstructure:"disabled_suites"`
	Labels         []LabelConfig `mapstructure:"labels"`
	ChangesDays    int           `mapstructure:"changes_days"`
	MinChanges     int           `mapstructure:"min_changes"`
	RenameDistance int           `mapstructure:"rename_distance"`
	Legend         bool          `mapstructure:"legend"`
	// PullRequestURL is prefixed to a pull-request number to link it.
	PullRequestURL string `mapstructure:"pull_request_url"`
}

// LabelConfig tags specs of the listed suites with a colored label.
type LabelConfig struct {
	Name   string   `mapstructure:"name"`
	Color  string   `mapstructure:"color"`
	Suites []string `mapstructure:"suites"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds OpenTelemetry and metrics export settings.
type TelemetryConfig struct {
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool   `mapstructure:"otlp_insecure"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ArtifactsDir) == "" {
		return fmt.Errorf("%w: artifacts_dir", ErrEmptyDir)
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output_dir", ErrEmptyDir)
	}

	browserErr := c.validateBrowsers()
	if browserErr != nil {
		return browserErr
	}

	_, dateErr := c.Epoch()
	if dateErr != nil {
		return dateErr
	}

	if path.Base(c.Store.File) != c.Store.File || path.Ext(c.Store.File) != ".json" {
		return fmt.Errorf("%w: %q", ErrInvalidStoreFile, c.Store.File)
	}

	return c.validateDashboard()
}

func (c *Config) validateBrowsers() error {
	if len(c.Browsers) == 0 {
		return ErrNoBrowsers
	}

	seen := make(map[string]bool, len(c.Browsers))

	for _, browser := range c.Browsers {
		if !browserPattern.MatchString(browser) || browser == reservedBrowser {
			return fmt.Errorf("%w: %q", ErrInvalidBrowser, browser)
		}

		if seen[browser] {
			return fmt.Errorf("%w: %q", ErrDuplicateBrowser, browser)
		}

		seen[browser] = true
	}

	return nil
}

func (c *Config) validateDashboard() error {
	if !slices.Contains(themes, c.Dashboard.Theme) {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, c.Dashboard.Theme)
	}

	if c.Dashboard.ChangesDays <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidChangesDays, c.Dashboard.ChangesDays)
	}

	if c.Dashboard.MinChanges <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidMinChanges, c.Dashboard.MinChanges)
	}

	if c.Dashboard.RenameDistance < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDistance, c.Dashboard.RenameDistance)
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

// Epoch parses StartDate as the day-index origin.
func (c *Config) Epoch() (time.Time, error) {
	epoch, err := time.Parse(DateLayout, c.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStartDate, c.StartDate)
	}

	return epoch, nil
}

// StoreBasename returns the store file name without its extension.
func (c *Config) StoreBasename() string {
	return strings.TrimSuffix(c.Store.File, path.Ext(c.Store.File))
}

// BrowserEnabled reports whether browser is configured.
func (c *Config) BrowserEnabled(browser string) bool {
	return slices.Contains(c.Browsers, browser)
}

// SuiteEnabled reports whether suite is shown on the dashboard.
func (c *Config) SuiteEnabled(suite string) bool {
	return !slices.Contains(c.Dashboard.DisabledSuites, suite)
}

// LabelsFor returns the labels attached to suite.
func (c *Config) LabelsFor(suite string) []LabelConfig {
	var labels []LabelConfig

	for _, label := range c.Dashboard.Labels {
		if slices.Contains(label.Suites, suite) {
			labels = append(labels, label)
		}
	}

	return labels
}
