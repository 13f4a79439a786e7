package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".bidiboard"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for bidiboard settings.
const envPrefix = "BIDIBOARD"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	var cfg Config

	_ = viperCfg.Unmarshal(&cfg) //nolint:errcheck // defaults always decode.

	return &cfg
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("artifacts_dir", DefaultArtifactsDir)
	viperCfg.SetDefault("output_dir", DefaultOutputDir)
	viperCfg.SetDefault("browsers", DefaultBrowsers)
	viperCfg.SetDefault("start_date", DefaultStartDate)
	viperCfg.SetDefault("report_entry", DefaultReportEntry)

	viperCfg.SetDefault("store.file", DefaultStoreFile)
	viperCfg.SetDefault("store.backup", DefaultStoreBackup)

	viperCfg.SetDefault("dashboard.title", DefaultDashboardTitle)
	viperCfg.SetDefault("dashboard.theme", DefaultDashboardTheme)
	viperCfg.SetDefault("dashboard.disabled_suites", []string{})
	viperCfg.SetDefault("dashboard.changes_days", DefaultChangesDays)
	viperCfg.SetDefault("dashboard.min_changes", DefaultMinChanges)
	viperCfg.SetDefault("dashboard.rename_distance", DefaultRenameDistance)
	viperCfg.SetDefault("dashboard.legend", DefaultDashboardLegend)
	viperCfg.SetDefault("dashboard.pull_request_url", DefaultPullRequestURL)

	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.json", DefaultLogJSON)

	viperCfg.SetDefault("telemetry.otlp_endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("telemetry.otlp_insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("telemetry.metrics_textfile", DefaultMetricsTextfile)
}
