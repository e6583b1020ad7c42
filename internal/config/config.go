package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr         string        `mapstructure:"addr"`
		Mode         string        `mapstructure:"mode"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"server"`

	// Storage locates the allow-list blob. ConnectionString accepts either a
	// shared-key connection string (detected by its AccountName= marker) or a
	// bare blob service endpoint; ServiceURL overrides the endpoint when set.
	Storage struct {
		ConnectionString string `mapstructure:"connection_string"`
		ServiceURL       string `mapstructure:"service_url"`
		Container        string `mapstructure:"container"`
		Blob             string `mapstructure:"blob"`
	} `mapstructure:"storage"`

	AAD struct {
		TenantID      string `mapstructure:"tenant_id"`
		ClientID      string `mapstructure:"client_id"`
		ClientSecret  string `mapstructure:"client_secret"`
		AuthorityHost string `mapstructure:"authority_host"`
	} `mapstructure:"aad"`

	PowerBI struct {
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"powerbi"`

	Portal struct {
		FunctionBaseURL string `mapstructure:"function_base_url"`
		WhereAmIBaseURL string `mapstructure:"whereami_base_url"`
		HeaderKeys      struct {
			PreferredUsername string `mapstructure:"preferred_username"`
			Email             string `mapstructure:"email"`
			Groups            string `mapstructure:"groups"`
		} `mapstructure:"header_keys"`
	} `mapstructure:"portal"`

	Observability struct {
		TraceEnabled       bool   `mapstructure:"trace_enabled"`
		TracingEndpointURL string `mapstructure:"tracing_endpoint_url"`
		LogLevel           string `mapstructure:"log_level"`
		Format             string `mapstructure:"log_format"`
		LogSource          bool   `mapstructure:"log_source"`
	} `mapstructure:"observability"`
}

func MustLoad() *Config {
	v := viper.New()

	logger := slog.Default()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvPrefix("PBI_EMBED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		logger.Error("Failed to read config", slog.Any("error", err))
		os.Exit(1)
	}

	if env := os.Getenv("APP_ENV"); env != "" {
		v.SetConfigName(fmt.Sprintf("config.%s", env))
		if err := v.MergeInConfig(); err != nil {
			logger.Info("No environment-specific config (optional)", slog.String("env", env))
		}
		logger.Info("Environment-specific config loaded", slog.String("env", env))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		logger.Error("Failed to unmarshal config", slog.Any("error", err))
		os.Exit(1)
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.container", "data")
	v.SetDefault("storage.blob", "user_locations.csv")
	v.SetDefault("aad.authority_host", "https://login.microsoftonline.com")
	v.SetDefault("powerbi.base_url", "https://api.powerbi.com")
	v.SetDefault("portal.header_keys.preferred_username", "x-user-preferred-username")
	v.SetDefault("portal.header_keys.email", "x-user-email")
	v.SetDefault("portal.header_keys.groups", "x-user-groups")
}
