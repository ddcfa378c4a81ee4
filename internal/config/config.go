// Package config loads civcalc settings from defaults, an optional YAML file,
// a .env file and CIVCALC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix prefixes every environment override, e.g. CIVCALC_SERVICE_URL.
const EnvPrefix = "CIVCALC"

// Config is the root configuration.
type Config struct {
	Service  ServiceConfig  `mapstructure:"service" yaml:"service"`
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Results  ResultsConfig  `mapstructure:"results" yaml:"results"`
	Drawings DrawingsConfig `mapstructure:"drawings" yaml:"drawings"`
}

// ServiceConfig locates the calculation service.
type ServiceConfig struct {
	URL       string        `mapstructure:"url" yaml:"url"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent string        `mapstructure:"user_agent" yaml:"user_agent"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// OutputConfig controls where downloads and exports are written.
type OutputConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// ResultsConfig lists, per concept, the field names the service has used
// for it in result trees. The first name found wins.
type ResultsConfig struct {
	Aliases map[string][]string `mapstructure:"aliases" yaml:"aliases"`
}

// DrawingsConfig lists the key spellings of drawing asset kinds.
type DrawingsConfig struct {
	AssetAliases map[string][]string `mapstructure:"asset_aliases" yaml:"asset_aliases"`
}

// DefaultResultAliases is the built-in alias table for result rendering.
func DefaultResultAliases() map[string][]string {
	return map[string][]string{
		"moment":              {"factored_Mu_kNm", "Mu_kNm", "Mu_kNm_per_m"},
		"as_required":         {"required_As_mm2", "As_req_mm2", "As_req_mm2_per_m"},
		"as_provided":         {"provided_As_mm2", "As_provided_mm2"},
		"bar_count":           {"n_bars", "n_bars_total"},
		"bar_diameter":        {"bar_dia_mm"},
		"bar_spacing":         {"bar_spacing_mm", "spacing_mm"},
		"effective_depth":     {"effective_depth_mm", "d_eff_mm"},
		"utilization":         {"utilization_percent", "utilization"},
		"shear_demand":        {"Vu_kN", "V_u_kN"},
		"shear_concrete":      {"Vc_kN"},
		"shear_capacity":      {"phiVc_kN", "phi_Vc_kN", "phiVn_kN", "shear_capacity_kN"},
		"shear_reinforcement": {"needs_shear_reinf", "needs_stirrups"},
		"stirrup_spacing":     {"recommended_spacing_mm", "stirrup_spacing_mm", "s_mm"},
		"axial_capacity":      {"phiPn_kN", "phi_Pn_kN", "axial_capacity_kN"},
		"gross_area":          {"Ag_mm2"},
		"short_column":        {"short_column", "is_short"},
		"pad_side":            {"side_m", "pad_side_m"},
		"required_area":       {"A_req_m2", "required_area_m2"},
		"total_load":          {"total_load_kN"},
		"punching_safe":       {"punching_safe"},
		"mode":                {"mode"},
	}
}

// DefaultAssetAliases is the built-in alias table for drawing asset kinds.
func DefaultAssetAliases() map[string][]string {
	return map[string][]string{
		"plan":      {"plan", "svg_plan"},
		"elevation": {"elevation", "svg_elev"},
		"dxf":       {"dxf"},
		"pdf":       {"pdf"},
	}
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Service --
	v.SetDefault("service.url", "http://127.0.0.1:8000")
	v.SetDefault("service.timeout", "60s")
	v.SetDefault("service.user_agent", "civcalc")

	// -- Logger --
	v.SetDefault("logger.level", "warn")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "civcalc")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 10)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 28)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Output --
	v.SetDefault("output.dir", ".")

	// -- Aliases --
	v.SetDefault("results.aliases", DefaultResultAliases())
	v.SetDefault("drawings.asset_aliases", DefaultAssetAliases())
}

// NewDefaultConfig returns the configuration with only defaults applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Load reads the configuration. cfgFile, when set, must exist; otherwise
// civcalc.yaml is looked up in the working directory and in
// $HOME/.config/civcalc. A .env file in the working directory is loaded
// first so its variables can feed CIVCALC_* overrides.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	SetDefaults(v)
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("error resolving config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("civcalc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "civcalc"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return NewConfigFromViper(v)
}

// NewConfigFromViper unmarshals and validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading ~ in file system settings.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Output.Dir, &c.Logger.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("error resolving %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service.url must be an absolute http(s) URL, got %q", c.Service.URL)
	}
	if c.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("logger.level: %w", err)
	}
	if c.Logger.Format != "console" && c.Logger.Format != "json" {
		return fmt.Errorf("logger.format must be console or json, got %q", c.Logger.Format)
	}
	for concept, names := range c.Results.Aliases {
		if len(names) == 0 {
			return fmt.Errorf("results.aliases.%s must list at least one field name", concept)
		}
	}
	return nil
}
