// Package config loads the application settings from a YAML file, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/portfolio-dashboard"
	"github.com/etnz/portfolio-dashboard/date"
	"github.com/etnz/portfolio-dashboard/simulator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable overriding a setting,
// e.g. FOLIO_SERVER_PORT for server.port.
const EnvPrefix = "FOLIO"

// Settings holds the application configuration.
type Settings struct {
	Server     ServerSettings     `mapstructure:"server"`
	Gemini     GeminiSettings     `mapstructure:"gemini"`
	Simulation SimulationSettings `mapstructure:"simulation"`
	Refresh    RefreshSettings    `mapstructure:"refresh"`
	Log        LogSettings        `mapstructure:"log"`
	Portfolio  PortfolioSettings  `mapstructure:"portfolio"`

	// Path is the file the settings were read from, empty when none was found.
	Path string `mapstructure:"-"`
}

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns the listen address.
func (s ServerSettings) Addr() string { return net.JoinHostPort(s.Host, strconv.Itoa(s.Port)) }

type GeminiSettings struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type SimulationSettings struct {
	PurchaseDate  string `mapstructure:"purchase_date"`
	ValuationDate string `mapstructure:"valuation_date"`
}

// Dates returns the parsed purchase and valuation dates.
func (s SimulationSettings) Dates() (purchase, valuation date.Date, err error) {
	if purchase, err = date.Parse(s.PurchaseDate); err != nil {
		return purchase, valuation, fmt.Errorf("invalid purchase date: %w", err)
	}
	if valuation, err = date.Parse(s.ValuationDate); err != nil {
		return purchase, valuation, fmt.Errorf("invalid valuation date: %w", err)
	}
	return purchase, valuation, nil
}

type RefreshSettings struct {
	Schedule string        `mapstructure:"schedule"` // cron spec, empty disables auto refresh
	Timeout  time.Duration `mapstructure:"timeout"`
}

type LogSettings struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type PortfolioSettings struct {
	Currency        string          `mapstructure:"currency"`
	TotalInvestment float64         `mapstructure:"total_investment"`
	Stocks          []StockSettings `mapstructure:"stocks"`
}

type StockSettings struct {
	Ticker       string   `mapstructure:"ticker"`
	TargetAmount *float64 `mapstructure:"target_amount"`
}

// PortfolioConfig converts the settings into a normalized portfolio configuration.
func (s PortfolioSettings) PortfolioConfig() portfolio.PortfolioConfig {
	cfg := portfolio.PortfolioConfig{
		Currency:        s.Currency,
		TotalInvestment: portfolio.M(s.TotalInvestment, s.Currency),
	}
	for _, st := range s.Stocks {
		sc := portfolio.StockConfig{Ticker: st.Ticker}
		if st.TargetAmount != nil {
			t := portfolio.M(*st.TargetAmount, s.Currency)
			sc.Target = &t
		}
		cfg.Stocks = append(cfg.Stocks, sc)
	}
	return cfg.Normalize()
}

// NewPortfolioSettings converts a portfolio configuration back into settings.
func NewPortfolioSettings(cfg portfolio.PortfolioConfig) PortfolioSettings {
	s := PortfolioSettings{
		Currency:        cfg.Currency,
		TotalInvestment: cfg.TotalInvestment.AsFloat(),
	}
	for _, st := range cfg.Stocks {
		ss := StockSettings{Ticker: st.Ticker}
		if st.HasTarget() {
			t := st.Target.AsFloat()
			ss.TargetAmount = &t
		}
		s.Stocks = append(s.Stocks, ss)
	}
	return s
}

// Validate returns all the problems found in the settings.
func (s *Settings) Validate() error {
	var errs []error
	if s.Server.Port < 0 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", s.Server.Port))
	}
	if purchase, valuation, err := s.Simulation.Dates(); err != nil {
		errs = append(errs, err)
	} else if !valuation.After(purchase) {
		errs = append(errs, fmt.Errorf("valuation date %s must be after purchase date %s", valuation, purchase))
	}
	if s.Refresh.Timeout < 0 {
		errs = append(errs, fmt.Errorf("invalid refresh timeout %v", s.Refresh.Timeout))
	}
	if err := s.Portfolio.PortfolioConfig().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("portfolio: %w", err))
	}
	return errors.Join(errs...)
}

// Load reads the settings from 'path', or from folio.yaml in the current
// directory or ./config when path is empty. A missing folio.yaml is not an
// error: defaults and the environment apply.
// A .env file in the current directory is loaded first, without overriding
// variables already set.
func Load(path string) (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("folio")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The Gemini key is commonly exported without prefix.
	if err := v.BindEnv("gemini.api_key", EnvPrefix+"_GEMINI_API_KEY", "GEMINI_API_KEY", "API_KEY"); err != nil {
		return nil, err
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	s.Path = v.ConfigFileUsed()
	return &s, nil
}

// Default returns the settings used when nothing is configured.
func Default() *Settings {
	v := viper.New()
	setDefaults(v)
	var s Settings
	// defaults always decode
	_ = v.Unmarshal(&s)
	return &s
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)

	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model", simulator.DefaultModel)

	v.SetDefault("simulation.purchase_date", portfolio.PurchaseDate.String())
	v.SetDefault("simulation.valuation_date", portfolio.ValuationDate.String())

	v.SetDefault("refresh.schedule", "")
	v.SetDefault("refresh.timeout", 2*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	def := portfolio.DefaultPortfolio()
	v.SetDefault("portfolio.currency", def.Currency)
	v.SetDefault("portfolio.total_investment", def.TotalInvestment.AsFloat())
	v.SetDefault("portfolio.stocks", stockValues(def))
}

func stockValues(cfg portfolio.PortfolioConfig) []map[string]any {
	stocks := make([]map[string]any, 0, len(cfg.Stocks))
	for _, s := range cfg.Stocks {
		m := map[string]any{"ticker": s.Ticker}
		if s.HasTarget() {
			m["target_amount"] = s.Target.AsFloat()
		}
		stocks = append(stocks, m)
	}
	return stocks
}

// Write saves s to 'path'. The format follows the file extension (yaml, json, toml).
// The Gemini key is never written.
func Write(path string, s *Settings) error {
	v := viper.New()
	v.Set("server.host", s.Server.Host)
	v.Set("server.port", s.Server.Port)
	v.Set("gemini.model", s.Gemini.Model)
	v.Set("simulation.purchase_date", s.Simulation.PurchaseDate)
	v.Set("simulation.valuation_date", s.Simulation.ValuationDate)
	v.Set("refresh.schedule", s.Refresh.Schedule)
	v.Set("refresh.timeout", s.Refresh.Timeout.String())
	v.Set("log.level", s.Log.Level)
	v.Set("log.pretty", s.Log.Pretty)

	cfg := s.Portfolio.PortfolioConfig()
	v.Set("portfolio.currency", cfg.Currency)
	v.Set("portfolio.total_investment", cfg.TotalInvestment.AsFloat())
	v.Set("portfolio.stocks", stockValues(cfg))

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("cannot write config %q: %w", path, err)
	}
	return nil
}
