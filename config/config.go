package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/antoninodiblasi/IBKR-Backtesting/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Defaults applied for fields the file leaves unset
const (
	DefaultBaseCurrency    = "USD"
	DefaultM2MTime         = "15:30"
	DefaultMarketCloseTime = "16:30"
	DefaultOutputDir       = "output"
)

var defaultInitialCash = decimal.NewFromInt(100000)

// ReadConfigFromFile loads, defaults and validates a run configuration.
// JSON and YAML files are both accepted
func ReadConfigFromFile(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: config path cannot be empty", ErrInvalidConfig)
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decimalHook)); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log.Infof(log.ConfigMgr, "loaded config %v from %v", cfg.Nickname, path)
	return &cfg, nil
}

// decimalHook converts plain numbers and strings from the config file into
// decimal fields
func decimalHook(_, to reflect.Type, value any) (any, error) {
	if to != reflect.TypeOf(decimal.Decimal{}) {
		return value, nil
	}
	switch v := value.(type) {
	case float64:
		return decimal.NewFromFloat(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		return decimal.NewFromString(v)
	}
	return value, nil
}

func (c *Config) applyDefaults() {
	if c.Portfolio.BaseCurrency == "" {
		c.Portfolio.BaseCurrency = DefaultBaseCurrency
	}
	if c.Portfolio.InitialCash.IsZero() {
		c.Portfolio.InitialCash = defaultInitialCash
	}
	if c.Session.M2MTime == "" {
		c.Session.M2MTime = DefaultM2MTime
	}
	if c.Session.MarketCloseTime == "" {
		c.Session.MarketCloseTime = DefaultMarketCloseTime
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = DefaultOutputDir
	}
}

// Validate checks the loaded values for coherence
func (c *Config) Validate() error {
	if c.Strategy.Name == "" {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errNoStrategy)
	}
	if len(c.Data) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errNoData)
	}
	seen := make(map[string]bool, len(c.Data))
	for i := range c.Data {
		if c.Data[i].Symbol == "" {
			return fmt.Errorf("%w: %v at index %v", ErrInvalidConfig, errSymbolUnset, i)
		}
		if c.Data[i].CSVFile == "" {
			return fmt.Errorf("%w: %v for %v", ErrInvalidConfig, errFileUnset, c.Data[i].Symbol)
		}
		upper := strings.ToUpper(c.Data[i].Symbol)
		if seen[upper] {
			return fmt.Errorf("%w: %v %v", ErrInvalidConfig, errDuplicateSymbol, c.Data[i].Symbol)
		}
		seen[upper] = true
	}
	if c.Portfolio.InitialCash.IsNegative() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errNegativeCash)
	}
	if c.Execution.Slippage.IsNegative() ||
		c.Execution.Commission.IsNegative() ||
		c.Execution.ImpactLambda.IsNegative() {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errNegativeCosts)
	}
	if _, err := ParseTimeOfDay(c.Session.M2MTime); err != nil {
		return fmt.Errorf("%w: m2m-time: %v", ErrInvalidConfig, err)
	}
	if _, err := ParseTimeOfDay(c.Session.MarketCloseTime); err != nil {
		return fmt.Errorf("%w: market-close-time: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ParseTimeOfDay converts an HH:MM or HH:MM:SS wall clock string into an
// offset from midnight
func ParseTimeOfDay(s string) (time.Duration, error) {
	var parsed time.Time
	var err error
	switch strings.Count(s, ":") {
	case 1:
		parsed, err = time.Parse("15:04", s)
	case 2:
		parsed, err = time.Parse("15:04:05", s)
	default:
		return 0, fmt.Errorf("%w: %q", errBadTimeFormat, s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadTimeFormat, s)
	}
	return time.Duration(parsed.Hour())*time.Hour +
		time.Duration(parsed.Minute())*time.Minute +
		time.Duration(parsed.Second())*time.Second, nil
}
