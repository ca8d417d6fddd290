package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/rxtech-lab/argo-guard/internal/types"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the risk engine configuration, read once at startup.
type Config struct {
	Limits types.RiskLimits `yaml:"limits" json:"limits" jsonschema:"title=Limits"`
	// Timezone names the location whose midnight rolls the daily stats over. Empty means local time.
	Timezone string `yaml:"timezone" json:"timezone" jsonschema:"title=Timezone,description=IANA time zone of the trading day,example=America/New_York"`
	// StatsDir is where daily stats are saved for crash recovery. Empty keeps them in memory.
	StatsDir string `yaml:"stats_dir" json:"stats_dir" jsonschema:"title=Stats Directory"`
}

func DefaultConfig() Config {
	return Config{
		Limits: types.RiskLimits{
			TradingEnabled:             true,
			MaxDailyLossPercent:        2,
			MaxPositionSizePercent:     10,
			MaxOpenPositions:           5,
			RequireStopLoss:            false,
			RequireTakeProfit:          false,
			MaxStopLossDistancePercent: types.DefaultMaxStopLossDistancePercent,
		},
		Timezone: "",
		StatsDir: "",
	}
}

// LoadConfig reads a YAML config file. Keys absent from the file keep their defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read risk config %s", path)
	}

	return ParseConfig(data)
}

// ParseConfig parses a YAML config document over DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse risk config", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid risk configuration", err)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}

	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "unknown timezone %q", c.Timezone)
	}

	return location, nil
}

// GenerateSchemaJSON returns the JSON schema of Config.
func (c Config) GenerateSchemaJSON() (string, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: false,
	}

	schema := reflector.Reflect(&c)
	schema.Title = "risk-engine-config"
	schema.Description = "Configuration schema for the live order risk engine"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal risk config schema: %w", err)
	}

	return string(data), nil
}
