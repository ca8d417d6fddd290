package engine

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultAssetClass is the key of the fallback entry in SpreadPctByAssetClass.
const DefaultAssetClass = "default"

// BacktestEngineV1Config configures the fill model of the engine.
// All percentages are fractions: 0.001 means 0.1%.
type BacktestEngineV1Config struct {
	Broker        commission_fee.Broker `yaml:"broker" json:"broker" jsonschema:"title=Broker,description=The commission model to use"`
	CommissionPct float64               `yaml:"commission_pct" json:"commission_pct" validate:"gte=0,lt=1" jsonschema:"title=Commission Pct,description=Commission as a fraction of fill notional (percentage broker only),minimum=0"`
	SlippagePct   float64               `yaml:"slippage_pct" json:"slippage_pct" validate:"gte=0,lt=1" jsonschema:"title=Slippage Pct,description=Adverse price deviation applied after the spread,minimum=0"`
	// SpreadPctByAssetClass maps an asset class to its half spread. The "default" entry applies to unmapped classes.
	SpreadPctByAssetClass map[string]float64 `yaml:"spread_pct_by_asset_class" json:"spread_pct_by_asset_class" validate:"dive,gte=0,lt=1" jsonschema:"title=Spread Pct By Asset Class"`
	// AssetClasses maps a symbol to its asset class.
	AssetClasses     map[string]string `yaml:"asset_classes" json:"asset_classes" jsonschema:"title=Asset Classes"`
	PositionSizePct  float64           `yaml:"position_size_pct" json:"position_size_pct" validate:"gt=0,lte=1" jsonschema:"title=Position Size Pct,description=Fraction of current equity committed per entry,default=0.1"`
	DecimalPrecision int               `yaml:"decimal_precision" json:"decimal_precision" validate:"gte=0,lte=12" jsonschema:"title=Decimal Precision,description=Quantity decimal places,default=4"`
	// GapMultiplier flags a gap when consecutive candles are further apart than this many intervals.
	GapMultiplier float64                    `yaml:"gap_multiplier" json:"gap_multiplier" validate:"gt=0" jsonschema:"title=Gap Multiplier,default=3"`
	StartTime     optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Start of the replay range when a run gives none"`
	EndTime       optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=End of the replay range when a run gives none"`
}

// UnmarshalYAML implements custom unmarshaling for BacktestEngineV1Config.
// Keys missing from the document keep the values of EmptyConfig.
func (c *BacktestEngineV1Config) UnmarshalYAML(value *yaml.Node) error {
	type Config struct {
		Broker                commission_fee.Broker `yaml:"broker"`
		CommissionPct         float64               `yaml:"commission_pct"`
		SlippagePct           float64               `yaml:"slippage_pct"`
		SpreadPctByAssetClass map[string]float64    `yaml:"spread_pct_by_asset_class"`
		AssetClasses          map[string]string     `yaml:"asset_classes"`
		PositionSizePct       float64               `yaml:"position_size_pct"`
		DecimalPrecision      int                   `yaml:"decimal_precision"`
		GapMultiplier         float64               `yaml:"gap_multiplier"`
		StartTime             *time.Time            `yaml:"start_time"`
		EndTime               *time.Time            `yaml:"end_time"`
	}

	defaults := EmptyConfig()
	config := Config{
		Broker:                defaults.Broker,
		CommissionPct:         defaults.CommissionPct,
		SlippagePct:           defaults.SlippagePct,
		SpreadPctByAssetClass: nil,
		AssetClasses:          nil,
		PositionSizePct:       defaults.PositionSizePct,
		DecimalPrecision:      defaults.DecimalPrecision,
		GapMultiplier:         defaults.GapMultiplier,
		StartTime:             nil,
		EndTime:               nil,
	}

	if err := value.Decode(&config); err != nil {
		return err
	}

	c.Broker = config.Broker
	c.CommissionPct = config.CommissionPct
	c.SlippagePct = config.SlippagePct
	c.SpreadPctByAssetClass = config.SpreadPctByAssetClass
	c.AssetClasses = config.AssetClasses
	c.PositionSizePct = config.PositionSizePct
	c.DecimalPrecision = config.DecimalPrecision
	c.GapMultiplier = config.GapMultiplier
	c.StartTime = optional.FromNillable(config.StartTime)
	c.EndTime = optional.FromNillable(config.EndTime)

	if c.SpreadPctByAssetClass == nil {
		c.SpreadPctByAssetClass = defaults.SpreadPctByAssetClass
	}

	return nil
}

// Validate checks the configuration ranges.
func (c *BacktestEngineV1Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest engine configuration", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && !c.EndTime.Unwrap().After(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidDateRange, "end_time must be after start_time")
	}

	return nil
}

// SpreadFor returns the spread fraction of the symbol's asset class.
func (c *BacktestEngineV1Config) SpreadFor(symbol string) float64 {
	if class, ok := c.AssetClasses[symbol]; ok {
		if spread, ok := c.SpreadPctByAssetClass[class]; ok {
			return spread
		}
	}

	return c.SpreadPctByAssetClass[DefaultAssetClass]
}

// GenerateSchema generates a JSON schema for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "commission_fee.Broker") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: commission_fee.AllBrokers,
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "backtest-engine-v1-config"
	schema.Description = "Configuration schema for BacktestEngineV1"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the BacktestEngineV1Config
func (c *BacktestEngineV1Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}

// TestConfig returns a frictionless configuration: no spread, slippage or commission.
func TestConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Broker:                commission_fee.BrokerPercentage,
		CommissionPct:         0,
		SlippagePct:           0,
		SpreadPctByAssetClass: map[string]float64{DefaultAssetClass: 0},
		AssetClasses:          map[string]string{},
		PositionSizePct:       0.10,
		DecimalPrecision:      4,
		GapMultiplier:         3,
		StartTime:             optional.None[time.Time](),
		EndTime:               optional.None[time.Time](),
	}
}

// EmptyConfig returns a BacktestEngineV1Config with default values
func EmptyConfig() BacktestEngineV1Config {
	return BacktestEngineV1Config{
		Broker:                commission_fee.BrokerPercentage,
		CommissionPct:         0.001,
		SlippagePct:           0.0005,
		SpreadPctByAssetClass: map[string]float64{DefaultAssetClass: 0.0002},
		AssetClasses:          map[string]string{},
		PositionSizePct:       0.10,
		DecimalPrecision:      4,
		GapMultiplier:         3,
		StartTime:             optional.None[time.Time](),
		EndTime:               optional.None[time.Time](),
	}
}
