package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-guard/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestEmptyConfig() {
	config := EmptyConfig()

	suite.Equal(commission_fee.BrokerPercentage, config.Broker)
	suite.Equal(0.001, config.CommissionPct)
	suite.Equal(0.0005, config.SlippagePct)
	suite.Equal(0.0002, config.SpreadPctByAssetClass[DefaultAssetClass])
	suite.Equal(0.10, config.PositionSizePct)
	suite.Equal(4, config.DecimalPrecision)
	suite.Equal(3.0, config.GapMultiplier)
	suite.True(config.StartTime.IsNone())
	suite.True(config.EndTime.IsNone())
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestTestConfig() {
	config := TestConfig()

	suite.Zero(config.CommissionPct)
	suite.Zero(config.SlippagePct)
	suite.Zero(config.SpreadFor("AAPL"))
	suite.NoError(config.Validate())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLKeepsDefaults() {
	tests := []struct {
		name     string
		document string
		check    func(config BacktestEngineV1Config)
	}{
		{
			name:     "only commission set",
			document: "commission_pct: 0.002\n",
			check: func(config BacktestEngineV1Config) {
				suite.Equal(0.002, config.CommissionPct)
				suite.Equal(0.0005, config.SlippagePct)
				suite.Equal(0.10, config.PositionSizePct)
				suite.Equal(0.0002, config.SpreadPctByAssetClass[DefaultAssetClass])
			},
		},
		{
			name: "asset classes and spreads",
			document: `
spread_pct_by_asset_class:
  default: 0.0001
  crypto: 0.001
asset_classes:
  BTCUSDT: crypto
`,
			check: func(config BacktestEngineV1Config) {
				suite.Equal(0.001, config.SpreadFor("BTCUSDT"))
				suite.Equal(0.0001, config.SpreadFor("AAPL"))
			},
		},
		{
			name: "time range",
			document: `
start_time: 2023-01-01T00:00:00Z
end_time: 2023-06-01T00:00:00Z
broker: zero_commission
`,
			check: func(config BacktestEngineV1Config) {
				suite.True(config.StartTime.IsSome())
				suite.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), config.StartTime.Unwrap())
				suite.True(config.EndTime.IsSome())
				suite.Equal(commission_fee.BrokerZero, config.Broker)
			},
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			var config BacktestEngineV1Config
			suite.Require().NoError(yaml.Unmarshal([]byte(tc.document), &config))
			tc.check(config)
		})
	}
}

func (suite *ConfigTestSuite) TestSpreadFallsBackToDefault() {
	config := EmptyConfig()
	config.AssetClasses = map[string]string{"EURUSD": "fx"}

	suite.Equal(0.0002, config.SpreadFor("EURUSD"))
}

func (suite *ConfigTestSuite) TestValidate() {
	tests := []struct {
		name   string
		modify func(config *BacktestEngineV1Config)
		code   errors.ErrorCode
	}{
		{
			name:   "negative commission",
			modify: func(config *BacktestEngineV1Config) { config.CommissionPct = -0.1 },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "zero position size",
			modify: func(config *BacktestEngineV1Config) { config.PositionSizePct = 0 },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name:   "position size above one",
			modify: func(config *BacktestEngineV1Config) { config.PositionSizePct = 1.5 },
			code:   errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "negative spread",
			modify: func(config *BacktestEngineV1Config) {
				config.SpreadPctByAssetClass = map[string]float64{DefaultAssetClass: -1}
			},
			code: errors.ErrCodeInvalidConfiguration,
		},
		{
			name: "end before start",
			modify: func(config *BacktestEngineV1Config) {
				var document = "start_time: 2023-06-01T00:00:00Z\nend_time: 2023-01-01T00:00:00Z\n"
				suite.Require().NoError(yaml.Unmarshal([]byte(document), config))
			},
			code: errors.ErrCodeInvalidDateRange,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			config := EmptyConfig()
			tc.modify(&config)

			err := config.Validate()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, tc.code), "unexpected error: %v", err)
		})
	}
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	config := EmptyConfig()

	schemaJSON, err := config.GenerateSchemaJSON()
	suite.Require().NoError(err)

	var schema map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schemaJSON), &schema))

	suite.Equal("backtest-engine-v1-config", schema["title"])

	properties, ok := schema["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "commission_pct")
	suite.Contains(properties, "spread_pct_by_asset_class")
	suite.Contains(properties, "position_size_pct")

	broker, ok := properties["broker"].(map[string]any)
	suite.Require().True(ok)
	suite.Len(broker["enum"], len(commission_fee.AllBrokers))
}
