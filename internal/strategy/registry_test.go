package strategy

import (
	"strings"
	"testing"

	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type RegistryTestSuite struct {
	suite.Suite
	registry *RegistryV1
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}

func (suite *RegistryTestSuite) SetupTest() {
	suite.registry = NewDefaultRegistry()
}

func (suite *RegistryTestSuite) TestListBuiltins() {
	infos := suite.registry.List()
	suite.Require().Len(infos, 3)
	suite.Equal("rsi_reversion", infos[0].Name)
	suite.Equal("scheduled", infos[1].Name)
	suite.Equal("sma_crossover", infos[2].Name)
}

func (suite *RegistryTestSuite) TestCreate() {
	s, err := suite.registry.Create("sma_crossover", "fast_period: 2\nslow_period: 4\n")
	suite.Require().NoError(err)
	suite.True(strings.HasPrefix(s.ID(), "sma_crossover_2_4_"), s.ID())
}

func (suite *RegistryTestSuite) TestCreateUnknown() {
	_, err := suite.registry.Create("martingale", "")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *RegistryTestSuite) TestCreateInvalidConfig() {
	_, err := suite.registry.Create("sma_crossover", "fast_period: 0\n")
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}

func (suite *RegistryTestSuite) TestRegisterDuplicate() {
	err := suite.registry.Register(SMACrossoverInfo, NewSMACrossoverFromConfig)
	suite.Error(err)
}

func (suite *RegistryTestSuite) TestRegisterInvalidVersion() {
	err := suite.registry.Register(Info{Name: "custom", Version: "not-a-version"}, NewSMACrossoverFromConfig)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))

	err = suite.registry.Register(Info{Name: "", Version: "1.0.0"}, NewSMACrossoverFromConfig)
	suite.True(errors.HasCode(err, errors.ErrCodeMissingParameter))
}

func (suite *RegistryTestSuite) TestSchema() {
	schema, err := suite.registry.Schema("sma_crossover")
	suite.Require().NoError(err)
	suite.Contains(schema, `"fast_period"`)
	suite.Contains(schema, `"title":"Fast Period"`)

	schema, err = suite.registry.Schema("rsi_reversion")
	suite.Require().NoError(err)
	suite.Contains(schema, `"atr_stop_multiple"`)

	_, err = suite.registry.Schema("martingale")
	suite.True(errors.HasCode(err, errors.ErrCodeUnsupportedStrategy))
}

func (suite *RegistryTestSuite) TestSchemaWithoutConfig() {
	suite.Require().NoError(suite.registry.Register(Info{Name: "bare", Version: "0.1.0"}, NewSMACrossoverFromConfig))

	_, err := suite.registry.Schema("bare")
	suite.True(errors.HasCode(err, errors.ErrCodeStrategyConfigError))
}
