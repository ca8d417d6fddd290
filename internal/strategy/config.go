package strategy

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-guard/internal/utils"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// decodeConfig unmarshals a YAML strategy configuration into out and validates it.
// An empty config keeps the defaults already present in out.
func decodeConfig(config string, out any) error {
	if strings.TrimSpace(config) != "" {
		if err := yaml.Unmarshal([]byte(config), out); err != nil {
			return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse strategy config", err)
		}
	}

	if err := validate.Struct(out); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "invalid strategy config", err)
	}

	return nil
}

// configHash fingerprints every field of a configuration so ids change with any setting.
func configHash(config any) string {
	data, err := yaml.Marshal(config)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", config))
	}

	return utils.ContentHash(string(data))[:8]
}

func toMap(config any) map[string]any {
	data, err := yaml.Marshal(config)
	if err != nil {
		return map[string]any{}
	}

	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return map[string]any{}
	}

	return out
}
