package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-guard/pkg/errors"
)

// Factory builds a strategy from its YAML configuration.
type Factory func(config string) (Strategy, error)

// Info describes a registered strategy.
type Info struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	// Config is a zero value of the strategy's configuration, used for its schema.
	Config any `yaml:"-" json:"-"`
}

type entry struct {
	info    Info
	factory Factory
}

// Registry manages all available strategies.
type Registry interface {
	Register(info Info, factory Factory) error
	Create(name string, config string) (Strategy, error)
	List() []Info
	Schema(name string) (string, error)
}

// RegistryV1 is the default Registry implementation.
type RegistryV1 struct {
	entries map[string]entry
	mu      sync.RWMutex
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *RegistryV1 {
	return &RegistryV1{
		entries: make(map[string]entry),
		mu:      sync.RWMutex{},
	}
}

// NewDefaultRegistry returns a registry holding the built-in strategies.
func NewDefaultRegistry() *RegistryV1 {
	r := NewRegistry()

	// built-ins are known to be valid
	_ = r.Register(SMACrossoverInfo, NewSMACrossoverFromConfig)
	_ = r.Register(RSIReversionInfo, NewRSIReversionFromConfig)
	_ = r.Register(ScheduledInfo, NewScheduledFromConfig)

	return r
}

// Register adds a strategy factory. The version must be a valid semantic version.
func (r *RegistryV1) Register(info Info, factory Factory) error {
	if info.Name == "" {
		return errors.New(errors.ErrCodeMissingParameter, "strategy name is required")
	}

	if _, err := semver.NewVersion(info.Version); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidParameter, err, "invalid version %q for strategy %s", info.Version, info.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[info.Name]; exists {
		return fmt.Errorf("Register: strategy with name %s already registered", info.Name)
	}

	r.entries[info.Name] = entry{info: info, factory: factory}

	return nil
}

// Create builds the named strategy from its YAML configuration.
func (r *RegistryV1) Create(name string, config string) (Strategy, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "strategy %s not found", name)
	}

	s, err := e.factory(config)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStrategyConfigError, err, "failed to configure strategy %s", name)
	}

	return s, nil
}

// List returns all registered strategies sorted by name.
func (r *RegistryV1) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, e.info)
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos
}

// Schema returns the JSON schema of the named strategy's configuration.
func (r *RegistryV1) Schema(name string) (string, error) {
	r.mu.RLock()
	e, exists := r.entries[name]
	r.mu.RUnlock()

	if !exists {
		return "", errors.Newf(errors.ErrCodeUnsupportedStrategy, "strategy %s not found", name)
	}

	if e.info.Config == nil {
		return "", errors.Newf(errors.ErrCodeStrategyConfigError, "strategy %s has no configuration", name)
	}

	return ToJSONSchema(e.info.Config)
}
