package axis

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix for environment variables read by LoadConfig.
// AXIS_MAX_WRAP_CYCLES sets max-wrap-cycles, and so on.
const EnvPrefix = "AXIS_"

// Config tunes the interval mapping engine
type Config struct {
	// MaxWrapCycles caps how many periods a circular query may duplicate the
	// axis across before failing with ErrExcessiveWrapCycles
	MaxWrapCycles int `koanf:"max-wrap-cycles"`
	// EpsilonScale multiplies the smallest adjacent node gap to produce the
	// default comparison tolerance. It must be positive.
	EpsilonScale float64 `koanf:"epsilon-scale"`
	// AutoBounds enables latitude clamping of generated bounds
	AutoBounds bool `koanf:"auto-bounds"`
	// LongitudeTolerance is the absolute ceiling on how far a longitude span may
	// stray from 360 and still be treated as a closed circle
	LongitudeTolerance float64 `koanf:"longitude-tolerance"`
}

// DefaultConfig returns the configuration used when an axis is built without
// WithConfig
func DefaultConfig() Config {
	return Config{
		MaxWrapCycles:      6,
		EpsilonScale:       1e-5,
		AutoBounds:         true,
		LongitudeTolerance: 0.01,
	}
}

// Validate reports settings the engine cannot run with
func (c Config) Validate() error {
	if c.MaxWrapCycles < 1 {
		return fmt.Errorf("max-wrap-cycles must be at least 1, got %d", c.MaxWrapCycles)
	}
	if c.EpsilonScale <= 0 {
		return fmt.Errorf("epsilon-scale must be positive, got %g", c.EpsilonScale)
	}
	if c.LongitudeTolerance < 0 {
		return fmt.Errorf("longitude-tolerance must not be negative, got %g", c.LongitudeTolerance)
	}
	return nil
}

// LoadConfig builds a Config from defaults, an optional YAML or JSON file, and
// AXIS_ prefixed environment variables, in increasing priority. An empty path
// skips the file.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		var parser koanf.Parser
		switch filepath.Ext(path) {
		case ".json":
			parser = json.Parser()
		default:
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, "", func(key, value string) (string, interface{}) {
		// AXIS_MAX_WRAP_CYCLES -> max-wrap-cycles
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(key, EnvPrefix), "_", "-")), value
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("loading environment variables: %w", err)
	}

	cfg := DefaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
