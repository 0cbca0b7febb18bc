// Package config defines analysis settings loaded from yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/viant/afs"
	"github.com/viant/toa/analyzer/oracle"
	"github.com/viant/toa/analyzer/oracle/openai"
	"github.com/viant/toa/analyzer/vote"
	"gopkg.in/yaml.v3"
)

const (
	ProviderUniform = "uniform"
	ProviderOpenAI  = "openai"
)

// ErrInvalid reports an invalid configuration
var ErrInvalid = errors.New("config: invalid")

// Config represents analysis settings
type Config struct {
	Sinks           []string     `yaml:"sinks,omitempty"` // empty uses built-in sinks
	Weights         vote.Weights `yaml:"weights"`
	ContextDepth    int          `yaml:"contextDepth"`
	ChainBudget     int          `yaml:"chainBudget"`
	Concurrency     int          `yaml:"concurrency"`
	SiteAnchoring   bool         `yaml:"siteAnchoring"`
	ScopedBacktrace bool         `yaml:"scopedBacktrace"`
	MaxFileSize     int          `yaml:"maxFileSize,omitempty"`
	Oracle          Oracle       `yaml:"oracle"`
}

// Oracle represents oracle settings
type Oracle struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model,omitempty"`
	BaseURL           string        `yaml:"baseURL,omitempty"`
	APIKeyEnv         string        `yaml:"apiKeyEnv,omitempty"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond,omitempty"`
	Temperature       float32       `yaml:"temperature"`
	Cache             bool          `yaml:"cache"`
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	return &Config{
		Weights:      vote.DefaultWeights,
		ContextDepth: vote.DefaultContextDepth,
		ChainBudget:  vote.DefaultChainBudget,
		Concurrency:  1,
		Oracle: Oracle{
			Provider:  ProviderUniform,
			Model:     openai.DefaultModel,
			APIKeyEnv: openai.DefaultAPIKeyEnv,
			Timeout:   vote.DefaultTimeout,
			Cache:     true,
		},
	}
}

// Validate checks settings
func (c *Config) Validate() error {
	if c.Weights.Vote < 0 || c.Weights.Value < 0 {
		return fmt.Errorf("%w: negative weights %+v", ErrInvalid, c.Weights)
	}
	if c.Weights.Vote+c.Weights.Value == 0 {
		return fmt.Errorf("%w: weights sum to zero", ErrInvalid)
	}
	if c.ContextDepth < 0 {
		return fmt.Errorf("%w: contextDepth %d", ErrInvalid, c.ContextDepth)
	}
	if c.ChainBudget < 0 {
		return fmt.Errorf("%w: chainBudget %d", ErrInvalid, c.ChainBudget)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency %d", ErrInvalid, c.Concurrency)
	}
	if c.Oracle.Timeout < 0 {
		return fmt.Errorf("%w: oracle timeout %v", ErrInvalid, c.Oracle.Timeout)
	}
	switch c.Oracle.Provider {
	case ProviderUniform, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: unsupported oracle provider %q", ErrInvalid, c.Oracle.Provider)
	}
	return nil
}

// NewOracle creates the configured oracle
func (o *Oracle) NewOracle() (oracle.Oracle, error) {
	var ret oracle.Oracle
	switch o.Provider {
	case ProviderUniform, "":
		return oracle.Uniform{}, nil
	case ProviderOpenAI:
		env := o.APIKeyEnv
		if env == "" {
			env = openai.DefaultAPIKeyEnv
		}
		apiKey := os.Getenv(env)
		if apiKey == "" {
			return nil, fmt.Errorf("%w: environment variable %v is not set", ErrInvalid, env)
		}
		ret = openai.New(
			openai.WithAPIKey(apiKey),
			openai.WithModel(o.Model),
			openai.WithBaseURL(o.BaseURL),
			openai.WithTemperature(o.Temperature),
			openai.WithRequestsPerSecond(o.RequestsPerSecond),
		)
	default:
		return nil, fmt.Errorf("%w: unsupported oracle provider %q", ErrInvalid, o.Provider)
	}
	if o.Cache {
		ret = oracle.NewCache(ret)
	}
	return ret, nil
}

// Load loads settings from URL over defaults
func Load(ctx context.Context, fs afs.Service, URL string) (*Config, error) {
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	ret := DefaultConfig()
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
