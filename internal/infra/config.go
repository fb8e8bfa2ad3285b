package infra

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/CryptoBia/Infinex/internal/domain"
)

// PairConfig is the static configuration of one trading pair. Human-facing
// amounts are decimal strings in the yaml file and are scaled into integer
// base units at load time.
type PairConfig struct {
	PairID     int32  `yaml:"pair_id"`
	Symbol     string `yaml:"symbol"`
	BaseAsset  string `yaml:"base_asset"`
	QuoteAsset string `yaml:"quote_asset"`
	BidFeeBps  int32  `yaml:"bid_fee_bps"`
	AskFeeBps  int32  `yaml:"ask_fee_bps"`

	MinTradeAmount decimal.Decimal `yaml:"min_trade_amount"`
	MaxTradeAmount decimal.Decimal `yaml:"max_trade_amount"`
	AmountScale    int32           `yaml:"amount_scale"` // decimal places per base unit

	Roles []string `yaml:"roles"`
}

// Config holds all node settings. LoadConfig reads it from yaml and then
// overrides sensitive values from the environment.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Node struct {
		SeedHex          string `yaml:"seed_hex"` // operator signing key seed
		MaxSubmitDriftMs int64  `yaml:"max_submit_drift_ms"`
		InboxSize        int    `yaml:"inbox_size"`
	} `yaml:"node"`

	Pairs []PairConfig `yaml:"pairs"`

	Relay struct {
		URL           string `yaml:"url"`
		Exchange      string `yaml:"exchange"`
		RetryAttempts int    `yaml:"retry_attempts"`
		RetryDelaySec int    `yaml:"retry_delay_sec"`
	} `yaml:"relay"`

	Feed struct {
		Addr       string `yaml:"addr"`
		DepthLimit int    `yaml:"depth_limit"`
	} `yaml:"feed"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if len(c.Pairs) == 0 {
		return fmt.Errorf("at least one trading pair is required")
	}
	seen := make(map[int32]bool, len(c.Pairs))
	for _, p := range c.Pairs {
		if p.PairID <= 0 {
			return fmt.Errorf("pair %q: pair_id must be positive", p.Symbol)
		}
		if seen[p.PairID] {
			return fmt.Errorf("duplicate pair_id %d", p.PairID)
		}
		seen[p.PairID] = true
		if p.BaseAsset == "" || p.QuoteAsset == "" {
			return fmt.Errorf("pair %d: base and quote assets are required", p.PairID)
		}
		if p.BidFeeBps < 0 || p.AskFeeBps < 0 {
			return fmt.Errorf("pair %d: fees must be non-negative", p.PairID)
		}
		if p.MaxTradeAmount.LessThan(p.MinTradeAmount) {
			return fmt.Errorf("pair %d: max trade amount below min", p.PairID)
		}
		if _, err := roleSetFromNames(p.Roles); err != nil {
			return fmt.Errorf("pair %d: %w", p.PairID, err)
		}
	}
	if c.Node.MaxSubmitDriftMs < 0 {
		return fmt.Errorf("max_submit_drift_ms must be non-negative")
	}
	if c.Relay.URL != "" && c.Relay.Exchange == "" {
		return fmt.Errorf("relay exchange name is required when relay url is set")
	}
	return nil
}

// overrideWithEnv overrides sensitive values from the environment.
func overrideWithEnv(cfg *Config) {
	if seed := os.Getenv("DEXNODE_SEED_HEX"); seed != "" {
		cfg.Node.SeedHex = seed
	}
	if url := os.Getenv("DEXNODE_RELAY_URL"); url != "" {
		cfg.Relay.URL = url
	}
}

// RoleSet returns the configured local role set for this pair.
func (p PairConfig) RoleSet() domain.RoleSet {
	roles, _ := roleSetFromNames(p.Roles)
	return roles
}

func roleSetFromNames(names []string) (domain.RoleSet, error) {
	var set domain.RoleSet
	for _, name := range names {
		switch name {
		case "process":
			set |= domain.RoleSet(domain.RoleProcess)
		case "match":
			set |= domain.RoleSet(domain.RoleMatch)
		case "chart":
			set |= domain.RoleSet(domain.RoleChart)
		case "history":
			set |= domain.RoleSet(domain.RoleHistory)
		case "orderbook":
			set |= domain.RoleSet(domain.RoleOrderBook)
		default:
			return 0, fmt.Errorf("unknown role %q", name)
		}
	}
	return set, nil
}

// PairRegistry is the config-backed pair lookup used by the engine.
type PairRegistry struct {
	pairs map[int32]domain.PairInfo
}

// NewPairRegistry builds the registry from loaded configuration, scaling
// decimal trade limits into integer base units.
func NewPairRegistry(cfg *Config) *PairRegistry {
	r := &PairRegistry{pairs: make(map[int32]domain.PairInfo, len(cfg.Pairs))}
	for _, p := range cfg.Pairs {
		scale := decimal.New(1, p.AmountScale)
		r.pairs[p.PairID] = domain.PairInfo{
			PairID:         p.PairID,
			Symbol:         p.Symbol,
			BaseAsset:      p.BaseAsset,
			QuoteAsset:     p.QuoteAsset,
			BidFeeBps:      p.BidFeeBps,
			AskFeeBps:      p.AskFeeBps,
			MinTradeAmount: uint64(p.MinTradeAmount.Mul(scale).IntPart()),
			MaxTradeAmount: uint64(p.MaxTradeAmount.Mul(scale).IntPart()),
		}
	}
	return r
}

// Lookup returns the pair's configuration, or an invalid PairInfo when the
// pair is unknown.
func (r *PairRegistry) Lookup(pairID int32) domain.PairInfo {
	return r.pairs[pairID]
}
