// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the initial protocol state from a YAML config.
package genesis

import (
	"io"
	"math/big"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/livethelifetv/props-protocol/props"
	"github.com/livethelifetv/props-protocol/protocol"
	"github.com/livethelifetv/props-protocol/reverts"
)

// Config is the genesis file layout.
type Config struct {
	StartTime  uint64 `yaml:"startTime"`
	DaySeconds uint64 `yaml:"daySeconds"`

	Controller string `yaml:"controller"`
	Guardian   string `yaml:"guardian"`
	Vault      string `yaml:"vault"`

	Params     []ParamConfig   `yaml:"params"`
	Validators ValidatorConfig `yaml:"validators"`
	Apps       []AppConfig     `yaml:"apps"`
}

// ParamConfig overrides one protocol parameter at genesis.
type ParamConfig struct {
	Key          string `yaml:"key"`
	Value        string `yaml:"value"`
	EffectiveDay uint64 `yaml:"effectiveDay"`
}

// ValidatorConfig is the initial validator list.
type ValidatorConfig struct {
	EffectiveDay uint64   `yaml:"effectiveDay"`
	Members      []string `yaml:"members"`
}

// AppConfig registers one app at genesis.
type AppConfig struct {
	Address     string `yaml:"address"`
	Owner       string `yaml:"owner"`
	Pool        string `yaml:"pool"`
	Whitelisted bool   `yaml:"whitelisted"`
}

// paramKeys maps config key names to storage keys.
var paramKeys = map[string]props.Bytes32{
	"app-rewards-percent":               props.KeyAppRewardsPercent,
	"app-rewards-max-variation-percent": props.KeyAppRewardsMaxVariationPercent,
	"validator-majority-percent":        props.KeyValidatorMajorityPercent,
	"validator-rewards-percent":         props.KeyValidatorRewardsPercent,
	"user-rewards-percent":              props.KeyUserRewardsPercent,
	"escrow-cooldown-days":              props.KeyEscrowCooldownDays,
}

// defaults installed before config overrides apply.
var defaults = map[props.Bytes32]*big.Int{
	props.KeyAppRewardsPercent:             props.InitialAppRewardsPercent,
	props.KeyAppRewardsMaxVariationPercent: props.InitialAppRewardsMaxVariationPercent,
	props.KeyValidatorMajorityPercent:      props.InitialValidatorMajorityPercent,
	props.KeyValidatorRewardsPercent:       props.InitialValidatorRewardsPercent,
	props.KeyUserRewardsPercent:            props.InitialUserRewardsPercent,
	props.KeyEscrowCooldownDays:            props.InitialEscrowCooldownDays,
}

// Load parses a genesis config, rejecting unknown fields.
func Load(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse genesis config")
	}
	return &cfg, nil
}

// VaultAddress returns the parsed vault address.
func (c *Config) VaultAddress() (props.Address, error) {
	vault, err := props.ParseAddress(c.Vault)
	if err != nil {
		return props.Address{}, errors.Wrap(err, "invalid vault address")
	}
	return *vault, nil
}

// Build applies the genesis config to a freshly wired protocol: the clock,
// parameter defaults and overrides, the validator list, the role addresses
// and the initial app registrations. It must run on empty state.
func Build(p *protocol.Protocol, cfg *Config) error {
	if err := p.Clock.Init(cfg.StartTime, cfg.DaySeconds); err != nil {
		return err
	}

	for key, value := range defaults {
		if err := p.Params.Set(key, value, 1); err != nil {
			return err
		}
	}
	for _, pc := range cfg.Params {
		key, ok := paramKeys[pc.Key]
		if !ok {
			return reverts.Integrity("unknown parameter key %q", pc.Key)
		}
		value, ok := new(big.Int).SetString(pc.Value, 10)
		if !ok || value.Sign() < 0 {
			return reverts.Integrity("invalid value for parameter %q", pc.Key)
		}
		day := pc.EffectiveDay
		if day == 0 {
			day = 1
		}
		if err := p.Params.Set(key, value, day); err != nil {
			return err
		}
	}

	if len(cfg.Validators.Members) > 0 {
		members := make([]props.Address, 0, len(cfg.Validators.Members))
		for _, m := range cfg.Validators.Members {
			addr, err := props.ParseAddress(m)
			if err != nil {
				return errors.Wrap(err, "invalid validator address")
			}
			members = append(members, *addr)
		}
		day := cfg.Validators.EffectiveDay
		if day == 0 {
			day = 1
		}
		if err := p.Validators.Set(day, members, 0); err != nil {
			return err
		}
	}

	controller, err := props.ParseAddress(cfg.Controller)
	if err != nil {
		return errors.Wrap(err, "invalid controller address")
	}
	guardian, err := props.ParseAddress(cfg.Guardian)
	if err != nil {
		return errors.Wrap(err, "invalid guardian address")
	}
	if err := p.Staking.InitRoles(*controller, *guardian); err != nil {
		return err
	}

	var rewarded []props.Address
	for _, ac := range cfg.Apps {
		app, err := props.ParseAddress(ac.Address)
		if err != nil {
			return errors.Wrap(err, "invalid app address")
		}
		owner, err := props.ParseAddress(ac.Owner)
		if err != nil {
			return errors.Wrap(err, "invalid app owner address")
		}
		pool, err := props.ParseAddress(ac.Pool)
		if err != nil {
			return errors.Wrap(err, "invalid app pool address")
		}
		if err := p.Staking.RegisterApp(*controller, *app, *owner, *pool); err != nil {
			return err
		}
		if ac.Whitelisted {
			if err := p.Staking.SetWhitelisted(*controller, *app, true); err != nil {
				return err
			}
			rewarded = append(rewarded, *app)
		}
	}
	// whitelisted apps form the initial rewarded-apps list
	if len(rewarded) > 0 {
		if err := p.Apps.Set(1, rewarded, 0); err != nil {
			return err
		}
	}
	return nil
}
