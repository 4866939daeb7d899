/*
Copyright 2026, Cossack Labs Limited

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package configloader

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/utils"
	"github.com/cossacklabs/acra-rasp/whitelist"
	"gopkg.in/yaml.v2"
)

// MinimalBundleVersion min version of policy bundle
var MinimalBundleVersion = "0.1.0"

// Errors returned by ParseBundle
var (
	ErrUnsupportedBundleVersion = errors.New("policy bundle is outdated")
	ErrUnknownCheckType         = errors.New("unknown check type in policy bundle")
	ErrAmbiguousWhitelist       = errors.New("policy bundle contains both compiled whitelist and whitelist rules")
	ErrMalformedWhitelist       = errors.New("compiled whitelist is malformed")
)

// BundleConfig is yaml representation of policy bundle. Whitelist is either compiled (base64 encoded) or
// described with rules compiled on load.
type BundleConfig struct {
	Version        string                 `yaml:"version"`
	UpdatedAt      int64                  `yaml:"updated_at"`
	LogMaxBackup   int64                  `yaml:"log_max_backup"`
	DebugLevel     int64                  `yaml:"debug_level"`
	EnforcePolicy  bool                   `yaml:"enforce_policy"`
	Actions        map[string]string      `yaml:"actions"`
	Whitelist      string                 `yaml:"whitelist,omitempty"`
	WhitelistRules []whitelist.RuleConfig `yaml:"whitelist_rules,omitempty"`
}

// ParseBundleConfig parses yaml bundle and checks its version
func ParseBundleConfig(data []byte) (*BundleConfig, error) {
	config := &BundleConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	supported, err := utils.IsSupportedVersion(config.Version, MinimalBundleVersion)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, ErrUnsupportedBundleVersion
	}
	return config, nil
}

// ParseBundle parses yaml bundle into update for policy.Store
func ParseBundle(data []byte) (*policy.Update, error) {
	config, err := ParseBundleConfig(data)
	if err != nil {
		return nil, err
	}
	return config.Update()
}

// Update converts bundle into update for policy.Store. "all" in actions sets action of every check type,
// explicitly listed check types override it.
func (config *BundleConfig) Update() (*policy.Update, error) {
	actions, err := config.parseActions()
	if err != nil {
		return nil, err
	}
	whitelistData, err := config.compileWhitelist()
	if err != nil {
		return nil, err
	}
	return &policy.Update{
		UpdateTime:    config.UpdatedAt,
		LogMaxBackup:  config.LogMaxBackup,
		DebugLevel:    config.DebugLevel,
		EnforcePolicy: config.EnforcePolicy,
		Actions:       actions,
		Whitelist:     whitelistData,
	}, nil
}

func (config *BundleConfig) parseActions() (map[policy.CheckType]policy.ActionType, error) {
	actions := make(map[policy.CheckType]policy.ActionType, int(policy.CheckTypeAll))
	for name, value := range config.Actions {
		if !strings.EqualFold(strings.TrimSpace(name), whitelist.AllCheckTypesStr) {
			continue
		}
		action, err := policy.ParseActionType(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q for %s", err, value, name)
		}
		for _, t := range policy.ValidCheckTypes() {
			actions[t] = action
		}
	}
	for name, value := range config.Actions {
		if strings.EqualFold(strings.TrimSpace(name), whitelist.AllCheckTypesStr) {
			continue
		}
		t := policy.ParseCheckType(name)
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCheckType, name)
		}
		action, err := policy.ParseActionType(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q for %s", err, value, name)
		}
		actions[t] = action
	}
	return actions, nil
}

func (config *BundleConfig) compileWhitelist() ([]byte, error) {
	if config.Whitelist != "" && len(config.WhitelistRules) > 0 {
		return nil, ErrAmbiguousWhitelist
	}
	if config.Whitelist != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(config.Whitelist))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedWhitelist, err)
		}
		if len(data) > policy.MaxWhitelistSize {
			return nil, policy.ErrWhitelistTooLarge
		}
		if !whitelist.Valid(data) {
			return nil, ErrMalformedWhitelist
		}
		return data, nil
	}
	if len(config.WhitelistRules) == 0 {
		return nil, nil
	}
	builder := whitelist.NewBuilder()
	if err := builder.AddRules(config.WhitelistRules); err != nil {
		return nil, err
	}
	return builder.Build()
}

// CompileBundle replaces whitelist rules of yaml bundle with compiled whitelist
func CompileBundle(data []byte) ([]byte, error) {
	config, err := ParseBundleConfig(data)
	if err != nil {
		return nil, err
	}
	if _, err := config.parseActions(); err != nil {
		return nil, err
	}
	compiled, err := config.compileWhitelist()
	if err != nil {
		return nil, err
	}
	config.WhitelistRules = nil
	config.Whitelist = ""
	if len(compiled) > 0 {
		config.Whitelist = base64.StdEncoding.EncodeToString(compiled)
	}
	return yaml.Marshal(config)
}

// NewBundleConfig returns bundle describing snapshot with compiled whitelist
func NewBundleConfig(snapshot *policy.Snapshot) *BundleConfig {
	config := &BundleConfig{
		Version:       utils.VERSION,
		UpdatedAt:     snapshot.UpdateTime(),
		LogMaxBackup:  snapshot.LogMaxBackup(),
		DebugLevel:    snapshot.DebugLevel(),
		EnforcePolicy: snapshot.EnforcePolicy(),
		Actions:       make(map[string]string, int(policy.CheckTypeAll)),
	}
	for _, t := range policy.ValidCheckTypes() {
		config.Actions[t.String()] = snapshot.Action(t).String()
	}
	if snapshot.WhitelistSize() > 0 {
		config.Whitelist = base64.StdEncoding.EncodeToString(snapshot.Whitelist())
	}
	return config
}
