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
package whitelist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/utils"
	"gopkg.in/yaml.v2"
)

// MinimalRulesVersion min version of rules config supported by CompileRules
var MinimalRulesVersion = "0.1.0"

// AllCheckTypesStr in checks list means every check type
const AllCheckTypesStr = "all"

// ErrUnsupportedRulesVersion rules config has version less than MinimalRulesVersion
var ErrUnsupportedRulesVersion = errors.New("whitelist rules config is outdated")

// RuleConfig is one whitelist entry: every key prefix bypasses every listed check
type RuleConfig struct {
	Keys   []string `yaml:"keys"`
	Checks []string `yaml:"checks"`
}

// RulesConfig is yaml document with whitelist rules
type RulesConfig struct {
	Version   string       `yaml:"version"`
	Whitelist []RuleConfig `yaml:"whitelist"`
}

// AddRules adds whitelist entries from config to builder
func (b *Builder) AddRules(entries []RuleConfig) error {
	for _, entry := range entries {
		for _, check := range entry.Checks {
			check = strings.TrimSpace(check)
			if strings.EqualFold(check, AllCheckTypesStr) {
				for _, key := range entry.Keys {
					b.AddAll(key)
				}
				continue
			}
			t := policy.ParseCheckType(check)
			if !t.IsValid() {
				return fmt.Errorf("%w: %q", ErrInvalidCheckType, check)
			}
			for _, key := range entry.Keys {
				if err := b.Add(t, key); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ParseRules parses yaml rules config into Builder
func ParseRules(configuration []byte) (*Builder, error) {
	var config RulesConfig
	if err := yaml.Unmarshal(configuration, &config); err != nil {
		return nil, err
	}
	supported, err := utils.IsSupportedVersion(config.Version, MinimalRulesVersion)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, ErrUnsupportedRulesVersion
	}
	builder := NewBuilder()
	if err := builder.AddRules(config.Whitelist); err != nil {
		return nil, err
	}
	return builder, nil
}

// CompileRules parses yaml rules config and returns serialized whitelist
func CompileRules(configuration []byte) ([]byte, error) {
	builder, err := ParseRules(configuration)
	if err != nil {
		return nil, err
	}
	return builder.Build()
}
