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
package guard

import (
	"errors"
	"strings"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/cossacklabs/acra-rasp/connection"
	"github.com/cossacklabs/acra-rasp/evaluator"
	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/sqlerror"
	"github.com/cossacklabs/acra-rasp/utils"
	"gopkg.in/yaml.v2"
)

// MinimalConfigVersion min version of guard config
var MinimalConfigVersion = "0.1.0"

// ErrUnsupportedConfigVersion guard config has version less than MinimalConfigVersion
var ErrUnsupportedConfigVersion = errors.New("guard config is outdated")

// ConnectionConfig configures connection policy
type ConnectionConfig struct {
	// Denylist maps server kind ("*" for any) to disallowed usernames
	Denylist      map[string][]string      `yaml:"denylist"`
	MySQLDefaults connection.MySQLDefaults `yaml:"mysql_defaults"`
	CacheSize     int                      `yaml:"cache_size"`
}

// SQLErrorConfig configures SQL error classifier
type SQLErrorConfig struct {
	// Codes maps server kind to alarm-worthy error codes, kinds missing here use defaults
	Codes map[string][]string `yaml:"codes"`
}

// Config is static guard configuration
type Config struct {
	Version    string           `yaml:"version"`
	Connection ConnectionConfig `yaml:"connection"`
	SQLError   SQLErrorConfig   `yaml:"sql_error"`
}

// DefaultConfig returns config without denylisted accounts and with default error codes
func DefaultConfig() *Config {
	return &Config{Version: MinimalConfigVersion}
}

// ParseConfig parses yaml guard config
func ParseConfig(data []byte) (*Config, error) {
	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	supported, err := utils.IsSupportedVersion(config.Version, MinimalConfigVersion)
	if err != nil {
		return nil, err
	}
	if !supported {
		return nil, ErrUnsupportedConfigVersion
	}
	return config, nil
}

// LoadConfig reads and parses yaml guard config from file
func LoadConfig(path string) (*Config, error) {
	data, err := utils.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// Predicate returns connection policy predicate built from denylist
func (config *Config) Predicate() connection.ViolationPredicate {
	if len(config.Connection.Denylist) == 0 {
		return connection.NopPredicate
	}
	return connection.NewDenylistPredicate(config.Connection.Denylist)
}

// Classifier returns SQL error classifier with configured codes merged over defaults
func (config *Config) Classifier() *sqlerror.Classifier {
	codes := sqlerror.DefaultCodes()
	for kind, kindCodes := range config.SQLError.Codes {
		codes[strings.ToLower(kind)] = kindCodes
	}
	return sqlerror.NewClassifier(codes)
}

// NewFromConfig builds Guard with evaluator over store and components configured by config
func NewFromConfig(config *Config, store *policy.Store, detector Detector, sink alarm.Sink) *Guard {
	resolver := evaluator.New(store)
	checker := connection.NewChecker(resolver, config.Predicate(), sink)
	guard := New(resolver, checker, config.Classifier(), detector, sink)
	guard.mysqlDefaults = config.Connection.MySQLDefaults
	if config.Connection.CacheSize > 0 {
		guard.cache = connection.NewDescriptorCache(config.Connection.CacheSize)
	}
	return guard
}
