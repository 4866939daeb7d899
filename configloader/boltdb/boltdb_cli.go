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
package boltdb

import (
	"flag"
)

const defaultBoltBundleKey = "policy"

// CLIOptions keep command-line options related to BoltDB bundle storage
type CLIOptions struct {
	DBPath    string
	BundleKey string
}

// RegisterCLIParametersWithFlagSet registers bolt flags if they weren't registered yet
func RegisterCLIParametersWithFlagSet(flags *flag.FlagSet, prefix, description string) {
	if description != "" {
		description = " (" + description + ")"
	}
	if flags.Lookup(prefix+"bolt_db_path") == nil {
		flags.String(prefix+"bolt_db_path", "", "Path to BoltDB file with policy bundle"+description)
		flags.String(prefix+"bolt_policy_key", defaultBoltBundleKey, "Key of policy bundle in BoltDB"+description)
	}
}

// ParseCLIParametersFromFlags returns CLIOptions from provided FlagSet
func ParseCLIParametersFromFlags(flags *flag.FlagSet, prefix string) *CLIOptions {
	options := CLIOptions{}
	if f := flags.Lookup(prefix + "bolt_db_path"); f != nil {
		options.DBPath = f.Value.String()
	}
	if f := flags.Lookup(prefix + "bolt_policy_key"); f != nil {
		options.BundleKey = f.Value.String()
	}
	return &options
}
