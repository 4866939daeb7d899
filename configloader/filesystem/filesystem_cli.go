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
package filesystem

import (
	"flag"
)

// CLIOptions keep command-line options related to filesystem bundle storage
type CLIOptions struct {
	BundleFile string
}

// RegisterCLIParametersWithFlagSet registers policy_bundle_file flag if it wasn't registered yet
func RegisterCLIParametersWithFlagSet(flags *flag.FlagSet, prefix, description string) {
	if description != "" {
		description = " (" + description + ")"
	}
	if flags.Lookup(prefix+"policy_bundle_file") == nil {
		flags.String(prefix+"policy_bundle_file", "", "Path to policy bundle file"+description)
	}
}

// ParseCLIParametersFromFlags returns CLIOptions from provided FlagSet
func ParseCLIParametersFromFlags(flags *flag.FlagSet, prefix string) *CLIOptions {
	options := CLIOptions{}
	if f := flags.Lookup(prefix + "policy_bundle_file"); f != nil {
		options.BundleFile = f.Value.String()
	}
	return &options
}
