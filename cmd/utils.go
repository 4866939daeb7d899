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
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cossacklabs/acra-rasp/utils"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Names of flags registered by ParseFlags
const (
	ConfigFlag     = "config"
	DumpConfigFlag = "dump_config"
)

// ErrConfigDumped returned by ParseFlags when --dump_config was passed and config was written. Caller should
// exit without doing anything else.
var ErrConfigDumped = errors.New("config dumped")

func init() {
	flag.CommandLine.Usage = func() {
		PrintDefaults(flag.CommandLine)
	}
}

func isZeroDefault(value string) bool {
	switch value {
	case "", "0", "false", "[]":
		return true
	}
	return false
}

// PrintDefaults prints usage of flags. Long names are shown with "--" prefix, one-letter names with "-".
func PrintDefaults(flags *flag.FlagSet) {
	flags.VisitAll(func(f *flag.Flag) {
		line := "  -" + f.Name
		if len(f.Name) > 2 {
			line = "  --" + f.Name
		}
		if len(f.Name) == 1 {
			line += "\t"
		} else {
			line += "\n    \t"
		}
		line += f.Usage
		if !isZeroDefault(f.DefValue) {
			if getter, ok := f.Value.(flag.Getter); ok {
				if _, isString := getter.Get().(string); isString {
					line += fmt.Sprintf(" (default %q)", f.DefValue)
				} else {
					line += fmt.Sprintf(" (default %v)", f.DefValue)
				}
			}
		}
		fmt.Fprintln(flags.Output(), line)
	})
}

// GenerateYaml writes flags as yaml config with usage as comments
func GenerateYaml(output io.Writer, flags *flag.FlagSet, useDefault bool) {
	flags.VisitAll(func(f *flag.Flag) {
		if f.Name == ConfigFlag || f.Name == DumpConfigFlag {
			return
		}
		var s string
		if useDefault {
			s = fmt.Sprintf("# %v\n%v: %v\n", f.Usage, f.Name, f.DefValue)
		} else {
			s = fmt.Sprintf("# %v\n%v: %v\n", f.Usage, f.Name, f.Value)
		}
		fmt.Fprint(output, s, "\n")
	})
}

// DumpConfig writes yaml config of flags to configPath
func DumpConfig(flags *flag.FlagSet, configPath string, useDefault bool) error {
	absPath, err := utils.AbsPath(configPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0744); err != nil {
		return err
	}
	file, err := os.Create(absPath)
	if err != nil {
		return err
	}
	defer file.Close()

	GenerateYaml(file, flags, useDefault)
	log.Infof("Config dumped to %s", absPath)
	return nil
}

// Parse parses command line flags, see ParseFlags
func Parse(configPath string) error {
	return ParseFlags(flag.CommandLine, os.Args[1:], configPath)
}

// ParseFlags parses arguments and then sets flags which weren't passed explicitly from yaml config. Config is
// taken from --config or from configPath if --config is empty, missing config file is not an error. If
// --dump_config was passed, writes config with defaults and returns ErrConfigDumped.
func ParseFlags(flags *flag.FlagSet, arguments []string, configPath string) error {
	if flags.Lookup(ConfigFlag) == nil {
		flags.String(ConfigFlag, "", "path to config")
	}
	if flags.Lookup(DumpConfigFlag) == nil {
		flags.Bool(DumpConfigFlag, false, "dump config")
	}
	if err := flags.Parse(arguments); err != nil {
		return err
	}
	if path := flags.Lookup(ConfigFlag).Value.String(); path != "" {
		configPath = path
	}
	if flags.Lookup(DumpConfigFlag).Value.String() == "true" {
		if configPath == "" {
			return errors.New("config path not set, use --config")
		}
		if err := DumpConfig(flags, configPath, true); err != nil {
			return err
		}
		return ErrConfigDumped
	}
	if configPath == "" {
		return nil
	}
	log.Debugf("Config path: %v", configPath)
	return applyYamlConfig(flags, configPath)
}

func applyYamlConfig(flags *flag.FlagSet, configPath string) error {
	configPath, err := utils.AbsPath(configPath)
	if err != nil {
		return err
	}
	exists, err := utils.FileExists(configPath)
	if err != nil || !exists {
		return err
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}
	yamlConfig := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return err
	}
	setArgs := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) {
		setArgs[f.Name] = true
	})
	var setErr error
	// set only options that weren't passed from cli
	flags.VisitAll(func(f *flag.Flag) {
		if setErr != nil || setArgs[f.Name] {
			return
		}
		value, ok := yamlConfig[f.Name]
		if !ok || value == nil {
			return
		}
		if err := flags.Set(f.Name, fmt.Sprintf("%v", value)); err != nil {
			setErr = fmt.Errorf("invalid value of %s in %s: %w", f.Name, configPath, err)
		}
	})
	return setErr
}
