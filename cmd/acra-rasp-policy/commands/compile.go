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
package commands

import (
	"errors"
	"flag"
	"io"
	"os"

	"github.com/cossacklabs/acra-rasp/configloader"
	"github.com/cossacklabs/acra-rasp/utils"
	log "github.com/sirupsen/logrus"
)

// ErrMissingSource returned when compile has no source bundle
var ErrMissingSource = errors.New("source bundle not specified, use --source")

// CompileSubcommand is the "acra-rasp-policy compile" subcommand. It compiles whitelist rules of bundle and writes
// result to file, stdout or bundle storage.
type CompileSubcommand struct {
	CommonLoggingParameters
	CommonBundleParameters
	source  string
	flagSet *flag.FlagSet
}

// Name returns the name of this subcommand.
func (p *CompileSubcommand) Name() string {
	return CmdCompile
}

// GetFlagSet returns flag set of this subcommand.
func (p *CompileSubcommand) GetFlagSet() *flag.FlagSet {
	return p.flagSet
}

// RegisterFlags registers command-line flags of "acra-rasp-policy compile".
func (p *CompileSubcommand) RegisterFlags() {
	p.flagSet = flag.NewFlagSet(CmdCompile, flag.ContinueOnError)
	p.CommonLoggingParameters.Register(p.flagSet)
	p.CommonBundleParameters.Register(p.flagSet, "destination of compiled bundle")
	p.flagSet.StringVar(&p.source, "source", "", "Path to policy bundle with whitelist rules")
	registerUsage(p.flagSet, CmdCompile, "compile whitelist rules of policy bundle")
}

// Parse command-line parameters of the subcommand.
func (p *CompileSubcommand) Parse(arguments []string) error {
	if err := ParseFlags(p.flagSet, arguments); err != nil {
		return err
	}
	if p.source == "" {
		return ErrMissingSource
	}
	return nil
}

// Execute this subcommand.
func (p *CompileSubcommand) Execute() {
	p.SetupLogging()
	if err := p.Compile(os.Stdout); err != nil {
		log.WithError(err).Fatal("Failed to compile policy bundle")
	}
}

// Compile compiles source bundle and writes it to storage if configured, to bundle file if set or to output
func (p *CompileSubcommand) Compile(output io.Writer) error {
	source, err := utils.ReadFile(p.source)
	if err != nil {
		return err
	}
	compiled, err := configloader.CompileBundle(source)
	if err != nil {
		return err
	}
	switch {
	case p.StorageConfigured():
		loader, err := p.NewLoader()
		if err != nil {
			return err
		}
		defer loader.Close()
		if err := loader.Publish(compiled); err != nil {
			return err
		}
		log.Infoln("Policy bundle published")
		return nil
	case p.bundleFile != "":
		return os.WriteFile(p.bundleFile, compiled, configloader.DefaultBundlePermissions)
	}
	_, err = output.Write(compiled)
	return err
}
