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
// Package commands defines subcommands of `acra-rasp-policy` utility.
package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cossacklabs/acra-rasp/cmd"
	"github.com/cossacklabs/acra-rasp/configloader"
	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/utils"
	log "github.com/sirupsen/logrus"
)

// ServiceName constant for logging and configuration parsing.
const ServiceName = "acra-rasp-policy"

// DefaultConfigPath is the default path to service configuration file.
var DefaultConfigPath = cmd.DefaultConfigPath

// Subcommand names.
const (
	CmdCompile  = "compile"
	CmdInspect  = "inspect"
	CmdParseDSN = "parse-dsn"
	CmdWatch    = "watch"
)

// Errors of command line parsing
var (
	ErrMissingSubCommand = errors.New("subcommand not specified")
	ErrUnknownSubCommand = errors.New("unknown subcommand")
	ErrMissingBundle     = errors.New("neither bundle file nor bundle storage specified")
)

// Subcommand is one command of acra-rasp-policy
type Subcommand interface {
	Name() string
	GetFlagSet() *flag.FlagSet
	RegisterFlags()
	Parse(arguments []string) error
	Execute()
}

// CommonLoggingParameters is a mix-in of logging flags.
type CommonLoggingParameters struct {
	loggingFormat string
	debug         bool
	verbose       bool
}

// Register registers logging flags with the given flag set.
func (p *CommonLoggingParameters) Register(flags *flag.FlagSet) {
	flags.StringVar(&p.loggingFormat, "logging_format", logging.PlaintextFormatString, "Logging format: plaintext, json or CEF")
	flags.BoolVar(&p.debug, "d", false, "Turn on debug logging")
	flags.BoolVar(&p.verbose, "v", false, "Log to stderr all INFO, WARNING and ERROR logs")
}

// SetupLogging configures formatter and level of standard logger
func (p *CommonLoggingParameters) SetupLogging() {
	formatter := logging.CreateFormatter(p.loggingFormat)
	formatter.SetServiceName(ServiceName)
	level := logging.LogDiscard
	if p.debug {
		level = logging.LogDebug
	} else if p.verbose {
		level = logging.LogVerbose
	}
	logging.SetLogLevel(level)
}

// CommonBundleParameters is a mix-in of flags which select policy bundle: local file or configured storage.
type CommonBundleParameters struct {
	bundleFile string
	flagSet    *flag.FlagSet
}

// Register registers bundle flags with the given flag set.
func (p *CommonBundleParameters) Register(flags *flag.FlagSet, description string) {
	p.flagSet = flags
	flags.StringVar(&p.bundleFile, "bundle", "", "Path to policy bundle yaml")
	configloader.RegisterCLIParametersWithFlags(flags, "", description)
}

// StorageConfigured returns true if bundle storage type was set
func (p *CommonBundleParameters) StorageConfigured() bool {
	f := p.flagSet.Lookup(configloader.StorageTypeFlag)
	return f != nil && f.Value.String() != ""
}

// NewLoader returns loader of configured bundle storage
func (p *CommonBundleParameters) NewLoader() (*configloader.Loader, error) {
	return configloader.NewLoader("", p.flagSet, "")
}

// LoadBundle reads bundle from storage if it's configured or from bundle file
func (p *CommonBundleParameters) LoadBundle() ([]byte, error) {
	if p.StorageConfigured() {
		loader, err := p.NewLoader()
		if err != nil {
			return nil, err
		}
		defer loader.Close()
		return loader.Load()
	}
	if p.bundleFile == "" {
		return nil, ErrMissingBundle
	}
	return utils.ReadFile(p.bundleFile)
}

// ParseFlags parses flags of subcommand with yaml config overlay
func ParseFlags(flags *flag.FlagSet, arguments []string) error {
	err := cmd.ParseFlags(flags, arguments, DefaultConfigPath)
	if err != nil && !errors.Is(err, cmd.ErrConfigDumped) {
		log.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantReadServiceConfig).
			Errorln("Cannot parse arguments")
	}
	return err
}

// Usage prints usage of utility and its subcommands
func Usage(output io.Writer, subcommands []Subcommand) {
	names := make([]string, 0, len(subcommands))
	for _, subcommand := range subcommands {
		names = append(names, subcommand.Name())
	}
	fmt.Fprintf(output, "Usage:\n\t%s <command> [options]\n\nCommands: %s\n", ServiceName, strings.Join(names, ", "))
	fmt.Fprintf(output, "Run \"%s <command> --help\" for command options\n", ServiceName)
}

// ParseParameters finds subcommand by first argument and parses the rest of arguments with it
func ParseParameters(subcommands []Subcommand, arguments []string) (Subcommand, error) {
	if len(arguments) == 0 {
		return nil, ErrMissingSubCommand
	}
	for _, subcommand := range subcommands {
		if subcommand.Name() != arguments[0] {
			continue
		}
		subcommand.RegisterFlags()
		if err := subcommand.Parse(arguments[1:]); err != nil {
			return nil, err
		}
		return subcommand, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSubCommand, arguments[0])
}

// DefaultSubcommands returns all subcommands of acra-rasp-policy
func DefaultSubcommands() []Subcommand {
	return []Subcommand{
		&CompileSubcommand{},
		&InspectSubcommand{},
		&ParseDSNSubcommand{},
		&WatchSubcommand{},
	}
}

func registerUsage(flags *flag.FlagSet, name, description string) {
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Command \"%s\": %s\n", name, description)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		cmd.PrintDefaults(flags)
	}
}
