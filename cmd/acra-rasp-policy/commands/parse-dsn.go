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
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/cossacklabs/acra-rasp/connection"
	"github.com/cossacklabs/acra-rasp/guard"
	log "github.com/sirupsen/logrus"
)

// ErrMissingDSN returned when parse-dsn has no connection string
var ErrMissingDSN = errors.New("connection string not specified, use --dsn")

// ParseDSNSubcommand is the "acra-rasp-policy parse-dsn" subcommand. It prints descriptor extracted from connection
// string and tells whether the account is denylisted by guard config.
type ParseDSNSubcommand struct {
	CommonLoggingParameters
	serverKind  string
	dsn         string
	guardConfig string
	printJSON   bool
	flagSet     *flag.FlagSet
}

// Name returns the name of this subcommand.
func (p *ParseDSNSubcommand) Name() string {
	return CmdParseDSN
}

// GetFlagSet returns flag set of this subcommand.
func (p *ParseDSNSubcommand) GetFlagSet() *flag.FlagSet {
	return p.flagSet
}

// RegisterFlags registers command-line flags of "acra-rasp-policy parse-dsn".
func (p *ParseDSNSubcommand) RegisterFlags() {
	p.flagSet = flag.NewFlagSet(CmdParseDSN, flag.ContinueOnError)
	p.CommonLoggingParameters.Register(p.flagSet)
	p.flagSet.StringVar(&p.serverKind, "server_kind", connection.ServerPgSQL, "Database server kind: mysql or pgsql")
	p.flagSet.StringVar(&p.dsn, "dsn", "", "Connection string")
	p.flagSet.StringVar(&p.guardConfig, "guard_config", "", "Path to guard config with connection denylist")
	p.flagSet.BoolVar(&p.printJSON, "print_json", false, "use machine-readable JSON output")
	registerUsage(p.flagSet, CmdParseDSN, "print descriptor of connection string")
}

// Parse command-line parameters of the subcommand.
func (p *ParseDSNSubcommand) Parse(arguments []string) error {
	if err := ParseFlags(p.flagSet, arguments); err != nil {
		return err
	}
	if p.dsn == "" {
		return ErrMissingDSN
	}
	return nil
}

// Execute this subcommand.
func (p *ParseDSNSubcommand) Execute() {
	p.SetupLogging()
	var predicate connection.ViolationPredicate
	if p.guardConfig != "" {
		config, err := guard.LoadConfig(p.guardConfig)
		if err != nil {
			log.WithError(err).Fatal("Failed to load guard config")
		}
		predicate = config.Predicate()
	}
	if err := ParseDSN(p.serverKind, p.dsn, predicate, p.printJSON, os.Stdout); err != nil {
		log.WithError(err).Fatal("Failed to print connection descriptor")
	}
}

// DSNDescription is printed description of connection string
type DSNDescription struct {
	ServerKind  string `json:"server_kind"`
	Username    string `json:"username"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Socket      string `json:"socket,omitempty"`
	UsingSocket bool   `json:"using_socket"`
	Denylisted  *bool  `json:"denylisted,omitempty"`
	Malformed   bool   `json:"malformed"`
}

// ParseDSN parses connection string and prints its description. Malformed strings print fields parsed before the
// error. Denylist verdict is printed only with predicate.
func ParseDSN(serverKind, dsn string, predicate connection.ViolationPredicate, printJSON bool, output io.Writer) error {
	descriptor, err := connection.Parse(serverKind, dsn)
	if err != nil && !errors.Is(err, connection.ErrMalformedConnectionString) {
		return err
	}
	description := DSNDescription{
		ServerKind:  descriptor.ServerKind,
		Username:    descriptor.Username,
		Host:        descriptor.Host,
		Port:        descriptor.Port,
		Socket:      descriptor.Socket,
		UsingSocket: descriptor.UsingSocket,
		Malformed:   err != nil,
	}
	if predicate != nil {
		denylisted := predicate(descriptor.ServerKind, descriptor.Username)
		description.Denylisted = &denylisted
	}
	if printJSON {
		encoder := json.NewEncoder(output)
		encoder.SetIndent("", "  ")
		return encoder.Encode(description)
	}
	fmt.Fprintf(output, "server_kind: %s\n", description.ServerKind)
	fmt.Fprintf(output, "username: %s\n", description.Username)
	fmt.Fprintf(output, "host: %s\n", description.Host)
	fmt.Fprintf(output, "port: %d\n", description.Port)
	if description.Socket != "" {
		fmt.Fprintf(output, "socket: %s\n", description.Socket)
	}
	fmt.Fprintf(output, "using_socket: %t\n", description.UsingSocket)
	if description.Denylisted != nil {
		fmt.Fprintf(output, "denylisted: %t\n", *description.Denylisted)
	}
	if description.Malformed {
		fmt.Fprintln(output, "malformed: true")
	}
	return nil
}
