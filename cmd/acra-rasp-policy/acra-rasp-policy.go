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
// Package main is entry point for `acra-rasp-policy` utility.
//
// It prepares and checks RASP policy:
//
//   - compile whitelist rules of policy bundle and publish it to bundle storage
//   - inspect bundle and resolve actions for request keys
//   - print descriptor of database connection string
//   - watch bundle storage and report rejected bundles
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/cossacklabs/acra-rasp/cmd"
	"github.com/cossacklabs/acra-rasp/cmd/acra-rasp-policy/commands"
	log "github.com/sirupsen/logrus"
)

func main() {
	subcommands := commands.DefaultSubcommands()
	subcommand, err := commands.ParseParameters(subcommands, os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, cmd.ErrConfigDumped):
		os.Exit(0)
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, commands.ErrMissingSubCommand), errors.Is(err, commands.ErrUnknownSubCommand):
		commands.Usage(os.Stderr, subcommands)
		os.Exit(1)
	default:
		log.WithError(err).Errorln("Invalid arguments")
		os.Exit(1)
	}
	subcommand.Execute()
}
