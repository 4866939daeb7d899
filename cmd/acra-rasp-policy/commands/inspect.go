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
	"fmt"
	"io"
	"os"

	"github.com/cossacklabs/acra-rasp/configloader"
	"github.com/cossacklabs/acra-rasp/evaluator"
	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/whitelist"
	log "github.com/sirupsen/logrus"
)

// ErrUnknownCheckType returned for --check values which aren't check types
var ErrUnknownCheckType = errors.New("unknown check type")

// InspectSubcommand is the "acra-rasp-policy inspect" subcommand. It loads bundle, prints installed policy and
// optionally resolves action for check type and request key.
type InspectSubcommand struct {
	CommonLoggingParameters
	CommonBundleParameters
	check   string
	key     string
	flagSet *flag.FlagSet
}

// Name returns the name of this subcommand.
func (p *InspectSubcommand) Name() string {
	return CmdInspect
}

// GetFlagSet returns flag set of this subcommand.
func (p *InspectSubcommand) GetFlagSet() *flag.FlagSet {
	return p.flagSet
}

// RegisterFlags registers command-line flags of "acra-rasp-policy inspect".
func (p *InspectSubcommand) RegisterFlags() {
	p.flagSet = flag.NewFlagSet(CmdInspect, flag.ContinueOnError)
	p.CommonLoggingParameters.Register(p.flagSet)
	p.CommonBundleParameters.Register(p.flagSet, "source of inspected bundle")
	p.flagSet.StringVar(&p.check, "check", "", "Check type to resolve: sql, sql_prepared, sql_exception or db_connection")
	p.flagSet.StringVar(&p.key, "key", "", "Request key used with --check")
	registerUsage(p.flagSet, CmdInspect, "print policy bundle and resolve actions")
}

// Parse command-line parameters of the subcommand.
func (p *InspectSubcommand) Parse(arguments []string) error {
	if err := ParseFlags(p.flagSet, arguments); err != nil {
		return err
	}
	if p.check != "" && !policy.ParseCheckType(p.check).IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCheckType, p.check)
	}
	return nil
}

// Execute this subcommand.
func (p *InspectSubcommand) Execute() {
	p.SetupLogging()
	bundle, err := p.LoadBundle()
	if err != nil {
		log.WithError(err).Fatal("Failed to load policy bundle")
	}
	if err := Inspect(bundle, p.check, p.key, os.Stdout); err != nil {
		log.WithError(err).Fatal("Failed to inspect policy bundle")
	}
}

// Inspect installs bundle into new store and prints resulting policy. If check isn't empty, prints action
// resolved for check and key.
func Inspect(bundle []byte, check, key string, output io.Writer) error {
	update, err := configloader.ParseBundle(bundle)
	if err != nil {
		return err
	}
	store := policy.NewStore()
	if err := store.Apply(update); err != nil {
		return err
	}
	snapshot := store.Snapshot()
	fmt.Fprintf(output, "updated_at: %d\n", snapshot.UpdateTime())
	fmt.Fprintf(output, "enforce_policy: %t\n", snapshot.EnforcePolicy())
	fmt.Fprintf(output, "log_max_backup: %d\n", snapshot.LogMaxBackup())
	fmt.Fprintf(output, "debug_level: %d\n", snapshot.DebugLevel())
	fmt.Fprintln(output, "actions:")
	for _, t := range policy.ValidCheckTypes() {
		fmt.Fprintf(output, "  %s: %s\n", t, snapshot.Action(t))
	}
	if snapshot.WhitelistSize() == 0 {
		fmt.Fprintln(output, "whitelist: empty")
	} else {
		rules, err := whitelist.Decode(snapshot.Whitelist())
		if err != nil {
			return err
		}
		fmt.Fprintf(output, "whitelist: %d bytes, %d nodes\n", snapshot.WhitelistSize(), whitelist.NodeCount(snapshot.Whitelist()))
		for _, rule := range rules {
			fmt.Fprintf(output, "  %s %q\n", rule.CheckType, rule.Prefix)
		}
	}
	if check == "" {
		return nil
	}
	t := policy.ParseCheckType(check)
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCheckType, check)
	}
	action := evaluator.New(store).Resolve(t, key)
	fmt.Fprintf(output, "resolved: %s %q -> %s\n", t, key, action)
	return nil
}
