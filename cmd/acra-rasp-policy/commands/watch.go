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
	"context"
	"flag"
	"time"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/cossacklabs/acra-rasp/cmd"
	"github.com/cossacklabs/acra-rasp/configloader"
	"github.com/cossacklabs/acra-rasp/configloader/boltdb"
	"github.com/cossacklabs/acra-rasp/evaluator"
	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/utils"
	log "github.com/sirupsen/logrus"
)

// WatchSubcommand is the "acra-rasp-policy watch" subcommand. It keeps loading bundles from storage like embedded
// refresher does, reports rejected bundles and exports metrics. Applied bundles are cached in local BoltDB file.
type WatchSubcommand struct {
	CommonLoggingParameters
	CommonBundleParameters
	refreshInterval   time.Duration
	cacheFile         string
	prometheusAddress string
	bundleLogLevel    bool
	flagSet           *flag.FlagSet
}

// Name returns the name of this subcommand.
func (p *WatchSubcommand) Name() string {
	return CmdWatch
}

// GetFlagSet returns flag set of this subcommand.
func (p *WatchSubcommand) GetFlagSet() *flag.FlagSet {
	return p.flagSet
}

// RegisterFlags registers command-line flags of "acra-rasp-policy watch".
func (p *WatchSubcommand) RegisterFlags() {
	p.flagSet = flag.NewFlagSet(CmdWatch, flag.ContinueOnError)
	p.CommonLoggingParameters.Register(p.flagSet)
	p.CommonBundleParameters.Register(p.flagSet, "watched bundle")
	p.flagSet.DurationVar(&p.refreshInterval, "refresh_interval", configloader.DefaultRefreshInterval, "Interval between bundle loads")
	p.flagSet.StringVar(&p.cacheFile, "policy_cache_file", "", "Path to BoltDB file with last-known-good bundle")
	p.flagSet.StringVar(&p.prometheusAddress, "incoming_connection_prometheus_metrics_string", "", "URL (tcp://host:port) which will be used to expose Prometheus metrics (<URL>/metrics address to pull metrics)")
	p.flagSet.BoolVar(&p.bundleLogLevel, "bundle_log_level", false, "Set log level from debug_level of applied bundles")
	registerUsage(p.flagSet, CmdWatch, "refresh policy from bundle storage until stopped")
}

// Parse command-line parameters of the subcommand.
func (p *WatchSubcommand) Parse(arguments []string) error {
	if err := ParseFlags(p.flagSet, arguments); err != nil {
		return err
	}
	if !p.StorageConfigured() {
		return configloader.ErrStorageNotConfigured
	}
	if p.refreshInterval <= 0 {
		return configloader.ErrInvalidRefreshInterval
	}
	return nil
}

// Execute this subcommand.
func (p *WatchSubcommand) Execute() {
	p.SetupLogging()
	exitHandler := cmd.NewExitHandler()

	loader, err := p.NewLoader()
	if err != nil {
		log.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantStartService).
			Fatal("Can't initialize policy bundle storage")
	}
	exitHandler.AddDeferFunc(cmd.NewDeferFunction(func() { loader.Close() }, cmd.Indifferent))

	var bundleLoader configloader.BundleLoader = loader
	if p.cacheFile != "" {
		cacheStorage, err := boltdb.NewStorage(p.cacheFile, loader.BundlePath())
		if err != nil {
			log.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantStartService).
				Fatal("Can't open policy cache")
		}
		cache := configloader.NewLoaderWithStorage(cacheStorage)
		exitHandler.AddDeferFunc(cmd.NewDeferFunction(func() { cache.Close() }, cmd.Indifferent))
		bundleLoader = configloader.NewCachingLoader(loader, cache)
	}

	store := policy.NewStore()
	if p.prometheusAddress != "" {
		registerMetrics()
		listener, _, err := cmd.RunPrometheusHTTPHandler(p.prometheusAddress)
		if err != nil {
			log.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorCantStartService).
				Fatal("Can't start prometheus handler")
		}
		exitHandler.AddListener(listener)
	}

	refresher, err := configloader.NewRefresher(bundleLoader, store, p.refreshInterval)
	if err != nil {
		log.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorWrongParam).Fatal("Invalid refresh interval")
	}
	if p.bundleLogLevel {
		refresher.EnableBundleLogLevel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	exitHandler.AddDeferFunc(cmd.NewDeferFunction(cancel, cmd.Last))
	go exitHandler.WaitForExitSystemSignal()

	log.WithField("interval", p.refreshInterval).Infoln("Start watching policy bundle")
	refresher.Run(ctx)
}

func registerMetrics() {
	version, err := utils.GetParsedVersion()
	if err == nil {
		cmd.RegisterVersionMetrics(ServiceName, version)
		cmd.RegisterBuildInfoMetrics(ServiceName, version)
	}
	policy.RegisterMetrics()
	evaluator.RegisterMetrics()
	alarm.RegisterMetrics()
	configloader.RegisterMetrics()
}
