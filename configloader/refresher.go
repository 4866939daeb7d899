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
package configloader

import (
	"context"
	"errors"
	"time"

	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/policy"
	log "github.com/sirupsen/logrus"
)

// ServiceName used in logs of refresher
const ServiceName = "rasp-policy-refresher"

// DefaultRefreshInterval is interval between bundle loads
const DefaultRefreshInterval = time.Minute

// ErrInvalidRefreshInterval returned for non-positive interval
var ErrInvalidRefreshInterval = errors.New("refresh interval should be positive")

// BundleLoader returns raw policy bundle
type BundleLoader interface {
	Load() ([]byte, error)
}

// BundleObserver is implemented by loaders which should know about bundles installed into policy store
type BundleObserver interface {
	BundleApplied(bundle []byte)
}

// Refresher periodically loads policy bundle and installs it into policy store. Bundle with the same updated_at
// as already installed one isn't applied again. Rejected bundles keep previous snapshot in place. Debug level of
// bundles changes log level only after EnableBundleLogLevel.
type Refresher struct {
	loader      BundleLoader
	store       *policy.Store
	interval    time.Duration
	applied     bool
	setLogLevel func(level int) error
	logger      *log.Entry
}

// NewRefresher returns Refresher which loads bundles with loader every interval
func NewRefresher(loader BundleLoader, store *policy.Store, interval time.Duration) (*Refresher, error) {
	if interval <= 0 {
		return nil, ErrInvalidRefreshInterval
	}
	return &Refresher{
		loader:   loader,
		store:    store,
		interval: interval,
		logger:   log.WithField("service", ServiceName),
	}, nil
}

// EnableBundleLogLevel makes applied bundles set log level from their debug_level
func (refresher *Refresher) EnableBundleLogLevel() {
	refresher.setLogLevel = logging.SetLogLevel
}

// Refresh loads and applies bundle once. Returns true if the store was updated.
func (refresher *Refresher) Refresh() (bool, error) {
	bundle, err := refresher.loader.Load()
	if err != nil {
		refreshCounter.WithLabelValues(refreshStatusFailed).Inc()
		refresher.logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorConfigLoaderCantLoad).
			Warningln("Can't load policy bundle")
		return false, err
	}
	update, err := ParseBundle(bundle)
	if err != nil {
		refreshCounter.WithLabelValues(refreshStatusRejected).Inc()
		refresher.logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPolicyMalformedBundle).
			Warningln("Rejected malformed policy bundle")
		return false, err
	}
	if refresher.applied && update.UpdateTime == refresher.store.GetUpdateTime() {
		refreshCounter.WithLabelValues(refreshStatusSkipped).Inc()
		refresher.logger.WithField("update_time", update.UpdateTime).Debugln("Policy bundle not changed")
		return false, nil
	}
	if err := refresher.store.Apply(update); err != nil {
		refreshCounter.WithLabelValues(refreshStatusRejected).Inc()
		refresher.logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPolicyMalformedBundle).
			Warningln("Policy store rejected bundle, previous policy kept")
		return false, err
	}
	refresher.applied = true
	refreshCounter.WithLabelValues(refreshStatusApplied).Inc()
	if observer, ok := refresher.loader.(BundleObserver); ok {
		observer.BundleApplied(bundle)
	}
	if refresher.setLogLevel != nil {
		if err := refresher.setLogLevel(logging.DebugLevelToLogLevel(update.DebugLevel)); err != nil {
			refresher.logger.WithError(err).Warningln("Can't apply debug level of policy bundle")
		}
	}
	refresher.logger.WithField("update_time", update.UpdateTime).Infoln("Installed policy bundle")
	return true, nil
}

// Run refreshes policy immediately and then every interval until ctx is done. Returns ctx.Err().
func (refresher *Refresher) Run(ctx context.Context) error {
	refresher.Refresh()
	ticker := time.NewTicker(refresher.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresher.Refresh()
		}
	}
}
