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
	"github.com/cossacklabs/acra-rasp/logging"
	log "github.com/sirupsen/logrus"
)

// CachingLoader loads bundles from primary storage and keeps the last applied one in cache storage. When primary
// storage fails, bundle from cache is returned. Bundles get into cache only through BundleApplied, which Refresher
// calls after policy store accepted the bundle.
type CachingLoader struct {
	primary BundleLoader
	cache   *Loader
	logger  *log.Entry
	// last Load returned cached bundle
	fromCache bool
}

// NewCachingLoader returns CachingLoader
func NewCachingLoader(primary BundleLoader, cache *Loader) *CachingLoader {
	return &CachingLoader{primary: primary, cache: cache, logger: log.WithField("service", ServiceName)}
}

// Load returns bundle from primary storage or last-known-good bundle from cache
func (loader *CachingLoader) Load() ([]byte, error) {
	bundle, err := loader.primary.Load()
	if err == nil {
		loader.fromCache = false
		return bundle, nil
	}
	cached, cacheErr := loader.cache.Load()
	if cacheErr != nil {
		return nil, err
	}
	loader.fromCache = true
	loader.logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorConfigLoaderCantLoad).
		Warningln("Can't load policy bundle, use cached one")
	return cached, nil
}

// BundleApplied saves bundle installed into policy store to cache
func (loader *CachingLoader) BundleApplied(bundle []byte) {
	if loader.fromCache {
		return
	}
	if err := loader.cache.Publish(bundle); err != nil {
		loader.logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorConfigLoaderStorage).
			Warningln("Can't save policy bundle to cache")
	}
}
