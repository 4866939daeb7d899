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
// Package configloader delivers policy bundles to the policy store. Bundles are read from one of registered
// storages (local file, HashiCorp Consul, Redis or BoltDB), parsed and installed by Refresher.
package configloader

import (
	"encoding/base64"
	"errors"
	"flag"
	"sort"
	"strings"
	"sync"

	"github.com/cossacklabs/acra-rasp/configloader/base"
	log "github.com/sirupsen/logrus"
)

// Storage types
const (
	StorageTypeFilesystem = "filesystem"
	StorageTypeConsul     = "consul"
	StorageTypeRedis      = "redis"
	StorageTypeBoltDB     = "boltdb"
)

// StorageTypeFlag is name of flag with storage type
const StorageTypeFlag = "policy_storage_type"

// DefaultBundlePermissions used for bundles written to storages which support permissions
const DefaultBundlePermissions = 0600

var (
	// ErrStorageNotFound returned for unregistered storage type
	ErrStorageNotFound = errors.New("policy bundle storage not found by storage type")
	// ErrStorageNotConfigured returned when no storage flags were set
	ErrStorageNotConfigured = errors.New("policy bundle storage not configured")
	lock                    = sync.Mutex{}
)

var storageCreators = map[string]base.StorageCreator{}

// RegisterStorageCreator adds creator to registry
func RegisterStorageCreator(name string, creator base.StorageCreator) {
	lock.Lock()
	storageCreators[name] = creator
	lock.Unlock()
	log.WithField("name", name).Debug("Registered policy bundle StorageCreator")
}

// SupportedStorages returns sorted names of registered storages
func SupportedStorages() []string {
	lock.Lock()
	defer lock.Unlock()
	names := make([]string, 0, len(storageCreators))
	for name := range storageCreators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func getCreator(storageType string) (base.StorageCreator, bool) {
	lock.Lock()
	defer lock.Unlock()
	creator, ok := storageCreators[storageType]
	return creator, ok
}

// GetStorage returns storage of storageType configured with flags
func GetStorage(storageType string, flags *flag.FlagSet, prefix string) (base.Storage, error) {
	creator, ok := getCreator(storageType)
	if !ok {
		log.WithField("storage-type", storageType).Warnln("Policy bundle storage not found")
		return nil, ErrStorageNotFound
	}
	return creator.NewStorage(flags, prefix)
}

// RegisterCLIParametersWithFlags registers storage type flag and flags of all storages
func RegisterCLIParametersWithFlags(flags *flag.FlagSet, prefix, description string) {
	usage := "Storage of policy bundle, one of " + strings.Join(SupportedStorages(), ", ")
	if description != "" {
		usage += " (" + description + ")"
	}
	if flags.Lookup(prefix+StorageTypeFlag) == nil {
		flags.String(prefix+StorageTypeFlag, "", usage)
	}
	lock.Lock()
	defer lock.Unlock()
	for _, creator := range storageCreators {
		creator.RegisterCLIParameters(flags, prefix, description)
	}
}

// IsConfiguredWithFlags returns true if flags of any storage were set
func IsConfiguredWithFlags(flags *flag.FlagSet, prefix string) bool {
	lock.Lock()
	defer lock.Unlock()
	for _, creator := range storageCreators {
		if creator.IsStorageConfigured(flags, prefix) {
			return true
		}
	}
	return false
}

// Loader reads policy bundles from storage
type Loader struct {
	storage base.Storage
}

// NewLoader creates Loader with storage configured by flags. Storage type is taken from storageType or, if it's
// empty, from StorageTypeFlag.
func NewLoader(storageType string, flags *flag.FlagSet, prefix string) (*Loader, error) {
	if storageType == "" {
		if f := flags.Lookup(prefix + StorageTypeFlag); f != nil {
			storageType = f.Value.String()
		}
	}
	if storageType == "" {
		return nil, ErrStorageNotConfigured
	}
	storage, err := GetStorage(storageType, flags, prefix)
	if err != nil {
		return nil, err
	}
	return NewLoaderWithStorage(storage), nil
}

// NewLoaderWithStorage creates Loader with storage
func NewLoaderWithStorage(storage base.Storage) *Loader {
	return &Loader{storage: storage}
}

// Load returns policy bundle. Base64 encoded bundles are decoded.
func (loader *Loader) Load() ([]byte, error) {
	bundle, err := loader.storage.ReadFile(loader.storage.GetBundlePath())
	if err != nil {
		return nil, err
	}
	if decoded, err := base64.StdEncoding.DecodeString(string(bundle)); err == nil {
		log.Debug("base64 encoded policy bundle detected")
		bundle = decoded
	}
	return bundle, nil
}

// BundlePath returns path (key) of bundle in storage
func (loader *Loader) BundlePath() string {
	return loader.storage.GetBundlePath()
}

// Publish writes policy bundle to storage
func (loader *Loader) Publish(bundle []byte) error {
	return loader.storage.WriteFile(loader.storage.GetBundlePath(), bundle, DefaultBundlePermissions)
}

// Close releases storage
func (loader *Loader) Close() error {
	return loader.storage.Close()
}
