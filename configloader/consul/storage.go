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
// Package consul stores policy bundle in HashiCorp Consul KV
package consul

import (
	"flag"
	"os"

	"github.com/cossacklabs/acra-rasp/configloader/base"
	"github.com/hashicorp/consul/api"
	log "github.com/sirupsen/logrus"
)

// StorageCreator creates consul Storage
type StorageCreator struct{}

// IsStorageConfigured returns true if consul address was provided
func (StorageCreator) IsStorageConfigured(flags *flag.FlagSet, prefix string) bool {
	return ParseCLIParametersFromFlags(flags, prefix).Address != ""
}

// RegisterCLIParameters registers CLI flags of consul storage
func (StorageCreator) RegisterCLIParameters(flags *flag.FlagSet, prefix, description string) {
	RegisterCLIParametersWithFlagSet(flags, prefix, description)
}

// NewStorage creates Storage from FlagSet
func (StorageCreator) NewStorage(flags *flag.FlagSet, prefix string) (base.Storage, error) {
	cliOptions := ParseCLIParametersFromFlags(flags, prefix)
	config, err := cliOptions.ClientConfig()
	if err != nil {
		return nil, err
	}
	if cliOptions.EnableTLS {
		log.Infoln("Configuring TLS connection to HashiCorp Consul")
	}
	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	log.Infof("Load policy bundle from HashiCorp Consul with path %s ...", cliOptions.BundlePath)
	return NewStorage(client.KV(), cliOptions.BundlePath), nil
}

// Storage keeps bundle as consul KV value
type Storage struct {
	client     *api.KV
	bundlePath string
}

// NewStorage returns Storage using KV client
func NewStorage(client *api.KV, bundlePath string) *Storage {
	return &Storage{client: client, bundlePath: bundlePath}
}

// GetBundlePath returns KV key of bundle
func (s *Storage) GetBundlePath() string {
	return s.bundlePath
}

// ReadFile returns value by key, base.ErrBundleNotFound if there is no such key
func (s *Storage) ReadFile(path string) ([]byte, error) {
	kvPair, _, err := s.client.Get(path, nil)
	if err != nil {
		return nil, err
	}
	if kvPair == nil {
		return nil, base.ErrBundleNotFound
	}
	return kvPair.Value, nil
}

// WriteFile puts value by key, perm is ignored
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	_, err := s.client.Put(&api.KVPair{Key: path, Value: data}, nil)
	return err
}

// Close does nothing, consul client has no connection to close
func (s *Storage) Close() error {
	return nil
}
