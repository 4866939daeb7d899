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
// Package redis stores policy bundle in Redis
package redis

import (
	"errors"
	"flag"
	"os"

	"github.com/cossacklabs/acra-rasp/cmd"
	"github.com/cossacklabs/acra-rasp/configloader/base"
	goRedis "github.com/go-redis/redis/v7"
	log "github.com/sirupsen/logrus"
)

// StorageCreator creates redis Storage
type StorageCreator struct{}

// IsStorageConfigured returns true if redis host was provided
func (StorageCreator) IsStorageConfigured(flags *flag.FlagSet, prefix string) bool {
	return cmd.ParseRedisParametersFromFlags(flags, prefix).Configured()
}

// RegisterCLIParameters registers CLI flags of redis storage
func (StorageCreator) RegisterCLIParameters(flags *flag.FlagSet, prefix, description string) {
	cmd.RegisterRedisParameters(flags, prefix, description)
}

// NewStorage creates Storage from FlagSet and checks connection
func (StorageCreator) NewStorage(flags *flag.FlagSet, prefix string) (base.Storage, error) {
	options := cmd.ParseRedisParametersFromFlags(flags, prefix)
	client := goRedis.NewClient(options.Options())
	if err := client.Ping().Err(); err != nil {
		client.Close()
		return nil, err
	}
	log.WithField("db", options.DB).Infof("Load policy bundle from Redis with key %s ...", options.Key)
	return NewStorage(client, options.Key), nil
}

// Storage keeps bundle as redis string value
type Storage struct {
	client    *goRedis.Client
	bundleKey string
}

// NewStorage returns Storage using client
func NewStorage(client *goRedis.Client, bundleKey string) *Storage {
	return &Storage{client: client, bundleKey: bundleKey}
}

// GetBundlePath returns redis key of bundle
func (s *Storage) GetBundlePath() string {
	return s.bundleKey
}

// ReadFile returns value by key, base.ErrBundleNotFound if there is no such key
func (s *Storage) ReadFile(path string) ([]byte, error) {
	data, err := s.client.Get(path).Bytes()
	if errors.Is(err, goRedis.Nil) {
		return nil, base.ErrBundleNotFound
	}
	return data, err
}

// WriteFile sets value by key without expiration, perm is ignored
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	return s.client.Set(path, data, 0).Err()
}

// Close closes redis client
func (s *Storage) Close() error {
	return s.client.Close()
}
