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
// Package boltdb stores policy bundle in local BoltDB file. It's used as last-known-good copy of bundles
// loaded from remote storages.
package boltdb

import (
	"flag"
	"os"
	"time"

	"github.com/cossacklabs/acra-rasp/configloader/base"
	log "github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

// BucketName is bucket with bundles
var BucketName = []byte("acra-rasp")

// DefaultOpenTimeout is time to wait for file lock of database
const DefaultOpenTimeout = time.Second

// StorageCreator creates bolt Storage
type StorageCreator struct{}

// IsStorageConfigured returns true if database path was provided
func (StorageCreator) IsStorageConfigured(flags *flag.FlagSet, prefix string) bool {
	return ParseCLIParametersFromFlags(flags, prefix).DBPath != ""
}

// RegisterCLIParameters registers CLI flags of bolt storage
func (StorageCreator) RegisterCLIParameters(flags *flag.FlagSet, prefix, description string) {
	RegisterCLIParametersWithFlagSet(flags, prefix, description)
}

// NewStorage opens database from FlagSet
func (StorageCreator) NewStorage(flags *flag.FlagSet, prefix string) (base.Storage, error) {
	cliOptions := ParseCLIParametersFromFlags(flags, prefix)
	log.Infof("Load policy bundle from BoltDB %s with key %s ...", cliOptions.DBPath, cliOptions.BundleKey)
	return NewStorage(cliOptions.DBPath, cliOptions.BundleKey)
}

// Storage keeps bundles as values of BucketName
type Storage struct {
	db        *bolt.DB
	bundleKey string
}

// NewStorage opens or creates database file
func NewStorage(dbPath, bundleKey string) (*Storage, error) {
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: DefaultOpenTimeout})
	if err != nil {
		return nil, err
	}
	return &Storage{db: db, bundleKey: bundleKey}, nil
}

// GetBundlePath returns key of bundle
func (s *Storage) GetBundlePath() string {
	return s.bundleKey
}

// ReadFile returns copy of value by key, base.ErrBundleNotFound if there is no such key
func (s *Storage) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(BucketName)
		if bucket == nil {
			return base.ErrBundleNotFound
		}
		value := bucket.Get([]byte(path))
		if value == nil {
			return base.ErrBundleNotFound
		}
		// value is valid only inside transaction
		data = append([]byte(nil), value...)
		return nil
	})
	return data, err
}

// WriteFile puts value by key, perm is ignored
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(BucketName)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(path), data)
	})
}

// Close closes database
func (s *Storage) Close() error {
	return s.db.Close()
}
