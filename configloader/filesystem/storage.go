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
// Package filesystem stores policy bundle in local file
package filesystem

import (
	"errors"
	"flag"
	"os"
	"path/filepath"

	"github.com/cossacklabs/acra-rasp/configloader/base"
	log "github.com/sirupsen/logrus"
)

// StorageCreator creates filesystem Storage
type StorageCreator struct{}

// NewStorage creates Storage from FlagSet
func (StorageCreator) NewStorage(flags *flag.FlagSet, prefix string) (base.Storage, error) {
	cliOptions := ParseCLIParametersFromFlags(flags, prefix)
	log.Infof("Load policy bundle from %s ...", cliOptions.BundleFile)
	return NewStorage(cliOptions.BundleFile), nil
}

// IsStorageConfigured returns true if bundle file flag was provided
func (StorageCreator) IsStorageConfigured(flags *flag.FlagSet, prefix string) bool {
	return ParseCLIParametersFromFlags(flags, prefix).BundleFile != ""
}

// RegisterCLIParameters registers CLI flags of filesystem storage
func (StorageCreator) RegisterCLIParameters(flags *flag.FlagSet, prefix, description string) {
	RegisterCLIParametersWithFlagSet(flags, prefix, description)
}

// Storage keeps bundle in file
type Storage struct {
	bundleFile string
}

// NewStorage returns Storage for file
func NewStorage(bundleFile string) *Storage {
	return &Storage{bundleFile: bundleFile}
}

// GetBundlePath returns path of bundle file
func (s *Storage) GetBundlePath() string {
	return s.bundleFile
}

// ReadFile reads file content, base.ErrBundleNotFound if it doesn't exist
func (s *Storage) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, base.ErrBundleNotFound
	}
	return data, err
}

// WriteFile replaces file with data. Data written to temporary file first so readers never see partial bundle.
func (s *Storage) WriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Close does nothing
func (s *Storage) Close() error {
	return nil
}
