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
// Package base declares interfaces implemented by policy bundle storages
package base

import (
	"errors"
	"flag"
	"os"
)

// ErrBundleNotFound returned by storages when there is no bundle by path
var ErrBundleNotFound = errors.New("policy bundle not found")

// Storage reads and writes policy bundles
type Storage interface {
	// GetBundlePath returns configured path (key) of policy bundle
	GetBundlePath() string
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	Close() error
}

// StorageCreator creates Storage configured with CLI flags
type StorageCreator interface {
	NewStorage(flags *flag.FlagSet, prefix string) (Storage, error)
	RegisterCLIParameters(flags *flag.FlagSet, prefix, description string)
	IsStorageConfigured(flags *flag.FlagSet, prefix string) bool
}
