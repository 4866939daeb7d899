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

// Package utils contains small helpers shared by acra-rasp packages and tools.
package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// VERSION is current acra-rasp version
// store it as string to change it via -ldflags "-X github.com/cossacklabs/acra-rasp/utils.VERSION=X.X.X"
var VERSION = "0.1.0"

// Version is MAJOR.MINOR.PATCH version of acra-rasp, its configs and policy bundles
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ComparisonStatus is result of Version.Compare
type ComparisonStatus int

// Comparison results
const (
	Less    ComparisonStatus = iota - 1 // -1
	Equal                               // 0
	Greater                             // 1
)

func (v *Version) parts() [3]uint32 {
	return [3]uint32{v.Major, v.Minor, v.Patch}
}

// Compare returns Less if v is older than other, Greater if newer
func (v *Version) Compare(other *Version) ComparisonStatus {
	left, right := v.parts(), other.parts()
	for i := range left {
		if left[i] < right[i] {
			return Less
		}
		if left[i] > right[i] {
			return Greater
		}
	}
	return Equal
}

func (v *Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ErrInvalidVersionFormat returned for versions not in MAJOR.MINOR.PATCH format
var ErrInvalidVersionFormat = errors.New("version value has incorrect format, MAJOR.MINOR.PATCH expected")

// ParseVersion parses "MAJOR.MINOR.PATCH" string
func ParseVersion(version string) (*Version, error) {
	fields := strings.Split(strings.TrimSpace(version), ".")
	if len(fields) != 3 {
		return nil, ErrInvalidVersionFormat
	}
	var values [3]uint32
	for i, field := range fields {
		value, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, ErrInvalidVersionFormat
		}
		values[i] = uint32(value)
	}
	return &Version{Major: values[0], Minor: values[1], Patch: values[2]}, nil
}

// GetParsedVersion returns VERSION of the running binary
func GetParsedVersion() (*Version, error) {
	return ParseVersion(VERSION)
}

// IsSupportedVersion returns false if version of config or bundle is older than minimal
func IsSupportedVersion(version, minimal string) (bool, error) {
	configVersion, err := ParseVersion(version)
	if err != nil {
		return false, err
	}
	minimalVersion, err := ParseVersion(minimal)
	if err != nil {
		return false, err
	}
	return configVersion.Compare(minimalVersion) != Less, nil
}
