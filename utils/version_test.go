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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	version, err := ParseVersion("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, &Version{Major: 1, Minor: 2, Patch: 3}, version)
	assert.Equal(t, "1.2.3", version.String())

	for _, invalid := range []string{"", "1.2", "1.2.3.4", "1.a.3", "-1.2.3"} {
		_, err := ParseVersion(invalid)
		assert.Equal(t, ErrInvalidVersionFormat, err, invalid)
	}
}

func TestVersionCompare(t *testing.T) {
	testcases := []struct {
		left, right string
		expected    ComparisonStatus
	}{
		{"1.2.3", "1.2.3", Equal},
		{"1.2.3", "1.2.4", Less},
		{"1.2.4", "1.2.3", Greater},
		{"1.3.0", "1.2.9", Greater},
		{"0.9.9", "1.0.0", Less},
	}
	for _, tcase := range testcases {
		left, err := ParseVersion(tcase.left)
		require.NoError(t, err)
		right, err := ParseVersion(tcase.right)
		require.NoError(t, err)
		assert.Equal(t, tcase.expected, left.Compare(right), "%s vs %s", tcase.left, tcase.right)
	}
}

func TestCurrentVersion(t *testing.T) {
	_, err := GetParsedVersion()
	require.NoError(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList(" a, ,b,"))
	assert.Nil(t, SplitList(""))
}

func TestIsSupportedVersion(t *testing.T) {
	supported, err := IsSupportedVersion("0.2.0", "0.1.0")
	require.NoError(t, err)
	assert.True(t, supported)

	supported, err = IsSupportedVersion("0.1.0", "0.1.0")
	require.NoError(t, err)
	assert.True(t, supported)

	supported, err = IsSupportedVersion("0.0.9", "0.1.0")
	require.NoError(t, err)
	assert.False(t, supported)

	_, err = IsSupportedVersion("", "0.1.0")
	assert.Equal(t, ErrInvalidVersionFormat, err)
}
