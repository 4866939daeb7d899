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
package guard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
version: 0.1.0
connection:
  denylist:
    mysql: [root]
    pgsql: [postgres]
  mysql_defaults:
    host: localhost
    port: 3306
  cache_size: 16
sql_error:
  codes:
    MySQL: ["1064", "1146"]
`

func TestParseConfig(t *testing.T) {
	config, err := ParseConfig([]byte(testConfig))
	require.NoError(t, err)
	assert.Equal(t, []string{"root"}, config.Connection.Denylist["mysql"])
	assert.Equal(t, "localhost", config.Connection.MySQLDefaults.Host)
	assert.Equal(t, 16, config.Connection.CacheSize)

	predicate := config.Predicate()
	assert.True(t, predicate("mysql", "root"))
	assert.True(t, predicate("pgsql", "postgres"))
	assert.False(t, predicate("pgsql", "root"))

	classifier := config.Classifier()
	assert.True(t, classifier.IsAlarmWorthy("mysql", "1146"))
	// configured codes replace defaults of the kind
	assert.False(t, classifier.IsAlarmWorthy("mysql", "1690"))
	// other kinds keep defaults
	assert.True(t, classifier.IsAlarmWorthy("pgsql", "42601"))
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.False(t, config.Predicate()("mysql", "root"))
	assert.True(t, config.Classifier().IsAlarmWorthy("mysql", "1064"))
}

func TestParseConfigVersion(t *testing.T) {
	_, err := ParseConfig([]byte("version: 0.0.1\n"))
	assert.Equal(t, ErrUnsupportedConfigVersion, err)
	_, err = ParseConfig([]byte("connection: {}\n"))
	assert.Error(t, err)
	_, err = ParseConfig([]byte("version: [\n"))
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "guard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Len(t, config.Connection.Denylist, 2)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
