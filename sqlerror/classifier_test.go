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
package sqlerror

import (
	"context"
	"database/sql/driver"
	"fmt"
	"testing"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDefaultClassifier(t *testing.T) {
	classifier := NewDefaultClassifier()
	for _, code := range DefaultMySQLCodes {
		if !classifier.IsAlarmWorthy("mysql", code) {
			t.Fatalf("Expected alarm for mysql code %s", code)
		}
	}
	for _, code := range DefaultPgSQLCodes {
		if !classifier.IsAlarmWorthy("pgsql", code) {
			t.Fatalf("Expected alarm for pgsql code %s", code)
		}
	}
	// duplicate entry and unique violation are routine application errors
	assert.False(t, classifier.IsAlarmWorthy("mysql", "1062"))
	assert.False(t, classifier.IsAlarmWorthy("pgsql", "23505"))
	// codes don't leak between server kinds
	assert.False(t, classifier.IsAlarmWorthy("pgsql", "1064"))
	assert.False(t, classifier.IsAlarmWorthy("oracle", "1064"))
	assert.True(t, classifier.IsAlarmWorthy("PGSQL", "22p02"))
	assert.True(t, classifier.IsAlarmWorthy("mysql", " 1064 "))
}

func TestCustomClassifier(t *testing.T) {
	classifier := NewClassifier(map[string][]string{"mysql": {"1146", "1054"}})
	assert.True(t, classifier.IsAlarmWorthy("mysql", "1146"))
	assert.False(t, classifier.IsAlarmWorthy("mysql", "1064"))
	assert.Equal(t, []string{"1054", "1146"}, classifier.Codes("mysql"))
	assert.Empty(t, classifier.Codes("pgsql"))

	empty := NewClassifier(nil)
	assert.False(t, empty.IsAlarmWorthy("mysql", "1064"))
}

func TestDefaultCodesAreCopied(t *testing.T) {
	codes := DefaultCodes()
	codes["mysql"][0] = "0"
	assert.Equal(t, "1060", DefaultMySQLCodes[0])
}

func TestBuildAlarm(t *testing.T) {
	event := BuildAlarm("mysql", "select 1'", "1064", "syntax error")
	assert.Equal(t, alarm.Event{ServerKind: "mysql", Query: "select 1'", ErrorCode: "1064", ErrorMessage: "syntax error"}, event)
}

func TestFromDriverError(t *testing.T) {
	testcases := []struct {
		err      error
		expected DriverError
		ok       bool
	}{
		{&mysql.MySQLError{Number: 1064, Message: "syntax"}, DriverError{"mysql", "1064", "syntax"}, true},
		{fmt.Errorf("query: %w", &mysql.MySQLError{Number: 1690, Message: "out of range"}), DriverError{"mysql", "1690", "out of range"}, true},
		{&pq.Error{Code: "42601", Message: "syntax error at or near"}, DriverError{"pgsql", "42601", "syntax error at or near"}, true},
		{&pgconn.PgError{Code: "22P02", Message: "invalid input syntax"}, DriverError{"pgsql", "22P02", "invalid input syntax"}, true},
		{driver.ErrBadConn, DriverError{}, false},
		{context.Canceled, DriverError{}, false},
		{nil, DriverError{}, false},
	}
	for i, tcase := range testcases {
		result, ok := FromDriverError(tcase.err)
		assert.Equal(t, tcase.ok, ok, "[%d]", i)
		assert.Equal(t, tcase.expected, result, "[%d]", i)
	}
}
