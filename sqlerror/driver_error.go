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
	"errors"
	"strconv"

	"github.com/cossacklabs/acra-rasp/connection"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// DriverError is server error extracted from database driver error
type DriverError struct {
	ServerKind string
	Code       string
	Message    string
}

// FromDriverError extracts server kind, code and message from go-sql-driver/mysql, lib/pq and pgx errors.
// Returns false for other errors (network errors, driver.ErrBadConn, context cancellation).
func FromDriverError(err error) (DriverError, bool) {
	if err == nil {
		return DriverError{}, false
	}
	var mysqlError *mysql.MySQLError
	if errors.As(err, &mysqlError) {
		return DriverError{
			ServerKind: connection.ServerMySQL,
			Code:       strconv.FormatUint(uint64(mysqlError.Number), 10),
			Message:    mysqlError.Message,
		}, true
	}
	var pqError *pq.Error
	if errors.As(err, &pqError) {
		return DriverError{ServerKind: connection.ServerPgSQL, Code: string(pqError.Code), Message: pqError.Message}, true
	}
	var pgError *pgconn.PgError
	if errors.As(err, &pgError) {
		return DriverError{ServerKind: connection.ServerPgSQL, Code: pgError.Code, Message: pgError.Message}, true
	}
	return DriverError{}, false
}
