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
package sqlguard

import (
	"context"
	"database/sql/driver"
)

// Stmt wraps prepared statement and reports its failed executions
type Stmt struct {
	stmt  driver.Stmt
	query string
	conn  *Conn
}

// Close closes wrapped statement
func (s *Stmt) Close() error {
	return s.stmt.Close()
}

// NumInput returns number of placeholders of wrapped statement
func (s *Stmt) NumInput() int {
	return s.stmt.NumInput()
}

// Exec executes statement
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	//lint:ignore SA1019 required by driver.Stmt
	result, err := s.stmt.Exec(args) //nolint:staticcheck
	s.conn.postQuery(context.Background(), s.query, err)
	return result, err
}

// Query executes query statement
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	//lint:ignore SA1019 required by driver.Stmt
	rows, err := s.stmt.Query(args) //nolint:staticcheck
	s.conn.postQuery(context.Background(), s.query, err)
	return rows, err
}

// ExecContext executes statement with context
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	var result driver.Result
	var err error
	if execer, ok := s.stmt.(driver.StmtExecContext); ok {
		result, err = execer.ExecContext(ctx, args)
	} else {
		var values []driver.Value
		values, err = namedValuesToValues(args)
		if err != nil {
			return nil, err
		}
		//lint:ignore SA1019 fallback for statements without StmtExecContext
		result, err = s.stmt.Exec(values) //nolint:staticcheck
	}
	s.conn.postQuery(ctx, s.query, err)
	return result, err
}

// QueryContext executes query statement with context
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	var rows driver.Rows
	var err error
	if queryer, ok := s.stmt.(driver.StmtQueryContext); ok {
		rows, err = queryer.QueryContext(ctx, args)
	} else {
		var values []driver.Value
		values, err = namedValuesToValues(args)
		if err != nil {
			return nil, err
		}
		//lint:ignore SA1019 fallback for statements without StmtQueryContext
		rows, err = s.stmt.Query(values) //nolint:staticcheck
	}
	s.conn.postQuery(ctx, s.query, err)
	return rows, err
}

func namedValuesToValues(args []driver.NamedValue) ([]driver.Value, error) {
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			return nil, ErrNamedArgsNotSupported
		}
		values[i] = arg.Value
	}
	return values, nil
}
