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
	"errors"

	"github.com/cossacklabs/acra-rasp/guard"
	"github.com/cossacklabs/acra-rasp/policy"
)

// ErrNamedArgsNotSupported returned when wrapped statement can't accept named arguments
var ErrNamedArgsNotSupported = errors.New("wrapped driver doesn't support named arguments")

// Conn wraps driver.Conn
type Conn struct {
	conn       driver.Conn
	serverKind string
	guard      *guard.Guard
	// query already checked as sql which wrapped connection refused with driver.ErrSkip. database/sql prepares
	// it next on the same connection.
	skippedQuery string
}

// Prepare prepares statement without request context
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext checks query as sql_prepared before preparing it
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	checked := c.skippedQuery != "" && c.skippedQuery == query
	c.skippedQuery = ""
	if !checked {
		if err := c.guard.PreQuery(ctx, policy.CheckTypeSQLPrepared, c.serverKind, query); err != nil {
			return nil, err
		}
	}
	var stmt driver.Stmt
	var err error
	if preparer, ok := c.conn.(driver.ConnPrepareContext); ok {
		stmt, err = preparer.PrepareContext(ctx, query)
	} else {
		stmt, err = c.conn.Prepare(query)
	}
	if err != nil {
		c.guard.PostQuery(ctx, c.serverKind, query, err)
		return nil, err
	}
	return &Stmt{stmt: stmt, query: query, conn: c}, nil
}

// QueryContext checks query as sql. Returns driver.ErrSkip if wrapped connection can't query directly, then
// database/sql prepares the query and it's checked as sql_prepared. If wrapped connection itself returns
// driver.ErrSkip, the following prepare of the same query isn't checked again.
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	queryer, ok := c.conn.(driver.QueryerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	if err := c.guard.PreQuery(ctx, policy.CheckTypeSQL, c.serverKind, query); err != nil {
		return nil, err
	}
	rows, err := queryer.QueryContext(ctx, query, args)
	c.afterDirectQuery(ctx, query, err)
	return rows, err
}

// ExecContext checks query as sql, see QueryContext
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	execer, ok := c.conn.(driver.ExecerContext)
	if !ok {
		return nil, driver.ErrSkip
	}
	if err := c.guard.PreQuery(ctx, policy.CheckTypeSQL, c.serverKind, query); err != nil {
		return nil, err
	}
	result, err := execer.ExecContext(ctx, query, args)
	c.afterDirectQuery(ctx, query, err)
	return result, err
}

func (c *Conn) afterDirectQuery(ctx context.Context, query string, err error) {
	if errors.Is(err, driver.ErrSkip) {
		c.skippedQuery = query
		return
	}
	c.postQuery(ctx, query, err)
}

func (c *Conn) postQuery(ctx context.Context, query string, err error) {
	// driver asked to fall back to prepared statement, it's not a server error
	if err == nil || errors.Is(err, driver.ErrSkip) {
		return
	}
	c.guard.PostQuery(ctx, c.serverKind, query, err)
}

// Begin starts transaction
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts transaction with options if wrapped connection supports them
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if beginner, ok := c.conn.(driver.ConnBeginTx); ok {
		return beginner.BeginTx(ctx, opts)
	}
	//lint:ignore SA1019 fallback for drivers without ConnBeginTx
	return c.conn.Begin() //nolint:staticcheck
}

// Close closes wrapped connection
func (c *Conn) Close() error {
	return c.conn.Close()
}

// Ping pings wrapped connection if it supports it
func (c *Conn) Ping(ctx context.Context) error {
	if pinger, ok := c.conn.(driver.Pinger); ok {
		return pinger.Ping(ctx)
	}
	return nil
}

// ResetSession resets wrapped connection if it supports it
func (c *Conn) ResetSession(ctx context.Context) error {
	if resetter, ok := c.conn.(driver.SessionResetter); ok {
		return resetter.ResetSession(ctx)
	}
	return nil
}

// IsValid reports validity of wrapped connection if it supports it
func (c *Conn) IsValid() bool {
	if validator, ok := c.conn.(driver.Validator); ok {
		return validator.IsValid()
	}
	return true
}

// CheckNamedValue delegates argument conversion to wrapped connection
func (c *Conn) CheckNamedValue(value *driver.NamedValue) error {
	if checker, ok := c.conn.(driver.NamedValueChecker); ok {
		return checker.CheckNamedValue(value)
	}
	return driver.ErrSkip
}
