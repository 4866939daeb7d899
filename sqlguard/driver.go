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
// Package sqlguard applies guard checks to any database/sql driver. Wrapped driver checks connection policy on
// connect, runs query checks before statements reach the database and reports failed queries.
//
//	sqlguard.Register("mysql-rasp", &mysql.MySQLDriver{}, connection.ServerMySQL, guard)
//	db, err := sql.Open("mysql-rasp", dsn)
//	rows, err := db.QueryContext(evaluator.WithRequestKey(ctx, requestKey), query)
package sqlguard

import (
	"context"
	"database/sql"
	"database/sql/driver"

	"github.com/cossacklabs/acra-rasp/guard"
)

// Driver wraps driver.Driver
type Driver struct {
	driver     driver.Driver
	serverKind string
	guard      *guard.Guard
}

// Wrap returns driver which checks operations of wrapped driver with guard
func Wrap(wrapped driver.Driver, serverKind string, guard *guard.Guard) *Driver {
	return &Driver{driver: wrapped, serverKind: serverKind, guard: guard}
}

// Register wraps driver and registers it in database/sql with name
func Register(name string, wrapped driver.Driver, serverKind string, guard *guard.Guard) {
	sql.Register(name, Wrap(wrapped, serverKind, guard))
}

// Open opens connection without request context
func (d *Driver) Open(name string) (driver.Conn, error) {
	return d.connect(context.Background(), name, func(context.Context) (driver.Conn, error) {
		return d.driver.Open(name)
	})
}

// OpenConnector returns connector which passes context of database/sql calls to checks
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	connector := &Connector{driver: d, name: name}
	if driverContext, ok := d.driver.(driver.DriverContext); ok {
		wrapped, err := driverContext.OpenConnector(name)
		if err != nil {
			return nil, err
		}
		connector.connector = wrapped
	}
	return connector, nil
}

func (d *Driver) connect(ctx context.Context, name string, open func(context.Context) (driver.Conn, error)) (driver.Conn, error) {
	init := d.guard.DSNInit(d.serverKind, name)
	if err := d.guard.PreConnect(ctx, init); err != nil {
		return nil, err
	}
	conn, err := open(ctx)
	d.guard.PostConnect(ctx, init, err == nil)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn, serverKind: d.serverKind, guard: d.guard}, nil
}

// Connector implements driver.Connector
type Connector struct {
	driver    *Driver
	name      string
	connector driver.Connector
}

// Connect opens checked connection
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	return c.driver.connect(ctx, c.name, func(ctx context.Context) (driver.Conn, error) {
		if c.connector != nil {
			return c.connector.Connect(ctx)
		}
		return c.driver.driver.Open(c.name)
	})
}

// Driver returns wrapping driver
func (c *Connector) Driver() driver.Driver {
	return c.driver
}
