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
// Package connection builds normalized descriptors of database connection attempts from driver arguments
// and applies the connection policy to them.
package connection

import (
	"fmt"
)

// Server kinds
const (
	ServerMySQL = "mysql"
	ServerPgSQL = "pgsql"
)

// LocalHost is the host name treated as local socket connection
const LocalHost = "localhost"

// Descriptor is normalized representation of one connection attempt
type Descriptor struct {
	ServerKind  string
	Username    string
	Host        string
	Port        int
	UsingSocket bool
	// Socket is unix socket path passed to mysql drivers
	Socket string
	// ConnectionString is raw DSN, empty when driver accepts discrete arguments
	ConnectionString string
}

// Address returns host:port or socket path
func (descriptor *Descriptor) Address() string {
	if descriptor.Socket != "" {
		return descriptor.Socket
	}
	if descriptor.Port == 0 {
		return descriptor.Host
	}
	return fmt.Sprintf("%s:%d", descriptor.Host, descriptor.Port)
}

// String returns description without connection string which may contain password
func (descriptor *Descriptor) String() string {
	return fmt.Sprintf("%s://%s@%s (socket=%v)", descriptor.ServerKind, descriptor.Username, descriptor.Address(), descriptor.UsingSocket)
}
