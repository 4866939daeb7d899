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
package connection

import (
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
)

// DefaultMySQLPort used when neither connect arguments nor defaults set port
const DefaultMySQLPort = 3306

// MySQLDefaults are server-side defaults used for missing connect arguments (mysqli.default_* settings)
type MySQLDefaults struct {
	Host   string `yaml:"host"`
	User   string `yaml:"user"`
	Port   int    `yaml:"port"`
	Socket string `yaml:"socket"`
}

// MySQLArgs are discrete connect arguments, zero values mean "not passed"
type MySQLArgs struct {
	Host   string
	User   string
	Port   int
	Socket string
}

// InitMySQL returns descriptor of mysql connection made with discrete arguments
func InitMySQL(args MySQLArgs, defaults MySQLDefaults) *Descriptor {
	defaultPort := defaults.Port
	if defaultPort <= 0 {
		defaultPort = DefaultMySQLPort
	}
	descriptor := &Descriptor{
		ServerKind: ServerMySQL,
		Username:   args.User,
		Host:       args.Host,
		Port:       args.Port,
		Socket:     args.Socket,
	}
	if descriptor.Username == "" {
		descriptor.Username = defaults.User
	}
	if descriptor.Port == 0 {
		descriptor.Port = defaultPort
	}
	if descriptor.Host == "" {
		descriptor.Host = defaults.Host
	}
	if descriptor.Socket == "" {
		descriptor.Socket = defaults.Socket
	}
	// mysql client connects through socket when host is empty or localhost
	descriptor.UsingSocket = descriptor.Host == "" || descriptor.Host == LocalHost
	return descriptor
}

// ParseMySQLDSN returns descriptor of go-sql-driver/mysql DSN ("user:password@tcp(host:port)/db")
func ParseMySQLDSN(dsn string) (*Descriptor, error) {
	descriptor := &Descriptor{ServerKind: ServerMySQL, ConnectionString: dsn}
	config, err := mysql.ParseDSN(dsn)
	if err != nil {
		return descriptor, fmt.Errorf("%w: %v", ErrMalformedConnectionString, err)
	}
	descriptor.Username = config.User
	if config.Net == "unix" {
		descriptor.Host = LocalHost
		descriptor.Socket = config.Addr
		descriptor.UsingSocket = true
		return descriptor, nil
	}
	host, port, err := net.SplitHostPort(config.Addr)
	if err != nil {
		host = config.Addr
		port = ""
	}
	descriptor.Host = host
	descriptor.Port = DefaultMySQLPort
	if port != "" {
		if value, err := strconv.Atoi(port); err == nil {
			descriptor.Port = value
		}
	}
	descriptor.UsingSocket = host == "" || host == LocalHost
	return descriptor, nil
}
