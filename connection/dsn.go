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
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"
)

// ErrMalformedConnectionString returned when parsing stopped before the end of connection string.
// Fields parsed before the malformed part are kept.
var ErrMalformedConnectionString = errors.New("malformed connection string")

// ErrUnsupportedServerKind returned by Parse for server kinds other than mysql and pgsql
var ErrUnsupportedServerKind = errors.New("unsupported server kind")

// Recognized keys of key=value connection strings
const (
	KeyUser = "user"
	KeyHost = "host"
	KeyPort = "port"
)

// Pair is one key=value item of connection string
type Pair struct {
	Key   string
	Value string
}

// isSpace matches C isspace in default locale
func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// tokenizer is a cursor over immutable connection string
type tokenizer struct {
	input    string
	position int
}

func (t *tokenizer) skipSpaces() {
	for t.position < len(t.input) && isSpace(t.input[t.position]) {
		t.position++
	}
}

func (t *tokenizer) done() bool {
	return t.position >= len(t.input)
}

// key reads key up to "=" or whitespace. Whitespace between key and "=" is skipped.
func (t *tokenizer) key() (string, error) {
	start := t.position
	end := -1
	for !t.done() {
		c := t.input[t.position]
		if c == '=' {
			break
		}
		if isSpace(c) {
			end = t.position
			t.skipSpaces()
			break
		}
		t.position++
	}
	if end < 0 {
		end = t.position
	}
	if t.done() || t.input[t.position] != '=' {
		return "", ErrMalformedConnectionString
	}
	t.position++
	return t.input[start:end], nil
}

// quotedValue reads value after opening quote up to unescaped closing quote
func (t *tokenizer) quotedValue() (string, error) {
	var value strings.Builder
	for {
		if t.done() {
			return "", ErrMalformedConnectionString
		}
		c := t.input[t.position]
		switch c {
		case '\\':
			t.position++
			if !t.done() {
				value.WriteByte(t.input[t.position])
				t.position++
			}
		case '\'':
			t.position++
			return value.String(), nil
		default:
			value.WriteByte(c)
			t.position++
		}
	}
}

// plainValue reads value up to unescaped whitespace, terminating whitespace is consumed
func (t *tokenizer) plainValue() string {
	var value strings.Builder
	for !t.done() {
		c := t.input[t.position]
		if isSpace(c) {
			t.position++
			break
		}
		if c == '\\' {
			t.position++
			if !t.done() {
				value.WriteByte(t.input[t.position])
				t.position++
			}
			continue
		}
		value.WriteByte(c)
		t.position++
	}
	return value.String()
}

// next returns next pair, false when the whole string was read
func (t *tokenizer) next() (Pair, bool, error) {
	t.skipSpaces()
	if t.done() {
		return Pair{}, false, nil
	}
	key, err := t.key()
	if err != nil {
		return Pair{}, false, err
	}
	t.skipSpaces()
	var value string
	if !t.done() && t.input[t.position] == '\'' {
		t.position++
		value, err = t.quotedValue()
		if err != nil {
			return Pair{}, false, err
		}
	} else {
		value = t.plainValue()
	}
	return Pair{Key: key, Value: value}, true, nil
}

// Tokenize splits connection string into key=value pairs. On malformed input it returns pairs read before
// the malformed part together with ErrMalformedConnectionString.
func Tokenize(connectionString string) ([]Pair, error) {
	t := &tokenizer{input: connectionString}
	var pairs []Pair
	for {
		pair, ok, err := t.next()
		if err != nil {
			return pairs, err
		}
		if !ok {
			return pairs, nil
		}
		pairs = append(pairs, pair)
	}
}

// atoi converts leading decimal digits (after optional whitespace and sign) to int, 0 if there are none
func atoi(value string) int {
	i := 0
	for i < len(value) && isSpace(value[i]) {
		i++
	}
	negative := false
	if i < len(value) && (value[i] == '-' || value[i] == '+') {
		negative = value[i] == '-'
		i++
	}
	result := 0
	for ; i < len(value) && value[i] >= '0' && value[i] <= '9'; i++ {
		result = result*10 + int(value[i]-'0')
		// ports don't need more, keeps result far from overflow
		if result > math.MaxInt32 {
			result = math.MaxInt32
		}
	}
	if negative {
		return -result
	}
	return result
}

// ApplyPair sets descriptor field for recognized keys, unrecognized keys are ignored
func (descriptor *Descriptor) ApplyPair(pair Pair) {
	switch pair.Key {
	case KeyUser:
		descriptor.Username = pair.Value
	case KeyHost:
		descriptor.Host = pair.Value
		descriptor.UsingSocket = IsLocalHost(pair.Value)
	case KeyPort:
		descriptor.Port = atoi(pair.Value)
	}
}

// ParseConnectionString applies "key=value" connection string to descriptor. Malformed input stops parsing,
// fields set before it stay in descriptor and ErrMalformedConnectionString is returned.
func ParseConnectionString(connectionString string, descriptor *Descriptor) error {
	pairs, err := Tokenize(connectionString)
	for _, pair := range pairs {
		descriptor.ApplyPair(pair)
	}
	return err
}

func isPostgreSQLURL(connectionString string) bool {
	return strings.HasPrefix(connectionString, "postgres://") || strings.HasPrefix(connectionString, "postgresql://")
}

// ParsePostgreSQL returns descriptor of pgsql connection string. URL form is converted to key=value form first.
// Descriptor is returned even with error and contains fields parsed before malformed part.
func ParsePostgreSQL(connectionString string) (*Descriptor, error) {
	descriptor := &Descriptor{ServerKind: ServerPgSQL, ConnectionString: connectionString}
	dsn := connectionString
	if isPostgreSQLURL(connectionString) {
		converted, err := pq.ParseURL(connectionString)
		if err != nil {
			return descriptor, fmt.Errorf("%w: %v", ErrMalformedConnectionString, err)
		}
		dsn = converted
	}
	return descriptor, ParseConnectionString(dsn, descriptor)
}

// Parse returns descriptor of connection string for server kind
func Parse(serverKind, connectionString string) (*Descriptor, error) {
	switch serverKind {
	case ServerMySQL:
		return ParseMySQLDSN(connectionString)
	case ServerPgSQL:
		return ParsePostgreSQL(connectionString)
	}
	return &Descriptor{ServerKind: serverKind, ConnectionString: connectionString}, ErrUnsupportedServerKind
}
