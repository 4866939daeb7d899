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
// Package sqlerror decides whether failed SQL operation is worth an alarm and builds alarm payload.
package sqlerror

import (
	"sort"
	"strings"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/cossacklabs/acra-rasp/connection"
)

// Default error codes. Syntax and type errors are typical for injection probes,
// application level errors (duplicate keys, constraint violations) are suppressed.
var (
	// DefaultMySQLCodes are mysql error numbers
	DefaultMySQLCodes = []string{"1060", "1064", "1105", "1367", "1690"}
	// DefaultPgSQLCodes are SQLSTATE codes
	DefaultPgSQLCodes = []string{"42601", "22P02", "42804", "42846"}
)

// DefaultCodes returns default codes per server kind
func DefaultCodes() map[string][]string {
	return map[string][]string{
		connection.ServerMySQL: append([]string(nil), DefaultMySQLCodes...),
		connection.ServerPgSQL: append([]string(nil), DefaultPgSQLCodes...),
	}
}

// Classifier filters error codes. It's immutable and safe for concurrent use.
type Classifier struct {
	codes map[string]map[string]struct{}
}

// NewClassifier returns classifier accepting codes per server kind. Server kinds are case insensitive,
// SQLSTATE codes are compared in upper case.
func NewClassifier(codes map[string][]string) *Classifier {
	classifier := &Classifier{codes: make(map[string]map[string]struct{}, len(codes))}
	for kind, kindCodes := range codes {
		kind = strings.ToLower(kind)
		set := classifier.codes[kind]
		if set == nil {
			set = make(map[string]struct{}, len(kindCodes))
			classifier.codes[kind] = set
		}
		for _, code := range kindCodes {
			set[normalizeCode(code)] = struct{}{}
		}
	}
	return classifier
}

// NewDefaultClassifier returns classifier with DefaultCodes
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultCodes())
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsAlarmWorthy returns true if code is configured for server kind
func (classifier *Classifier) IsAlarmWorthy(serverKind, code string) bool {
	set, ok := classifier.codes[strings.ToLower(serverKind)]
	if !ok {
		return false
	}
	_, ok = set[normalizeCode(code)]
	return ok
}

// Codes returns sorted codes configured for server kind
func (classifier *Classifier) Codes(serverKind string) []string {
	set := classifier.codes[strings.ToLower(serverKind)]
	codes := make([]string, 0, len(set))
	for code := range set {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// BuildAlarm returns alarm event for failed query
func BuildAlarm(serverKind, query, code, message string) alarm.Event {
	return alarm.Event{
		ServerKind:   serverKind,
		Query:        query,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}
