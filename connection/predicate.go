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
	"strings"
)

// AnyServerKind used as denylist key applies to every server kind
const AnyServerKind = "*"

// ViolationPredicate returns true if connecting with username to server kind violates connection policy
type ViolationPredicate func(serverKind, username string) bool

// NewDenylistPredicate returns predicate which reports usernames listed for the server kind or for AnyServerKind.
// Server kinds are case insensitive, usernames are compared as is.
func NewDenylistPredicate(denylist map[string][]string) ViolationPredicate {
	users := make(map[string]map[string]struct{}, len(denylist))
	for kind, names := range denylist {
		kind = strings.ToLower(kind)
		if users[kind] == nil {
			users[kind] = make(map[string]struct{}, len(names))
		}
		for _, name := range names {
			users[kind][name] = struct{}{}
		}
	}
	return func(serverKind, username string) bool {
		if _, ok := users[AnyServerKind][username]; ok {
			return true
		}
		_, ok := users[strings.ToLower(serverKind)][username]
		return ok
	}
}

// NopPredicate never reports violation
func NopPredicate(serverKind, username string) bool {
	return false
}
