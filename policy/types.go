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

// Package policy holds the process-wide RASP policy: the set of inspected operation categories (check types),
// the enforcement outcome configured for each of them (actions) and the compiled whitelist. Configuration is
// published as immutable snapshots so that every intercepted call reads one consistent version of it.
package policy

import (
	"errors"
	"strings"
)

// CheckType is a category of security-sensitive operation subject to policy.
type CheckType int

// Check types. Only values strictly between CheckTypeInvalid and CheckTypeAll are valid.
const (
	CheckTypeInvalid CheckType = iota - 1
	CheckTypeSQL
	CheckTypeSQLPrepared
	CheckTypeSQLError
	CheckTypeDBConnection
	// CheckTypeAll is the count of valid check types
	CheckTypeAll
)

var checkTypeNames = [CheckTypeAll]string{
	CheckTypeSQL:          "sql",
	CheckTypeSQLPrepared:  "sql_prepared",
	CheckTypeSQLError:     "sql_exception",
	CheckTypeDBConnection: "db_connection",
}

// IsValid returns true if t may be used as a lookup or store key
func (t CheckType) IsValid() bool {
	return t > CheckTypeInvalid && t < CheckTypeAll
}

// String returns configuration name of check type
func (t CheckType) String() string {
	if !t.IsValid() {
		return "invalid"
	}
	return checkTypeNames[t]
}

// ParseCheckType returns check type by its configuration name or CheckTypeInvalid for unknown names
func ParseCheckType(name string) CheckType {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, typeName := range checkTypeNames {
		if typeName == name {
			return CheckType(t)
		}
	}
	return CheckTypeInvalid
}

// ValidCheckTypes returns all valid check types in ascending order
func ValidCheckTypes() []CheckType {
	types := make([]CheckType, 0, int(CheckTypeAll))
	for t := CheckTypeInvalid + 1; t < CheckTypeAll; t++ {
		types = append(types, t)
	}
	return types
}

// ActionType is the enforcement outcome of a check
type ActionType int

// Actions
const (
	ActionIgnore ActionType = iota
	ActionLog
	ActionBlock
)

// DefaultAction used for every check type that wasn't configured explicitly
const DefaultAction = ActionLog

// ErrUnknownAction returned for action names that aren't ignore/log/block
var ErrUnknownAction = errors.New("unknown action")

// String returns configuration name of action
func (a ActionType) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionLog:
		return "log"
	case ActionBlock:
		return "block"
	}
	return "unknown"
}

// IsValid returns true for ignore, log and block
func (a ActionType) IsValid() bool {
	return a >= ActionIgnore && a <= ActionBlock
}

// ParseActionType returns action by its configuration name
func ParseActionType(name string) (ActionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ignore":
		return ActionIgnore, nil
	case "log":
		return ActionLog, nil
	case "block":
		return ActionBlock, nil
	}
	return ActionIgnore, ErrUnknownAction
}
