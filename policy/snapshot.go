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

package policy

// Whitelist size budget. Sizes are expressed in four-byte units of the compiled matcher.
const (
	whitelistUnitSize     = 4
	whitelistRulesPerType = 10 * 200
	whitelistOverhead     = 128 * 2
)

// MaxWhitelistSize is the largest whitelist (in bytes) the store accepts
const MaxWhitelistSize = (int(CheckTypeAll)*whitelistRulesPerType + whitelistOverhead) * whitelistUnitSize

// Snapshot is an immutable version of the whole policy configuration. Snapshots are never modified after
// they were installed into a Store, every change produces a new one.
type Snapshot struct {
	updateTime    int64
	logMaxBackup  int64
	debugLevel    int64
	enforcePolicy bool
	actions       [CheckTypeAll]ActionType
	whitelist     []byte
}

func newDefaultSnapshot() *Snapshot {
	snapshot := &Snapshot{}
	for i := range snapshot.actions {
		snapshot.actions[i] = DefaultAction
	}
	return snapshot
}

// clone returns shallow copy. Whitelist is shared because it's never mutated in place.
func (s *Snapshot) clone() *Snapshot {
	newSnapshot := *s
	return &newSnapshot
}

// Action returns configured action for check type, ActionIgnore for invalid types
func (s *Snapshot) Action(t CheckType) ActionType {
	if !t.IsValid() {
		return ActionIgnore
	}
	return s.actions[t]
}

// Whitelist returns compiled whitelist. Returned slice is shared between readers and must not be modified.
func (s *Snapshot) Whitelist() []byte {
	return s.whitelist
}

// WhitelistSize returns size of compiled whitelist in bytes
func (s *Snapshot) WhitelistSize() int {
	return len(s.whitelist)
}

// UpdateTime returns time of the configuration this snapshot was built from
func (s *Snapshot) UpdateTime() int64 {
	return s.updateTime
}

// LogMaxBackup returns how many rotated log files should be kept
func (s *Snapshot) LogMaxBackup() int64 {
	return s.logMaxBackup
}

// DebugLevel returns configured debug level
func (s *Snapshot) DebugLevel() int64 {
	return s.debugLevel
}

// EnforcePolicy returns true if connection policy checks should run before the operation and may block it
func (s *Snapshot) EnforcePolicy() bool {
	return s.enforcePolicy
}

// Update describes full configuration installed by Store.Apply. Check types missing in Actions get DefaultAction.
type Update struct {
	UpdateTime    int64
	LogMaxBackup  int64
	DebugLevel    int64
	EnforcePolicy bool
	Actions       map[CheckType]ActionType
	Whitelist     []byte
}
