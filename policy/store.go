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

import (
	"sync"
	"sync/atomic"

	"github.com/cossacklabs/acra-rasp/logging"
	log "github.com/sirupsen/logrus"
)

// ServiceName to use in logs
const ServiceName = "rasp-policy"

// Store is the shared policy configuration. Readers load the current snapshot without locks,
// writers build a new snapshot from a copy of the current one and swap the pointer.
type Store struct {
	current   atomic.Pointer[Snapshot]
	writeLock sync.Mutex
	logger    *log.Entry
}

// NewStore returns store with default configuration: every check type logs, whitelist is empty
func NewStore() *Store {
	store := &Store{logger: log.WithField("service", ServiceName)}
	store.current.Store(newDefaultSnapshot())
	return store
}

// Snapshot returns current configuration
func (store *Store) Snapshot() *Snapshot {
	return store.current.Load()
}

// update applies modify to a copy of the current snapshot and installs it. Nothing is installed if modify returns false.
func (store *Store) update(modify func(next *Snapshot) bool) bool {
	store.writeLock.Lock()
	defer store.writeLock.Unlock()
	next := store.current.Load().clone()
	if !modify(next) {
		return false
	}
	store.current.Store(next)
	return true
}

// GetAction returns configured action for check type. Invalid check types get ActionIgnore.
func (store *Store) GetAction(t CheckType) ActionType {
	return store.Snapshot().Action(t)
}

// SetAction sets action for check type. Invalid check types are ignored.
func (store *Store) SetAction(t CheckType, action ActionType) {
	if !t.IsValid() {
		store.logger.WithField("check_type", int(t)).Debugln("Ignore action for invalid check type")
		return
	}
	if !action.IsValid() {
		store.logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPolicyInvalidAction).
			WithField("action", int(action)).Warningln("Ignore invalid action")
		return
	}
	store.update(func(next *Snapshot) bool {
		next.actions[t] = action
		return true
	})
}

// ReplaceWhitelist installs a copy of data as the compiled whitelist. Returns false and keeps the previous
// whitelist if data is longer than MaxWhitelistSize.
func (store *Store) ReplaceWhitelist(data []byte) bool {
	if len(data) > MaxWhitelistSize {
		store.logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPolicyWhitelistTooLarge).
			WithField("size", len(data)).Warningln("Whitelist exceeds maximal size, keep previous one")
		rejectedUpdatesCounter.Inc()
		return false
	}
	whitelist := make([]byte, len(data))
	copy(whitelist, data)
	return store.update(func(next *Snapshot) bool {
		next.whitelist = whitelist
		return true
	})
}

// GetWhitelist returns copy of compiled whitelist and its size
func (store *Store) GetWhitelist() ([]byte, int) {
	snapshot := store.Snapshot()
	whitelist := make([]byte, len(snapshot.whitelist))
	copy(whitelist, snapshot.whitelist)
	return whitelist, len(whitelist)
}

// GetUpdateTime returns time of last configuration update
func (store *Store) GetUpdateTime() int64 {
	return store.Snapshot().updateTime
}

// SetUpdateTime sets time of last configuration update
func (store *Store) SetUpdateTime(updateTime int64) {
	store.update(func(next *Snapshot) bool {
		next.updateTime = updateTime
		return true
	})
}

// GetLogMaxBackup returns log retention count
func (store *Store) GetLogMaxBackup() int64 {
	return store.Snapshot().logMaxBackup
}

// SetLogMaxBackup sets log retention count
func (store *Store) SetLogMaxBackup(logMaxBackup int64) {
	store.update(func(next *Snapshot) bool {
		next.logMaxBackup = logMaxBackup
		return true
	})
}

// GetDebugLevel returns debug level
func (store *Store) GetDebugLevel() int64 {
	return store.Snapshot().debugLevel
}

// SetDebugLevel sets debug level
func (store *Store) SetDebugLevel(debugLevel int64) {
	store.update(func(next *Snapshot) bool {
		next.debugLevel = debugLevel
		return true
	})
}

// GetEnforcePolicy returns enforce_policy flag
func (store *Store) GetEnforcePolicy() bool {
	return store.Snapshot().enforcePolicy
}

// SetEnforcePolicy sets enforce_policy flag
func (store *Store) SetEnforcePolicy(enforce bool) {
	store.update(func(next *Snapshot) bool {
		next.enforcePolicy = enforce
		return true
	})
}

// Apply installs whole configuration at once. Returns ErrWhitelistTooLarge and keeps current snapshot if
// the whitelist doesn't fit.
func (store *Store) Apply(update *Update) error {
	if update == nil {
		return ErrEmptyUpdate
	}
	if len(update.Whitelist) > MaxWhitelistSize {
		store.logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPolicyWhitelistTooLarge).
			WithField("size", len(update.Whitelist)).Warningln("Rejected policy update with too large whitelist")
		rejectedUpdatesCounter.Inc()
		return ErrWhitelistTooLarge
	}
	next := newDefaultSnapshot()
	next.updateTime = update.UpdateTime
	next.logMaxBackup = update.LogMaxBackup
	next.debugLevel = update.DebugLevel
	next.enforcePolicy = update.EnforcePolicy
	for t, action := range update.Actions {
		if !t.IsValid() || !action.IsValid() {
			continue
		}
		next.actions[t] = action
	}
	next.whitelist = make([]byte, len(update.Whitelist))
	copy(next.whitelist, update.Whitelist)

	store.writeLock.Lock()
	store.current.Store(next)
	store.writeLock.Unlock()
	appliedUpdatesCounter.Inc()
	store.logger.WithField("update_time", update.UpdateTime).WithField("whitelist_size", len(next.whitelist)).Debugln("Applied policy update")
	return nil
}
