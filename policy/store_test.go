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
	"bytes"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaxWhitelistSize(t *testing.T) {
	if MaxWhitelistSize != (4*2000+256)*4 {
		t.Fatalf("Unexpected max whitelist size %d", MaxWhitelistSize)
	}
}

func TestDefaultActions(t *testing.T) {
	store := NewStore()
	for _, checkType := range ValidCheckTypes() {
		if action := store.GetAction(checkType); action != ActionLog {
			t.Fatalf("Expected default action log for %s, took %s", checkType, action)
		}
	}
	whitelist, size := store.GetWhitelist()
	assert.Empty(t, whitelist)
	assert.Equal(t, 0, size)
	assert.Equal(t, int64(0), store.GetUpdateTime())
	assert.Equal(t, int64(0), store.GetLogMaxBackup())
	assert.Equal(t, int64(0), store.GetDebugLevel())
	assert.False(t, store.GetEnforcePolicy())
}

func TestOutOfRangeCheckType(t *testing.T) {
	store := NewStore()
	before := store.Snapshot()
	for _, checkType := range []CheckType{CheckTypeInvalid, CheckTypeAll, CheckType(-10), CheckType(1000)} {
		assert.Equal(t, ActionIgnore, store.GetAction(checkType))
		store.SetAction(checkType, ActionBlock)
		assert.Equal(t, ActionIgnore, store.GetAction(checkType))
	}
	// no new snapshot installed
	assert.True(t, before == store.Snapshot())
	for _, checkType := range ValidCheckTypes() {
		assert.Equal(t, ActionLog, store.GetAction(checkType))
	}
}

func TestSetAction(t *testing.T) {
	store := NewStore()
	before := store.Snapshot()
	store.SetAction(CheckTypeSQL, ActionBlock)
	assert.Equal(t, ActionBlock, store.GetAction(CheckTypeSQL))
	assert.Equal(t, ActionLog, store.GetAction(CheckTypeSQLPrepared))
	// previous snapshot is immutable
	assert.Equal(t, ActionLog, before.Action(CheckTypeSQL))

	store.SetAction(CheckTypeSQL, ActionType(42))
	assert.Equal(t, ActionBlock, store.GetAction(CheckTypeSQL))
}

func TestReplaceWhitelist(t *testing.T) {
	store := NewStore()
	data := bytes.Repeat([]byte{1}, 100)
	require.True(t, store.ReplaceWhitelist(data))

	// caller's buffer isn't shared with the store
	data[0] = 2
	whitelist, size := store.GetWhitelist()
	assert.Equal(t, bytes.Repeat([]byte{1}, 100), whitelist)
	assert.Equal(t, 100, size)

	tooLarge := make([]byte, MaxWhitelistSize+1)
	rejectedBefore := testutil.ToFloat64(rejectedUpdatesCounter)
	assert.False(t, store.ReplaceWhitelist(tooLarge))
	assert.Equal(t, rejectedBefore+1, testutil.ToFloat64(rejectedUpdatesCounter))
	whitelist, size = store.GetWhitelist()
	assert.Equal(t, bytes.Repeat([]byte{1}, 100), whitelist)
	assert.Equal(t, 100, size)

	maxSize := bytes.Repeat([]byte{3}, MaxWhitelistSize)
	assert.True(t, store.ReplaceWhitelist(maxSize))
	whitelist, size = store.GetWhitelist()
	assert.Equal(t, maxSize, whitelist)
	assert.Equal(t, MaxWhitelistSize, size)
}

func TestReplaceWhitelistShorterLeavesNoStaleBytes(t *testing.T) {
	store := NewStore()
	require.True(t, store.ReplaceWhitelist(bytes.Repeat([]byte{0xff}, 64)))
	require.True(t, store.ReplaceWhitelist([]byte{1, 2, 3}))
	whitelist, size := store.GetWhitelist()
	assert.Equal(t, []byte{1, 2, 3}, whitelist)
	assert.Equal(t, 3, size)
	assert.Equal(t, 3, store.Snapshot().WhitelistSize())
}

func TestReplaceWhitelistIdempotent(t *testing.T) {
	store := NewStore()
	data := []byte("RSWL compiled rules")
	for i := 0; i < 2; i++ {
		require.True(t, store.ReplaceWhitelist(data))
		whitelist, size := store.GetWhitelist()
		assert.Equal(t, data, whitelist)
		assert.Equal(t, len(data), size)
	}
}

func TestGetWhitelistReturnsCopy(t *testing.T) {
	store := NewStore()
	require.True(t, store.ReplaceWhitelist([]byte{1, 2, 3}))
	whitelist, _ := store.GetWhitelist()
	whitelist[0] = 9
	assert.Equal(t, []byte{1, 2, 3}, store.Snapshot().Whitelist())
}

func TestAccessors(t *testing.T) {
	store := NewStore()
	store.SetUpdateTime(1700000000)
	store.SetLogMaxBackup(30)
	store.SetDebugLevel(2)
	store.SetEnforcePolicy(true)
	assert.Equal(t, int64(1700000000), store.GetUpdateTime())
	assert.Equal(t, int64(30), store.GetLogMaxBackup())
	assert.Equal(t, int64(2), store.GetDebugLevel())
	assert.True(t, store.GetEnforcePolicy())

	snapshot := store.Snapshot()
	assert.Equal(t, int64(1700000000), snapshot.UpdateTime())
	assert.Equal(t, int64(30), snapshot.LogMaxBackup())
	assert.Equal(t, int64(2), snapshot.DebugLevel())
	assert.True(t, snapshot.EnforcePolicy())
}

func TestApply(t *testing.T) {
	store := NewStore()
	store.SetAction(CheckTypeSQLError, ActionBlock)
	appliedBefore := testutil.ToFloat64(appliedUpdatesCounter)
	err := store.Apply(&Update{
		UpdateTime:    10,
		LogMaxBackup:  5,
		DebugLevel:    1,
		EnforcePolicy: true,
		Actions: map[CheckType]ActionType{
			CheckTypeSQL:     ActionBlock,
			CheckTypeInvalid: ActionBlock,
			CheckTypeAll:     ActionBlock,
		},
		Whitelist: []byte{1, 2},
	})
	require.NoError(t, err)
	assert.Equal(t, appliedBefore+1, testutil.ToFloat64(appliedUpdatesCounter))
	snapshot := store.Snapshot()
	assert.Equal(t, ActionBlock, snapshot.Action(CheckTypeSQL))
	// missing types get default action, previous values don't survive
	assert.Equal(t, ActionLog, snapshot.Action(CheckTypeSQLError))
	assert.Equal(t, ActionLog, snapshot.Action(CheckTypeDBConnection))
	assert.Equal(t, int64(10), snapshot.UpdateTime())
	assert.Equal(t, int64(5), snapshot.LogMaxBackup())
	assert.Equal(t, int64(1), snapshot.DebugLevel())
	assert.True(t, snapshot.EnforcePolicy())
	assert.Equal(t, []byte{1, 2}, snapshot.Whitelist())
}

func TestApplyNil(t *testing.T) {
	store := NewStore()
	store.SetAction(CheckTypeSQL, ActionBlock)
	before := store.Snapshot()
	assert.ErrorIs(t, store.Apply(nil), ErrEmptyUpdate)
	assert.Same(t, before, store.Snapshot())
}

func TestApplyRejectsTooLargeWhitelist(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Apply(&Update{UpdateTime: 1, Whitelist: []byte{1}}))
	before := store.Snapshot()
	err := store.Apply(&Update{
		UpdateTime: 2,
		Actions:    map[CheckType]ActionType{CheckTypeSQL: ActionBlock},
		Whitelist:  make([]byte, MaxWhitelistSize+1),
	})
	assert.Equal(t, ErrWhitelistTooLarge, err)
	assert.True(t, before == store.Snapshot())
	assert.Equal(t, ActionLog, store.GetAction(CheckTypeSQL))
	assert.Equal(t, int64(1), store.GetUpdateTime())
}

func TestConcurrentWriters(t *testing.T) {
	store := NewStore()
	wg := sync.WaitGroup{}
	for _, checkType := range ValidCheckTypes() {
		wg.Add(1)
		go func(checkType CheckType) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				store.SetAction(checkType, ActionBlock)
				store.SetDebugLevel(int64(i))
			}
		}(checkType)
	}
	wg.Wait()
	// writers are serialized, no SetAction is lost
	for _, checkType := range ValidCheckTypes() {
		assert.Equal(t, ActionBlock, store.GetAction(checkType))
	}
}
