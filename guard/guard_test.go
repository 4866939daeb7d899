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
package guard

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/cossacklabs/acra-rasp/alarm/mocks"
	"github.com/cossacklabs/acra-rasp/connection"
	"github.com/cossacklabs/acra-rasp/evaluator"
	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/whitelist"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const maliciousQuery = "select * from users where id=1 or 1=1"

type countingDetector struct {
	calls int32
	err   error
}

func (detector *countingDetector) Detect(ctx context.Context, t policy.CheckType, serverKind, query string) (Judgment, error) {
	atomic.AddInt32(&detector.calls, 1)
	if detector.err != nil {
		return Judgment{}, detector.err
	}
	return Judgment{Malicious: query == maliciousQuery, Message: "tautology detected"}, nil
}

func newTestGuard(t *testing.T, detector Detector) (*Guard, *policy.Store, *mocks.Sink) {
	store := policy.NewStore()
	sink := mocks.NewSink(t)
	config := DefaultConfig()
	config.Connection.Denylist = map[string][]string{connection.ServerMySQL: {"root"}}
	return NewFromConfig(config, store, detector, sink), store, sink
}

func TestPreQueryIgnoreSkipsDetector(t *testing.T) {
	detector := &countingDetector{}
	guard, store, _ := newTestGuard(t, detector)
	store.SetAction(policy.CheckTypeSQL, policy.ActionIgnore)
	assert.NoError(t, guard.PreQuery(context.Background(), policy.CheckTypeSQL, "mysql", maliciousQuery))
	assert.Equal(t, int32(0), atomic.LoadInt32(&detector.calls))
}

func TestPreQueryWhitelistSkipsDetector(t *testing.T) {
	detector := &countingDetector{}
	guard, store, _ := newTestGuard(t, detector)
	store.SetAction(policy.CheckTypeSQL, policy.ActionBlock)
	builder := whitelist.NewBuilder()
	require.NoError(t, builder.Add(policy.CheckTypeSQL, "reports.local/"))
	data, err := builder.Build()
	require.NoError(t, err)
	require.True(t, store.ReplaceWhitelist(data))

	ctx := evaluator.WithRequestKey(context.Background(), "reports.local/daily")
	assert.NoError(t, guard.PreQuery(ctx, policy.CheckTypeSQL, "mysql", maliciousQuery))
	assert.Equal(t, int32(0), atomic.LoadInt32(&detector.calls))
}

func TestPreQueryLog(t *testing.T) {
	guard, _, sink := newTestGuard(t, &countingDetector{})
	sink.On("Attack", mock.Anything, alarm.Attack{
		CheckType:  policy.CheckTypeSQLPrepared,
		ServerKind: "pgsql",
		Query:      maliciousQuery,
		Message:    "tautology detected",
		Action:     policy.ActionLog,
		RequestKey: "app.local/",
	}).Once()
	ctx := evaluator.WithRequestKey(context.Background(), "app.local/")
	assert.NoError(t, guard.PreQuery(ctx, policy.CheckTypeSQLPrepared, "pgsql", maliciousQuery))
}

func TestPreQueryBlock(t *testing.T) {
	guard, store, sink := newTestGuard(t, &countingDetector{})
	store.SetAction(policy.CheckTypeSQL, policy.ActionBlock)
	sink.On("Attack", mock.Anything, mock.MatchedBy(func(attack alarm.Attack) bool {
		return attack.Action == policy.ActionBlock
	})).Once()

	err := guard.PreQuery(context.Background(), policy.CheckTypeSQL, "mysql", maliciousQuery)
	require.Error(t, err)
	assert.True(t, policy.IsBlocked(err))
	var blockError *policy.BlockError
	require.True(t, errors.As(err, &blockError))
	assert.Equal(t, policy.CheckTypeSQL, blockError.CheckType)
	assert.Equal(t, "tautology detected", blockError.Reason)

	// benign queries pass without alarms
	assert.NoError(t, guard.PreQuery(context.Background(), policy.CheckTypeSQL, "mysql", "select 1"))
}

func TestPreQueryDetectorFailure(t *testing.T) {
	guard, store, _ := newTestGuard(t, &countingDetector{err: errors.New("plugin crashed")})
	store.SetAction(policy.CheckTypeSQL, policy.ActionBlock)
	assert.NoError(t, guard.PreQuery(context.Background(), policy.CheckTypeSQL, "mysql", maliciousQuery))
}

func TestPreQueryInvalidCheckType(t *testing.T) {
	detector := &countingDetector{}
	guard, _, _ := newTestGuard(t, detector)
	assert.NoError(t, guard.PreQuery(context.Background(), policy.CheckTypeAll, "mysql", maliciousQuery))
	assert.Equal(t, int32(0), atomic.LoadInt32(&detector.calls))
}

func TestNilDetector(t *testing.T) {
	guard, store, _ := newTestGuard(t, nil)
	store.SetAction(policy.CheckTypeSQL, policy.ActionBlock)
	assert.NoError(t, guard.PreQuery(context.Background(), policy.CheckTypeSQL, "mysql", maliciousQuery))
}

func TestDetectorFunc(t *testing.T) {
	detector := DetectorFunc(func(ctx context.Context, t policy.CheckType, serverKind, query string) (Judgment, error) {
		return Judgment{Malicious: serverKind == "mysql"}, nil
	})
	judgment, err := detector.Detect(context.Background(), policy.CheckTypeSQL, "mysql", "")
	assert.NoError(t, err)
	assert.True(t, judgment.Malicious)
}

func TestPreConnect(t *testing.T) {
	guard, store, sink := newTestGuard(t, nil)
	store.SetEnforcePolicy(true)
	store.SetAction(policy.CheckTypeDBConnection, policy.ActionBlock)
	sink.On("PolicyViolation", mock.Anything, mock.MatchedBy(func(violation alarm.PolicyViolation) bool {
		return violation.Username == "root" && violation.Port == 3306
	})).Once()

	err := guard.PreConnect(context.Background(), guard.DSNInit(connection.ServerMySQL, "root:pass@tcp(db:3306)/app"))
	assert.True(t, policy.IsBlocked(err))
	assert.NoError(t, guard.PreConnect(context.Background(), guard.DSNInit(connection.ServerMySQL, "app:pass@tcp(db:3306)/app")))
	// post stage is disabled when policy is enforced
	guard.PostConnect(context.Background(), guard.MySQLInit(connection.MySQLArgs{User: "root"}), true)
}

func TestPostConnect(t *testing.T) {
	guard, store, sink := newTestGuard(t, nil)
	store.SetAction(policy.CheckTypeDBConnection, policy.ActionBlock)
	sink.On("PolicyViolation", mock.Anything, mock.MatchedBy(func(violation alarm.PolicyViolation) bool {
		return violation.Stage == "post" && violation.UsingSocket
	})).Once()
	assert.NoError(t, guard.PreConnect(context.Background(), guard.MySQLInit(connection.MySQLArgs{User: "root"})))
	guard.PostConnect(context.Background(), guard.MySQLInit(connection.MySQLArgs{User: "root"}), true)
}

func TestMySQLInitUsesDefaults(t *testing.T) {
	config := DefaultConfig()
	config.Connection.MySQLDefaults = connection.MySQLDefaults{User: "root", Host: "db.local", Port: 3307}
	guard := NewFromConfig(config, policy.NewStore(), nil, mocks.NewSink(t))
	descriptor := &connection.Descriptor{}
	require.NoError(t, guard.MySQLInit(connection.MySQLArgs{})(descriptor))
	assert.Equal(t, "root", descriptor.Username)
	assert.Equal(t, 3307, descriptor.Port)
	assert.False(t, descriptor.UsingSocket)
}

func TestPostQuery(t *testing.T) {
	guard, _, sink := newTestGuard(t, nil)
	sink.On("SQLError", mock.Anything, alarm.Event{
		ServerKind:   "mysql",
		Query:        "select '",
		ErrorCode:    "1064",
		ErrorMessage: "You have an error in your SQL syntax",
		RequestKey:   "app.local/",
	}).Once()
	sink.On("SQLError", mock.Anything, mock.MatchedBy(func(event alarm.Event) bool {
		return event.ServerKind == "pgsql" && event.ErrorCode == "42601"
	})).Once()

	ctx := evaluator.WithRequestKey(context.Background(), "app.local/")
	guard.PostQuery(ctx, "mysql", "select '", fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"}))
	guard.PostQuery(ctx, "", "select (", &pq.Error{Code: "42601", Message: "syntax error"})

	// suppressed
	guard.PostQuery(ctx, "mysql", "insert", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	guard.PostQuery(ctx, "mysql", "select 1", errors.New("connection reset"))
	guard.PostQuery(ctx, "mysql", "select 1", policy.NewBlockError(policy.CheckTypeSQL, ""))
	guard.PostQuery(ctx, "mysql", "select 1", nil)
}

func TestReportSQLErrorIgnored(t *testing.T) {
	guard, store, _ := newTestGuard(t, nil)
	store.SetAction(policy.CheckTypeSQLError, policy.ActionIgnore)
	guard.ReportSQLError(context.Background(), "mysql", "select '", "1064", "syntax")
}
