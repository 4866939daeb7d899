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
package alarm

import (
	"context"
	"testing"

	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink() (*LogSink, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return NewLogSinkWithLogger(log.NewEntry(logger)), hook
}

func TestLogSinkSQLError(t *testing.T) {
	sink, hook := newTestSink()
	counter := alarmsCounter.WithLabelValues(kindSQLError, "mysql")
	before := testutil.ToFloat64(counter)

	sink.SQLError(context.Background(), Event{
		ServerKind:   "mysql",
		Query:        "select * from users where id='1",
		ErrorCode:    "1064",
		ErrorMessage: "You have an error in your SQL syntax",
		RequestKey:   "app.local/users",
	})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, log.WarnLevel, entry.Level)
	assert.Equal(t, logging.EventCodeAlarmSQLError, entry.Data[logging.FieldKeyEventCode])
	assert.Equal(t, "1064", entry.Data["error_code"])
	assert.Equal(t, "app.local/users", entry.Data["request_key"])
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestLogSinkPolicyViolation(t *testing.T) {
	sink, hook := newTestSink()
	sink.PolicyViolation(context.Background(), PolicyViolation{
		ServerKind: "pgsql",
		Username:   "postgres",
		Host:       "10.0.0.5",
		Port:       5432,
		Stage:      "post",
		Action:     policy.ActionLog,
		Message:    "connection with privileged account",
	})
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "connection with privileged account", entry.Message)
	assert.Equal(t, logging.EventCodeAlarmPolicyViolation, entry.Data[logging.FieldKeyEventCode])
	assert.Equal(t, "postgres", entry.Data["username"])
	assert.Equal(t, "log", entry.Data["action"])
}

func TestLogSinkAttack(t *testing.T) {
	sink, hook := newTestSink()
	sink.Attack(context.Background(), Attack{CheckType: policy.CheckTypeSQL, ServerKind: "mysql", Action: policy.ActionLog})
	assert.Equal(t, logging.EventCodeAlarmAttack, hook.LastEntry().Data[logging.FieldKeyEventCode])
	sink.Attack(context.Background(), Attack{CheckType: policy.CheckTypeSQL, ServerKind: "mysql", Action: policy.ActionBlock})
	assert.Equal(t, logging.EventCodeAlarmOperationBlocked, hook.LastEntry().Data[logging.FieldKeyEventCode])
	assert.Equal(t, "sql", hook.LastEntry().Data["check_type"])
	assert.Len(t, hook.AllEntries(), 2)
}

func TestLogSinkUsesContextLogger(t *testing.T) {
	sink, hook := newTestSink()
	contextLogger, contextHook := test.NewNullLogger()
	ctx := logging.SetLoggerToContext(context.Background(), log.NewEntry(contextLogger).WithField("session", "1"))
	sink.SQLError(ctx, Event{ServerKind: "pgsql", ErrorCode: "42601"})
	assert.Nil(t, hook.LastEntry())
	require.NotNil(t, contextHook.LastEntry())
	assert.Equal(t, "1", contextHook.LastEntry().Data["session"])
}
