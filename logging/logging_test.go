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

package logging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	defer log.SetLevel(log.GetLevel())

	testcases := []struct {
		mode     int
		expected log.Level
	}{
		{LogDebug, log.DebugLevel},
		{LogVerbose, log.InfoLevel},
		{LogDiscard, log.WarnLevel},
	}
	for _, tcase := range testcases {
		require.NoError(t, SetLogLevel(tcase.mode))
		assert.Equal(t, tcase.expected, log.GetLevel())
	}
	assert.Equal(t, ErrIncorrectLogLevel, SetLogLevel(42))
}

func TestDebugLevelToLogLevel(t *testing.T) {
	assert.Equal(t, LogVerbose, DebugLevelToLogLevel(0))
	assert.Equal(t, LogVerbose, DebugLevelToLogLevel(-3))
	assert.Equal(t, LogDebug, DebugLevelToLogLevel(1))
	assert.Equal(t, LogDebug, DebugLevelToLogLevel(10))
}

func TestCreateFormatter(t *testing.T) {
	defer log.SetFormatter(log.StandardLogger().Formatter)

	for name, encoder := range map[string]log.Formatter{
		"json":      &log.JSONFormatter{},
		"CEF":       &CEFEncoder{},
		"plaintext": &log.TextFormatter{},
		"unknown":   &log.TextFormatter{},
	} {
		formatter := CreateFormatter(name)
		assert.IsType(t, encoder, formatter.encoder, name)
		assert.Equal(t, formatter, log.StandardLogger().Formatter)
	}
}

func TestJSONFormatter(t *testing.T) {
	formatter := NewJSONFormatter()
	formatter.SetServiceName("test-service")

	entry := &log.Entry{
		Message: "message",
		Level:   log.InfoLevel,
		Time:    time.Unix(1, 0),
		Data:    log.Fields{FieldKeyEventCode: EventCodeGeneral, FieldKeyVersion: "entry-version"},
	}
	out, err := formatter.Format(entry)
	require.NoError(t, err)

	parsed := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(out, &parsed))
	assert.Equal(t, "test-service", parsed[FieldKeyProduct])
	assert.Equal(t, "entry-version", parsed[FieldKeyVersion])
	assert.Equal(t, "message", parsed["msg"])
	assert.Equal(t, "1.000", parsed[FieldKeyUnixTime])
	assert.EqualValues(t, EventCodeGeneral, parsed[FieldKeyEventCode])
	// source entry is not modified by formatter
	assert.NotContains(t, entry.Data, FieldKeyProduct)
	assert.NotContains(t, entry.Data, FieldKeyUnixTime)
}

func TestTextFormatterAddsNothing(t *testing.T) {
	entry := &log.Entry{Message: "message", Level: log.InfoLevel, Time: time.Unix(1, 0), Data: log.Fields{}}
	out, err := NewTextFormatter().Format(entry)
	require.NoError(t, err)
	assert.NotContains(t, string(out), FieldKeyProduct)
	assert.Contains(t, string(out), "msg=message")
}

func TestLoggerContext(t *testing.T) {
	_, ok := GetLoggerFromContextOk(context.Background())
	assert.False(t, ok)

	logger := log.WithField("test", "value")
	ctx := SetLoggerToContext(context.Background(), logger)
	fromContext, ok := GetLoggerFromContextOk(ctx)
	assert.True(t, ok)
	assert.Equal(t, logger, fromContext)
}
