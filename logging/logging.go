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

// Package logging configures the logrus standard logger for acra-rasp: output format (plaintext, JSON or CEF),
// verbosity and the field keys shared by alarms. Verbosity may also be changed at runtime by the debug level
// delivered with the policy bundle.
package logging

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Log modes
const (
	LogDebug = iota
	LogVerbose
	LogDiscard
)

// Supported formats
const (
	PlaintextFormatString = "plaintext"
	JSONFormatString      = "json"
	CefFormatString       = "cef"
)

// ErrIncorrectLogLevel returned for log levels other than LogDebug, LogVerbose and LogDiscard
var ErrIncorrectLogLevel = errors.New("incorrect log level")

type loggerKey struct{}

// SetLogLevel sets level of standard logger by log mode
func SetLogLevel(level int) error {
	switch level {
	case LogDebug:
		log.SetLevel(log.DebugLevel)
	case LogVerbose:
		log.SetLevel(log.InfoLevel)
	case LogDiscard:
		log.SetLevel(log.WarnLevel)
	default:
		return ErrIncorrectLogLevel
	}
	return nil
}

// DebugLevelToLogLevel maps debug level from policy configuration to log mode.
// Any positive debug level enables debug logs, zero keeps verbose mode.
func DebugLevelToLogLevel(debugLevel int64) int {
	if debugLevel > 0 {
		return LogDebug
	}
	return LogVerbose
}

// CreateFormatter creates formatter for format name and sets it as formatter of standard logger.
// Unknown names fall back to plaintext.
func CreateFormatter(format string) *Formatter {
	var formatter *Formatter
	switch strings.ToLower(format) {
	case JSONFormatString:
		formatter = NewJSONFormatter()
	case CefFormatString:
		formatter = NewCEFFormatter()
	default:
		formatter = NewTextFormatter()
	}
	log.SetFormatter(formatter)
	return formatter
}

// SetLoggerToContext stores logger in context, alarms raised with this context are logged through it
func SetLoggerToContext(ctx context.Context, logger *log.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLoggerFromContextOk returns logger stored by SetLoggerToContext
func GetLoggerFromContextOk(ctx context.Context) (*log.Entry, bool) {
	entry, ok := ctx.Value(loggerKey{}).(*log.Entry)
	return entry, ok
}
