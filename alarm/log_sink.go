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

	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/policy"
	log "github.com/sirupsen/logrus"
)

// ServiceName used as service field of alarm logs
const ServiceName = "rasp-alarm"

// LogSink writes alarms as structured log entries with alarm event codes
type LogSink struct {
	logger *log.Entry
}

// NewLogSink returns LogSink which logs through standard logger
func NewLogSink() *LogSink {
	return &LogSink{logger: log.WithField("service", ServiceName)}
}

// NewLogSinkWithLogger returns LogSink which logs through logger
func NewLogSinkWithLogger(logger *log.Entry) *LogSink {
	return &LogSink{logger: logger}
}

func (sink *LogSink) loggerFor(ctx context.Context) *log.Entry {
	if logger, ok := logging.GetLoggerFromContextOk(ctx); ok {
		return logger
	}
	return sink.logger
}

// SQLError logs failed query
func (sink *LogSink) SQLError(ctx context.Context, event Event) {
	alarmsCounter.WithLabelValues(kindSQLError, event.ServerKind).Inc()
	sink.loggerFor(ctx).WithFields(log.Fields{
		logging.FieldKeyEventCode:    logging.EventCodeAlarmSQLError,
		logging.FieldKeyServer:       event.ServerKind,
		logging.FieldKeyQuery:        event.Query,
		logging.FieldKeyErrorCode:    event.ErrorCode,
		logging.FieldKeyErrorMessage: event.ErrorMessage,
		logging.FieldKeyRequestKey:   event.RequestKey,
	}).Warningln("SQL error alarm")
}

// PolicyViolation logs connection policy violation
func (sink *LogSink) PolicyViolation(ctx context.Context, violation PolicyViolation) {
	alarmsCounter.WithLabelValues(kindPolicyViolation, violation.ServerKind).Inc()
	sink.loggerFor(ctx).WithFields(log.Fields{
		logging.FieldKeyEventCode:  logging.EventCodeAlarmPolicyViolation,
		logging.FieldKeyServer:     violation.ServerKind,
		logging.FieldKeyUsername:   violation.Username,
		logging.FieldKeyHost:       violation.Host,
		logging.FieldKeyPort:       violation.Port,
		"using_socket":             violation.UsingSocket,
		"socket":                   violation.Socket,
		"stage":                    violation.Stage,
		logging.FieldKeyAction:     violation.Action.String(),
		logging.FieldKeyRequestKey: violation.RequestKey,
	}).Warningln(violation.Message)
}

// Attack logs malicious query
func (sink *LogSink) Attack(ctx context.Context, attack Attack) {
	alarmsCounter.WithLabelValues(kindAttack, attack.ServerKind).Inc()
	code := logging.EventCodeAlarmAttack
	if attack.Action == policy.ActionBlock {
		code = logging.EventCodeAlarmOperationBlocked
	}
	sink.loggerFor(ctx).WithFields(log.Fields{
		logging.FieldKeyEventCode:  code,
		logging.FieldKeyCheckType:  attack.CheckType.String(),
		logging.FieldKeyServer:     attack.ServerKind,
		logging.FieldKeyQuery:      attack.Query,
		logging.FieldKeyAction:     attack.Action.String(),
		logging.FieldKeyRequestKey: attack.RequestKey,
	}).Warningln(attack.Message)
}
