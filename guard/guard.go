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
// Package guard is the call-site API used by interception hooks. It combines policy resolution, detector
// judgments, connection policy and SQL error classification, and tells the hook whether to abort the operation.
package guard

import (
	"context"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/cossacklabs/acra-rasp/connection"
	"github.com/cossacklabs/acra-rasp/evaluator"
	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/sqlerror"
	log "github.com/sirupsen/logrus"
)

// ServiceName used as service field of guard logs
const ServiceName = "rasp-guard"

// BlockedConnectionReason is the reason of BlockError returned by PreConnect
const BlockedConnectionReason = "connection with disallowed account"

// Guard is safe for concurrent use
type Guard struct {
	evaluator     connection.PolicyEvaluator
	checker       *connection.Checker
	classifier    *sqlerror.Classifier
	detector      Detector
	sink          alarm.Sink
	cache         *connection.DescriptorCache
	mysqlDefaults connection.MySQLDefaults
	logger        *log.Entry
}

// New returns Guard. Nil detector is replaced with NopDetector, nil classifier with default one.
func New(resolver connection.PolicyEvaluator, checker *connection.Checker, classifier *sqlerror.Classifier, detector Detector, sink alarm.Sink) *Guard {
	if detector == nil {
		detector = NopDetector{}
	}
	if classifier == nil {
		classifier = sqlerror.NewDefaultClassifier()
	}
	return &Guard{
		evaluator:  resolver,
		checker:    checker,
		classifier: classifier,
		detector:   detector,
		sink:       sink,
		cache:      connection.NewDescriptorCache(connection.DefaultCacheSize),
		logger:     log.WithField("service", ServiceName),
	}
}

// DSNInit returns InitFunc for connection string which uses guard's descriptor cache
func (guard *Guard) DSNInit(serverKind, connectionString string) connection.InitFunc {
	return func(descriptor *connection.Descriptor) error {
		parsed, err := guard.cache.Parse(serverKind, connectionString)
		*descriptor = *parsed
		return err
	}
}

// MySQLInit returns InitFunc for discrete mysql connect arguments with configured defaults
func (guard *Guard) MySQLInit(args connection.MySQLArgs) connection.InitFunc {
	return connection.DescriptorInit(connection.InitMySQL(args, guard.mysqlDefaults))
}

// PreConnect checks connection before it's made. Returns *policy.BlockError if connection must be aborted.
func (guard *Guard) PreConnect(ctx context.Context, init connection.InitFunc) error {
	if guard.checker.PreCheck(ctx, init) {
		guard.logger.WithField(logging.FieldKeyEventCode, logging.EventCodeAlarmOperationBlocked).
			WithField(logging.FieldKeyCheckType, policy.CheckTypeDBConnection.String()).Infoln("Blocked database connection")
		return policy.NewBlockError(policy.CheckTypeDBConnection, BlockedConnectionReason)
	}
	return nil
}

// PostConnect checks connection after connect attempt
func (guard *Guard) PostConnect(ctx context.Context, init connection.InitFunc, succeeded bool) {
	guard.checker.PostCheck(ctx, init, succeeded)
}

// PreQuery checks query before it's sent. Whitelisted or ignored queries skip detector. Returns *policy.BlockError
// if detector judged query malicious and action is block. Detector failures don't block.
func (guard *Guard) PreQuery(ctx context.Context, t policy.CheckType, serverKind, query string) error {
	action := guard.evaluator.ResolveContext(ctx, t)
	if action == policy.ActionIgnore {
		return nil
	}
	judgment, err := guard.detector.Detect(ctx, t, serverKind, query)
	if err != nil {
		guard.logger.WithError(err).WithField(logging.FieldKeyEventCode, logging.EventCodeErrorDetectorFailed).
			WithField(logging.FieldKeyCheckType, t.String()).Warningln("Detector failed, query allowed")
		return nil
	}
	if !judgment.Malicious {
		return nil
	}
	guard.sink.Attack(ctx, alarm.Attack{
		CheckType:  t,
		ServerKind: serverKind,
		Query:      query,
		Message:    judgment.Message,
		Action:     action,
		RequestKey: evaluator.RequestKeyFromContext(ctx),
	})
	if action == policy.ActionBlock {
		return policy.NewBlockError(t, judgment.Message)
	}
	return nil
}

// PostQuery reports failed query if err is a database server error. serverKind may be empty, then it's taken
// from driver error.
func (guard *Guard) PostQuery(ctx context.Context, serverKind, query string, err error) {
	if err == nil || policy.IsBlocked(err) {
		return
	}
	driverError, ok := sqlerror.FromDriverError(err)
	if !ok {
		return
	}
	if serverKind == "" {
		serverKind = driverError.ServerKind
	}
	guard.ReportSQLError(ctx, serverKind, query, driverError.Code, driverError.Message)
}

// ReportSQLError raises alarm for failed query if code passes classifier and sql_exception isn't ignored
func (guard *Guard) ReportSQLError(ctx context.Context, serverKind, query, code, message string) {
	if !guard.classifier.IsAlarmWorthy(serverKind, code) {
		return
	}
	if guard.evaluator.ResolveContext(ctx, policy.CheckTypeSQLError) == policy.ActionIgnore {
		return
	}
	event := sqlerror.BuildAlarm(serverKind, query, code, message)
	event.RequestKey = evaluator.RequestKeyFromContext(ctx)
	guard.sink.SQLError(ctx, event)
}
