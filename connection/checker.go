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
package connection

import (
	"context"
	"errors"
	"fmt"

	"github.com/cossacklabs/acra-rasp/alarm"
	"github.com/cossacklabs/acra-rasp/evaluator"
	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/policy"
	log "github.com/sirupsen/logrus"
)

// ServiceName used as service field of checker logs
const ServiceName = "rasp-connection"

// Stage tells whether check runs before connecting or after successful connect
type Stage int

// Stages
const (
	StagePre Stage = iota
	StagePost
)

// String returns stage name
func (stage Stage) String() string {
	if stage == StagePre {
		return "pre"
	}
	return "post"
}

// InitFunc fills descriptor from driver specific connect arguments
type InitFunc func(descriptor *Descriptor) error

// DSNInit returns InitFunc parsing connection string of server kind
func DSNInit(serverKind, connectionString string) InitFunc {
	return func(descriptor *Descriptor) error {
		parsed, err := Parse(serverKind, connectionString)
		*descriptor = *parsed
		return err
	}
}

// DescriptorInit returns InitFunc which copies already built descriptor
func DescriptorInit(source *Descriptor) InitFunc {
	return func(descriptor *Descriptor) error {
		*descriptor = *source
		return nil
	}
}

// PolicyEvaluator resolves actions for check types
type PolicyEvaluator interface {
	ResolveContext(ctx context.Context, t policy.CheckType) policy.ActionType
	EnforcePolicy() bool
}

// Checker applies connection policy to connection attempts
type Checker struct {
	evaluator PolicyEvaluator
	predicate ViolationPredicate
	sink      alarm.Sink
	logger    *log.Entry
}

// NewChecker returns Checker. Nil predicate never reports violations.
func NewChecker(evaluator PolicyEvaluator, predicate ViolationPredicate, sink alarm.Sink) *Checker {
	if predicate == nil {
		predicate = NopPredicate
	}
	return &Checker{
		evaluator: evaluator,
		predicate: predicate,
		sink:      sink,
		logger:    log.WithField("service", ServiceName),
	}
}

// ViolationMessage returns alarm message for connection with disallowed account
func ViolationMessage(descriptor *Descriptor) string {
	return fmt.Sprintf("Database security - connecting to %s instance using disallowed account %q", descriptor.ServerKind, descriptor.Username)
}

// Check builds descriptor with init and checks its username. Violations are reported to sink unless db_connection
// action is ignore. Returns true only if stage is StagePre and the action is block.
func (checker *Checker) Check(ctx context.Context, init InitFunc, stage Stage) bool {
	descriptor := &Descriptor{}
	if err := init(descriptor); err != nil {
		logger := checker.logger
		if errors.Is(err, ErrMalformedConnectionString) {
			logger = logger.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorMalformedConnectionString)
		}
		// partially parsed descriptor is still checked
		logger.WithError(err).WithField(logging.FieldKeyServer, descriptor.ServerKind).Debugln("Can't fully parse connection parameters")
	}
	if !checker.predicate(descriptor.ServerKind, descriptor.Username) {
		return false
	}
	action := checker.evaluator.ResolveContext(ctx, policy.CheckTypeDBConnection)
	if action == policy.ActionIgnore {
		return false
	}
	checker.sink.PolicyViolation(ctx, alarm.PolicyViolation{
		ServerKind:  descriptor.ServerKind,
		Username:    descriptor.Username,
		Host:        descriptor.Host,
		Port:        descriptor.Port,
		UsingSocket: descriptor.UsingSocket,
		Socket:      descriptor.Socket,
		Stage:       stage.String(),
		Action:      action,
		RequestKey:  evaluator.RequestKeyFromContext(ctx),
		Message:     ViolationMessage(descriptor),
	})
	return stage == StagePre && action == policy.ActionBlock
}

// PreCheck runs check before connecting when policy is enforced. Returns true if connection must be blocked.
func (checker *Checker) PreCheck(ctx context.Context, init InitFunc) bool {
	if !checker.evaluator.EnforcePolicy() {
		return false
	}
	return checker.Check(ctx, init, StagePre)
}

// PostCheck runs check after successful connect when policy isn't enforced. It never blocks.
func (checker *Checker) PostCheck(ctx context.Context, init InitFunc, succeeded bool) {
	if checker.evaluator.EnforcePolicy() || !succeeded {
		return
	}
	checker.Check(ctx, init, StagePost)
}
