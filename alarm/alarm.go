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
// Package alarm defines events raised by acra-rasp checks and the sink they are delivered to.
// Core packages only build events, delivery belongs to Sink implementations.
package alarm

import (
	"context"

	"github.com/cossacklabs/acra-rasp/policy"
)

// Event describes failed SQL operation which error code passed classifier filter
type Event struct {
	ServerKind   string
	Query        string
	ErrorCode    string
	ErrorMessage string
	RequestKey   string
}

// PolicyViolation describes connection that violates connection policy.
// Connection string isn't included because it may contain password.
type PolicyViolation struct {
	ServerKind  string
	Username    string
	Host        string
	Port        int
	UsingSocket bool
	Socket      string
	Stage       string
	Action      policy.ActionType
	RequestKey  string
	Message     string
}

// Attack describes query judged as malicious by detector
type Attack struct {
	CheckType  policy.CheckType
	ServerKind string
	Query      string
	Message    string
	Action     policy.ActionType
	RequestKey string
}

//go:generate mockery --name=Sink --output=./mocks

// Sink accepts alarms. Implementations are responsible for delivery and must be safe for concurrent use.
type Sink interface {
	SQLError(ctx context.Context, event Event)
	PolicyViolation(ctx context.Context, violation PolicyViolation)
	Attack(ctx context.Context, attack Attack)
}
