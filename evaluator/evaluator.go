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
// Package evaluator resolves the action for an intercepted operation: whitelist bypass first,
// configured per check type action otherwise.
package evaluator

import (
	"context"

	"github.com/cossacklabs/acra-rasp/policy"
	"github.com/cossacklabs/acra-rasp/whitelist"
)

type requestKey struct{}

// WithRequestKey returns context carrying key used for whitelist lookups (usually host and path of the request)
func WithRequestKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, requestKey{}, key)
}

// RequestKeyFromContext returns request key or empty string
func RequestKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(requestKey{}).(string)
	return key
}

// Evaluator resolves actions against policy store
type Evaluator struct {
	store *policy.Store
}

// New returns Evaluator which reads configuration from store
func New(store *policy.Store) *Evaluator {
	return &Evaluator{store: store}
}

// Store returns underlying policy store
func (evaluator *Evaluator) Store() *policy.Store {
	return evaluator.store
}

// Resolve returns ActionIgnore if whitelist has rule for (t, key), configured action otherwise.
// Whitelist and action are read from the same snapshot.
func (evaluator *Evaluator) Resolve(t policy.CheckType, key string) policy.ActionType {
	if !t.IsValid() {
		return policy.ActionIgnore
	}
	snapshot := evaluator.store.Snapshot()
	if whitelist.Matches(snapshot.Whitelist(), t, key) {
		decisionsCounter.WithLabelValues(t.String(), policy.ActionIgnore.String(), sourceWhitelist).Inc()
		return policy.ActionIgnore
	}
	action := snapshot.Action(t)
	decisionsCounter.WithLabelValues(t.String(), action.String(), sourceConfig).Inc()
	return action
}

// ResolveContext resolves action with request key taken from ctx
func (evaluator *Evaluator) ResolveContext(ctx context.Context, t policy.CheckType) policy.ActionType {
	return evaluator.Resolve(t, RequestKeyFromContext(ctx))
}

// EnforcePolicy returns true if connection policy must be checked before connecting
func (evaluator *Evaluator) EnforcePolicy() bool {
	return evaluator.store.Snapshot().EnforcePolicy()
}
