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

	"github.com/cossacklabs/acra-rasp/policy"
)

// Judgment is detector's verdict for a query
type Judgment struct {
	Malicious bool
	Message   string
}

// Detector judges whether query is malicious. Detection rules are outside acra-rasp.
type Detector interface {
	Detect(ctx context.Context, t policy.CheckType, serverKind, query string) (Judgment, error)
}

// DetectorFunc adapts function to Detector
type DetectorFunc func(ctx context.Context, t policy.CheckType, serverKind, query string) (Judgment, error)

// Detect calls f
func (f DetectorFunc) Detect(ctx context.Context, t policy.CheckType, serverKind, query string) (Judgment, error) {
	return f(ctx, t, serverKind, query)
}

// NopDetector never reports malicious queries
type NopDetector struct{}

// Detect returns benign judgment
func (NopDetector) Detect(context.Context, policy.CheckType, string, string) (Judgment, error) {
	return Judgment{}, nil
}
