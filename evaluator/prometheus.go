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
package evaluator

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Labels of decisions counter
const (
	LabelCheckType = "check_type"
	LabelAction    = "action"
	LabelSource    = "source"

	sourceWhitelist = "whitelist"
	sourceConfig    = "config"
)

var decisionsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "acra_rasp_decisions_total",
		Help: "number of resolved actions by check type, action and decision source",
	}, []string{LabelCheckType, LabelAction, LabelSource})

var registerLock = sync.Once{}

// RegisterMetrics registers evaluator metrics in default prometheus registry
func RegisterMetrics() {
	registerLock.Do(func() {
		prometheus.MustRegister(decisionsCounter)
	})
}
