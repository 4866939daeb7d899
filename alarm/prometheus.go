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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Labels of alarms counter
const (
	LabelKind   = "kind"
	LabelServer = "server"

	kindSQLError        = "sql_error"
	kindPolicyViolation = "policy_violation"
	kindAttack          = "attack"
)

var alarmsCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "acra_rasp_alarms_total",
		Help: "number of raised alarms by kind and database server",
	}, []string{LabelKind, LabelServer})

var registerLock = sync.Once{}

// RegisterMetrics registers alarm metrics in default prometheus registry
func RegisterMetrics() {
	registerLock.Do(func() {
		prometheus.MustRegister(alarmsCounter)
	})
}
