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
// Package cmd contains shared settings and helpers of acra-rasp command line utilities: flag parsing with yaml
// config overlay, Redis options, Prometheus handler and graceful exit.
package cmd

import (
	"time"
)

// Defaults of acra-rasp utilities
const (
	DefaultConfigPath            = "configs/acra-rasp-policy.yaml"
	DefaultGuardConfigPath       = "configs/guard.yaml"
	DefaultNetworkTimeout        = 5 * time.Second
	DefaultPrometheusMetricsPath = "/metrics"
)
