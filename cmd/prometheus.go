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
package cmd

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/cossacklabs/acra-rasp/logging"
	"github.com/cossacklabs/acra-rasp/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// RunPrometheusHTTPHandler runs in goroutine http server which exports prometheus metrics on address
// (host:port or tcp://host:port)
func RunPrometheusHTTPHandler(address string) (net.Listener, *http.Server, error) {
	listener, err := net.Listen("tcp", strings.TrimPrefix(address, "tcp://"))
	if err != nil {
		return nil, nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(DefaultPrometheusMetricsPath, promhttp.Handler())
	server := &http.Server{Handler: mux, ReadTimeout: DefaultNetworkTimeout, WriteTimeout: DefaultNetworkTimeout}
	go func() {
		log.WithField("connection_string", address).Infoln("Start prometheus http handler")
		err := server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithField(logging.FieldKeyEventCode, logging.EventCodeErrorPrometheusHTTPHandler).WithError(err).
				Errorln("Error from HTTP server that process prometheus metrics")
		}
	}()
	return listener, server, nil
}

// serviceNameToLabelFormat convert service name to lower case and replace all '-' with '_'
// ex. acra-rasp-policy will be changed to acra_rasp_policy
func serviceNameToLabelFormat(serviceName string) string {
	return strings.ToLower(strings.ReplaceAll(serviceName, "-", "_"))
}

// BuildInfoVersionLabel is label of build info metric
const BuildInfoVersionLabel = "version"

var (
	versionGauge     *prometheus.GaugeVec
	buildInfoCounter *prometheus.CounterVec
)

var registerVersionMetricsLock = sync.Once{}

// RegisterVersionMetrics registers gauge with major, minor and patch numbers of version
func RegisterVersionMetrics(serviceName string, version *utils.Version) {
	registerVersionMetricsLock.Do(func() {
		versionGauge = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: fmt.Sprintf("%s_version", serviceNameToLabelFormat(serviceName)),
				Help: "Version numbers by part",
			}, []string{"part"})
		prometheus.MustRegister(versionGauge)
		versionGauge.WithLabelValues("major").Set(float64(version.Major))
		versionGauge.WithLabelValues("minor").Set(float64(version.Minor))
		versionGauge.WithLabelValues("patch").Set(float64(version.Patch))
	})
}

var registerBuildInfoLock = sync.Once{}

// RegisterBuildInfoMetrics registers build info counter incremented once on start
func RegisterBuildInfoMetrics(serviceName string, version *utils.Version) {
	registerBuildInfoLock.Do(func() {
		buildInfoCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: fmt.Sprintf("%s_build_info", serviceNameToLabelFormat(serviceName)),
				Help: "Build info",
			}, []string{BuildInfoVersionLabel})
		prometheus.MustRegister(buildInfoCounter)
		buildInfoCounter.With(prometheus.Labels{BuildInfoVersionLabel: version.String()}).Inc()
	})
}
