// Copyright 2019 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telemetry

import (
	"net/http"

	ocPrometheus "contrib.go.opencensus.io/exporter/prometheus"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opencensus.io/stats/view"
	"opentune.dev/opentune/internal/config"
)

// BindPrometheus registers the Prometheus exporter on the given mux if
// enabled in config.  It returns a closer that unregisters the exporter.
func BindPrometheus(mux *http.ServeMux, cfg config.View) (func(), error) {
	if !cfg.GetBool("telemetry.prometheus.enable") {
		logger.Info("Prometheus Metrics: Disabled")
		return func() {}, nil
	}

	endpoint := cfg.GetString("telemetry.prometheus.endpoint")
	logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
	}).Info("Prometheus Metrics: ENABLED")

	registry := prometheus.NewRegistry()
	if err := registry.Register(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{})); err != nil {
		return nil, errors.Wrap(err, "failed to register prometheus process collector")
	}
	if err := registry.Register(prometheus.NewGoCollector()); err != nil {
		return nil, errors.Wrap(err, "failed to register prometheus go collector")
	}

	promExporter, err := ocPrometheus.NewExporter(
		ocPrometheus.Options{
			Namespace: "opentune",
			Registry:  registry,
		})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize OpenCensus exporter to Prometheus")
	}

	view.RegisterExporter(promExporter)
	mux.Handle(endpoint, promExporter)
	return func() {
		view.UnregisterExporter(promExporter)
	}, nil
}
