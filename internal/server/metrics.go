package server

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"cpuchart/internal/view"

	"github.com/prometheus/client_golang/prometheus"
)

const promMetricPrefix = "cpuchart_"

// metrics mirrors the view state into prometheus collectors
type metrics struct {
	uploads        prometheus.Counter
	uploadErrors   prometheus.Counter
	rowsAggregated prometheus.Gauge
	instances      prometheus.Gauge
	processes      prometheus.Gauge
	events         *prometheus.CounterVec
}

func newMetrics(registry prometheus.Registerer) *metrics {
	m := &metrics{
		uploads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: promMetricPrefix + "uploads_total",
			Help: "Number of CSV files uploaded",
		}),
		uploadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: promMetricPrefix + "upload_errors_total",
			Help: "Number of uploads rejected before aggregation",
		}),
		rowsAggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promMetricPrefix + "rows_aggregated",
			Help: "Number of data rows in the last upload after filtering",
		}),
		instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promMetricPrefix + "instances",
			Help: "Number of distinct instances in the current data",
		}),
		processes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: promMetricPrefix + "processes",
			Help: "Number of distinct process names in the current data",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: promMetricPrefix + "view_events_total",
			Help: "View state transitions by kind",
		}, []string{"kind"}),
	}
	registry.MustRegister(m.uploads, m.uploadErrors, m.rowsAggregated, m.instances, m.processes, m.events)
	return m
}

// observe is registered as a view listener
func (m *metrics) observe(event view.Event, snap view.Snapshot) {
	m.events.WithLabelValues(string(event)).Inc()
	if event != view.EventUpload {
		return
	}
	m.uploads.Inc()
	m.instances.Set(float64(len(snap.Rows)))
	m.processes.Set(float64(snap.ProcessCount()))
}
