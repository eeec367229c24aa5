// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package metrics exports Prometheus counters for debug toggles and responses.

The counters live in their own registry so tests and the /metrics route do
not see collectors registered by other packages.
*/
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "debugflag"

// Registry holds every collector exported by Handler.
var Registry = prometheus.NewRegistry()

var (
	toggles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "toggles_total",
		Help:      "Debug cookie changes made by responses, by action.",
	}, []string{"action"})

	requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Responses served by route handlers, by status code.",
	}, []string{"status"})
)

func init() {
	Registry.MustRegister(
		toggles,
		requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// ObserveToggle counts a debug cookie change. action is "enable" or "disable".
func ObserveToggle(action string) {
	toggles.WithLabelValues(action).Inc()
}

// ObserveResponse counts a response by status code.
func ObserveResponse(statusCode int) {
	requests.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler serves Registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
