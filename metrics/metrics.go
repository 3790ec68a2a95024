// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics exposes protocol operation counters. The default
// implementation is a no-op so engines never require a live registry;
// call InitializePrometheusMetrics to turn it on.
package metrics

import "net/http"

var metrics Metrics = &noopMetrics{}

// Metrics defines the metrics backend surface used by the engines.
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateHandler() http.Handler
}

// CountMeter is a cumulative counter.
type CountMeter interface {
	Add(delta int64)
}

// CountVecMeter is a cumulative counter with labels.
type CountVecMeter interface {
	AddWithLabel(delta int64, labels map[string]string)
}

// Counter returns a counter with the given name.
func Counter(name string) CountMeter {
	return metrics.GetOrCreateCountMeter(name)
}

// CounterVec returns a labeled counter with the given name.
func CounterVec(name string, labels []string) CountVecMeter {
	return metrics.GetOrCreateCountVecMeter(name, labels)
}

// HTTPHandler returns the scrape handler of the active backend.
func HTTPHandler() http.Handler {
	return metrics.GetOrCreateHandler()
}

type noopMetrics struct{}

type noopMeters struct{}

func (n *noopMetrics) GetOrCreateCountMeter(string) CountMeter { return &noopMeters{} }

func (n *noopMetrics) GetOrCreateCountVecMeter(string, []string) CountVecMeter { return &noopMeters{} }

func (n *noopMetrics) GetOrCreateHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	})
}

func (n *noopMeters) Add(int64) {}

func (n *noopMeters) AddWithLabel(int64, map[string]string) {}
