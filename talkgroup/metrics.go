/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package talkgroup

import "github.com/prometheus/client_golang/prometheus"

// metrics are internal counters/gauges the dispatcher updates on every
// talker transition and QSY; no HTTP exposition happens here (the status
// endpoint that would scrape a registry is an external collaborator per
// spec.md's Non-goals), but a caller (cmd/goreflectord) may register
// these into its own *prometheus.Registry for the external exporter to
// pick up.
type metrics struct {
	activeTalkGroups prometheus.Gauge
	talkerSeconds    prometheus.Counter
	qsyTotal         prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		activeTalkGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "goreflector",
			Subsystem: "talkgroup",
			Name:      "active_total",
			Help:      "Number of talk groups with at least one member.",
		}),
		talkerSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goreflector",
			Subsystem: "talkgroup",
			Name:      "talker_seconds_total",
			Help:      "Cumulative seconds any session has held the floor.",
		}),
		qsyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "goreflector",
			Subsystem: "talkgroup",
			Name:      "qsy_total",
			Help:      "Number of QSY requests serviced (operator and auto).",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.activeTalkGroups, m.talkerSeconds, m.qsyTotal)
	}
	return m
}
