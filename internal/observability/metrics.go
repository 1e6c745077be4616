// metrics.go
//
// Persistence and API service for a cohort-scoped anonymous song message board
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of menfessdb.
// menfessdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// menfessdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with menfessdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreOperations counts store operations by operation and outcome kind.
	StoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "menfessdb_store_operations_total",
		Help: "Total number of store operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// StoreOperationLatency records store operation latency by operation.
	StoreOperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "menfessdb_store_operation_latency_seconds",
		Help:    "Store operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// TrackOperation returns a function that records latency and outcome when called with the result.
//
//	done := observability.TrackOperation("submit_message")
//	defer func() { done(string(types.KindOf(err))) }()
func TrackOperation(operation string) func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		if outcome == "" {
			outcome = "ok"
		}
		StoreOperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
		StoreOperations.WithLabelValues(operation, outcome).Inc()
	}
}
