/*
Copyright 2025.

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

package controller

import (
	"context"
	"errors"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	clusterv1alpha1 "github.com/mehdiazizian/cluster-rag-agent/api/v1alpha1"
	"github.com/mehdiazizian/cluster-rag-agent/internal/cluster"
)

// UsageSource aggregates cluster usage. Each call refreshes the usage gauges.
type UsageSource interface {
	ClusterCPU(ctx context.Context) (*clusterv1alpha1.ClusterCPU, error)
	ClusterMemory(ctx context.Context) (*clusterv1alpha1.ClusterMemory, error)
}

// MetricsRefresher periodically aggregates cluster CPU and memory so the
// exported utilization gauges stay current between API calls.
type MetricsRefresher struct {
	Source   UsageSource
	Interval time.Duration
}

// Start refreshes once immediately, then every Interval until ctx is done.
func (r *MetricsRefresher) Start(ctx context.Context) error {
	logger := log.FromContext(ctx).WithName("metrics-refresher")
	if r.Interval <= 0 {
		logger.Info("Periodic metrics refresh disabled")
		return nil
	}
	logger.Info("Starting metrics refresher", "interval", r.Interval.String())

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		r.refresh(ctx)

		select {
		case <-ctx.Done():
			logger.Info("Stopping metrics refresher")
			return nil
		case <-ticker.C:
		}
	}
}

func (r *MetricsRefresher) refresh(ctx context.Context) {
	logger := log.FromContext(ctx).WithName("metrics-refresher")

	cpu, err := r.Source.ClusterCPU(ctx)
	if err != nil {
		r.logFailure(ctx, "cpu", err)
		return
	}
	memory, err := r.Source.ClusterMemory(ctx)
	if err != nil {
		r.logFailure(ctx, "memory", err)
		return
	}

	logger.V(1).Info("Refreshed cluster usage",
		"cpuPercent", cpu.Summary.UtilizationPercent,
		"memoryPercent", memory.Summary.UtilizationPercent,
		"nodes", len(cpu.Nodes))
}

func (r *MetricsRefresher) logFailure(ctx context.Context, resource string, err error) {
	logger := log.FromContext(ctx).WithName("metrics-refresher")
	if errors.Is(err, cluster.ErrMetricsUnavailable) {
		logger.V(1).Info("Metrics server not available", "resource", resource)
		return
	}
	logger.Error(err, "Failed to refresh cluster usage", "resource", resource)
}
