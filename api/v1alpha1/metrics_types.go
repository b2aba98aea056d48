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

package v1alpha1

// CPUUsage is a cores figure for one subject.
// Cores are rounded to 3 decimals, percentages to 2.
type CPUUsage struct {
	// UsageCores currently consumed
	UsageCores float64 `json:"usage_cores"`

	// CapacityCores reported by the node
	CapacityCores float64 `json:"capacity_cores"`

	// UtilizationPercent is usage/capacity*100, 0 when capacity is 0.
	// Not clamped: overcommitted subjects report more than 100.
	UtilizationPercent float64 `json:"utilization_percent"`
}

// MemoryUsage is a gibibyte figure for one subject.
type MemoryUsage struct {
	// UsageGi currently consumed
	UsageGi float64 `json:"usage_gi"`

	// CapacityGi reported by the node
	CapacityGi float64 `json:"capacity_gi"`

	// UtilizationPercent is usage/capacity*100, 0 when capacity is 0.
	UtilizationPercent float64 `json:"utilization_percent"`
}

// CPUSummary holds cluster-wide CPU totals.
type CPUSummary struct {
	TotalUsageCores    float64 `json:"total_usage_cores"`
	TotalCapacityCores float64 `json:"total_capacity_cores"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// NodeCPU is the per-node entry of a ClusterCPU report.
type NodeCPU struct {
	Node string `json:"node"`
	CPUUsage
}

// ClusterCPU is the response of the cluster CPU operation.
type ClusterCPU struct {
	Summary CPUSummary `json:"cluster_cpu"`
	Nodes   []NodeCPU  `json:"nodes"`
}

// MemorySummary holds cluster-wide memory totals in bytes and gibibytes.
type MemorySummary struct {
	TotalUsageBytes    float64 `json:"total_usage_bytes"`
	TotalCapacityBytes float64 `json:"total_capacity_bytes"`
	TotalUsageGi       float64 `json:"total_usage_gi"`
	TotalCapacityGi    float64 `json:"total_capacity_gi"`
	UtilizationPercent float64 `json:"utilization_percent"`
}

// NodeMemory is the per-node entry of a ClusterMemory report.
type NodeMemory struct {
	Node          string  `json:"node"`
	UsageBytes    float64 `json:"usage_bytes"`
	CapacityBytes float64 `json:"capacity_bytes"`
	MemoryUsage
}

// ClusterMemory is the response of the cluster memory operation.
type ClusterMemory struct {
	Summary MemorySummary `json:"cluster_memory"`
	Nodes   []NodeMemory  `json:"nodes"`
}

// PodCounts reports pod slots on a node.
type PodCounts struct {
	Allocatable int64 `json:"allocatable"`
	Capacity    int64 `json:"capacity"`
}

// NodeMetrics is a combined CPU/memory view of one node.
type NodeMetrics struct {
	Name   string      `json:"name"`
	Status string      `json:"status"`
	CPU    CPUUsage    `json:"cpu"`
	Memory MemoryUsage `json:"memory"`
	Pods   PodCounts   `json:"pods"`
}

// ContainerMetrics is the usage of a single container.
type ContainerMetrics struct {
	Name     string  `json:"name"`
	CPUCores float64 `json:"cpu_cores"`
	MemoryMi float64 `json:"memory_mi"`
}

// PodMetrics sums container usage of a pod.
type PodMetrics struct {
	Name          string             `json:"name"`
	Namespace     string             `json:"namespace"`
	TotalCPUCores float64            `json:"total_cpu_cores"`
	TotalMemoryMi float64            `json:"total_memory_mi"`
	Containers    []ContainerMetrics `json:"containers"`
}

// PodMetricsList is the response of the pod metrics operation.
type PodMetricsList struct {
	Count int          `json:"count"`
	Pods  []PodMetrics `json:"pods"`
}
