package metrics

import (
	clusterv1alpha1 "github.com/mehdiazizian/cluster-rag-agent/api/v1alpha1"
)

const (
	// CorePrecision is the number of decimals kept for core figures.
	CorePrecision = 3
	// DisplayPrecision is used for GiB, MiB and percentages.
	DisplayPrecision = 2

	bytesPerMi = 1 << 20
	bytesPerGi = 1 << 30
)

// BytesToGi converts bytes to gibibytes without rounding.
func BytesToGi(b float64) float64 { return b / bytesPerGi }

// BytesToMi converts bytes to mebibytes without rounding.
func BytesToMi(b float64) float64 { return b / bytesPerMi }

// Cores rounds a cores figure for display.
func Cores(v float64) float64 { return Round(v, CorePrecision) }

// Percent rounds a utilization percentage for display.
func Percent(v float64) float64 { return Round(v, DisplayPrecision) }

// Gi converts bytes to gibibytes rounded for display.
func Gi(b float64) float64 { return Round(BytesToGi(b), DisplayPrecision) }

// Mi converts bytes to mebibytes rounded for display.
func Mi(b float64) float64 { return Round(BytesToMi(b), DisplayPrecision) }

// CPUUsage renders one subject's CPU figures.
func CPUUsage(usage, capacity float64) clusterv1alpha1.CPUUsage {
	return clusterv1alpha1.CPUUsage{
		UsageCores:         Cores(usage),
		CapacityCores:      Cores(capacity),
		UtilizationPercent: Percent(Utilization(usage, capacity)),
	}
}

// MemoryUsage renders one subject's memory figures.
func MemoryUsage(usage, capacity float64) clusterv1alpha1.MemoryUsage {
	return clusterv1alpha1.MemoryUsage{
		UsageGi:            Gi(usage),
		CapacityGi:         Gi(capacity),
		UtilizationPercent: Percent(Utilization(usage, capacity)),
	}
}

// CPUReport renders an aggregate of CPU samples.
func CPUReport(r *Result) clusterv1alpha1.ClusterCPU {
	report := clusterv1alpha1.ClusterCPU{
		Summary: clusterv1alpha1.CPUSummary{
			TotalUsageCores:    Cores(r.TotalUsage),
			TotalCapacityCores: Cores(r.TotalCapacity),
			UtilizationPercent: Percent(r.UtilizationPercent),
		},
		Nodes: make([]clusterv1alpha1.NodeCPU, 0, len(r.Subjects)),
	}

	for _, s := range r.Subjects {
		report.Nodes = append(report.Nodes, clusterv1alpha1.NodeCPU{
			Node:     s.Name,
			CPUUsage: CPUUsage(s.Usage, s.Capacity),
		})
	}
	return report
}

// MemoryReport renders an aggregate of memory samples, keeping raw bytes
// next to the gibibyte figures.
func MemoryReport(r *Result) clusterv1alpha1.ClusterMemory {
	report := clusterv1alpha1.ClusterMemory{
		Summary: clusterv1alpha1.MemorySummary{
			TotalUsageBytes:    r.TotalUsage,
			TotalCapacityBytes: r.TotalCapacity,
			TotalUsageGi:       Gi(r.TotalUsage),
			TotalCapacityGi:    Gi(r.TotalCapacity),
			UtilizationPercent: Percent(r.UtilizationPercent),
		},
		Nodes: make([]clusterv1alpha1.NodeMemory, 0, len(r.Subjects)),
	}

	for _, s := range r.Subjects {
		report.Nodes = append(report.Nodes, clusterv1alpha1.NodeMemory{
			Node:          s.Name,
			UsageBytes:    s.Usage,
			CapacityBytes: s.Capacity,
			MemoryUsage:   MemoryUsage(s.Usage, s.Capacity),
		})
	}
	return report
}
