package cluster

import (
	"context"
	"fmt"
	"strings"
)

// summaryNodeLimit caps the per-node lines of a summary.
const summaryNodeLimit = 3

// Summarize renders the live cluster state as a plain-text block suitable
// for a language model prompt.
func (c *Collector) Summarize(ctx context.Context) (string, error) {
	info, err := c.Info(ctx)
	if err != nil {
		return "", err
	}
	pods, err := c.Pods(ctx, "all", "")
	if err != nil {
		return "", err
	}
	cpu, err := c.ClusterCPU(ctx)
	if err != nil {
		return "", err
	}
	memory, err := c.ClusterMemory(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("CURRENT CLUSTER STATE:\n")
	fmt.Fprintf(&b, "- Kubernetes Version: %s\n", info.Version.GitVersion)
	fmt.Fprintf(&b, "- Total Nodes: %d\n", info.Nodes.Count)
	fmt.Fprintf(&b, "- Total Pods: %d\n", pods.Count)

	b.WriteString("\nCPU USAGE:\n")
	fmt.Fprintf(&b, "- Total Usage: %v cores\n", cpu.Summary.TotalUsageCores)
	fmt.Fprintf(&b, "- Total Capacity: %v cores\n", cpu.Summary.TotalCapacityCores)
	fmt.Fprintf(&b, "- Utilization: %v%%\n", cpu.Summary.UtilizationPercent)

	b.WriteString("\nMEMORY USAGE:\n")
	fmt.Fprintf(&b, "- Total Usage: %v GiB\n", memory.Summary.TotalUsageGi)
	fmt.Fprintf(&b, "- Total Capacity: %v GiB\n", memory.Summary.TotalCapacityGi)
	fmt.Fprintf(&b, "- Utilization: %v%%\n", memory.Summary.UtilizationPercent)

	b.WriteString("\nNODE DETAILS:\n")
	for i, node := range cpu.Nodes {
		if i == summaryNodeLimit {
			break
		}
		fmt.Fprintf(&b, "- %s: CPU %v%%\n", node.Node, node.UtilizationPercent)
	}

	return b.String(), nil
}
