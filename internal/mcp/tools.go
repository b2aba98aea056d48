// Package mcp serves the cluster operations as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/cluster"
	"github.com/mehdiazizian/cluster-rag-agent/internal/metrics"
)

// Tool names.
const (
	ToolClusterCPU    = "get_cluster_cpu"
	ToolClusterMemory = "get_cluster_memory"
	ToolNodeMetrics   = "get_node_metrics"
	ToolPods          = "get_pods"
	ToolPodMetrics    = "get_pod_metrics"
	ToolClusterInfo   = "get_cluster_info"
	ToolNamespaces    = "get_namespaces"
)

const frontend = "mcp"

type param struct {
	name        string
	description string
	def         string
}

type toolSpec struct {
	name        string
	description string
	params      []param

	// unavailable is the error reported when the metrics API is missing
	unavailable map[string]string
}

var namespaceParam = param{
	name:        "namespace",
	description: "Namespace to query (default: all namespaces)",
	def:         "all",
}

var toolSpecs = []toolSpec{
	{
		name:        ToolClusterCPU,
		description: "Get CPU usage across all nodes in the cluster. Returns current CPU usage, capacity, and utilization percentage.",
		unavailable: map[string]string{
			"error": "Metrics server not available. Install metrics-server in your cluster.",
			"hint":  cluster.MetricsServerHint,
		},
	},
	{
		name:        ToolClusterMemory,
		description: "Get memory usage across all nodes in the cluster. Returns current memory usage, capacity, and utilization percentage.",
		unavailable: map[string]string{"error": "Metrics server not available"},
	},
	{
		name:        ToolNodeMetrics,
		description: "Get detailed CPU and memory metrics for a specific node or all nodes.",
		params: []param{
			{name: "node_name", description: "Name of the node (optional, omit to get all nodes)"},
		},
		unavailable: map[string]string{"error": "Metrics server not available or node not found"},
	},
	{
		name:        ToolPods,
		description: "List pods in a namespace with their status, resource usage, and details.",
		params: []param{
			namespaceParam,
			{name: "label_selector", description: "Label selector to filter pods (e.g., 'app=nginx')"},
		},
	},
	{
		name:        ToolPodMetrics,
		description: "Get CPU and memory metrics for pods in a namespace.",
		params: []param{
			namespaceParam,
			{name: "pod_name", description: "Specific pod name (optional)"},
		},
		unavailable: map[string]string{"error": "Metrics server not available or pod not found"},
	},
	{
		name:        ToolClusterInfo,
		description: "Get general cluster information including version, nodes count, and health status.",
	},
	{
		name:        ToolNamespaces,
		description: "List all namespaces in the cluster.",
	},
}

// Tools dispatches tool calls to the cluster operations. Every outcome,
// failures included, is rendered as JSON text.
type Tools struct {
	// Cluster is nil when the Kubernetes client could not be initialized
	Cluster  cluster.Interface
	Recorder *metrics.Recorder
}

// Call runs the named tool with its string arguments.
func (t *Tools) Call(ctx context.Context, name string, args map[string]string) string {
	logger := log.FromContext(ctx).WithName("mcp-tools").WithValues("tool", name)

	spec, ok := lookup(name)
	if !ok {
		t.Recorder.RecordRequest(frontend, name, "unknown")
		return compact(map[string]string{"error": fmt.Sprintf("Unknown tool: %s", name)})
	}
	if t.Cluster == nil {
		t.Recorder.RecordRequest(frontend, name, "disabled")
		return compact(map[string]string{"error": "Kubernetes client not initialized. Check kubeconfig."})
	}

	result, err := t.dispatch(ctx, name, args)
	switch {
	case err == nil:
		t.Recorder.RecordRequest(frontend, name, "ok")
		return indented(result)
	case errors.Is(err, cluster.ErrMetricsUnavailable) && spec.unavailable != nil:
		t.Recorder.RecordRequest(frontend, name, "unavailable")
		logger.V(1).Info("Metrics API unavailable", "error", err.Error())
		return compact(spec.unavailable)
	default:
		t.Recorder.RecordRequest(frontend, name, "error")
		logger.Error(err, "Tool call failed")
		return indented(map[string]string{"error": err.Error(), "type": errorType(err)})
	}
}

func (t *Tools) dispatch(ctx context.Context, name string, args map[string]string) (any, error) {
	switch name {
	case ToolClusterCPU:
		return t.Cluster.ClusterCPU(ctx)
	case ToolClusterMemory:
		return t.Cluster.ClusterMemory(ctx)
	case ToolNodeMetrics:
		return t.Cluster.NodeMetrics(ctx, args["node_name"])
	case ToolPods:
		return t.Cluster.Pods(ctx, argOr(args, "namespace", "all"), args["label_selector"])
	case ToolPodMetrics:
		return t.Cluster.PodMetrics(ctx, argOr(args, "namespace", "all"), args["pod_name"])
	case ToolClusterInfo:
		return t.Cluster.Info(ctx)
	case ToolNamespaces:
		return t.Cluster.Namespaces(ctx)
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}

func lookup(name string) (toolSpec, bool) {
	for _, s := range toolSpecs {
		if s.name == name {
			return s, true
		}
	}
	return toolSpec{}, false
}

func argOr(args map[string]string, key, def string) string {
	if v := args[key]; v != "" {
		return v
	}
	return def
}

// errorType names the innermost error's type, e.g. "errors.StatusError".
func errorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", err), "*")
}

func compact(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err.Error())
	}
	return string(raw)
}

func indented(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return compact(map[string]string{"error": err.Error(), "type": errorType(err)})
	}
	return string(raw)
}
