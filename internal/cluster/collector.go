package cluster

import (
	"context"
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/client-go/discovery"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	clusterv1alpha1 "github.com/mehdiazizian/cluster-rag-agent/api/v1alpha1"
	"github.com/mehdiazizian/cluster-rag-agent/internal/kube"
	"github.com/mehdiazizian/cluster-rag-agent/internal/metrics"
)

// Collector reads usage from the resource metrics API and inventory from the
// core API, and turns them into reports through the metrics aggregator.
type Collector struct {
	Client    client.Reader
	Discovery discovery.ServerVersionInterface

	// Recorder is optional
	Recorder *metrics.Recorder
}

// NewCollector returns a Collector over clients.
func NewCollector(clients *kube.Clients, recorder *metrics.Recorder) *Collector {
	return &Collector{
		Client:    clients.Client,
		Discovery: clients.Discovery,
		Recorder:  recorder,
	}
}

// ClusterCPU aggregates CPU usage of every node reporting metrics.
func (c *Collector) ClusterCPU(ctx context.Context) (*clusterv1alpha1.ClusterCPU, error) {
	result, err := c.aggregateNodes(ctx, corev1.ResourceCPU)
	if err != nil {
		return nil, err
	}
	report := metrics.CPUReport(result)
	return &report, nil
}

// ClusterMemory aggregates memory usage of every node reporting metrics.
func (c *Collector) ClusterMemory(ctx context.Context) (*clusterv1alpha1.ClusterMemory, error) {
	result, err := c.aggregateNodes(ctx, corev1.ResourceMemory)
	if err != nil {
		return nil, err
	}
	report := metrics.MemoryReport(result)
	return &report, nil
}

func (c *Collector) aggregateNodes(ctx context.Context, resourceName corev1.ResourceName) (*metrics.Result, error) {
	logger := log.FromContext(ctx).WithName("cluster-collector")

	nodeMetrics := &metricsv1beta1.NodeMetricsList{}
	if err := c.Client.List(ctx, nodeMetrics); err != nil {
		return nil, metricsError("list node metrics", err)
	}

	capacities, err := c.nodeCapacities(ctx)
	if err != nil {
		return nil, err
	}

	samples := make([]metrics.Sample, 0, len(nodeMetrics.Items))
	for _, item := range nodeMetrics.Items {
		capacity := "0"
		if list, ok := capacities[item.Name]; ok {
			capacity = quantityString(list, resourceName)
		}
		samples = append(samples, metrics.Sample{
			Name:     item.Name,
			Usage:    quantityString(item.Usage, resourceName),
			Capacity: capacity,
		})
	}

	result, err := metrics.Aggregate(samples)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate node %s: %w", resourceName, err)
	}
	c.Recorder.RecordAggregate(string(resourceName), result)

	logger.V(1).Info("Aggregated node usage",
		"resource", resourceName,
		"nodes", len(samples),
		"utilizationPercent", metrics.Percent(result.UtilizationPercent))
	return result, nil
}

// NodeMetrics reports CPU, memory and pod counts for one node, or for every
// node when nodeName is empty. Metrics for nodes that no longer exist are skipped.
func (c *Collector) NodeMetrics(ctx context.Context, nodeName string) ([]clusterv1alpha1.NodeMetrics, error) {
	var items []metricsv1beta1.NodeMetrics
	if nodeName != "" {
		item := &metricsv1beta1.NodeMetrics{}
		if err := c.Client.Get(ctx, client.ObjectKey{Name: nodeName}, item); err != nil {
			return nil, metricsError(fmt.Sprintf("get node metrics for %s", nodeName), err)
		}
		items = []metricsv1beta1.NodeMetrics{*item}
	} else {
		list := &metricsv1beta1.NodeMetricsList{}
		if err := c.Client.List(ctx, list); err != nil {
			return nil, metricsError("list node metrics", err)
		}
		items = list.Items
	}

	nodeList := &corev1.NodeList{}
	if err := c.Client.List(ctx, nodeList); err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	nodes := make(map[string]*corev1.Node, len(nodeList.Items))
	for i := range nodeList.Items {
		nodes[nodeList.Items[i].Name] = &nodeList.Items[i]
	}

	result := make([]clusterv1alpha1.NodeMetrics, 0, len(items))
	for _, item := range items {
		node, ok := nodes[item.Name]
		if !ok {
			continue
		}

		agg, err := metrics.Aggregate([]metrics.Sample{
			{
				Name:     "cpu",
				Usage:    quantityString(item.Usage, corev1.ResourceCPU),
				Capacity: quantityString(node.Status.Capacity, corev1.ResourceCPU),
			},
			{
				Name:     "memory",
				Usage:    quantityString(item.Usage, corev1.ResourceMemory),
				Capacity: quantityString(node.Status.Capacity, corev1.ResourceMemory),
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate node %s: %w", item.Name, err)
		}
		cpu, memory := agg.Subjects[0], agg.Subjects[1]

		result = append(result, clusterv1alpha1.NodeMetrics{
			Name:   item.Name,
			Status: nodeStatus(node),
			CPU:    metrics.CPUUsage(cpu.Usage, cpu.Capacity),
			Memory: metrics.MemoryUsage(memory.Usage, memory.Capacity),
			Pods: clusterv1alpha1.PodCounts{
				Allocatable: node.Status.Allocatable.Pods().Value(),
				Capacity:    node.Status.Capacity.Pods().Value(),
			},
		})
	}
	return result, nil
}

// PodMetrics reports per-container usage for pods in every namespace
// ("all" or empty), one namespace, or a single pod. podName is only honoured
// together with a concrete namespace.
func (c *Collector) PodMetrics(ctx context.Context, namespace, podName string) (*clusterv1alpha1.PodMetricsList, error) {
	namespace = normalizeNamespace(namespace)

	var items []metricsv1beta1.PodMetrics
	if namespace != "" && podName != "" {
		item := &metricsv1beta1.PodMetrics{}
		if err := c.Client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: podName}, item); err != nil {
			return nil, metricsError(fmt.Sprintf("get pod metrics for %s/%s", namespace, podName), err)
		}
		items = []metricsv1beta1.PodMetrics{*item}
	} else {
		list := &metricsv1beta1.PodMetricsList{}
		var opts []client.ListOption
		if namespace != "" {
			opts = append(opts, client.InNamespace(namespace))
		}
		if err := c.Client.List(ctx, list, opts...); err != nil {
			return nil, metricsError("list pod metrics", err)
		}
		items = list.Items
	}

	pods := make([]clusterv1alpha1.PodMetrics, 0, len(items))
	for _, item := range items {
		pod, err := podUsage(item)
		if err != nil {
			return nil, err
		}
		pods = append(pods, pod)
	}

	return &clusterv1alpha1.PodMetricsList{Count: len(pods), Pods: pods}, nil
}

func podUsage(item metricsv1beta1.PodMetrics) (clusterv1alpha1.PodMetrics, error) {
	cpuSamples := make([]metrics.Sample, 0, len(item.Containers))
	memSamples := make([]metrics.Sample, 0, len(item.Containers))
	for _, container := range item.Containers {
		cpuSamples = append(cpuSamples, metrics.Sample{
			Name:  container.Name,
			Usage: quantityString(container.Usage, corev1.ResourceCPU),
		})
		memSamples = append(memSamples, metrics.Sample{
			Name:  container.Name,
			Usage: quantityString(container.Usage, corev1.ResourceMemory),
		})
	}

	cpu, err := metrics.Aggregate(cpuSamples)
	if err != nil {
		return clusterv1alpha1.PodMetrics{}, fmt.Errorf("failed to aggregate cpu of pod %s/%s: %w", item.Namespace, item.Name, err)
	}
	memory, err := metrics.Aggregate(memSamples)
	if err != nil {
		return clusterv1alpha1.PodMetrics{}, fmt.Errorf("failed to aggregate memory of pod %s/%s: %w", item.Namespace, item.Name, err)
	}

	containers := make([]clusterv1alpha1.ContainerMetrics, 0, len(item.Containers))
	for i := range cpu.Subjects {
		containers = append(containers, clusterv1alpha1.ContainerMetrics{
			Name:     cpu.Subjects[i].Name,
			CPUCores: metrics.Cores(cpu.Subjects[i].Usage),
			MemoryMi: metrics.Mi(memory.Subjects[i].Usage),
		})
	}

	return clusterv1alpha1.PodMetrics{
		Name:          item.Name,
		Namespace:     item.Namespace,
		TotalCPUCores: metrics.Cores(cpu.TotalUsage),
		TotalMemoryMi: metrics.Mi(memory.TotalUsage),
		Containers:    containers,
	}, nil
}

func (c *Collector) nodeCapacities(ctx context.Context) (map[string]corev1.ResourceList, error) {
	nodeList := &corev1.NodeList{}
	if err := c.Client.List(ctx, nodeList); err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	capacities := make(map[string]corev1.ResourceList, len(nodeList.Items))
	for _, node := range nodeList.Items {
		capacities[node.Name] = node.Status.Capacity
	}
	return capacities, nil
}

// quantityString renders list[name] in a form the aggregator parses: CPU as
// nanocores with an "n" suffix, everything else as a plain integer.
// An absent quantity renders as "".
func quantityString(list corev1.ResourceList, name corev1.ResourceName) string {
	q, ok := list[name]
	if !ok {
		return ""
	}
	if name == corev1.ResourceCPU {
		return strconv.FormatInt(q.ScaledValue(resource.Nano), 10) + "n"
	}
	return strconv.FormatInt(q.Value(), 10)
}

func normalizeNamespace(namespace string) string {
	if namespace == "all" {
		return ""
	}
	return namespace
}
