package cluster

import (
	"context"

	clusterv1alpha1 "github.com/mehdiazizian/cluster-rag-agent/api/v1alpha1"
)

// Interface is the set of read-only cluster operations exposed by the front ends.
type Interface interface {
	ClusterCPU(ctx context.Context) (*clusterv1alpha1.ClusterCPU, error)
	ClusterMemory(ctx context.Context) (*clusterv1alpha1.ClusterMemory, error)
	NodeMetrics(ctx context.Context, nodeName string) ([]clusterv1alpha1.NodeMetrics, error)
	PodMetrics(ctx context.Context, namespace, podName string) (*clusterv1alpha1.PodMetricsList, error)
	Pods(ctx context.Context, namespace, labelSelector string) (*clusterv1alpha1.PodList, error)
	Namespaces(ctx context.Context) (*clusterv1alpha1.NamespaceList, error)
	Info(ctx context.Context) (*clusterv1alpha1.ClusterInfo, error)
	Summarize(ctx context.Context) (string, error)
}

var _ Interface = &Collector{}
