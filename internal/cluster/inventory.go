package cluster

import (
	"context"
	"fmt"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/labels"
	"sigs.k8s.io/controller-runtime/pkg/client"

	clusterv1alpha1 "github.com/mehdiazizian/cluster-rag-agent/api/v1alpha1"
)

const nodeRoleLabelPrefix = "node-role.kubernetes.io/"

// Pods lists pods in every namespace ("all" or empty) or in one namespace,
// optionally filtered by a label selector.
func (c *Collector) Pods(ctx context.Context, namespace, labelSelector string) (*clusterv1alpha1.PodList, error) {
	var opts []client.ListOption
	if ns := normalizeNamespace(namespace); ns != "" {
		opts = append(opts, client.InNamespace(ns))
	}
	if strings.TrimSpace(labelSelector) != "" {
		selector, err := labels.Parse(labelSelector)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidSelector, labelSelector, err)
		}
		opts = append(opts, client.MatchingLabelsSelector{Selector: selector})
	}

	podList := &corev1.PodList{}
	if err := c.Client.List(ctx, podList, opts...); err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	pods := make([]clusterv1alpha1.Pod, 0, len(podList.Items))
	for _, pod := range podList.Items {
		containers := make([]clusterv1alpha1.ContainerStatus, 0, len(pod.Status.ContainerStatuses))
		for _, cs := range pod.Status.ContainerStatuses {
			containers = append(containers, clusterv1alpha1.ContainerStatus{
				Name:         cs.Name,
				Ready:        cs.Ready,
				RestartCount: cs.RestartCount,
				State:        containerState(cs.State),
			})
		}

		pods = append(pods, clusterv1alpha1.Pod{
			Name:       pod.Name,
			Namespace:  pod.Namespace,
			Status:     string(pod.Status.Phase),
			Node:       pod.Spec.NodeName,
			IP:         pod.Status.PodIP,
			Containers: containers,
			Created:    pod.CreationTimestamp,
		})
	}

	return &clusterv1alpha1.PodList{Count: len(pods), Pods: pods}, nil
}

// Namespaces lists every namespace with its phase and labels.
func (c *Collector) Namespaces(ctx context.Context) (*clusterv1alpha1.NamespaceList, error) {
	nsList := &corev1.NamespaceList{}
	if err := c.Client.List(ctx, nsList); err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	namespaces := make([]clusterv1alpha1.Namespace, 0, len(nsList.Items))
	for _, ns := range nsList.Items {
		nsLabels := ns.Labels
		if nsLabels == nil {
			nsLabels = map[string]string{}
		}
		namespaces = append(namespaces, clusterv1alpha1.Namespace{
			Name:    ns.Name,
			Status:  string(ns.Status.Phase),
			Created: ns.CreationTimestamp,
			Labels:  nsLabels,
		})
	}

	return &clusterv1alpha1.NamespaceList{Count: len(namespaces), Namespaces: namespaces}, nil
}

// Info returns the API server version, node readiness and the namespace count.
func (c *Collector) Info(ctx context.Context) (*clusterv1alpha1.ClusterInfo, error) {
	version, err := c.Discovery.ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to get server version: %w", err)
	}

	nodeList := &corev1.NodeList{}
	if err := c.Client.List(ctx, nodeList); err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}

	nsList := &corev1.NamespaceList{}
	if err := c.Client.List(ctx, nsList); err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	details := make([]clusterv1alpha1.NodeStatus, 0, len(nodeList.Items))
	for i := range nodeList.Items {
		node := &nodeList.Items[i]
		details = append(details, clusterv1alpha1.NodeStatus{
			Name:  node.Name,
			Ready: readyCondition(node),
			Roles: nodeRoles(node),
		})
	}

	return &clusterv1alpha1.ClusterInfo{
		Version: clusterv1alpha1.VersionInfo{
			Major:      version.Major,
			Minor:      version.Minor,
			GitVersion: version.GitVersion,
			Platform:   version.Platform,
		},
		Nodes: clusterv1alpha1.NodeSummary{
			Count:   len(nodeList.Items),
			Details: details,
		},
		NamespacesCount: len(nsList.Items),
	}, nil
}

// readyCondition returns the status of the NodeReady condition ("True",
// "False" or "Unknown").
func readyCondition(node *corev1.Node) string {
	for _, condition := range node.Status.Conditions {
		if condition.Type == corev1.NodeReady {
			return string(condition.Status)
		}
	}
	return string(corev1.ConditionUnknown)
}

// nodeStatus maps the NodeReady condition onto Ready, NotReady or Unknown.
func nodeStatus(node *corev1.Node) string {
	switch corev1.ConditionStatus(readyCondition(node)) {
	case corev1.ConditionTrue:
		return "Ready"
	case corev1.ConditionFalse:
		return "NotReady"
	default:
		return "Unknown"
	}
}

func nodeRoles(node *corev1.Node) []string {
	roles := []string{}
	for key := range node.Labels {
		if role, ok := strings.CutPrefix(key, nodeRoleLabelPrefix); ok && role != "" {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles
}

func containerState(state corev1.ContainerState) string {
	switch {
	case state.Running != nil:
		return "running"
	case state.Waiting != nil:
		return "waiting: " + state.Waiting.Reason
	case state.Terminated != nil:
		return "terminated: " + state.Terminated.Reason
	default:
		return "unknown"
	}
}
