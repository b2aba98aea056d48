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

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// ContainerStatus summarises one container of a pod.
type ContainerStatus struct {
	Name         string `json:"name"`
	Ready        bool   `json:"ready"`
	RestartCount int32  `json:"restart_count"`

	// State is "running", "waiting: <reason>", "terminated: <reason>" or "unknown"
	State string `json:"state"`
}

// Pod is a flattened pod listing entry.
type Pod struct {
	Name       string            `json:"name"`
	Namespace  string            `json:"namespace"`
	Status     string            `json:"status"`
	Node       string            `json:"node"`
	IP         string            `json:"ip"`
	Containers []ContainerStatus `json:"containers"`

	// Created serialises to null when the timestamp is unset
	Created metav1.Time `json:"created"`
}

// PodList is the response of the pod listing operation.
type PodList struct {
	Count int   `json:"count"`
	Pods  []Pod `json:"pods"`
}

// Namespace is a flattened namespace listing entry.
type Namespace struct {
	Name    string            `json:"name"`
	Status  string            `json:"status"`
	Created metav1.Time       `json:"created"`
	Labels  map[string]string `json:"labels"`
}

// NamespaceList is the response of the namespace listing operation.
type NamespaceList struct {
	Count      int         `json:"count"`
	Namespaces []Namespace `json:"namespaces"`
}

// VersionInfo mirrors the API server version.
type VersionInfo struct {
	Major      string `json:"major"`
	Minor      string `json:"minor"`
	GitVersion string `json:"git_version"`
	Platform   string `json:"platform"`
}

// NodeStatus is the readiness and roles of one node.
type NodeStatus struct {
	Name  string   `json:"name"`
	Ready string   `json:"ready"`
	Roles []string `json:"roles"`
}

// NodeSummary counts nodes and lists their status.
type NodeSummary struct {
	Count   int          `json:"count"`
	Details []NodeStatus `json:"details"`
}

// ClusterInfo is the response of the cluster info operation.
type ClusterInfo struct {
	Version         VersionInfo `json:"version"`
	Nodes           NodeSummary `json:"nodes"`
	NamespacesCount int         `json:"namespaces_count"`
}
