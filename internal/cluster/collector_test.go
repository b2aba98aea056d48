package cluster

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/controller-runtime/pkg/client"

	clusterv1alpha1 "github.com/mehdiazizian/cluster-rag-agent/api/v1alpha1"
)

var _ = Describe("Collector", func() {
	var (
		ctx       context.Context
		collector *Collector
		objects   []client.Object
	)

	BeforeEach(func() {
		ctx = context.Background()
		objects = []client.Object{
			createNode("node1", "4", "8Gi", true, map[string]string{"node-role.kubernetes.io/control-plane": ""}),
			createNode("node2", "4", "8Gi", false, nil),
			createNodeMetrics("node1", "1", "2Gi"),
			createNodeMetrics("node2", "500m", "3Gi"),
			createPodMetrics("default", "web",
				containerUsage{name: "app", cpu: "250m", memory: "64Mi"},
				containerUsage{name: "sidecar", cpu: "50m", memory: "32Mi"}),
			createPodMetrics("kube-system", "dns",
				containerUsage{name: "coredns", cpu: "10m", memory: "20Mi"}),
		}
		collector = &Collector{
			Client:    newFakeClient(nil, objects...),
			Discovery: newFakeDiscovery("v1.30.2"),
		}
	})

	Context("ClusterCPU", func() {
		It("sums node usage against node capacity", func() {
			report, err := collector.ClusterCPU(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Summary.TotalUsageCores).To(Equal(1.5))
			Expect(report.Summary.TotalCapacityCores).To(Equal(8.0))
			Expect(report.Summary.UtilizationPercent).To(Equal(18.75))
			Expect(report.Nodes).To(ConsistOf(
				clusterv1alpha1.NodeCPU{Node: "node1", CPUUsage: clusterv1alpha1.CPUUsage{UsageCores: 1, CapacityCores: 4, UtilizationPercent: 25}},
				clusterv1alpha1.NodeCPU{Node: "node2", CPUUsage: clusterv1alpha1.CPUUsage{UsageCores: 0.5, CapacityCores: 4, UtilizationPercent: 12.5}},
			))
		})

		It("uses zero capacity for nodes that are gone", func() {
			collector.Client = newFakeClient(nil, createNodeMetrics("ghost", "1", "1Gi"))

			report, err := collector.ClusterCPU(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Summary.TotalUsageCores).To(Equal(1.0))
			Expect(report.Summary.TotalCapacityCores).To(BeZero())
			Expect(report.Summary.UtilizationPercent).To(BeZero())
			Expect(report.Nodes).To(HaveLen(1))
			Expect(report.Nodes[0].UtilizationPercent).To(BeZero())
		})

		It("reports an empty cluster without error", func() {
			collector.Client = newFakeClient(nil)

			report, err := collector.ClusterCPU(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Nodes).To(BeEmpty())
			Expect(report.Summary.UtilizationPercent).To(BeZero())
		})
	})

	Context("ClusterMemory", func() {
		It("reports bytes and GiB", func() {
			report, err := collector.ClusterMemory(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Summary.TotalUsageGi).To(Equal(5.0))
			Expect(report.Summary.TotalCapacityGi).To(Equal(16.0))
			Expect(report.Summary.TotalUsageBytes).To(Equal(5.0 * 1024 * 1024 * 1024))
			Expect(report.Summary.UtilizationPercent).To(Equal(31.25))
			Expect(report.Nodes).To(HaveLen(2))
		})
	})

	Context("metrics API availability", func() {
		DescribeTable("flags a missing metrics API",
			func(apiErr error) {
				collector.Client = newFakeClient(failingMetricsList(apiErr), objects...)

				_, err := collector.ClusterCPU(ctx)
				Expect(errors.Is(err, ErrMetricsUnavailable)).To(BeTrue())

				_, err = collector.ClusterMemory(ctx)
				Expect(errors.Is(err, ErrMetricsUnavailable)).To(BeTrue())

				_, err = collector.PodMetrics(ctx, "all", "")
				Expect(errors.Is(err, ErrMetricsUnavailable)).To(BeTrue())
			},
			Entry("not found", apierrors.NewNotFound(schema.GroupResource{Group: "metrics.k8s.io", Resource: "nodes"}, "")),
			Entry("service unavailable", apierrors.NewServiceUnavailable("metrics-server is starting")),
			Entry("aggregated API message", errors.New("the server could not find the requested resource (get nodes.metrics.k8s.io)")),
		)

		It("keeps other failures distinct", func() {
			collector.Client = newFakeClient(failingMetricsList(errors.New("boom")), objects...)

			_, err := collector.ClusterCPU(ctx)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, ErrMetricsUnavailable)).To(BeFalse())
			Expect(err.Error()).To(ContainSubstring("boom"))
		})
	})

	Context("NodeMetrics", func() {
		It("reports every node with metrics", func() {
			nodes, err := collector.NodeMetrics(ctx, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(nodes).To(HaveLen(2))

			byName := map[string]clusterv1alpha1.NodeMetrics{}
			for _, n := range nodes {
				byName[n.Name] = n
			}
			Expect(byName["node1"].Status).To(Equal("Ready"))
			Expect(byName["node2"].Status).To(Equal("NotReady"))
			Expect(byName["node1"].CPU.UtilizationPercent).To(Equal(25.0))
			Expect(byName["node2"].Memory.UsageGi).To(Equal(3.0))
			Expect(byName["node2"].Memory.UtilizationPercent).To(Equal(37.5))
			Expect(byName["node1"].Pods).To(Equal(clusterv1alpha1.PodCounts{Allocatable: 110, Capacity: 110}))
		})

		It("reports a single node", func() {
			nodes, err := collector.NodeMetrics(ctx, "node2")
			Expect(err).ToNot(HaveOccurred())
			Expect(nodes).To(HaveLen(1))
			Expect(nodes[0].CPU.UsageCores).To(Equal(0.5))
		})

		It("skips metrics for nodes that no longer exist", func() {
			collector.Client = newFakeClient(nil, append(objects, createNodeMetrics("ghost", "1", "1Gi"))...)

			nodes, err := collector.NodeMetrics(ctx, "")
			Expect(err).ToNot(HaveOccurred())
			Expect(nodes).To(HaveLen(2))
		})

		It("treats an unknown node as unavailable metrics", func() {
			_, err := collector.NodeMetrics(ctx, "missing")
			Expect(errors.Is(err, ErrMetricsUnavailable)).To(BeTrue())
		})
	})

	Context("PodMetrics", func() {
		It("lists every namespace for all", func() {
			list, err := collector.PodMetrics(ctx, "all", "")
			Expect(err).ToNot(HaveOccurred())
			Expect(list.Count).To(Equal(2))
		})

		It("ignores the pod name without a concrete namespace", func() {
			list, err := collector.PodMetrics(ctx, "all", "web")
			Expect(err).ToNot(HaveOccurred())
			Expect(list.Count).To(Equal(2))
		})

		It("filters by namespace", func() {
			list, err := collector.PodMetrics(ctx, "kube-system", "")
			Expect(err).ToNot(HaveOccurred())
			Expect(list.Count).To(Equal(1))
			Expect(list.Pods[0].Name).To(Equal("dns"))
			Expect(list.Pods[0].TotalCPUCores).To(Equal(0.01))
			Expect(list.Pods[0].TotalMemoryMi).To(Equal(20.0))
		})

		It("sums containers of a single pod in order", func() {
			list, err := collector.PodMetrics(ctx, "default", "web")
			Expect(err).ToNot(HaveOccurred())
			Expect(list.Count).To(Equal(1))

			pod := list.Pods[0]
			Expect(pod.TotalCPUCores).To(Equal(0.3))
			Expect(pod.TotalMemoryMi).To(Equal(96.0))
			Expect(pod.Containers).To(Equal([]clusterv1alpha1.ContainerMetrics{
				{Name: "app", CPUCores: 0.25, MemoryMi: 64},
				{Name: "sidecar", CPUCores: 0.05, MemoryMi: 32},
			}))
		})

		It("treats an unknown pod as unavailable metrics", func() {
			_, err := collector.PodMetrics(ctx, "default", "missing")
			Expect(errors.Is(err, ErrMetricsUnavailable)).To(BeTrue())
		})
	})

	Context("quantities whose canonical form differs from the input", func() {
		BeforeEach(func() {
			collector.Client = newFakeClient(nil,
				createNode("node1", "4", "8Gi", true, nil),
				createNode("node2", "4", "8Gi", true, nil),
				createNodeMetrics("node1", "501234000n", "123456000"),
				createNodeMetrics("node2", "1500000n", "1024Ki"),
				createPodMetrics("default", "web",
					containerUsage{name: "app", cpu: "1500000n", memory: "1024Ki"},
					containerUsage{name: "sidecar", cpu: "1234000n", memory: "123456000"}),
			)
		})

		It("aggregates node cpu reported in nanocores", func() {
			report, err := collector.ClusterCPU(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Summary.TotalUsageCores).To(Equal(0.503))
			Expect(report.Summary.TotalCapacityCores).To(Equal(8.0))
			Expect(report.Nodes).To(ContainElement(
				clusterv1alpha1.NodeCPU{Node: "node1", CPUUsage: clusterv1alpha1.CPUUsage{UsageCores: 0.501, CapacityCores: 4, UtilizationPercent: 12.53}},
			))
		})

		It("aggregates node memory reported in decimal and binary units", func() {
			report, err := collector.ClusterMemory(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Summary.TotalUsageBytes).To(Equal(123456000.0 + 1024*1024))
		})

		It("reports node metrics", func() {
			nodes, err := collector.NodeMetrics(ctx, "node1")
			Expect(err).ToNot(HaveOccurred())
			Expect(nodes).To(HaveLen(1))
			Expect(nodes[0].CPU.UsageCores).To(Equal(0.501))
			Expect(nodes[0].Memory.UsageGi).To(Equal(0.11))
		})

		It("aggregates container usage", func() {
			list, err := collector.PodMetrics(ctx, "default", "web")
			Expect(err).ToNot(HaveOccurred())
			Expect(list.Count).To(Equal(1))
			Expect(list.Pods[0].Containers[0].MemoryMi).To(Equal(1.0))
			Expect(list.Pods[0].Containers[1].CPUCores).To(Equal(0.001))
			Expect(list.Pods[0].TotalCPUCores).To(Equal(0.003))
		})
	})
})
