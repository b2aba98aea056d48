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

package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/controller"
	"github.com/mehdiazizian/cluster-rag-agent/internal/metrics"
	"github.com/mehdiazizian/cluster-rag-agent/internal/rag"
	"github.com/mehdiazizian/cluster-rag-agent/internal/server"
	"github.com/mehdiazizian/cluster-rag-agent/internal/telemetry"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(ctrl.SetupSignalHandler(), root)
		},
	}
}

func runServe(ctx context.Context, root *rootOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		setupLog.Error(err, "invalid configuration")
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:  cfg.Telemetry.ServiceName,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
	}, reg)
	if err != nil {
		setupLog.Error(err, "unable to set up telemetry")
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			setupLog.Error(err, "telemetry shutdown failed")
		}
	}()

	recorder := metrics.NewRecorder(reg)

	qdrant := newQdrant(cfg)
	defer qdrant.Close()

	inference, err := newInference(cfg)
	if err != nil {
		setupLog.Error(err, "unable to create inference client")
		return err
	}
	defer inference.Close()

	svc := &rag.Service{
		Embedder:   inference,
		Generator:  inference,
		Store:      qdrant,
		Collection: cfg.Qdrant.Collection,
	}
	srv := &server.Server{
		RAG:       svc,
		Store:     qdrant,
		Inference: inference,
		Recorder:  recorder,
		Gatherer:  reg,
		Logger:    ctrl.Log.WithName("http"),
	}
	if collector := connectCluster(cfg, recorder); collector != nil {
		svc.Cluster = collector
		srv.Cluster = collector

		refresher := &controller.MetricsRefresher{Source: collector, Interval: cfg.Kubernetes.RefreshInterval}
		go func() {
			if err := refresher.Start(log.IntoContext(ctx, ctrl.Log)); err != nil {
				setupLog.Error(err, "metrics refresher failed")
			}
		}()
	}

	documents := rag.SampleDocuments
	if cfg.Startup.SeedClusterDocs {
		documents = append(append(documents[:0:0], rag.SampleDocuments...), rag.ClusterDocuments...)
	}
	go svc.Bootstrap(log.IntoContext(ctx, ctrl.Log), inference, rag.BootstrapOptions{
		VectorSize: cfg.Qdrant.VectorSize,
		Distance:   cfg.Qdrant.Distance,
		Attempts:   cfg.Startup.Attempts,
		Interval:   cfg.Startup.Interval,
		Documents:  documents,
	})

	setupLog.Info("starting HTTP API", "version", version, "collection", cfg.Qdrant.Collection,
		"provider", cfg.Ollama.Provider, "k8sEnabled", srv.Cluster != nil)
	if err := server.Run(ctx, cfg.Server.ListenAddress, srv.Handler(), cfg.Server.ShutdownTimeout, setupLog); err != nil {
		setupLog.Error(err, "problem running HTTP API")
		return err
	}
	return nil
}
