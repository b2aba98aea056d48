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
	"fmt"

	"github.com/mehdiazizian/cluster-rag-agent/internal/cluster"
	"github.com/mehdiazizian/cluster-rag-agent/internal/config"
	"github.com/mehdiazizian/cluster-rag-agent/internal/kube"
	"github.com/mehdiazizian/cluster-rag-agent/internal/llm"
	"github.com/mehdiazizian/cluster-rag-agent/internal/metrics"
	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
	"github.com/mehdiazizian/cluster-rag-agent/internal/vectordb"
)

// connectCluster returns nil when Kubernetes access is disabled or cannot
// be initialized; the agent keeps running without the cluster operations.
func connectCluster(cfg *config.Config, recorder *metrics.Recorder) *cluster.Collector {
	if !cfg.Kubernetes.Enabled {
		setupLog.Info("Kubernetes access disabled")
		return nil
	}

	clients, err := kube.Connect(cfg.Kubernetes.Kubeconfig)
	if err != nil {
		setupLog.Error(err, "Kubernetes client not available, cluster operations disabled")
		return nil
	}
	setupLog.Info("Kubernetes client initialized", "host", clients.Config.Host)
	return cluster.NewCollector(clients, recorder)
}

func upstreamOptions(service string, u config.UpstreamConfig) transporthttp.Options {
	return transporthttp.Options{
		Service:         service,
		Timeout:         u.Timeout,
		MaxRetries:      u.MaxRetries,
		BreakerFailures: u.BreakerFailures,
		BreakerTimeout:  u.BreakerTimeout,
	}
}

func newQdrant(cfg *config.Config) *vectordb.QdrantClient {
	return vectordb.NewQdrantClient(cfg.Qdrant.URL,
		transporthttp.NewClient(upstreamOptions("Qdrant", cfg.Qdrant.UpstreamConfig)))
}

func newInference(cfg *config.Config) (llm.Client, error) {
	httpClient := transporthttp.NewClient(upstreamOptions("Ollama", cfg.Ollama.UpstreamConfig))
	models := llm.Models{
		Embedding:  cfg.Ollama.EmbeddingModel,
		Generation: cfg.Ollama.GenerationModel,
	}

	switch cfg.Ollama.Provider {
	case config.ProviderNative:
		return llm.NewOllamaClient(llm.OllamaEndpoints{
			Generate: cfg.Ollama.GenerateURL,
			Embed:    cfg.Ollama.EmbedURL,
		}, models, httpClient), nil
	case config.ProviderOpenAI:
		baseURL, err := cfg.OpenAIURL()
		if err != nil {
			return nil, err
		}
		return llm.NewOpenAIClient(baseURL, cfg.Ollama.APIKey, models, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported inference provider %q", cfg.Ollama.Provider)
	}
}
