package config

import (
	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Only flags set explicitly replace the
// loaded values.
type Flags struct {
	fs *pflag.FlagSet

	listenAddress string
	kubeconfig    string
	noKubernetes  bool
	provider      string
	qdrantURL     string
	collection    string
	otlpEndpoint  string
}

// BindFlags registers the overrides on fs.
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	def := Default()

	fs.StringVar(&f.listenAddress, "listen-address", def.Server.ListenAddress, "The address the HTTP API binds to.")
	fs.StringVar(&f.kubeconfig, "kubeconfig", "", "Path to a kubeconfig. Defaults to in-cluster config, then KUBECONFIG and ~/.kube/config.")
	fs.BoolVar(&f.noKubernetes, "no-kubernetes", false, "Disable the Kubernetes endpoints and tools.")
	fs.StringVar(&f.provider, "llm-provider", def.Ollama.Provider, "Inference API to use (native|openai).")
	fs.StringVar(&f.qdrantURL, "qdrant-url", def.Qdrant.URL, "Base URL of the Qdrant REST API.")
	fs.StringVar(&f.collection, "collection", def.Qdrant.Collection, "Qdrant collection holding the documents.")
	fs.StringVar(&f.otlpEndpoint, "otlp-endpoint", "", "OTLP/gRPC endpoint receiving traces (host:port). Empty disables export.")
	return f
}

// Apply copies the explicitly set flags into cfg.
func (f *Flags) Apply(cfg *Config) {
	if f.fs.Changed("listen-address") {
		cfg.Server.ListenAddress = f.listenAddress
	}
	if f.fs.Changed("kubeconfig") {
		cfg.Kubernetes.Kubeconfig = f.kubeconfig
	}
	if f.fs.Changed("no-kubernetes") {
		cfg.Kubernetes.Enabled = !f.noKubernetes
	}
	if f.fs.Changed("llm-provider") {
		cfg.Ollama.Provider = f.provider
	}
	if f.fs.Changed("qdrant-url") {
		cfg.Qdrant.URL = f.qdrantURL
	}
	if f.fs.Changed("collection") {
		cfg.Qdrant.Collection = f.collection
	}
	if f.fs.Changed("otlp-endpoint") {
		cfg.Telemetry.OTLPEndpoint = f.otlpEndpoint
	}
}
