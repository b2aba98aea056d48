package kube

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/discovery"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Clients is the cluster access resolved once at startup and shared, read-only,
// by every front end.
type Clients struct {
	Config    *rest.Config
	Client    client.Client
	Discovery discovery.ServerVersionInterface
}

// NewScheme returns a scheme holding the core API types and the
// metrics.k8s.io/v1beta1 resource metrics types.
func NewScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(metricsv1beta1.AddToScheme(scheme))
	return scheme
}

// LoadConfig resolves a rest.Config.
// Priority:
//  1. kubeconfigPath, when set ("~/" is expanded)
//  2. in-cluster service account
//  3. default loading rules (KUBECONFIG, ~/.kube/config)
func LoadConfig(kubeconfigPath string) (*rest.Config, error) {
	if path := strings.TrimSpace(kubeconfigPath); path != "" {
		expanded, err := expandHome(path)
		if err != nil {
			return nil, fmt.Errorf("failed to expand kubeconfig path %q: %w", path, err)
		}
		cfg, err := clientcmd.BuildConfigFromFlags("", expanded)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %q: %w", expanded, err)
		}
		return cfg, nil
	}

	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{}).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig from default rules: %w", err)
	}
	return cfg, nil
}

// NewClients builds the typed client and the discovery client for cfg.
func NewClients(cfg *rest.Config) (*Clients, error) {
	c, err := client.New(cfg, client.Options{Scheme: NewScheme()})
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	dc, err := discovery.NewDiscoveryClientForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	return &Clients{
		Config:    cfg,
		Client:    c,
		Discovery: dc,
	}, nil
}

// Connect is LoadConfig followed by NewClients.
func Connect(kubeconfigPath string) (*Clients, error) {
	cfg, err := LoadConfig(kubeconfigPath)
	if err != nil {
		return nil, err
	}
	return NewClients(cfg)
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[2:]), nil
}
