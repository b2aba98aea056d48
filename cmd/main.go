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
	"flag"
	"os"

	"github.com/spf13/cobra"

	// Import all Kubernetes client auth plugins (e.g. Azure, GCP, OIDC, etc.)
	// to ensure that exec-entrypoint and run can make use of them.
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/mehdiazizian/cluster-rag-agent/internal/config"
)

var (
	setupLog = ctrl.Log.WithName("setup")

	// version is set at build time with -ldflags "-X main.version=..."
	version = "dev"
)

type rootOptions struct {
	configFile string
	flags      *config.Flags
	zap        zap.Options
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{
		zap: zap.Options{
			Development: true,
		},
	}

	cmd := &cobra.Command{
		Use:   "cluster-rag-agent",
		Short: "Retrieval-augmented answers over documents and live Kubernetes state",
		Long: `cluster-rag-agent answers questions from documents stored in Qdrant,
generating responses with Ollama, and exposes read-only Kubernetes cluster
metrics and inventory.

Front ends:
  serve  - HTTP API
  mcp    - Model Context Protocol tools on stdio`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// stdout carries the MCP protocol, so logs always go to stderr
			ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts.zap), zap.WriteTo(os.Stderr)))
		},
	}

	goFlags := flag.NewFlagSet("zap", flag.ExitOnError)
	opts.zap.BindFlags(goFlags)
	cmd.PersistentFlags().AddGoFlagSet(goFlags)
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file.")
	opts.flags = config.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCommand(opts), newMCPCommand(opts), newVersionCommand())
	return cmd
}

// loadConfig layers the file, the environment and the flags.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, err
	}
	o.flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
