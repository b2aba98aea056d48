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
	"os"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mehdiazizian/cluster-rag-agent/internal/mcp"
)

func newMCPCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the cluster tools over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runMCP(ctrl.SetupSignalHandler(), root)
		},
	}
}

func runMCP(ctx context.Context, root *rootOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		setupLog.Error(err, "invalid configuration")
		return err
	}

	tools := &mcp.Tools{}
	if collector := connectCluster(cfg, nil); collector != nil {
		tools.Cluster = collector
	}

	setupLog.Info("starting MCP server", "name", mcp.ServerName, "version", version, "k8sEnabled", tools.Cluster != nil)
	ctx = log.IntoContext(ctx, ctrl.Log)
	if err := mcp.ServeStdio(ctx, mcp.NewServer(tools, version), os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		setupLog.Error(err, "problem running MCP server")
		return err
	}
	return nil
}
