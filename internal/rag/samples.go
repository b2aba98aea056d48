package rag

import (
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
)

// SampleDocuments seed an empty collection.
var SampleDocuments = []dto.DocumentDTO{
	{
		Text: "Python is a high-level, interpreted programming language known for its simplicity and readability. " +
			"It supports multiple programming paradigms including procedural, object-oriented, and functional programming.",
		Metadata: map[string]any{"topic": "python", "category": "programming"},
	},
	{
		Text: "Kubernetes is an open-source container orchestration platform that automates deploying, scaling, " +
			"and managing containerized applications. It was originally designed by Google.",
		Metadata: map[string]any{"topic": "kubernetes", "category": "devops"},
	},
	{
		Text: "FastAPI is a modern, fast web framework for building APIs with Python based on standard Python type hints. " +
			"It provides automatic API documentation and data validation.",
		Metadata: map[string]any{"topic": "fastapi", "category": "programming"},
	},
	{
		Text: "Vector databases store and retrieve high-dimensional vectors efficiently. " +
			"They are essential for semantic search, recommendation systems, and RAG applications.",
		Metadata: map[string]any{"topic": "vector-db", "category": "database"},
	},
	{
		Text: "RAG (Retrieval Augmented Generation) combines information retrieval with language models to provide " +
			"more accurate and contextual responses by grounding answers in retrieved documents.",
		Metadata: map[string]any{"topic": "rag", "category": "ai"},
	},
}

// ClusterDocuments are operational notes that make cluster-aware answers
// more useful. They are seeded only when enabled.
var ClusterDocuments = []dto.DocumentDTO{
	{
		Text:     "High CPU usage above 80% typically indicates need for horizontal pod autoscaling or node expansion.",
		Metadata: map[string]any{"category": "cluster", "topic": "scaling"},
	},
	{
		Text: "Memory pressure on nodes can cause pod evictions. " +
			"Monitor memory utilization and set appropriate resource limits.",
		Metadata: map[string]any{"category": "cluster", "topic": "resources"},
	},
	{
		Text:     "Kubernetes metrics-server provides real-time resource usage data for nodes and pods.",
		Metadata: map[string]any{"category": "cluster", "topic": "monitoring"},
	},
}
