package rag_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/uuid"

	"github.com/mehdiazizian/cluster-rag-agent/internal/rag"
	"github.com/mehdiazizian/cluster-rag-agent/internal/transport/dto"
)

var _ = Describe("Service", func() {
	var (
		ctx   context.Context
		store *fakeStore
		model *fakeLLM
		svc   *rag.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newFakeStore()
		model = &fakeLLM{}
		svc = &rag.Service{
			Embedder:   model,
			Generator:  model,
			Store:      store,
			Collection: "rag_memory",
		}
	})

	Describe("Ingest", func() {
		It("stores the text with its metadata under a new UUID", func() {
			res, err := svc.Ingest(ctx, &dto.DocumentDTO{
				Text:     "héllo",
				Metadata: map[string]any{"topic": "greeting"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Message).To(Equal("Document ingested"))
			Expect(res.TextLength).To(Equal(5))
			_, parseErr := uuid.Parse(res.ID)
			Expect(parseErr).ToNot(HaveOccurred())

			Expect(store.points).To(HaveLen(1))
			Expect(store.points[0].ID).To(Equal(res.ID))
			Expect(store.points[0].Payload).To(Equal(map[string]any{"text": "héllo", "topic": "greeting"}))
		})

		It("lets metadata override the stored text", func() {
			_, err := svc.Ingest(ctx, &dto.DocumentDTO{
				Text:     "original",
				Metadata: map[string]any{"text": "override"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(store.points[0].Payload).To(HaveKeyWithValue("text", "override"))
		})

		It("rejects an empty text", func() {
			_, err := svc.Ingest(ctx, &dto.DocumentDTO{Text: "  "})
			Expect(err).To(MatchError(rag.ErrEmptyInput))
			Expect(store.points).To(BeEmpty())
		})

		It("propagates store failures", func() {
			store.upsertErr = errors.New("Qdrant error: boom")
			_, err := svc.Ingest(ctx, &dto.DocumentDTO{Text: "x"})
			Expect(err).To(MatchError(ContainSubstring("Qdrant error")))
		})
	})

	Describe("Query", func() {
		BeforeEach(func() {
			for _, d := range rag.SampleDocuments {
				_, err := svc.Ingest(ctx, &d)
				Expect(err).ToNot(HaveOccurred())
			}
		})

		It("defaults to three matches", func() {
			res, err := svc.Query(ctx, &dto.QueryDTO{Prompt: "What is RAG?"})
			Expect(err).ToNot(HaveOccurred())
			Expect(store.lastLimit).To(Equal(3))
			Expect(res.Query).To(Equal("What is RAG?"))
			Expect(res.Matches).To(HaveLen(3))
			Expect(res.Response).To(Equal("generated answer"))
		})

		It("honours top_k and sends the built prompt", func() {
			res, err := svc.Query(ctx, &dto.QueryDTO{Prompt: "Explain", TopK: 1})
			Expect(err).ToNot(HaveOccurred())
			Expect(store.lastLimit).To(Equal(1))
			Expect(model.prompts).To(ConsistOf(rag.BuildPrompt("Explain", res.Matches)))
		})

		It("rejects an empty prompt", func() {
			_, err := svc.Query(ctx, &dto.QueryDTO{})
			Expect(err).To(MatchError(rag.ErrEmptyInput))
		})

		It("propagates generation failures", func() {
			model.generateErr = errors.New("Ollama error: status 500")
			_, err := svc.Query(ctx, &dto.QueryDTO{Prompt: "x"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ClusterQuery", func() {
		BeforeEach(func() {
			_, err := svc.Ingest(ctx, &rag.ClusterDocuments[0])
			Expect(err).ToNot(HaveOccurred())
		})

		It("includes the cluster block for cluster prompts", func() {
			svc.Cluster = &fakeSummarizer{summary: "CURRENT CLUSTER STATE:\n- Total Nodes: 2\n"}

			res, err := svc.ClusterQuery(ctx, &dto.QueryDTO{Prompt: "How much CPU is used?"})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ClusterAware).To(BeTrue())
			Expect(res.ClusterMetricsIncluded).To(BeTrue())
			Expect(res.DocMatches).To(Equal(1))
			Expect(res.Context).To(ContainSubstring("- Total Nodes: 2"))
			Expect(res.Context).To(ContainSubstring("- High CPU usage above 80%"))
			Expect(res.Response).To(Equal("generated answer"))
			Expect(model.prompts).To(ConsistOf(res.Context))
		})

		It("skips the cluster for unrelated prompts", func() {
			summarizer := &fakeSummarizer{err: errors.New("must not be called")}
			svc.Cluster = summarizer

			res, err := svc.ClusterQuery(ctx, &dto.QueryDTO{Prompt: "What is Python?"})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ClusterAware).To(BeFalse())
			Expect(res.ClusterMetricsIncluded).To(BeFalse())
			Expect(res.Context).ToNot(ContainSubstring(rag.ClusterUnavailable))
		})

		It("marks the cluster unavailable when the summary fails", func() {
			svc.Cluster = &fakeSummarizer{err: errors.New("metrics server not available")}

			res, err := svc.ClusterQuery(ctx, &dto.QueryDTO{Prompt: "pod memory"})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ClusterAware).To(BeTrue())
			Expect(res.ClusterMetricsIncluded).To(BeFalse())
			Expect(res.Context).To(ContainSubstring(rag.ClusterUnavailable))
		})

		It("marks the cluster unavailable when Kubernetes is disabled", func() {
			res, err := svc.ClusterQuery(ctx, &dto.QueryDTO{Prompt: "node usage"})
			Expect(err).ToNot(HaveOccurred())
			Expect(res.ClusterMetricsIncluded).To(BeFalse())
			Expect(res.Context).To(ContainSubstring(rag.ClusterUnavailable))
		})
	})
})
