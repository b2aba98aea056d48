package rag_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mehdiazizian/cluster-rag-agent/internal/rag"
)

var _ = Describe("Bootstrap", func() {
	var (
		ctx   context.Context
		store *fakeStore
		model *fakeLLM
		svc   *rag.Service
		opts  rag.BootstrapOptions
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newFakeStore()
		model = &fakeLLM{}
		svc = &rag.Service{Embedder: model, Generator: model, Store: store, Collection: "rag_memory"}
		opts = rag.BootstrapOptions{
			VectorSize: 384,
			Distance:   "Cosine",
			Attempts:   3,
			Interval:   time.Millisecond,
			Documents:  rag.SampleDocuments,
		}
	})

	It("creates and seeds a missing collection", func() {
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report).To(Equal(&rag.BootstrapReport{Ready: true, CollectionCreated: true, Ingested: 5}))
		Expect(store.collections).To(HaveKeyWithValue("rag_memory", 384))
		Expect(store.points).To(HaveLen(5))
	})

	It("leaves an existing collection alone", func() {
		store.collections["rag_memory"] = 384
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report.CollectionCreated).To(BeFalse())
		Expect(store.points).To(BeEmpty())
	})

	It("counts per-document failures and continues", func() {
		model.failEmbedFor = rag.SampleDocuments[1].Text
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report.Ingested).To(Equal(4))
		Expect(report.Failed).To(Equal(1))
	})

	It("treats a failed existence check as missing", func() {
		store.existsErr = errors.New("Qdrant error: status 500")
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report.CollectionCreated).To(BeTrue())
	})

	It("stops when the collection cannot be created", func() {
		store.createErr = errors.New("Qdrant error: status 400")
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report.Ready).To(BeTrue())
		Expect(report.CollectionCreated).To(BeFalse())
		Expect(store.points).To(BeEmpty())
	})

	It("gives up when Qdrant never answers", func() {
		store.pingErr = errors.New("connection refused")
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report.Ready).To(BeFalse())
		Expect(store.pings).To(Equal(3))
		Expect(store.collections).To(BeEmpty())
	})

	It("skips ingestion when Ollama never answers", func() {
		model.pingErr = errors.New("connection refused")
		report := svc.Bootstrap(ctx, model, opts)
		Expect(report.Ready).To(BeFalse())
		Expect(store.collections).To(BeEmpty())
	})
})
