package llm_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mehdiazizian/cluster-rag-agent/internal/llm"
	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
)

var _ = Describe("OllamaClient", func() {
	var (
		ctx      context.Context
		mux      *http.ServeMux
		server   *httptest.Server
		client   *llm.OllamaClient
		lastBody map[string]any
	)

	decode := func(r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		lastBody = nil
		_ = json.Unmarshal(raw, &lastBody)
	}

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)

		client = llm.NewOllamaClient(
			llm.OllamaEndpoints{
				Generate: server.URL + "/api/generate",
				Embed:    server.URL + "/api/embeddings",
			},
			llm.Models{Embedding: "all-minilm", Generation: "tinyllama"},
			transporthttp.NewClient(transporthttp.Options{Service: "Ollama"}),
		)
	})

	Describe("Embed", func() {
		It("returns the embedding field", func() {
			mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
				decode(r)
				_, _ = io.WriteString(w, `{"embedding":[0.1,0.2,0.3]}`)
			})

			vector, err := client.Embed(ctx, "hello")
			Expect(err).ToNot(HaveOccurred())
			Expect(vector).To(Equal([]float64{0.1, 0.2, 0.3}))
			Expect(lastBody).To(Equal(map[string]any{"model": "all-minilm", "prompt": "hello"}))
		})

		It("falls back to the embeddings field", func() {
			mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"embeddings":[1,2]}`)
			})

			vector, err := client.Embed(ctx, "hello")
			Expect(err).ToNot(HaveOccurred())
			Expect(vector).To(Equal([]float64{1, 2}))
		})

		It("rejects an empty embedding", func() {
			mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"embedding":[]}`)
			})

			_, err := client.Embed(ctx, "hello")
			Expect(err).To(MatchError(llm.ErrEmptyEmbedding))
			Expect(err.Error()).To(Equal("Empty embedding returned"))
		})

		It("surfaces upstream errors", func() {
			mux.HandleFunc("/api/embeddings", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"error":"model \"all-minilm\" not found"}`)
			})

			_, err := client.Embed(ctx, "hello")
			Expect(err).To(HaveOccurred())
			Expect(transporthttp.IsStatus(err, http.StatusNotFound)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("Ollama error"))
		})
	})

	Describe("Generate", func() {
		It("requests a non-streamed completion", func() {
			mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
				decode(r)
				_, _ = io.WriteString(w, `{"model":"tinyllama","response":"Kubernetes orchestrates containers.","done":true}`)
			})

			answer, err := client.Generate(ctx, "What is Kubernetes?")
			Expect(err).ToNot(HaveOccurred())
			Expect(answer).To(Equal("Kubernetes orchestrates containers."))
			Expect(lastBody).To(Equal(map[string]any{
				"model":  "tinyllama",
				"prompt": "What is Kubernetes?",
				"stream": false,
			}))
		})
	})

	Describe("Ping", func() {
		It("lists the local models", func() {
			called := false
			mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
				called = true
				_, _ = io.WriteString(w, `{"models":[]}`)
			})

			Expect(client.Ping(ctx)).To(Succeed())
			Expect(called).To(BeTrue())
		})
	})

	DescribeTable("TagsURL",
		func(in, expected string, ok bool) {
			out, err := llm.TagsURL(in)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).ToNot(HaveOccurred())
			Expect(out).To(Equal(expected))
		},
		Entry("generate URL", "http://ollama:11434/api/generate", "http://ollama:11434/api/tags", true),
		Entry("bare base", "http://localhost:11434", "http://localhost:11434/api/tags", true),
		Entry("no scheme", "ollama:11434", "", false),
	)
})
