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

var _ = Describe("OpenAIClient", func() {
	var (
		ctx    context.Context
		mux    *http.ServeMux
		server *httptest.Server
		client *llm.OpenAIClient
	)

	BeforeEach(func() {
		ctx = context.Background()
		mux = http.NewServeMux()
		server = httptest.NewServer(mux)
		DeferCleanup(server.Close)

		client = llm.NewOpenAIClient(server.URL+"/v1", "", llm.Models{
			Embedding:  "all-minilm",
			Generation: "tinyllama",
		}, transporthttp.NewClient(transporthttp.Options{Service: "Ollama"}))
	})

	It("embeds through the embeddings endpoint", func() {
		var body map[string]any
		mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"object":"list","data":[{"object":"embedding","index":0,"embedding":[0.5,0.25]}],"model":"all-minilm"}`)
		})

		vector, err := client.Embed(ctx, "hello")
		Expect(err).ToNot(HaveOccurred())
		Expect(vector).To(Equal([]float64{0.5, 0.25}))
		Expect(body).To(HaveKeyWithValue("model", "all-minilm"))
	})

	It("rejects an empty embedding list", func() {
		mux.HandleFunc("/v1/embeddings", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"object":"list","data":[],"model":"all-minilm"}`)
		})

		_, err := client.Embed(ctx, "hello")
		Expect(err).To(MatchError(llm.ErrEmptyEmbedding))
	})

	It("generates through chat completions", func() {
		var body map[string]any
		mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &body)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id":"1","object":"chat.completion","model":"tinyllama","choices":[{"index":0,"message":{"role":"assistant","content":"Hi there"},"finish_reason":"stop"}]}`)
		})

		answer, err := client.Generate(ctx, "Hello")
		Expect(err).ToNot(HaveOccurred())
		Expect(answer).To(Equal("Hi there"))
		Expect(body).To(HaveKeyWithValue("model", "tinyllama"))
		Expect(body["messages"]).To(ConsistOf(And(
			HaveKeyWithValue("role", "user"),
			HaveKeyWithValue("content", "Hello"),
		)))
	})

	It("wraps API errors", func() {
		mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"message":"model not found","type":"api_error"}}`)
		})

		_, err := client.Generate(ctx, "Hello")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("status 404"))
	})

	It("pings the model listing", func() {
		mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"object":"list","data":[]}`)
		})
		Expect(client.Ping(ctx)).To(Succeed())
	})
})
