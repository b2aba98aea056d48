package http_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	transporthttp "github.com/mehdiazizian/cluster-rag-agent/internal/transport/http"
)

type flakyUpstream struct {
	failures int
	pings    int
}

func (f *flakyUpstream) Ping(context.Context) error {
	f.pings++
	if f.pings <= f.failures {
		return errors.New("connection refused")
	}
	return nil
}

func (f *flakyUpstream) Close() error { return nil }

var _ = Describe("ReadinessPoller", func() {
	It("returns once the upstream answers", func() {
		up := &flakyUpstream{failures: 2}
		p := transporthttp.NewReadinessPoller("qdrant", up, 5, time.Millisecond)

		Expect(p.Wait(context.Background())).To(Succeed())
		Expect(up.pings).To(Equal(3))
	})

	It("gives up after the configured attempts", func() {
		up := &flakyUpstream{failures: 100}
		p := transporthttp.NewReadinessPoller("ollama", up, 4, time.Millisecond)

		err := p.Wait(context.Background())
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("ollama not ready after 4 attempts"))
		Expect(err.Error()).To(ContainSubstring("connection refused"))
		Expect(up.pings).To(Equal(4))
	})

	It("stops when the context is cancelled", func() {
		up := &flakyUpstream{failures: 100}
		p := transporthttp.NewReadinessPoller("qdrant", up, 30, time.Hour)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		Expect(p.Wait(ctx)).To(MatchError(context.Canceled))
		Expect(up.pings).To(Equal(1))
	})
})
