package metrics_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/urshort/urshort/internal/metrics"
)

var _ = Describe("Collector", func() {
	var (
		collector *metrics.Collector
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError, // Suppress logs in tests
		}))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
	})

	AfterEach(func() {
		cancel()
		time.Sleep(10 * time.Millisecond) // Allow goroutine to finish
	})

	Describe("NewCollector", func() {
		It("creates a collector with the given buffer size", func() {
			c := metrics.NewCollector(500, log)
			Expect(c).NotTo(BeNil())
		})
	})

	Describe("EventChannel", func() {
		It("returns a write-only channel", func() {
			Expect(collector.EventChannel()).NotTo(BeNil())
		})
	})

	Describe("Start and event processing", func() {
		BeforeEach(func() {
			collector.Start(ctx)
		})

		It("processes request events", func() {
			collector.EventChannel() <- metrics.Event{
				Type:      metrics.EventRequestReceived,
				Timestamp: time.Now(),
			}

			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(1)))
		})

		It("processes redirect events", func() {
			collector.EventChannel() <- metrics.Event{
				Type:       metrics.EventRedirectIssued,
				Timestamp:  time.Now(),
				Source:     "pattern",
				Duration:   5 * time.Microsecond,
				StatusCode: http.StatusTemporaryRedirect,
			}

			Eventually(func() map[string]int64 {
				return collector.Snapshot().Redirects
			}).Should(HaveKeyWithValue("pattern", int64(1)))
		})

		It("processes not-found events", func() {
			collector.EventChannel() <- metrics.Event{
				Type:       metrics.EventNotFound,
				Timestamp:  time.Now(),
				Duration:   5 * time.Microsecond,
				StatusCode: http.StatusNotFound,
			}

			Eventually(func() int64 {
				return collector.Snapshot().NotFound
			}).Should(Equal(int64(1)))
		})

		It("drains pending events on shutdown", func() {
			for i := 0; i < 10; i++ {
				collector.EventChannel() <- metrics.Event{
					Type:      metrics.EventRequestReceived,
					Timestamp: time.Now(),
				}
			}
			cancel()

			Eventually(func() int64 {
				return collector.Snapshot().TotalRequests
			}).Should(Equal(int64(10)))
		})
	})

	Describe("Handler", func() {
		It("serves the snapshot as JSON", func() {
			req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			rec := httptest.NewRecorder()

			collector.Handler()(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))

			var snap metrics.Snapshot
			Expect(json.Unmarshal(rec.Body.Bytes(), &snap)).To(Succeed())
		})
	})
})
