package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/urshort/urshort/config"
	"github.com/urshort/urshort/internal/handler"
	"github.com/urshort/urshort/internal/mapping"
	"github.com/urshort/urshort/internal/metrics"
)

func TestMain(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Main Suite")
}

var _ = Describe("buildTable", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	})

	It("builds a table from standard mappings", func() {
		cfg := &config.Config{
			StandardURIs: map[string]string{"test": "https://example.com"},
		}

		table := buildTable(cfg, log)
		outcome := table.Resolve("test")
		Expect(outcome.Via).To(Equal(mapping.SourceStandard))
		Expect(outcome.URL).To(Equal("https://example.com"))
	})

	It("builds a table from pattern mappings in config order", func() {
		cfg := &config.Config{
			Patterns: []config.PatternConfig{
				{Place: "0", Regex: `^i(?P<index>\d+)$`, URI: "https://example.com/$index"},
				{Place: "1", Regex: `^i(\d+)$`, URI: "https://late.example.com/$1"},
			},
		}

		table := buildTable(cfg, log)
		Expect(table.Resolve("i42").URL).To(Equal("https://example.com/42"))
	})

	It("drops invalid regexes without failing", func() {
		cfg := &config.Config{
			Patterns: []config.PatternConfig{
				{Place: "0", Regex: `([`, URI: "https://example.com/broken"},
			},
		}

		table := buildTable(cfg, log)
		Expect(table.Len()).To(Equal(0))
	})
})

var _ = Describe("loadPage", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	})

	It("returns the fallback when no path is configured", func() {
		Expect(loadPage("", "fallback", log)).To(Equal([]byte("fallback")))
	})

	It("returns the fallback when the file cannot be read", func() {
		Expect(loadPage("/no/such/file.html", "fallback", log)).To(Equal([]byte("fallback")))
	})

	It("reads the configured file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "welcome.html")
		Expect(os.WriteFile(path, []byte("<html>hi</html>"), 0644)).To(Succeed())

		Expect(loadPage(path, "fallback", log)).To(Equal([]byte("<html>hi</html>")))
	})
})

var _ = Describe("setupRouter", func() {
	var (
		router    http.Handler
		collector *metrics.Collector
	)

	BeforeEach(func() {
		log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))

		table := mapping.New(map[string]string{
			"test": "https://example.com",
		}, nil, log)

		collector = metrics.NewCollector(10, log)
		redirectHandler := handler.New(log, table, collector, []byte("welcome"), []byte("missing"))
		router = setupRouter(redirectHandler, collector)
	})

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("serves the metrics snapshot", func() {
		rec := get("/metrics")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(Equal("application/json"))
	})

	It("serves the health endpoint", func() {
		rec := get("/healthz")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("ok"))
	})

	It("routes everything else to the redirect handler", func() {
		rec := get("/test")
		Expect(rec.Code).To(Equal(http.StatusTemporaryRedirect))
		Expect(rec.Header().Get("Location")).To(Equal("https://example.com"))
	})

	It("serves the welcome page at the root", func() {
		rec := get("/")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal("welcome"))
	})
})
