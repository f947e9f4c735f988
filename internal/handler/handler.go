package handler

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/urshort/urshort/internal/mapping"
	"github.com/urshort/urshort/internal/metrics"
)

type RedirectHandler struct {
	logger           *slog.Logger
	table            *mapping.Table
	metricsCollector *metrics.Collector
	welcomePage      []byte
	notFoundPage     []byte
}

func New(logger *slog.Logger, table *mapping.Table, collector *metrics.Collector, welcomePage, notFoundPage []byte) *RedirectHandler {
	return &RedirectHandler{
		logger:           logger,
		table:            table,
		metricsCollector: collector,
		welcomePage:      welcomePage,
		notFoundPage:     notFoundPage,
	}
}

func (h *RedirectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := extractClientIP(r)

	h.logger.Info("Received request",
		slog.String("from", clientIP),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("user_agent", r.UserAgent()))

	h.emitEvent(metrics.Event{
		Type:      metrics.EventRequestReceived,
		Timestamp: time.Now(),
	})

	if r.URL.Path == "/" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(h.welcomePage)
		return
	}

	start := time.Now()
	outcome := h.table.Resolve(r.URL.Path)
	duration := time.Since(start)

	if !outcome.Found() {
		h.logger.Info("No mapping found",
			slog.String("client", clientIP),
			slog.String("path", r.URL.Path))

		h.emitEvent(metrics.Event{
			Type:       metrics.EventNotFound,
			Timestamp:  time.Now(),
			Duration:   duration,
			StatusCode: http.StatusNotFound,
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write(h.notFoundPage)
		return
	}

	h.logger.Info("Redirecting",
		slog.String("client", clientIP),
		slog.String("path", r.URL.Path),
		slog.String("target", outcome.URL),
		slog.String("via", outcome.Via.String()))

	h.emitEvent(metrics.Event{
		Type:       metrics.EventRedirectIssued,
		Timestamp:  time.Now(),
		Source:     outcome.Via.String(),
		Duration:   duration,
		StatusCode: http.StatusTemporaryRedirect,
	})

	http.Redirect(w, r, outcome.URL, http.StatusTemporaryRedirect)
}

func extractClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	host, _, _ := net.SplitHostPort(r.RemoteAddr)
	return host
}

func (h *RedirectHandler) emitEvent(event metrics.Event) {
	if h.metricsCollector == nil {
		return
	}

	select {
	case h.metricsCollector.EventChannel() <- event:
	default:
	}
}
