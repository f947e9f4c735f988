package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/urshort/urshort/config"
	"github.com/urshort/urshort/internal/handler"
	"github.com/urshort/urshort/internal/httpserver"
	"github.com/urshort/urshort/internal/mapping"
	"github.com/urshort/urshort/internal/metrics"
	"github.com/urshort/urshort/pkg/logger"
)

const metricsBufferSize = 256

const defaultWelcomePage = `<!DOCTYPE html>
<html>
<head><title>urshort</title></head>
<body><h1>urshort</h1><p>The redirect service is running.</p></body>
</html>
`

const defaultNotFoundPage = `<!DOCTYPE html>
<html>
<head><title>Not Found</title></head>
<body><h1>404</h1><p>No redirect is configured for this path.</p></body>
</html>
`

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found")
	} else {
		slog.Info("Loaded .env file")
	}

	cfg, err := config.Load(os.Environ())
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	table := buildTable(cfg, log)
	log.Info("Mapping table ready", slog.Int("mappings", table.Len()))

	collector := metrics.NewCollector(metricsBufferSize, log)
	collector.Start(ctx)

	welcomePage := loadPage(cfg.Pages.WelcomeFile, defaultWelcomePage, log)
	notFoundPage := loadPage(cfg.Pages.NotFoundFile, defaultNotFoundPage, log)

	redirectHandler := handler.New(log, table, collector, welcomePage, notFoundPage)

	srv, err := httpserver.New(cfg.Addr(), setupRouter(redirectHandler, collector))
	if err != nil {
		log.Error("Failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)

	go func() {
		srvErrCh <- srv.Start()
	}()

	log.Info("Listening", slog.String("addr", cfg.Addr()))

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Error("Error during shutdown", slog.Any("err", err))
		}
	case err := <-srvErrCh:
		if err != nil {
			log.Error("Error starting server", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

// buildTable compiles the scanned mapping configuration into the immutable
// lookup table served for the rest of the process lifetime.
func buildTable(cfg *config.Config, log *slog.Logger) *mapping.Table {
	for key, url := range cfg.StandardURIs {
		log.Info("Loaded standard mapping",
			slog.String("path", key),
			slog.String("target", url))
	}

	specs := make([]mapping.PatternSpec, 0, len(cfg.Patterns))
	for _, p := range cfg.Patterns {
		specs = append(specs, mapping.PatternSpec{
			Place:    p.Place,
			Regex:    p.Regex,
			Template: p.URI,
		})
	}

	return mapping.New(cfg.StandardURIs, specs, log)
}

// loadPage reads an HTML page from disk, falling back to the built-in page
// when no path is configured or the file cannot be read.
func loadPage(path string, fallback string, log *slog.Logger) []byte {
	if path == "" {
		return []byte(fallback)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		log.Warn("Failed to load page, using built-in fallback",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return []byte(fallback)
	}

	return contents
}
