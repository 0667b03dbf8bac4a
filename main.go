// Command advisor runs the business advisory dialogue server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"advisor/internal/httpapi"
	"advisor/pkg/advisor"
	"advisor/pkg/advisor/providers"
	"advisor/pkg/config"
	copytext "advisor/pkg/copy"
	"advisor/pkg/dialogue"
	"advisor/pkg/geo"
	"advisor/pkg/logx"
	"advisor/pkg/metrics"
	"advisor/pkg/pdfx"
	"advisor/pkg/session"
	"advisor/pkg/tokens"
)

func main() {
	log := logx.NewLogger("main")

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration: %v", err)
		os.Exit(1)
	}

	table, err := copytext.Load()
	if err != nil {
		log.Error("load translations: %v", err)
		os.Exit(1)
	}

	store := session.NewStore(cfg.SessionTTL, cfg.CleanupInterval, cfg.DefaultLanguage, log)
	defer store.Stop()

	rec := metrics.NewRecorder(prometheus.DefaultRegisterer, store.Len)

	client := providers.Build(cfg, rec, log)
	service := advisor.NewService(client, log, cfg.MaxTokens, cfg.Temperature)
	machine := dialogue.NewMachine(store, service, table, log)

	counter, err := tokens.NewCounter()
	if err != nil {
		log.Warn("tokenizer unavailable, using character estimates: %v", err)
	}
	extractor := pdfx.NewExtractor(counter, cfg.PDFTokenLimit, log)

	geoClient := geo.NewClient(cfg.NominatimURL, cfg.OverpassURL, nil, log)

	var usage *metrics.QueryService
	if cfg.PrometheusURL != "" {
		usage, err = metrics.NewQueryService(cfg.PrometheusURL)
		if err != nil {
			log.Warn("usage queries disabled: %v", err)
		}
	}

	handler := httpapi.NewHandler(machine, store, service, geoClient, extractor, rec, usage, log)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	handler.RegisterRoutes(e)

	go func() {
		log.Info("listening on %s", cfg.HTTPAddr)
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("shutdown: %v", err)
	}
}
