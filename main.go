package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/raushankrgupta/vehicle-catalog-importer/api"
	"github.com/raushankrgupta/vehicle-catalog-importer/app"
	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/importer"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

func main() {
	config.LoadConfig()
	lg := logger.New(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, lg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	handler := &api.Handler{
		Pipeline:   a.Pipeline,
		Scanner:    a.Scanner,
		Batches:    importer.NewBatchRegistry(),
		Logger:     lg,
		Background: context.WithoutCancel(ctx),
	}
	if af, err := a.NewAutoFill(config.AutoFillCategoriesFile); err != nil {
		lg.Warn("auto-fill disabled", "file", config.AutoFillCategoriesFile, "error", err)
	} else {
		handler.AutoFill = af
	}

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           otelhttp.NewHandler(utils.LatencyMiddleware(lg, handler.Routes()), "catalog-importer"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		if handler.AutoFill != nil {
			handler.AutoFill.Stop()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			lg.Warn("shutdown", "error", err)
		}
	}()

	fmt.Printf("Server starting on port %s...\n", config.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed to start: %v", err)
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	a.Close(closeCtx)
}
