// carousel-api is the long-running JSON-RPC server the carousel GUI
// shells connect to for generation and calibration.
//
// Usage:
//
//	carousel-api [options]
//
// Options:
//
//	-addr string     API listen address (default ":7125")
//	-metrics string  Metrics listen address; empty disables (default ":9100")
//
// The API serves JSON-RPC 2.0 on POST /jsonrpc and on the WebSocket
// at /websocket. Metrics are exposed at /metrics in Prometheus text
// format.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carousel-go-migration/pkg/api"
	"carousel-go-migration/pkg/log"
	"carousel-go-migration/pkg/metrics"
)

var logger = log.GetLogger("carousel-api")

func main() {
	addr := flag.String("addr", ":7125", "API listen address")
	metricsAddr := flag.String("metrics", ":9100", "Metrics listen address; empty disables")
	flag.Parse()

	server := api.New(api.Config{
		Addr:    *addr,
		Metrics: metrics.Global(),
	})

	var metricsServer *metrics.Server
	if *metricsAddr != "" {
		metricsServer = metrics.NewServer(metrics.GlobalRegistry(), *metricsAddr)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("metrics server: %v", err)
			}
		}()
		logger.Info("metrics on %s/metrics", *metricsAddr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received %v, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Error("API server: %v", err)
			os.Exit(1)
		}
	}

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Warn("metrics shutdown: %v", err)
		}
	}
	if err := server.Stop(); err != nil {
		logger.Warn("API shutdown: %v", err)
	}
}
