// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/scriptpatch/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// runServe starts a long-lived HTTP server exposing Prometheus metrics
// for a fleet of scriptpatch apply runs to report against (each run
// would be started with its own Registry pointed at prometheus.DefaultRegisterer
// in a real deployment; this command just mounts the handler and serves
// whatever the default registry has accumulated in-process).
func runServe(args []string, configPath string, globals GlobalFlags) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "Listen address (overrides project config)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, err := loadConfigOrDefault(configPath)
	if err != nil {
		cfg, _ = loadConfigOrDefault("")
	}
	listenAddr := ":9090"
	if cfg != nil && cfg.Metrics.ListenAddr != "" {
		listenAddr = cfg.Metrics.ListenAddr
	}
	if *addr != "" {
		listenAddr = *addr
	}

	metrics.NewRegistry(prometheus.DefaultRegisterer)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	if !globals.Quiet {
		fmt.Printf("scriptpatch metrics server listening on %s (GET /metrics, GET /health)\n", listenAddr)
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		return 1
	}
	return 0
}
