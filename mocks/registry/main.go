// Command registry is a stand-in for the external cross-validation
// registries (population, biometric, document authenticity, PKD) used in
// local runs and e2e scenarios. Each registry is served at POST /{name}.
//
// Behaviour is driven by the environment:
//
//	REGISTRY_ADDR     listen address (default :9090)
//	REGISTRY_LATENCY  added delay per call, e.g. 250ms
//	REGISTRY_DOWN     comma-separated registries answering 503
package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	latency, err := time.ParseDuration(getEnv("REGISTRY_LATENCY", "0s"))
	if err != nil {
		log.Error("invalid REGISTRY_LATENCY", "error", err)
		os.Exit(1)
	}
	down := map[string]bool{}
	for name := range strings.SplitSeq(os.Getenv("REGISTRY_DOWN"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			down[name] = true
		}
	}

	addr := getEnv("REGISTRY_ADDR", ":9090")
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(log, latency, down),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info("mock registry listening", "addr", addr, "latency", latency, "down", len(down))
	if err := srv.ListenAndServe(); err != nil {
		log.Error("mock registry stopped", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
