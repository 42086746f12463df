package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/uofuseismo/deduplicator/internal/log"
)

// Serve exposes /metrics on the given address in the background. The
// listener lives for the life of the process.
func Serve(listen string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(listen, mux); err != nil {
			log.GetLogger().Errorf("Metrics listener failed: %v", err)
		}
	}()
}
