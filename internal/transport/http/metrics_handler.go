package http

import (
	"net/http"

	apierrors "github.com/jgtann/gdp-dashboard/internal/errors"
)

// MetricsHandler serves the Prometheus scrape endpoint
type MetricsHandler struct {
	prom         http.Handler
	errorHandler *apierrors.ErrorHandler
}

// NewMetricsHandler creates a metrics handler. A nil prom handler means
// metrics are disabled and the endpoint answers 404.
func NewMetricsHandler(prom http.Handler, errorHandler *apierrors.ErrorHandler) *MetricsHandler {
	return &MetricsHandler{prom: prom, errorHandler: errorHandler}
}

// ServeHTTP handles GET /metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.prom == nil {
		h.errorHandler.NotFound(w, r)
		return
	}
	h.prom.ServeHTTP(w, r)
}
