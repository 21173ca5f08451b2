// Package v1 provides the REST API handlers for channel selection and
// forwarding passes.
package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/forward-slots/internal/api/common"
	"github.com/stacklok/forward-slots/internal/config"
	fwdotel "github.com/stacklok/forward-slots/internal/otel"
	"github.com/stacklok/forward-slots/internal/service"
)

// Routes holds the handlers and their service dependency
type Routes struct {
	service service.ForwardingService
}

// NewRoutes creates the v1 route handlers
func NewRoutes(svc service.ForwardingService) *Routes {
	return &Routes{service: svc}
}

// Router creates the v1 router
func Router(svc service.ForwardingService) http.Handler {
	routes := NewRoutes(svc)

	r := chi.NewRouter()
	r.Post("/select", routes.selectChannels)
	r.Get("/forward", routes.forwardDefault)
	r.Post("/forward", routes.forward)

	return r
}

// selectChannels handles POST /api/v1/select
func (rt *Routes) selectChannels(w http.ResponseWriter, r *http.Request) {
	var req service.SelectRequest
	if err := common.DecodeJSONBody(w, r, &req); err != nil {
		fwdotel.RecordError(trace.SpanFromContext(r.Context()), err)
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := rt.service.Select(r.Context(), &req)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, result, http.StatusOK)
}

// forward handles POST /api/v1/forward with a manifest body
func (rt *Routes) forward(w http.ResponseWriter, r *http.Request) {
	var manifest config.Manifest
	if err := common.DecodeJSONBody(w, r, &manifest); err != nil {
		fwdotel.RecordError(trace.SpanFromContext(r.Context()), err)
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := rt.service.Forward(r.Context(), &manifest)
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, result, http.StatusOK)
}

// forwardDefault handles GET /api/v1/forward for the configured manifest
func (rt *Routes) forwardDefault(w http.ResponseWriter, r *http.Request) {
	result, err := rt.service.ForwardDefault(r.Context())
	if err != nil {
		rt.writeServiceError(w, r, err)
		return
	}

	common.WriteJSONResponse(w, result, http.StatusOK)
}

func (*Routes) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	fwdotel.RecordError(trace.SpanFromContext(r.Context()), err)

	switch {
	case errors.Is(err, service.ErrInvalidManifest):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, service.ErrNoManifest):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	default:
		slog.ErrorContext(r.Context(), "Forwarding request failed", "path", r.URL.Path, "error", err)
		common.WriteErrorResponse(w, "internal server error", http.StatusInternalServerError)
	}
}
