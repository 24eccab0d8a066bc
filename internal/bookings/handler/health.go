package handler

import (
	"context"
	"net/http"
	"time"

	"upasana/pkg/config"
	httputil "upasana/pkg/http"

	"github.com/julienschmidt/httprouter"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}

// Health reports process liveness
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.cfg.Log.Error("failed to write health response", "error", err)
	}
}

// Ready reports whether the service can reach its dependencies
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.cfg.Client == nil || h.cfg.Client.Mongo == nil {
		h.writeNotReady(w, "mongo client not initialized")
		return
	}

	if err := h.cfg.Client.Mongo.Ping(ctx, nil); err != nil {
		h.writeNotReady(w, "mongo unreachable")
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"}); err != nil {
		h.cfg.Log.Error("failed to write ready response", "error", err)
	}
}

func (h *HealthHandler) writeNotReady(w http.ResponseWriter, reason string) {
	if err := httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "not ready",
		"reason": reason,
	}); err != nil {
		h.cfg.Log.Error("failed to write ready response", "error", err)
	}
}
