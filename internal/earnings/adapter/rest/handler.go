package rest

import (
	"net/http"
	"time"

	"parcel-hub/internal/earnings/domain"
	"parcel-hub/pkg/auth"
	"parcel-hub/pkg/logger"
)

// Handler hosts the driver-facing dashboard endpoints.
type Handler struct {
	earnings domain.EarningsService
	jwt      *auth.JWTManager
	log      logger.Logger
}

func NewHandler(earnings domain.EarningsService, jwt *auth.JWTManager, log logger.Logger) *Handler {
	return &Handler{
		earnings: earnings,
		jwt:      jwt,
		log:      log,
	}
}

// RegisterRoutes mounts the authenticated dashboard routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /drivers/{driver_id}/earnings", h.jwt.Middleware(http.HandlerFunc(h.HandleEarnings)))
	mux.Handle("GET /drivers/{driver_id}/performance", h.jwt.Middleware(http.HandlerFunc(h.HandlePerformance)))
	mux.HandleFunc("GET /healthz", h.HandleHealth)
}

// HandleHealth is the liveness probe.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleEarnings returns the today/week/month earnings summary.
func (h *Handler) HandleEarnings(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.authorizeDriver(w, r)
	if !ok {
		return
	}

	summary, err := h.earnings.EarningsSummary(r.Context(), driverID, time.Now())
	if err != nil {
		h.log.WithFields(logger.LogFields{"driver_id": driverID}).Error("earnings_summary_failed", err)
		writeError(w, http.StatusBadGateway, "failed to compute earnings summary")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// HandlePerformance returns windowed performance metrics
// (?days=7|30|90, default 7).
func (h *Handler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.authorizeDriver(w, r)
	if !ok {
		return
	}

	days, ok := windowDays(r, 7)
	if !ok {
		writeError(w, http.StatusBadRequest, "days must be one of 7, 30, 90")
		return
	}

	metrics, err := h.earnings.PerformanceMetrics(r.Context(), driverID, days, time.Now())
	if err != nil {
		h.log.WithFields(logger.LogFields{"driver_id": driverID}).Error("performance_metrics_failed", err)
		writeError(w, http.StatusBadGateway, "failed to compute performance metrics")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}

// authorizeDriver extracts the path driver ID and checks the caller may
// read that driver's data. Drivers see only themselves; staff and admins
// see everyone.
func (h *Handler) authorizeDriver(w http.ResponseWriter, r *http.Request) (string, bool) {
	driverID := r.PathValue("driver_id")
	if driverID == "" {
		writeError(w, http.StatusBadRequest, "invalid driver path")
		return "", false
	}

	claims, ok := auth.GetClaims(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return "", false
	}
	if !claims.CanAccessDriver(driverID) {
		writeError(w, http.StatusForbidden, "not allowed to access this driver")
		return "", false
	}

	return driverID, true
}
