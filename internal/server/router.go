package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/adampdxdotcom/subfloor-sub002/httpx"
	"github.com/adampdxdotcom/subfloor-sub002/internal/handlers"
	"github.com/adampdxdotcom/subfloor-sub002/internal/logger"
	"github.com/adampdxdotcom/subfloor-sub002/internal/metrics"
	"github.com/adampdxdotcom/subfloor-sub002/internal/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// New constructs the root http.Handler with all routes and middlewares applied.
// loc is the timezone date-only appointment inputs are pinned to.
func New(db *gorm.DB, log *zap.Logger, loc *time.Location) http.Handler {
	log = logger.OrNop(log)
	mux := http.NewServeMux()

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	ph := handlers.NewProjectHandler(services.NewProjectService(db))
	mux.HandleFunc("POST /projects", ph.Create)
	mux.HandleFunc("GET /projects/{id}", ph.Get)
	mux.HandleFunc("PUT /projects/{id}/status", ph.UpdateStatus)

	qh := handlers.NewQuoteHandler(services.NewQuoteService(db))
	mux.HandleFunc("POST /projects/{id}/quotes", qh.Create)
	mux.HandleFunc("GET /projects/{id}/quotes", qh.List)
	mux.HandleFunc("POST /quotes/{id}/accept", qh.Accept)
	mux.HandleFunc("POST /quotes/{id}/reject", qh.Reject)

	ch := handlers.NewChangeOrderHandler(services.NewChangeOrderService(db))
	mux.HandleFunc("POST /projects/{id}/change-orders", ch.Create)
	mux.HandleFunc("GET /projects/{id}/change-orders", ch.List)

	jh := handlers.NewJobHandler(services.NewJobService(db, log, loc))
	mux.HandleFunc("GET /projects/{id}/financial-summary", jh.FinancialSummary)
	mux.HandleFunc("GET /projects/{id}/job", jh.Get)
	mux.HandleFunc("PUT /projects/{id}/job", jh.Save)
	mux.HandleFunc("POST /projects/{id}/job/final-payment", jh.FinalPayment)
	mux.HandleFunc("POST /projects/{id}/job/hold", jh.Hold)

	return withRecover(log, withLogging(log, mux))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		// the mux fills in Pattern; label by route to keep cardinality bounded
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(r.Method, route, strconv.Itoa(rec.status), elapsed)
		log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

func withRecover(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic serving request", zap.String("path", r.URL.Path), zap.Any("panic", rec))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
