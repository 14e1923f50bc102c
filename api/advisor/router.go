package advisor

import (
	"crypto/subtle"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	coremon "github.com/kilianp07/tariffopt/core/monitoring"
)

// Routes registers the API routes on r.
func (h *Handler) Routes(r *mux.Router) {
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/tariff", h.getTariff).Methods(http.MethodGet)
	api.Handle("/tariff", h.requireToken(http.HandlerFunc(h.putTariff))).Methods(http.MethodPut)
	api.HandleFunc("/appliances", h.listAppliances).Methods(http.MethodGet)
	api.Handle("/add_appliance", h.requireToken(http.HandlerFunc(h.addAppliance))).Methods(http.MethodPost)
	api.Handle("/delete_appliance/{id}", h.requireToken(http.HandlerFunc(h.deleteAppliance))).Methods(http.MethodDelete)
	api.HandleFunc("/optimize", h.optimize).Methods(http.MethodPost)
	api.HandleFunc("/calculate_savings", h.calculateSavings).Methods(http.MethodPost)
	api.HandleFunc("/rate", h.rate).Methods(http.MethodGet)
}

// Router returns the API wrapped with panic recovery, CORS and access logs.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(h.instrument)
	h.Routes(r)

	var handler http.Handler = r
	handler = handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(handler)
	handler = handlers.CustomLoggingHandler(io.Discard, handler, h.accessLog)
	return handlers.RecoveryHandler(handlers.RecoveryLogger(coremon.RecoveryLogger{}))(handler)
}

func (h *Handler) accessLog(_ io.Writer, p handlers.LogFormatterParams) {
	h.log.Debugw("request", map[string]any{
		"method": p.Request.Method,
		"path":   p.URL.Path,
		"status": p.StatusCode,
		"size":   p.Size,
		"took":   time.Since(p.TimeStamp).String(),
	})
}

// instrument records latency per route template.
func (h *Handler) instrument(next http.Handler) http.Handler {
	rec, ok := h.sink.(coremetrics.RequestRecorder)
	if !ok {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if err := rec.RecordRequest(coremetrics.RequestEvent{
			Route:    route,
			Method:   r.Method,
			Status:   sw.status,
			Duration: time.Since(start),
		}); err != nil {
			h.log.Warnf("record request: %v", err)
		}
	})
}

func (h *Handler) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.token != "" {
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, result{Error: "unauthorized"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
