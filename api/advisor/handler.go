package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	coreadvisor "github.com/kilianp07/tariffopt/core/advisor"
	"github.com/kilianp07/tariffopt/core/events"
	"github.com/kilianp07/tariffopt/core/factory"
	coremetrics "github.com/kilianp07/tariffopt/core/metrics"
	"github.com/kilianp07/tariffopt/core/model"
	coremon "github.com/kilianp07/tariffopt/core/monitoring"
	"github.com/kilianp07/tariffopt/core/store"
	"github.com/kilianp07/tariffopt/infra/logger"
	"github.com/kilianp07/tariffopt/internal/eventbus"
)

// maxBody caps request bodies.
const maxBody = 1 << 20

// Handler serves the advisor JSON API.
type Handler struct {
	catalog *store.Catalog
	bus     *eventbus.Bus[events.Event]
	sink    coremetrics.MetricsSink
	log     logger.Logger
	token   string
	now     func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithBus publishes advisor events on bus.
func WithBus(bus *eventbus.Bus[events.Event]) Option {
	return func(h *Handler) { h.bus = bus }
}

// WithMetrics records request metrics when sink implements RequestRecorder.
func WithMetrics(sink coremetrics.MetricsSink) Option {
	return func(h *Handler) {
		if sink != nil {
			h.sink = sink
		}
	}
}

// WithAPIToken requires "Authorization: Bearer <token>" on mutating routes.
func WithAPIToken(token string) Option {
	return func(h *Handler) { h.token = token }
}

// WithLogger overrides the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler returns a Handler backed by catalog.
func NewHandler(catalog *store.Catalog, opts ...Option) *Handler {
	h := &Handler{
		catalog: catalog,
		sink:    coremetrics.NopSink{},
		log:     logger.New("api"),
		now:     time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

type optimizeRequest struct {
	Appliances  []float64         `json:"appliances"`
	Constraints model.Constraints `json:"constraints"`
}

// ids keeps the requested ids that are whole numbers. A fractional id such as
// 1.5 matches no appliance.
func (r optimizeRequest) ids() []int {
	out := make([]int, 0, len(r.Appliances))
	for _, v := range r.Appliances {
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			continue
		}
		out = append(out, int(v))
	}
	return out
}

type rateResponse struct {
	Rate float64 `json:"rate"`
	Type string  `json:"type"`
}

type result struct {
	Success   bool             `json:"success"`
	Appliance *model.Appliance `json:"appliance,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) getTariff(w http.ResponseWriter, r *http.Request) {
	t, err := h.catalog.Tariff(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) putTariff(w http.ResponseWriter, r *http.Request) {
	var t model.TariffTable
	if err := decodeBody(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.catalog.SetTariff(r.Context(), t); err != nil {
		if errors.Is(err, model.ErrCoverage) || errors.Is(err, model.ErrInvalidSlot) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		h.serverError(w, r, err)
		return
	}
	h.publish(events.CatalogEvent{Action: events.TariffReplaced, Time: h.now()})
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) listAppliances(w http.ResponseWriter, r *http.Request) {
	apps, err := h.catalog.List(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// addAppliance accepts numeric fields as JSON numbers or numeric strings.
func (h *Handler) addAppliance(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeBody(r, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, result{Error: err.Error()})
		return
	}
	var in model.NewAppliance
	if err := factory.Decode(raw, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, result{Error: err.Error()})
		return
	}
	app, err := h.catalog.Add(r.Context(), in)
	if err != nil {
		if errors.Is(err, model.ErrInvalidAppliance) {
			writeJSON(w, http.StatusBadRequest, result{Error: err.Error()})
			return
		}
		h.capture(r, err)
		writeJSON(w, http.StatusInternalServerError, result{Error: err.Error()})
		return
	}
	h.publish(events.CatalogEvent{Action: events.ApplianceAdded, ApplianceID: app.ID, Time: h.now()})
	writeJSON(w, http.StatusOK, result{Success: true, Appliance: &app})
}

func (h *Handler) deleteAppliance(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, result{Error: "invalid appliance id"})
		return
	}
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		h.capture(r, err)
		writeJSON(w, http.StatusInternalServerError, result{Error: err.Error()})
		return
	}
	h.publish(events.CatalogEvent{Action: events.ApplianceDeleted, ApplianceID: id, Time: h.now()})
	writeJSON(w, http.StatusOK, result{Success: true})
}

// optimize ranks start hours for the requested appliances. Appliance ids may
// be sent as numbers or numeric strings.
func (h *Handler) optimize(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := decodeBody(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req optimizeRequest
	if err := factory.Decode(raw, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	adv, err := h.advisor(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	recs := adv.Optimize(req.ids(), req.Constraints)
	h.publish(events.RecommendationEvent{RequestID: uuid.NewString(), Recommendations: recs, Time: h.now()})
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) calculateSavings(w http.ResponseWriter, r *http.Request) {
	var data model.ScheduleComparison
	if err := decodeBody(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rep := coreadvisor.CalculateSavings(data)
	h.publish(events.SavingsEvent{RequestID: uuid.NewString(), Report: rep, Time: h.now()})
	writeJSON(w, http.StatusOK, rep)
}

func (h *Handler) rate(w http.ResponseWriter, r *http.Request) {
	hour, err := queryInt(r, "hour", 0, 23)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	minute, err := queryInt(r, "minute", 0, 59)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	adv, err := h.advisor(r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	rate, kind := adv.RateFor(hour, minute)
	writeJSON(w, http.StatusOK, rateResponse{Rate: rate, Type: kind})
}

func (h *Handler) advisor(r *http.Request) (*coreadvisor.Advisor, error) {
	t, apps, err := h.catalog.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}
	return coreadvisor.New(t, apps, coreadvisor.WithLogger(h.log)), nil
}

func (h *Handler) publish(ev events.Event) {
	if h.bus != nil {
		h.bus.Publish(ev)
	}
}

func (h *Handler) capture(r *http.Request, err error) {
	h.log.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
	coremon.CaptureException(err, map[string]string{"module": "api", "path": r.URL.Path})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.capture(r, err)
	writeError(w, http.StatusInternalServerError, err)
}

func queryInt(r *http.Request, key string, lo, hi int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer in [%d, %d]", key, lo, hi)
	}
	return n, nil
}

func decodeBody(r *http.Request, out any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBody))
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
