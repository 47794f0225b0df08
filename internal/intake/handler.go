package intake

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/trafficcall/internal/alerts"
	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

// maxBodySize caps request bodies.
const maxBodySize = 64 * 1024

// Alerter is the part of the alerting subsystem the intake feeds.
type Alerter interface {
	AlertTrafficPosition(report traffic.Report, own traffic.Ownship) (replaced bool, err error)
	Pending() []string
	Stats() alerts.Stats
}

// Handler implements the intake endpoints independently of the HTTP
// router. Each method takes the request body and returns the status code
// and the value to encode as the response.
type Handler struct {
	alerter Alerter
	tracker *Tracker
	limiter *rate.Limiter

	accepted atomic.Int64
	rejected atomic.Int64
}

// NewHandler creates a handler that admits up to limit traffic reports per
// second with the given burst.
func NewHandler(alerter Alerter, tracker *Tracker, limit float64, burst int) *Handler {
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Handler{
		alerter: alerter,
		tracker: tracker,
		limiter: rate.NewLimiter(rate.Limit(limit), burst),
	}
}

// Traffic handles POST /api/traffic.
func (h *Handler) Traffic(body io.Reader) (int, any) {
	if !h.limiter.Allow() {
		return h.reject(http.StatusTooManyRequests, "rate limit exceeded")
	}

	var req TrafficRequest
	if err := decode(body, &req); err != nil {
		return h.reject(http.StatusBadRequest, "invalid traffic report: "+err.Error())
	}
	if err := req.Validate(); err != nil {
		return h.reject(http.StatusBadRequest, err.Error())
	}

	var own traffic.Ownship
	if req.Ownship != nil {
		own = req.Ownship.Ownship()
	} else {
		var ok bool
		if own, ok = h.tracker.Current(); !ok {
			return h.reject(http.StatusConflict, "no ownship position known")
		}
	}

	replaced, err := h.alerter.AlertTrafficPosition(req.Report(), own)
	switch {
	case errors.Is(err, alerts.ErrMissingIdentifier), errors.Is(err, alerts.ErrInvalidReport):
		return h.reject(http.StatusBadRequest, err.Error())
	case errors.Is(err, alerts.ErrAlerterClosed):
		return h.reject(http.StatusServiceUnavailable, err.Error())
	case err != nil:
		log.Error("Cannot queue traffic alert", "id", req.Identifier(), "err", err)
		return h.reject(http.StatusInternalServerError, "cannot queue alert")
	}

	h.accepted.Add(1)
	return http.StatusAccepted, QueuedResponse{Status: "queued", Replaced: replaced}
}

// Ownship handles POST /api/ownship.
func (h *Handler) Ownship(body io.Reader) (int, any) {
	var req OwnshipRequest
	if err := decode(body, &req); err != nil {
		return http.StatusBadRequest, ErrorResponse{Error: "invalid ownship report: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	}

	h.tracker.Update(req.Ownship())
	log.Debug("Ownship updated", "lat", req.Lat, "lon", req.Lon, "track", req.Track, "alt", req.AltBaro)
	return http.StatusOK, req
}

// Status handles GET /api/status.
func (h *Handler) Status() (int, any) {
	resp := statusResponse(h.alerter.Stats(), h.alerter.Pending())
	resp.Accepted = h.accepted.Load()
	resp.Rejected = h.rejected.Load()
	if own, ok := h.tracker.Current(); ok {
		resp.Ownship = ownshipRequest(own)
		resp.OwnshipAge = h.tracker.Age().Round(time.Millisecond).String()
	}
	return http.StatusOK, resp
}

func (h *Handler) reject(status int, msg string) (int, any) {
	h.rejected.Add(1)
	log.Debug("Traffic report rejected", "status", status, "reason", msg)
	return status, ErrorResponse{Error: msg}
}

func decode(body io.Reader, v any) error {
	if body == nil {
		return fmt.Errorf("empty body")
	}
	return json.NewDecoder(io.LimitReader(body, maxBodySize)).Decode(v)
}
