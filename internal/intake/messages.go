package intake

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/trafficcall/internal/alerts"
	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

// TrafficRequest is the body of POST /api/traffic.
type TrafficRequest struct {
	Callsign string          `json:"callsign"`
	ICAO     string          `json:"icao,omitempty"`
	Lat      float64         `json:"lat"`
	Lon      float64         `json:"lon"`
	AltBaro  int             `json:"alt_baro"`
	Ownship  *OwnshipRequest `json:"ownship,omitempty"`
}

// OwnshipRequest is the body of POST /api/ownship.
type OwnshipRequest struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Track   float64 `json:"track"`
	AltBaro int     `json:"alt_baro"`
}

// QueuedResponse acknowledges an accepted traffic report.
type QueuedResponse struct {
	Status   string `json:"status"`
	Replaced bool   `json:"replaced"`
}

// ErrorResponse carries a request error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Running     bool            `json:"running"`
	Pending     []string        `json:"pending"`
	Announced   int64           `json:"announced"`
	Skipped     int64           `json:"skipped"`
	BuildErrors int64           `json:"build_errors"`
	PlayErrors  int64           `json:"play_errors"`
	Submitted   int64           `json:"submitted"`
	Replaced    int64           `json:"replaced"`
	PeakQueue   int             `json:"peak_queue"`
	Accepted    int64           `json:"accepted"`
	Rejected    int64           `json:"rejected"`
	Ownship     *OwnshipRequest `json:"ownship,omitempty"`
	OwnshipAge  string          `json:"ownship_age,omitempty"`
}

// Identifier returns the callsign, falling back to the ICAO address.
func (r *TrafficRequest) Identifier() string {
	if id := strings.TrimSpace(r.Callsign); id != "" {
		return id
	}
	return strings.ToUpper(strings.TrimSpace(r.ICAO))
}

// Validate checks the report.
func (r *TrafficRequest) Validate() error {
	if r.Identifier() == "" {
		return fmt.Errorf("callsign or icao is required")
	}
	if err := checkPosition(r.Lat, r.Lon); err != nil {
		return err
	}
	if r.Ownship != nil {
		if err := r.Ownship.Validate(); err != nil {
			return fmt.Errorf("ownship: %w", err)
		}
	}
	return nil
}

// Report converts the request to a traffic report.
func (r *TrafficRequest) Report() traffic.Report {
	return traffic.Report{
		Identifier: r.Identifier(),
		Position:   traffic.Position{Latitude: r.Lat, Longitude: r.Lon},
		Altitude:   r.AltBaro,
	}
}

// Validate checks the ownship state.
func (o *OwnshipRequest) Validate() error {
	if err := checkPosition(o.Lat, o.Lon); err != nil {
		return err
	}
	if o.Track < 0 || o.Track > 360 {
		return fmt.Errorf("track must be between 0 and 360, got %g", o.Track)
	}
	return nil
}

// Ownship converts the request to an ownship state.
func (o *OwnshipRequest) Ownship() traffic.Ownship {
	return traffic.Ownship{
		Position: traffic.Position{Latitude: o.Lat, Longitude: o.Lon},
		Heading:  o.Track,
		Altitude: o.AltBaro,
	}
}

func ownshipRequest(own traffic.Ownship) *OwnshipRequest {
	return &OwnshipRequest{
		Lat:     own.Position.Latitude,
		Lon:     own.Position.Longitude,
		Track:   own.Heading,
		AltBaro: own.Altitude,
	}
}

func statusResponse(stats alerts.Stats, pending []string) StatusResponse {
	if pending == nil {
		pending = []string{}
	}
	return StatusResponse{
		Running:     stats.Running,
		Pending:     pending,
		Announced:   stats.Announced,
		Skipped:     stats.Skipped,
		BuildErrors: stats.BuildErrors,
		PlayErrors:  stats.PlayErrors,
		Submitted:   stats.Queue.TotalSubmitted,
		Replaced:    stats.Queue.TotalReplaced,
		PeakQueue:   stats.Queue.PeakSize,
	}
}

func checkPosition(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90, got %g", lat)
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("lon must be between -180 and 180, got %g", lon)
	}
	return nil
}
