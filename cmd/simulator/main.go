// Command simulator moves an ownship and a few targets on great-circle
// tracks and posts their positions to a trafficcall intake.
package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/trafficcall/internal/geometry"
	"github.com/dgnsrekt/trafficcall/internal/intake"
)

var (
	serverURL string
	tick      time.Duration
	perSecond float64
	duration  time.Duration

	rootCmd = &cobra.Command{
		Use:          "simulator",
		Short:        "Feed simulated traffic to a trafficcall intake",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFlags(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}
			return run(ctx)
		},
	}
)

func validateFlags() error {
	if tick <= 0 {
		return fmt.Errorf("--tick must be positive, got %s", tick)
	}
	if perSecond <= 0 {
		return fmt.Errorf("--rate must be positive, got %g", perSecond)
	}
	if duration < 0 {
		return fmt.Errorf("--duration cannot be negative, got %s", duration)
	}
	return nil
}

// aircraft is a simulated aircraft flying a constant turn rate.
type aircraft struct {
	Callsign string
	Lat      float64
	Lon      float64
	Alt      int
	Speed    float64 // knots
	Track    float64
	TurnRate float64 // degrees per second
}

// move advances a by dt along its great-circle track.
func (a *aircraft) move(dt time.Duration) {
	dist := a.Speed * dt.Hours()
	a.Lat, a.Lon = geometry.Destination(a.Lat, a.Lon, a.Track, dist)
	a.Track = geometry.NormalizeDegrees(a.Track + a.TurnRate*dt.Seconds())
}

// scenario places targets around an ownship near Seattle.
func scenario() (*aircraft, []*aircraft) {
	own := &aircraft{Callsign: "OWNSHIP", Lat: 47.4502, Lon: -122.3088, Alt: 3000, Speed: 110, Track: 340, TurnRate: 1}

	place := func(callsign string, bearing, dist float64, alt int, speed, track float64) *aircraft {
		lat, lon := geometry.Destination(own.Lat, own.Lon, bearing, dist)
		return &aircraft{Callsign: callsign, Lat: lat, Lon: lon, Alt: alt, Speed: speed, Track: track}
	}

	return own, []*aircraft{
		place("N172SP", 30, 3, 3000, 100, 200),
		place("N525XL", 120, 4, 4500, 180, 300),
		place("N8812Q", 250, 2, 2200, 90, 70),
		place("C-GKWA", 330, 5, 3100, 120, 160),
	}
}

type poster struct {
	client  *http.Client
	base    string
	limiter *rate.Limiter
}

func (p *poster) post(ctx context.Context, path string, v any) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.base+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		var e intake.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("%s: %s %s", path, resp.Status, e.Error)
	}
	return nil
}

func run(ctx context.Context) error {
	p := &poster{
		client:  &http.Client{Timeout: 5 * time.Second},
		base:    serverURL,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
	own, targets := scenario()

	log.Info("Simulating traffic", "server", serverURL, "targets", len(targets), "tick", tick)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		err := p.post(ctx, "/api/ownship", intake.OwnshipRequest{
			Lat: own.Lat, Lon: own.Lon, Track: own.Track, AltBaro: own.Alt,
		})
		if err != nil && ctx.Err() == nil {
			log.Warn("Ownship update failed", "err", err)
		}

		for _, t := range targets {
			err := p.post(ctx, "/api/traffic", intake.TrafficRequest{
				Callsign: t.Callsign, Lat: t.Lat, Lon: t.Lon, AltBaro: t.Alt,
			})
			if ctx.Err() != nil {
				break
			}
			if err != nil {
				log.Warn("Traffic report failed", "callsign", t.Callsign, "err", err)
			}
		}

		select {
		case <-ctx.Done():
			log.Info("Simulator stopped")
			return nil
		case <-ticker.C:
		}

		own.move(tick)
		for _, t := range targets {
			t.move(tick)
		}
		log.Debug("Positions updated", "ownship_lat", own.Lat, "ownship_lon", own.Lon, "track", own.Track)
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8089", "trafficcall intake base URL")
	rootCmd.Flags().DurationVar(&tick, "tick", 5*time.Second, "time between position updates")
	rootCmd.Flags().Float64Var(&perSecond, "rate", 5, "maximum requests per second")
	rootCmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 runs until interrupted)")
}
