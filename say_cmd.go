package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/trafficcall/internal/geometry"
	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

// sayOwnship is the made-up ownship that say places traffic around.
var sayOwnship = traffic.Ownship{
	Position: traffic.Position{Latitude: 47.4502, Longitude: -122.3088},
	Heading:  340,
	Altitude: 3000,
}

var (
	sayClock    int
	sayVertical string
	sayTimeout  time.Duration

	sayCmd = &cobra.Command{
		Use:   "say [CALLSIGN]",
		Short: "Speak a single traffic alert",
		Long: paragraph(fmt.Sprintf("\n%s one traffic alert with the configured voice and device, then exit once it has been spoken. Handy for checking a voice pack.", keyword("Speak"))),
		Example: paragraph("trafficcall say\ntrafficcall say N123AB --clock 2 --vertical high"),
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			callsign := "N12345"
			if len(args) > 0 {
				callsign = args[0]
			}
			vertical, err := parseVertical(sayVertical)
			if err != nil {
				return err
			}
			if sayClock < 1 || sayClock > 12 {
				return fmt.Errorf("clock position must be between 1 and 12, got %d", sayClock)
			}
			return say(cmd.Context(), callsign, sayClock, vertical)
		},
	}
)

func say(ctx context.Context, callsign string, clock int, vertical traffic.Vertical) error {
	sys, err := newSubsystem(cfg)
	if err != nil {
		return err
	}
	defer sys.Close() //nolint:errcheck

	if _, err := sys.alerter.AlertTrafficPosition(sayReport(callsign, clock, vertical), sayOwnship); err != nil {
		return fmt.Errorf("unable to queue alert: %w", err)
	}
	if err := sys.alerter.Start(ctx); err != nil {
		return err
	}
	defer sys.alerter.Stop()

	ctx, cancel := context.WithTimeout(ctx, sayTimeout)
	defer cancel()
	if err := sys.alerter.Drain(ctx); err != nil {
		return fmt.Errorf("alert was not spoken: %w", err)
	}

	if stats := sys.alerter.Stats(); stats.Announced == 0 {
		return fmt.Errorf("alert was dropped, see the log for details")
	}
	return nil
}

// sayReport places traffic two miles out at the given clock position of
// sayOwnship.
func sayReport(callsign string, clock int, vertical traffic.Vertical) traffic.Report {
	bearing := sayOwnship.Heading + float64(clock)*30
	lat, lon := geometry.Destination(sayOwnship.Position.Latitude, sayOwnship.Position.Longitude, bearing, 2)

	alt := sayOwnship.Altitude
	switch vertical {
	case traffic.Low:
		alt -= 500
	case traffic.High:
		alt += 500
	}

	return traffic.Report{
		Identifier: callsign,
		Position:   traffic.Position{Latitude: lat, Longitude: lon},
		Altitude:   alt,
	}
}

func parseVertical(s string) (traffic.Vertical, error) {
	switch strings.ToLower(s) {
	case "", "level":
		return traffic.Level, nil
	case "low":
		return traffic.Low, nil
	case "high":
		return traffic.High, nil
	default:
		return traffic.Level, fmt.Errorf("unknown vertical position %q (want level, low or high)", s)
	}
}

func init() {
	sayCmd.Flags().IntVarP(&sayClock, "clock", "c", 12, "clock position of the traffic (1-12)")
	sayCmd.Flags().StringVar(&sayVertical, "vertical", "level", "traffic altitude relative to ownship: level, low or high")
	sayCmd.Flags().DurationVar(&sayTimeout, "timeout", 30*time.Second, "give up if the alert has not been spoken by then")
}
