// Package traffic defines the reports consumed by the alerting subsystem
// and the frozen alert snapshots it queues.
package traffic

import (
	"fmt"

	"github.com/dgnsrekt/trafficcall/internal/geometry"
)

// LevelThreshold is the altitude difference, in feet, under which traffic
// is announced as level.
const LevelThreshold = 100

// Position is a geographic position in degrees.
type Position struct {
	Latitude  float64
	Longitude float64
}

// Report is a single proximate-traffic report from the feed.
type Report struct {
	Identifier string // Callsign or ICAO address
	Position   Position
	Altitude   int // Barometric altitude in feet
}

// Ownship is the own aircraft state sampled when an alert is queued.
type Ownship struct {
	Position Position
	Heading  float64 // Track in degrees clockwise from true north
	Altitude int     // Barometric altitude in feet
}

// Vertical is the spoken vertical relation of traffic to ownship.
type Vertical int

const (
	Level Vertical = iota
	Low
	High
)

// String returns the spoken word for v.
func (v Vertical) String() string {
	switch v {
	case Level:
		return "level"
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// Alert is a pending announcement: a traffic report together with the
// ownship state at the moment it was submitted. Alerts are identified by
// the traffic identifier only.
type Alert struct {
	Traffic Report
	Ownship Ownship
}

// ID returns the dedup key of the alert.
func (a Alert) ID() string {
	return a.Traffic.Identifier
}

// RelativeBearing returns the bearing to the traffic relative to the
// ownship heading, in [0, 360).
func (a Alert) RelativeBearing() float64 {
	return geometry.RelativeBearing(
		a.Ownship.Position.Latitude, a.Ownship.Position.Longitude,
		a.Traffic.Position.Latitude, a.Traffic.Position.Longitude,
		a.Ownship.Heading)
}

// ClockPosition returns the clock hour (1-12) at which the traffic appears.
func (a Alert) ClockPosition() int {
	return geometry.ClockPosition(a.RelativeBearing())
}

// Vertical classifies the traffic altitude against the ownship altitude.
// A positive difference (ownship above) means the traffic is low.
func (a Alert) Vertical() Vertical {
	diff := a.Ownship.Altitude - a.Traffic.Altitude
	switch {
	case diff < LevelThreshold && diff > -LevelThreshold:
		return Level
	case diff > 0:
		return Low
	default:
		return High
	}
}

// String renders the alert as it would be spoken, for logs.
func (a Alert) String() string {
	return fmt.Sprintf("traffic %s %d o'clock %s", a.ID(), a.ClockPosition(), a.Vertical())
}
