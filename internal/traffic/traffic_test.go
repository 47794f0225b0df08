package traffic

import "testing"

func TestAlertVertical(t *testing.T) {
	tests := []struct {
		name     string
		own      int
		traffic  int
		expected Vertical
	}{
		{"same altitude", 1000, 1000, Level},
		{"just under threshold above", 1000, 1099, Level},
		{"just under threshold below", 1000, 901, Level},
		{"at threshold below", 1000, 900, Low},
		{"at threshold above", 1000, 1100, High},
		{"500 below", 1000, 500, Low},
		{"500 above", 1000, 1500, High},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Alert{
				Traffic: Report{Identifier: "N1", Altitude: tt.traffic},
				Ownship: Ownship{Altitude: tt.own},
			}
			if got := a.Vertical(); got != tt.expected {
				t.Errorf("Vertical() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestAlertClockPosition(t *testing.T) {
	a := Alert{
		Traffic: Report{Identifier: "N1", Position: Position{Latitude: 0, Longitude: 0.01}},
		Ownship: Ownship{Position: Position{}, Heading: 0},
	}
	if got := a.ClockPosition(); got != 3 {
		t.Errorf("ClockPosition() = %d, want 3", got)
	}

	a.Ownship.Heading = 90
	if got := a.ClockPosition(); got != 12 {
		t.Errorf("ClockPosition() heading east = %d, want 12", got)
	}
}

func TestAlertIDIgnoresPosition(t *testing.T) {
	a := Alert{Traffic: Report{Identifier: "ABC123", Altitude: 100}}
	b := Alert{Traffic: Report{Identifier: "ABC123", Altitude: 9000}}
	if a.ID() != b.ID() {
		t.Errorf("expected equal IDs, got %q and %q", a.ID(), b.ID())
	}
}

func TestAlertString(t *testing.T) {
	a := Alert{
		Traffic: Report{Identifier: "N1", Position: Position{Longitude: 0.01}, Altitude: 500},
		Ownship: Ownship{Altitude: 1000},
	}
	if got, want := a.String(), "traffic N1 3 o'clock low"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
