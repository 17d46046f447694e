package orders

import (
	"regexp"
	"testing"
	"time"

	"maeva_back_end/internal/models"
)

var trackingPattern = regexp.MustCompile(`^MAEVA-[0-9A-F]{8}$`)

func TestNewTrackingCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewTrackingCode()
		if !trackingPattern.MatchString(code) {
			t.Fatalf("unexpected format %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 99 {
		t.Errorf("too many collisions: %d distinct codes", len(seen))
	}
	if got := NormalizeTrackingCode(" maeva-ab12cd34 "); got != "MAEVA-AB12CD34" {
		t.Errorf("unexpected normalized code %q", got)
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{models.OrderPending, models.OrderConfirmed, true},
		{models.OrderPending, models.OrderCancelled, true},
		{models.OrderConfirmed, models.OrderShipped, true},
		{models.OrderConfirmed, models.OrderCancelled, true},
		{models.OrderShipped, models.OrderDelivered, true},
		{models.OrderShipped, models.OrderCancelled, false},
		{models.OrderPending, models.OrderShipped, false},
		{models.OrderDelivered, models.OrderPending, false},
		{models.OrderCancelled, models.OrderConfirmed, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("%s → %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTimeline(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	pending := models.Order{
		Status:  models.OrderConfirmed,
		History: []models.StatusEvent{{Status: models.OrderPending, At: t0}, {Status: models.OrderConfirmed, At: t0.Add(time.Hour)}},
	}
	steps := Timeline(pending)
	if len(steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(steps))
	}
	if !steps[1].Reached || !steps[1].At.Equal(t0.Add(time.Hour)) {
		t.Errorf("confirmed step wrong: %+v", steps[1])
	}
	if steps[2].Reached || steps[2].At != nil {
		t.Errorf("shipped step must not be reached: %+v", steps[2])
	}
	if steps[0].Label != "Commande reçue" {
		t.Errorf("unexpected label %q", steps[0].Label)
	}

	cancelled := models.Order{
		Status:  models.OrderCancelled,
		History: []models.StatusEvent{{Status: models.OrderPending, At: t0}, {Status: models.OrderCancelled, At: t0.Add(time.Hour)}},
	}
	steps = Timeline(cancelled)
	if len(steps) != 2 || steps[1].Status != models.OrderCancelled || !steps[1].Reached {
		t.Errorf("unexpected cancelled timeline: %+v", steps)
	}
}
