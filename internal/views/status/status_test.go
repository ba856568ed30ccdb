package status

import (
	"strings"
	"testing"

	"github.com/mission-control/telemetry/internal/telemetry"
)

func TestGlyph(t *testing.T) {
	m := New("http://127.0.0.1:8080/api/telemetry")
	if got := m.Glyph(); got != "○" {
		t.Errorf("Glyph() before updates = %q, want ○", got)
	}
	m.Updates = 1
	first := m.Glyph()
	m.Updates = 2
	if m.Glyph() == first {
		t.Error("Glyph() should change between consecutive updates")
	}
}

func TestView(t *testing.T) {
	m := New("http://127.0.0.1:8080/api/telemetry")
	m.Status = telemetry.StatusWarning
	m.Width = 100

	v := m.View()
	for _, want := range []string{"LIVE", "[WARNING]", "/api/telemetry"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() should contain %q:\n%s", want, v)
		}
	}
}
