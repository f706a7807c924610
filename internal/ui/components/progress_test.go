package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestProgressBar_Filled(t *testing.T) {
	tests := []struct {
		percent float64
		want    int
	}{
		{0, 0},
		{0.5, 10},
		{1, 20},
		{1.7, 20},
		{-0.2, 0},
	}
	for _, tt := range tests {
		p := ProgressBar{Percent: tt.percent}
		if got := p.Filled(20); got != tt.want {
			t.Errorf("Filled(20) at %.1f = %d, want %d", tt.percent, got, tt.want)
		}
	}
}

func TestProgressBar_View(t *testing.T) {
	p := NewProgressBar("Focus", 0.25, true, 40)
	out := p.View()

	if w := lipgloss.Width(out); w > 40 {
		t.Errorf("width = %d, want at most 40", w)
	}
	if !strings.Contains(out, "Focus") {
		t.Error("label missing")
	}
	if !strings.Contains(out, "25%") {
		t.Error("percentage missing")
	}
}

func TestProgressBar_MinimumWidth(t *testing.T) {
	p := NewProgressBar("", 1, false, 1)
	if w := lipgloss.Width(p.View()); w != 4 {
		t.Errorf("width = %d, want 4", w)
	}
}
