package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
)

func TestSizeChecks(t *testing.T) {
	tests := []struct {
		width, height int
		tooSmall      bool
		compact       bool
	}{
		{80, 24, false, false},
		{59, 24, false, true},
		{39, 24, true, true},
		{80, 11, true, false},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.width, tt.height); got != tt.tooSmall {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.tooSmall)
		}
		if got := IsCompactWidth(tt.width); got != tt.compact {
			t.Errorf("IsCompactWidth(%d) = %v, want %v", tt.width, got, tt.compact)
		}
	}
}

func TestRenderMinSizeMessage(t *testing.T) {
	msg := RenderMinSizeMessage(30, 10)
	assert.Contains(t, msg, "Terminal too small.")
	assert.Contains(t, msg, "have 30 x 10")
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Pomodoro", "active", 60)
	assert.Contains(t, h, "focusflow")
	assert.Contains(t, h, "Pomodoro")
	assert.Contains(t, h, "active")
	assert.LessOrEqual(t, lipgloss.Width(h), 62)
}

func TestRenderFrame(t *testing.T) {
	frame := RenderFrame("header", "body", "footer", 40, 10)
	lines := strings.Split(frame, "\n")
	assert.Equal(t, "header", lines[0])
	assert.Equal(t, "footer", lines[len(lines)-1])
	assert.Len(t, lines, 10)

	noFooter := RenderFrame("header", "body", "", 40, 10)
	assert.Len(t, strings.Split(noFooter, "\n"), 10)
}
