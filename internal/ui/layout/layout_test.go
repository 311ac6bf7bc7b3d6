package layout

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
)

func TestIsTooSmall(t *testing.T) {
	tests := []struct {
		w, h int
		want bool
	}{
		{80, 24, false},
		{MinWidth, MinHeight, false},
		{MinWidth - 1, 24, true},
		{80, MinHeight - 1, true},
	}
	for _, tt := range tests {
		if got := IsTooSmall(tt.w, tt.h); got != tt.want {
			t.Errorf("IsTooSmall(%d, %d) = %v, want %v", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestRenderHeader(t *testing.T) {
	h := RenderHeader("Wärmelehre", "anna  3/5", 80)
	for _, want := range []string{"Physiktrainer", "Wärmelehre", "anna  3/5"} {
		if !strings.Contains(h, want) {
			t.Errorf("header missing %q:\n%s", want, h)
		}
	}
}

func TestRenderFrameHeight(t *testing.T) {
	header := RenderHeader("x", "", 80)
	footer := RenderFooter([]KeyHint{{Key: "Enter", Description: "Prüfen"}}, 80)
	frame := RenderFrame(header, "inhalt", footer, 80, 24)
	if got := lipgloss.Height(frame); got != 24 {
		t.Errorf("frame height = %d, want 24", got)
	}
	if got := ContentHeight(header, footer, 24); got != 24-lipgloss.Height(header)-lipgloss.Height(footer) {
		t.Errorf("ContentHeight = %d", got)
	}
}
