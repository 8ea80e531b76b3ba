package render

import (
	"image"
	"testing"
)

func TestTerminalSize(t *testing.T) {
	tests := []struct {
		area image.Rectangle
		w, h int
	}{
		{image.Rect(0, 0, 80, 24), 80, 48},
		{image.Rect(5, 2, 15, 7), 10, 10},
		{image.Rect(0, 0, 0, 0), 0, 0},
	}
	for _, tt := range tests {
		w, h := TerminalSize(tt.area)
		if w != tt.w || h != tt.h {
			t.Errorf("TerminalSize(%v) = %dx%d, want %dx%d", tt.area, w, h, tt.w, tt.h)
		}
	}
}

func TestCellColor(t *testing.T) {
	if cellColor(Color{}) != nil {
		t.Error("transparent pixel should use the terminal default")
	}
	if cellColor(ColorRed) != ColorRed {
		t.Error("opaque pixel should pass through")
	}
}
