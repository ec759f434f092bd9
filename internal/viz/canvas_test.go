package viz

import (
	"strings"
	"testing"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if !c.IsSet(0, 0) || !c.IsSet(3, 3) {
		t.Fatal("expected set pixels to be lit")
	}
	if c.Grid[0][0] != 0x2801 || c.Grid[0][1] != 0x2880 {
		t.Errorf("grid = %U %U", c.Grid[0][0], c.Grid[0][1])
	}

	c.Unset(0, 0)
	if c.IsSet(0, 0) {
		t.Error("unset pixel still lit")
	}

	c.Clear()
	if strings.TrimSpace(strings.ReplaceAll(c.String(), string(rune(0x2800)), "")) != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestDrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 0)
	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 0) {
			t.Fatalf("pixel %d not on the line", x)
		}
	}
}

func TestDrawCircle(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawCircle(20, 20, 8)

	for _, p := range [][2]int{{28, 20}, {12, 20}, {20, 28}, {20, 12}} {
		if !c.IsSet(p[0], p[1]) {
			t.Errorf("expected (%d,%d) on the circle", p[0], p[1])
		}
	}
	if c.IsSet(20, 20) {
		t.Error("center should not be drawn")
	}

	c.Clear()
	c.DrawCircle(5, 5, 0)
	if !c.IsSet(5, 5) {
		t.Error("zero radius should mark the center")
	}
}
