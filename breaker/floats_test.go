package breaker_test

import (
	"testing"

	"reflow/breaker"
	"reflow/style"
)

func TestPlaceFloat_ClampsToOneThirdWidth(t *testing.T) {
	st := style.Default(16, 19.2)
	st.WidthPx = 1000 // far wider than allowed
	f := breaker.PlaceFloat(st, "img.png", 300, 400, 0, 300, 0, 0)
	if f.W > 100+0.01 {
		t.Errorf("expected float width clamped to 1/3 of band (100), got %v", f.W)
	}
}

func TestPlaceFloat_ClampsToTwoThirdsRemainingHeight(t *testing.T) {
	st := style.Default(16, 19.2)
	st.HeightPx = 1000
	f := breaker.PlaceFloat(st, "img.png", 300, 90, 0, 300, 0, 0)
	if f.H > 60+0.01 {
		t.Errorf("expected float height clamped to 2/3 of remaining height (60), got %v", f.H)
	}
}

func TestShape_NarrowsBandAroundLeftFloat(t *testing.T) {
	floats := []breaker.PlacedFloat{
		{Side: breaker.FloatLeft, X: 0, Y: 0, W: 50, H: 100},
	}
	start, end := breaker.Shape(0, 300, 50, floats)
	if start != 50 {
		t.Errorf("expected start_x pushed past the float, got %v", start)
	}
	if end != 300 {
		t.Errorf("expected end_x unaffected by a left float, got %v", end)
	}
}

func TestShape_ReturnsToFullBandAfterFloat(t *testing.T) {
	floats := []breaker.PlacedFloat{
		{Side: breaker.FloatLeft, X: 0, Y: 0, W: 50, H: 100},
	}
	start, end := breaker.Shape(0, 300, 150, floats)
	if start != 0 || end != 300 {
		t.Errorf("expected full band below the float's vertical extent, got [%v,%v]", start, end)
	}
}
