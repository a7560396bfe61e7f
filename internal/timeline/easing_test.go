package timeline

import (
	"math"
	"testing"
)

func TestEasings_Endpoints(t *testing.T) {
	for _, name := range []string{"linear", "power1.out", "power2.out", "back.out(1.7)", "inOutCubic", "", "bogus"} {
		e := EasingByName(name)
		if got := e(0); math.Abs(got) > 1e-9 {
			t.Errorf("%q: e(0) = %v", name, got)
		}
		if got := e(1); math.Abs(got-1) > 1e-9 {
			t.Errorf("%q: e(1) = %v", name, got)
		}
	}
}

func TestEasings_Shape(t *testing.T) {
	if got := Power2Out(0.5); math.Abs(got-0.875) > 1e-9 {
		t.Errorf("power2.out(0.5) = %v, want 0.875", got)
	}
	if got := Power1Out(0.5); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("power1.out(0.5) = %v, want 0.75", got)
	}
	if got := InOutCubic(0.25); math.Abs(got-0.0625) > 1e-9 {
		t.Errorf("inOutCubic(0.25) = %v, want 0.0625", got)
	}
	overshoot := false
	back := EasingByName("back.out(1.7)")
	for i := 1; i < 100; i++ {
		if back(float64(i)/100) > 1 {
			overshoot = true
		}
	}
	if !overshoot {
		t.Error("back.out should overshoot before settling")
	}
}
