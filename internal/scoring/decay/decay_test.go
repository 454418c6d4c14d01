package decay

import (
	"math"
	"testing"
)

func TestTimeDecay_Boundaries(t *testing.T) {
	if got := TimeDecay(0, 180); got != 1.0 {
		t.Fatalf("expected 1.0 at age 0, got %f", got)
	}
	if got := TimeDecay(180, 180); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected 0.5 at one half-life, got %f", got)
	}
	if got := TimeDecay(360, 180); math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("expected 0.25 at two half-lives, got %f", got)
	}
}

func TestTimeDecay_Monotonic(t *testing.T) {
	prev := TimeDecay(0, 180)
	for days := 1.0; days <= 730; days++ {
		cur := TimeDecay(days, 180)
		if cur > prev {
			t.Fatalf("time decay increased at day %f: %f > %f", days, cur, prev)
		}
		prev = cur
	}
}

func TestDistanceDecay_RangeAndMonotonic(t *testing.T) {
	if got := DistanceDecay(0, 0.001); got != 1.0 {
		t.Fatalf("expected 1.0 at distance 0, got %f", got)
	}

	prev := 1.0
	for m := 1.0; m <= 5000; m += 1.0 {
		cur := DistanceDecay(m, 0.001)
		if cur <= 0 || cur > 1 {
			t.Fatalf("distance decay out of (0,1] at %fm: %f", m, cur)
		}
		if cur >= prev {
			t.Fatalf("distance decay not strictly decreasing at %fm", m)
		}
		prev = cur
	}
}

// A one-meter step must never produce a jump; this is the property that
// motivated an exponential curve over distance buckets.
func TestDistanceDecay_Continuity(t *testing.T) {
	const k = 0.001
	for m := 0.0; m < 5000; m += 1.0 {
		step := DistanceDecay(m, k) - DistanceDecay(m+1, k)
		if step > k+1e-9 {
			t.Fatalf("discontinuity at %fm: step %f", m, step)
		}
	}
}

func TestHaversineMeters(t *testing.T) {
	if got := HaversineMeters(10.776, 106.7, 10.776, 106.7); got != 0 {
		t.Fatalf("expected 0 for identical points, got %f", got)
	}

	// One degree of latitude is ~111.2 km.
	got := HaversineMeters(10.0, 106.7, 11.0, 106.7)
	if math.Abs(got-111195) > 200 {
		t.Fatalf("expected ~111195m per degree latitude, got %f", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-1, 0, 10); got != 0 {
		t.Fatalf("expected 0, got %f", got)
	}
	if got := Clamp(12, 0, 10); got != 10 {
		t.Fatalf("expected 10, got %f", got)
	}
	if got := Clamp(7.3, 0, 10); got != 7.3 {
		t.Fatalf("expected 7.3, got %f", got)
	}
}
