package timeline

import (
	"math"
	"testing"
)

func TestDuringFiresOnceAndConsumes(t *testing.T) {
	calls := 0
	var seen Time

	out := At(1.2).During(0.5, func(tm Time) {
		calls++
		seen = tm
	})

	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
	if seen.Seconds != 1.2 {
		t.Errorf("expected unclamped instant 1.2, got %f", seen.Seconds)
	}
	if math.Abs(out.Seconds-0.7) > 1e-9 {
		t.Errorf("expected remaining 0.7, got %f", out.Seconds)
	}
}

func TestDuringInactiveStillConsumes(t *testing.T) {
	calls := 0

	out := At(-0.3).During(0.5, func(Time) { calls++ })

	if calls != 0 {
		t.Errorf("inactive window must not fire, got %d calls", calls)
	}
	if math.Abs(out.Seconds-(-0.8)) > 1e-9 {
		t.Errorf("expected remaining -0.8, got %f", out.Seconds)
	}
}

func TestUntilClampsAndConsumesNothing(t *testing.T) {
	tests := []struct {
		name     string
		at       float64
		dt       float64
		fired    bool
		expected float64
	}{
		{"mid-phase", 0.1, 0.2, true, 0.1},
		{"past phase clamps to dt", 5.0, 0.2, true, 0.2},
		{"exactly at start", 0.0, 0.2, true, 0.0},
		{"not yet reached", -0.01, 0.2, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			var seen Time
			out := At(tt.at).Until(tt.dt, func(tm Time) {
				calls++
				seen = tm
			})

			if tt.fired != (calls == 1) {
				t.Fatalf("fired=%v, want %v", calls == 1, tt.fired)
			}
			if tt.fired && math.Abs(seen.Seconds-tt.expected) > 1e-9 {
				t.Errorf("observed %f, want %f", seen.Seconds, tt.expected)
			}
			if out.Seconds != tt.at {
				t.Errorf("Until must not consume: got %f, want %f", out.Seconds, tt.at)
			}
		})
	}
}

func TestUntilDuringEquivalence(t *testing.T) {
	// UntilDuring(dt, d, f) must behave as During(d, time.Until(dt, f)).
	for _, at := range []float64{-1, 0, 0.05, 0.2, 3} {
		var gotInstant, wantInstant float64
		gotCalls, wantCalls := 0, 0

		got := At(at).UntilDuring(0.2, 0.5, func(tm Time) {
			gotCalls++
			gotInstant = tm.Seconds
		})
		want := At(at).During(0.5, func(tm Time) {
			tm.Until(0.2, func(inner Time) {
				wantCalls++
				wantInstant = inner.Seconds
			})
		})

		if gotCalls != wantCalls || gotInstant != wantInstant || got != want {
			t.Errorf("at=%f: UntilDuring diverges from During+Until", at)
		}
	}
}

func TestWaitChainSkipsUnreachedPhases(t *testing.T) {
	// At t=0.1 with a 0.5s delay, nothing downstream may fire yet.
	calls := 0
	At(0.1).
		Wait(0.5).
		During(1.5, func(Time) { calls++ }).
		UntilDuring(0.5, 0.5, func(Time) { calls++ })

	if calls != 0 {
		t.Errorf("phases before the delay elapsed fired %d times", calls)
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		at, dt, want float64
	}{
		{0.1, 0.2, 0.5},
		{0.2, 0.2, 1.0},
		{0.9, 0.2, 1.0},
		{-0.1, 0.2, 0.0},
		{0.3, 0.0, 1.0}, // zero-length phase must not divide by zero
	}
	for _, tt := range tests {
		if got := At(tt.at).Progress(tt.dt); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Progress(%f) at %f = %f, want %f", tt.dt, tt.at, got, tt.want)
		}
	}
}
