package timeline

// Time is an instant on the animation axis, in seconds, measured from the
// start of the currently active window. A negative value means the window
// has not been reached yet, so actions are suppressed.
type Time struct {
	Seconds float64
}

// Action is a callback fired while a window is active. It receives the
// instant rebased to that window.
type Action func(Time)

// At creates a Time at the given offset from the start of the animation.
func At(seconds float64) Time {
	return Time{Seconds: seconds}
}

// Active reports whether the window owning this Time has started.
func (t Time) Active() bool {
	return t.Seconds >= 0
}

// Wait consumes dt seconds without firing anything. It models a silent gap.
func (t Time) Wait(dt float64) Time {
	return Time{Seconds: t.Seconds - dt}
}

// Until fires f with the instant clamped to dt, if the window is active.
// It consumes nothing: the outer Time is returned unchanged. The clamp makes
// a finished sub-phase observe exactly dt, so progress ratios computed from
// the callback value never overshoot.
func (t Time) Until(dt float64, f Action) Time {
	if t.Active() {
		f(Time{Seconds: min(t.Seconds, dt)})
	}
	return t
}

// During fires f with the current unclamped instant if the window is active,
// then consumes d seconds whether or not it fired.
func (t Time) During(d float64, f Action) Time {
	if t.Active() {
		f(t)
	}
	return t.Wait(d)
}

// UntilDuring is a clamped one-shot nested in a consumed window: it is
// During(d, ...) with the inner instant passed through Until(dt, f).
func (t Time) UntilDuring(dt, d float64, f Action) Time {
	return t.During(d, func(inner Time) {
		inner.Until(dt, f)
	})
}

// Progress normalizes the instant against a phase of length dt into [0, 1].
// A zero-length phase counts as already finished, which keeps callers from
// dividing by zero when a duration flag is set to 0.
func (t Time) Progress(dt float64) float64 {
	if !t.Active() {
		return 0
	}
	if dt <= 0 {
		return 1
	}
	p := t.Seconds / dt
	if p > 1 {
		return 1
	}
	return p
}
