package logic

import "testing"

// scriptRand returns scripted values, reduced modulo the requested bound so
// a script stays valid for any Intn argument.
type scriptRand struct {
	vals []int
	i    int
}

func (r *scriptRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

func TestNextIntervalBounds(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 10, Variation: 3, MinPeriod: 3}

	// Exhaustive over the uniform draw: Intn(7) outcomes 0..6 map to
	// intervals 7..13.
	seen := map[int]bool{}
	for draw := 0; draw <= 6; draw++ {
		w := NewWiggler(cfg, &scriptRand{vals: []int{draw}})
		iv := w.NextTarget()
		if iv < 7 || iv > 13 {
			t.Errorf("draw %d: interval %d outside [7,13]", draw, iv)
		}
		seen[iv] = true
	}
	for iv := 7; iv <= 13; iv++ {
		if !seen[iv] {
			t.Errorf("interval %d never generated", iv)
		}
	}
}

func TestIntervalClampedToMinimum(t *testing.T) {
	// base - variation would be 1; the minimum must win.
	cfg := WiggleConfig{BasePeriod: 4, Variation: 3, MinPeriod: 3}
	w := NewWiggler(cfg, &scriptRand{vals: []int{0}})
	if w.NextTarget() != 3 {
		t.Errorf("expected clamp to minimum 3, got %d", w.NextTarget())
	}
}

func TestNoVariationSkipsDraw(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 5, Variation: 0, MinPeriod: 3}
	rng := &scriptRand{vals: []int{0}}
	w := NewWiggler(cfg, rng)
	if w.NextTarget() != 5 {
		t.Errorf("expected base period 5, got %d", w.NextTarget())
	}
	if rng.i != 0 {
		t.Errorf("interval draw should not consume randomness when variation is 0, consumed %d", rng.i)
	}
}

func TestTickCountsToTarget(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 3, Variation: 0, MinPeriod: 1}
	w := NewWiggler(cfg, &scriptRand{vals: []int{0}})

	if d := w.Tick(true); d != nil {
		t.Fatal("tick 1: fired early")
	}
	if d := w.Tick(true); d != nil {
		t.Fatal("tick 2: fired early")
	}
	d := w.Tick(true)
	if d == nil {
		t.Fatal("tick 3: expected decision at target")
	}
	if d.NextInterval != 3 {
		t.Errorf("expected next interval 3, got %d", d.NextInterval)
	}

	// Counter re-arms from zero.
	if d := w.Tick(true); d != nil {
		t.Fatal("tick after firing: fired early")
	}
}

func TestDecisionWhenIlluminated(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 1, Variation: 0, MinPeriod: 1}
	// Two sign draws per firing: 0 -> -1, 1 -> +1.
	w := NewWiggler(cfg, &scriptRand{vals: []int{0, 1}})

	d := w.Tick(true)
	if d == nil {
		t.Fatal("expected decision")
	}
	if !d.Illuminated {
		t.Error("expected illuminated decision")
	}
	if d.DX != -1 {
		t.Errorf("expected dx -1, got %d", d.DX)
	}
	if d.DY != 1 {
		t.Errorf("expected dy +1, got %d", d.DY)
	}
	if !w.Active() {
		t.Error("wiggler should be active after a lit firing")
	}
}

func TestDecisionWhenDark(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 1, Variation: 0, MinPeriod: 1}
	rng := &scriptRand{vals: []int{0}}
	w := NewWiggler(cfg, rng)

	d := w.Tick(false)
	if d == nil {
		t.Fatal("expected decision")
	}
	if d.Illuminated {
		t.Error("expected dark decision")
	}
	if d.DX != 0 || d.DY != 0 {
		t.Errorf("dark decision must not request movement, got (%d,%d)", d.DX, d.DY)
	}
	if w.Active() {
		t.Error("wiggler should be idle after a dark firing")
	}
	if rng.i != 0 {
		t.Errorf("dark firing should not draw direction signs, consumed %d", rng.i)
	}
}

func TestFlagSampledOnlyAtTrigger(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 3, Variation: 0, MinPeriod: 1}
	w := NewWiggler(cfg, &scriptRand{vals: []int{0, 0}})

	// Flag flaps between triggers; only its value at the firing tick
	// matters.
	w.Tick(false)
	w.Tick(true)
	d := w.Tick(false)
	if d == nil {
		t.Fatal("expected decision on third tick")
	}
	if d.Illuminated {
		t.Error("decision must reflect the flag at trigger time (dark)")
	}
}

func TestSignDistribution(t *testing.T) {
	cfg := WiggleConfig{BasePeriod: 1, Variation: 0, MinPeriod: 1}
	w := NewWiggler(cfg, &scriptRand{vals: []int{0, 0, 1, 1}})

	d := w.Tick(true)
	if d.DX != -1 || d.DY != -1 {
		t.Errorf("expected (-1,-1), got (%d,%d)", d.DX, d.DY)
	}
	d = w.Tick(true)
	if d.DX != 1 || d.DY != 1 {
		t.Errorf("expected (+1,+1), got (%d,%d)", d.DX, d.DY)
	}
}
