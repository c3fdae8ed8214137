package logic

// Wiggler schedules pointer wiggles on a 1 Hz base tick. It counts elapsed
// ticks against a randomized target interval; when the target is reached it
// samples the illuminated flag and either requests a wiggle (lit) or
// suppresses it (dark). The flag is level-sampled at trigger time only — a
// change between triggers has no effect until the next trigger.
type Wiggler struct {
	cfg WiggleConfig
	rng Rand

	elapsed int
	target  int
	active  bool
}

// NewWiggler creates a scheduler and draws its first interval.
func NewWiggler(cfg WiggleConfig, rng Rand) *Wiggler {
	w := &Wiggler{cfg: cfg, rng: rng}
	w.target = w.nextInterval()
	return w
}

// Tick advances the elapsed counter by one base tick. It returns nil until
// the target interval is reached, then a Decision describing what to do and
// the freshly drawn interval until the next one.
func (w *Wiggler) Tick(illuminated bool) *Decision {
	w.elapsed++
	if w.elapsed < w.target {
		return nil
	}
	w.elapsed = 0
	w.target = w.nextInterval()

	d := &Decision{
		Illuminated:  illuminated,
		NextInterval: w.target,
	}
	if illuminated {
		d.DX = w.randSign()
		d.DY = w.randSign()
		w.active = true
	} else {
		w.active = false
	}
	return d
}

// Active reports whether the last decision requested a wiggle.
func (w *Wiggler) Active() bool {
	return w.active
}

// NextTarget returns the interval, in ticks, currently being counted toward.
func (w *Wiggler) NextTarget() int {
	return w.target
}

// nextInterval draws basePeriod + uniform(-variation, +variation), clamped
// to the configured minimum so the schedule cannot degenerate into rapid
// fire.
func (w *Wiggler) nextInterval() int {
	iv := w.cfg.BasePeriod
	if w.cfg.Variation > 0 {
		iv += w.rng.Intn(2*w.cfg.Variation+1) - w.cfg.Variation
	}
	if iv < w.cfg.MinPeriod {
		iv = w.cfg.MinPeriod
	}
	return iv
}

// randSign returns -1 or +1 with equal probability.
func (w *Wiggler) randSign() int {
	if w.rng.Intn(2) == 0 {
		return -1
	}
	return 1
}
