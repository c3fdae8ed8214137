package internal

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/pfarrell/lightwake/internal/logic"
	"github.com/pfarrell/lightwake/internal/mqtt"
	"github.com/pfarrell/lightwake/internal/pointer"
	"github.com/pfarrell/lightwake/internal/sensor"
)

// seqRand cycles through scripted values, reduced modulo the bound.
type seqRand struct {
	vals []int
	i    int
}

func (r *seqRand) Intn(n int) int {
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v % n
}

// TestIntegrationFullFlow drives the complete pipeline with fakes: sensor
// samples feed the classifier, the classifier drives the shared flag, and
// the flag gates the wiggler's pointer output.
func TestIntegrationFullFlow(t *testing.T) {
	cfg := logic.Config{
		WindowSize:      4,
		HistoryDepth:    3,
		SuddenThreshold: 15,
		RateThreshold:   5,
		GradualFloor:    5,
		// Room dark at startup.
		StartIlluminated: false,
	}
	start := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	classifier := logic.NewClassifier(cfg, start)

	// Prefill simulates the darkened room the daemon boots into.
	if err := classifier.Prefill(func() (int, error) { return 50, nil }); err != nil {
		t.Fatalf("prefill: %v", err)
	}

	var lit atomic.Bool
	lit.Store(cfg.StartIlluminated)

	publisher := mqtt.NewFakePublisher()

	// Samples per cycle: three dark cycles, then the lights come on
	// (sum 200 -> 400: +100% at rate +33), hold, and go out again at a
	// comparable rate (sum 400 -> 160: -60% at rate -20).
	cycles := [][]int{
		{50, 50, 50, 50},
		{50, 50, 50, 50},
		{50, 50, 50, 50},
		{100, 100, 100, 100}, // lights on
		{100, 100, 100, 100},
		{100, 100, 100, 100},
		{100, 100, 100, 100},
		{40, 40, 40, 40}, // lights off
	}
	var samples []int
	for _, c := range cycles {
		samples = append(samples, c...)
	}
	reader := sensor.NewFakeReader(samples)

	// Sampler side: one classification per window of reads, flag updated
	// from the verdict exactly as the daemon loop does.
	var flagHistory []bool
	for i := range cycles {
		var cy *logic.Cycle
		for j := 0; j < cfg.WindowSize; j++ {
			v, err := reader.Read()
			if err != nil {
				t.Fatalf("cycle %d: sensor read: %v", i, err)
			}
			cy = classifier.AddSample(v, start.Add(time.Duration(i)*time.Second))
		}
		if cy == nil {
			t.Fatalf("cycle %d: window wrap produced no cycle", i)
		}

		switch cy.Verdict {
		case logic.VerdictLightsOn:
			lit.Store(true)
			publisher.PublishLight(mqtt.LightEvent{Timestamp: cy.Time, Verdict: cy.Verdict, Sum: cy.Sum, Illuminated: true})
		case logic.VerdictLightsOff:
			lit.Store(false)
			publisher.PublishLight(mqtt.LightEvent{Timestamp: cy.Time, Verdict: cy.Verdict, Sum: cy.Sum, Illuminated: false})
		}
		flagHistory = append(flagHistory, lit.Load())
	}

	// The flag must stay dark through the steady cycles, flip on at the
	// jump, hold, and flip off at the final drop.
	want := []bool{false, false, false, true, true, true, true, false}
	for i, w := range want {
		if flagHistory[i] != w {
			t.Errorf("cycle %d: flag = %v, want %v", i, flagHistory[i], w)
		}
	}

	if len(publisher.LightEvents) != 2 {
		t.Fatalf("expected 2 light events, got %d", len(publisher.LightEvents))
	}
	if publisher.LightEvents[0].Verdict != logic.VerdictLightsOn {
		t.Errorf("event 0: got %s, want %s", publisher.LightEvents[0].Verdict, logic.VerdictLightsOn)
	}
	if publisher.LightEvents[1].Verdict != logic.VerdictLightsOff {
		t.Errorf("event 1: got %s, want %s", publisher.LightEvents[1].Verdict, logic.VerdictLightsOff)
	}

	// Wiggler side: the flag is dark again so the first firing is
	// suppressed; relight and the net-zero round trip appears.
	mover := pointer.NewFakeMover()
	wiggler := logic.NewWiggler(logic.WiggleConfig{BasePeriod: 2, Variation: 0, MinPeriod: 1}, &seqRand{vals: []int{1, 0}})

	fire := func() *logic.Decision {
		for {
			if d := wiggler.Tick(lit.Load()); d != nil {
				return d
			}
		}
	}

	d := fire()
	if d.Illuminated {
		t.Error("expected suppressed firing while dark")
	}
	if len(mover.Moves) != 0 {
		t.Errorf("dark firing must not move the pointer, got %d moves", len(mover.Moves))
	}

	lit.Store(true)
	d = fire()
	if !d.Illuminated {
		t.Fatal("expected active firing while lit")
	}
	mover.Move(d.DX, d.DY)
	mover.Move(-d.DX, -d.DY)

	if len(mover.Moves) != 2 {
		t.Fatalf("expected 2 moves, got %d", len(mover.Moves))
	}
	if net := mover.Net(); net.DX != 0 || net.DY != 0 {
		t.Errorf("expected net displacement zero, got (%d,%d)", net.DX, net.DY)
	}
}

// TestIntegrationDriftDoesNotWiggle checks the sunrise scenario end to end:
// slow drift never flips the flag, so a dark room stays wiggle-free no
// matter how large the cumulative change gets.
func TestIntegrationDriftDoesNotWiggle(t *testing.T) {
	cfg := logic.Config{
		WindowSize:       4,
		HistoryDepth:     3,
		SuddenThreshold:  15,
		RateThreshold:    5,
		GradualFloor:     5,
		StartIlluminated: false,
	}
	start := time.Now()
	classifier := logic.NewClassifier(cfg, start)
	if err := classifier.Prefill(func() (int, error) { return 200, nil }); err != nil {
		t.Fatalf("prefill: %v", err)
	}

	var lit atomic.Bool
	mover := pointer.NewFakeMover()
	wiggler := logic.NewWiggler(logic.WiggleConfig{BasePeriod: 1, Variation: 0, MinPeriod: 1}, &seqRand{vals: []int{0}})

	// +2% per cycle for 25 cycles more than doubles the level.
	level := 200
	for i := 0; i < 25; i++ {
		level += level * 2 / 100
		for j := 0; j < cfg.WindowSize; j++ {
			classifier.AddSample(level, start)
		}

		if d := wiggler.Tick(lit.Load()); d != nil && d.Illuminated {
			mover.Move(d.DX, d.DY)
		}
	}

	if lit.Load() {
		t.Error("drift must never flip the flag")
	}
	if len(mover.Moves) != 0 {
		t.Errorf("expected no pointer movement, got %d moves", len(mover.Moves))
	}
}
