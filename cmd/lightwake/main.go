// Command lightwake watches an ambient-light sensor and, while the room is
// lit, nudges a virtual mouse just enough to keep an idle display lock from
// engaging. When the lights go out the nudging stops.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pfarrell/lightwake/internal/logic"
	"github.com/pfarrell/lightwake/internal/mqtt"
	"github.com/pfarrell/lightwake/internal/pointer"
	"github.com/pfarrell/lightwake/internal/sensor"
	"github.com/pfarrell/lightwake/internal/status"
	"github.com/pfarrell/lightwake/internal/web"
)

// baseTick is the wiggler's clock period; intervals are counted in these.
const baseTick = time.Second

// wiggleHold is the pause between the two halves of a wiggle. It sleeps the
// wiggler goroutine only; the sampler has its own ticker.
const wiggleHold = 50 * time.Millisecond

// settings collects everything run needs; populated from flags, with an
// optional env file seeding the defaults.
type settings struct {
	sample       time.Duration
	window       int
	history      int
	sudden       int
	rate         int
	gradual      int
	wigglePeriod int
	wiggleJitter int
	wiggleMin    int
	assumeLit    bool
	broker       string
	heartbeat    time.Duration
	pin          int
	printReading bool
	httpAddr     string
	wsBroker     string
}

func main() {
	// An env file lets the systemd unit override defaults without
	// editing it; explicit flags still win.
	if path := os.Getenv("LIGHTWAKE_ENV"); path != "" {
		_ = godotenv.Load(path)
	} else {
		_ = godotenv.Load()
	}

	var s settings
	flag.DurationVar(&s.sample, "sample", 10*time.Millisecond, "Sensor sampling interval")
	flag.IntVar(&s.window, "window", envInt("LIGHTWAKE_WINDOW", 100), "Samples per classification cycle")
	flag.IntVar(&s.history, "history", envInt("LIGHTWAKE_HISTORY", 5), "Window sums kept for rate-of-change")
	flag.IntVar(&s.sudden, "sudden", 15, "Sudden-change threshold (percent)")
	flag.IntVar(&s.rate, "rate", 5, "Rate-of-change threshold (percent)")
	flag.IntVar(&s.gradual, "gradual", 5, "Gradual-change log floor (percent)")
	flag.IntVar(&s.wigglePeriod, "wiggle-period", 60, "Base seconds between wiggles")
	flag.IntVar(&s.wiggleJitter, "wiggle-jitter", 30, "Random spread applied to the wiggle period (seconds)")
	flag.IntVar(&s.wiggleMin, "wiggle-min", 3, "Minimum seconds between wiggles")
	flag.BoolVar(&s.assumeLit, "assume-lit", true, "Treat the room as lit until the first transition")
	flag.StringVar(&s.broker, "broker", envStr("LIGHTWAKE_BROKER", "tcp://192.168.1.200:1883"), "MQTT broker address")
	flag.DurationVar(&s.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.IntVar(&s.pin, "pin", envInt("LIGHTWAKE_PIN", sensor.DefaultPin), "BCM pin number for the light sensor")
	flag.BoolVar(&s.printReading, "print-reading", false, "Print one raw sensor reading and exit")
	flag.StringVar(&s.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.StringVar(&s.wsBroker, "ws-broker", "=broker", `MQTT websocket URL for live UI ("=broker" derives from --broker, "off" disables)`)

	flag.Parse()

	s.wsBroker = resolveWSBroker(s.wsBroker, s.broker)
	if err := run(s); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(s settings) error {
	// Initialize sensor
	sensorReader, err := sensor.NewRealReader(s.pin)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer sensorReader.Close()

	// Print reading mode
	if s.printReading {
		v, err := sensorReader.Read()
		if err != nil {
			return fmt.Errorf("read sensor: %w", err)
		}
		fmt.Printf("light: %d\n", v)
		return nil
	}

	// Initialize pointer device
	mover, err := pointer.NewRealMover()
	if err != nil {
		return fmt.Errorf("init pointer: %w", err)
	}
	defer mover.Close()

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(s.broker)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	startTime := time.Now()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(startTime, status.Config{
		SampleMs:      s.sample.Milliseconds(),
		WindowSize:    s.window,
		HistoryDepth:  s.history,
		SuddenPct:     s.sudden,
		RatePct:       s.rate,
		GradualPct:    s.gradual,
		WigglePeriodS: s.wigglePeriod,
		WiggleJitterS: s.wiggleJitter,
		WiggleMinS:    s.wiggleMin,
		HeartbeatMs:   s.heartbeat.Milliseconds(),
		Broker:        s.broker,
		HTTPPort:      s.httpAddr,
		WSBroker:      s.wsBroker,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Start HTTP status server
	if s.httpAddr != "" {
		srv := web.New(s.httpAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", s.httpAddr)
	}

	classifier := logic.NewClassifier(logic.Config{
		WindowSize:       s.window,
		HistoryDepth:     s.history,
		SuddenThreshold:  s.sudden,
		RateThreshold:    s.rate,
		GradualFloor:     s.gradual,
		StartIlluminated: s.assumeLit,
	}, startTime)

	// Seed the window with live readings so the first cycle does not look
	// like a transition.
	log.Printf("prefilling %d-sample window", s.window)
	if err := classifier.Prefill(sensorReader.Read); err != nil {
		return fmt.Errorf("prefill window: %w", err)
	}

	wiggler := logic.NewWiggler(logic.WiggleConfig{
		BasePeriod: s.wigglePeriod,
		Variation:  s.wiggleJitter,
		MinPeriod:  s.wiggleMin,
	}, rand.New(rand.NewSource(time.Now().UnixNano())))

	var lit atomic.Bool
	lit.Store(s.assumeLit)
	tracker.UpdateWiggle(false, 0, wiggler.NextTarget())

	log.Printf("started: sample=%v window=%d history=%d thresholds=%d/%d/%d wiggle=%ds±%ds broker=%s",
		s.sample, s.window, s.history, s.sudden, s.rate, s.gradual, s.wigglePeriod, s.wiggleJitter, s.broker)

	sampleTicker := time.NewTicker(s.sample)
	defer sampleTicker.Stop()
	wiggleTicker := time.NewTicker(baseTick)
	defer wiggleTicker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	defer close(done)
	go runWigglerLoop(mover, publisher, tracker, wiggler, &lit, wiggleHold, time.Now, wiggleTicker.C, done)

	return runSamplerLoop(sensorReader, publisher, publisher, tracker, classifier, &lit, s.heartbeat, time.Now, sampleTicker.C, sigCh)
}

// runSamplerLoop drives the classifier at the sampling rate until a shutdown
// signal arrives. It owns all writes to the illuminated flag.
func runSamplerLoop(sensorReader sensor.Reader, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, classifier *logic.Classifier, lit *atomic.Bool, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-tick:
			t := now()
			v, err := sensorReader.Read()
			if err != nil {
				log.Printf("sensor read error: %v", err)
				continue
			}

			cy := classifier.AddSample(v, t)
			if cy == nil {
				continue
			}

			// One diagnostic line per cycle, best-effort.
			log.Printf("cycle: prior=%d sum=%d diff=%d pct=%d rate=%d verdict=%s",
				cy.PriorSum, cy.Sum, cy.Diff, cy.PercentChange, cy.RateOfChange, cy.Verdict)

			switch cy.Verdict {
			case logic.VerdictLightsOn:
				lit.Store(true)
				log.Printf("sudden increase detected: lights on (pct=%d rate=%d)", cy.PercentChange, cy.RateOfChange)
				publishLightEvent(publisher, cy)
			case logic.VerdictLightsOff:
				lit.Store(false)
				log.Printf("sudden decrease detected: lights off (pct=%d rate=%d)", cy.PercentChange, cy.RateOfChange)
				publishLightEvent(publisher, cy)
			case logic.VerdictGradual:
				log.Printf("gradual change ignored (pct=%d rate=%d)", cy.PercentChange, cy.RateOfChange)
			case logic.VerdictSkipped:
				log.Printf("cycle skipped: zero reference sum")
			}

			if tracker != nil {
				tracker.UpdateCycle(*cy, classifier.Counts())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			// Check for heartbeat
			if hb := classifier.CheckHeartbeat(t, heartbeat); hb != nil {
				log.Printf("heartbeat: uptime=%v on=%d off=%d gradual=%d skipped=%d",
					hb.Uptime, hb.Counts.LightsOn, hb.Counts.LightsOff, hb.Counts.Gradual, hb.Counts.Skipped)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hb.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					snap := tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// runWigglerLoop drives the scheduler at the base tick until done closes.
// It only ever reads the illuminated flag.
func runWigglerLoop(mover pointer.Mover, publisher mqtt.Publisher, tracker *status.Tracker, wiggler *logic.Wiggler, lit *atomic.Bool, hold time.Duration, now func() time.Time, tick <-chan time.Time, done <-chan struct{}) {
	wiggles := 0
	for {
		select {
		case <-done:
			return

		case <-tick:
			d := wiggler.Tick(lit.Load())
			if d == nil {
				continue
			}
			t := now()

			if d.Illuminated {
				if err := mover.Move(d.DX, d.DY); err != nil {
					log.Printf("pointer move error: %v", err)
				} else {
					if hold > 0 {
						time.Sleep(hold)
					}
					// Return trip: resting position is unchanged.
					if err := mover.Move(-d.DX, -d.DY); err != nil {
						log.Printf("pointer return error: %v", err)
					}
					wiggles++
				}
				log.Printf("wiggle: dx=%d dy=%d next=%ds", d.DX, d.DY, d.NextInterval)
			} else {
				log.Printf("wiggle suppressed (dark), next=%ds", d.NextInterval)
			}

			if tracker != nil {
				tracker.UpdateWiggle(d.Illuminated, wiggles, d.NextInterval)
			}

			event := mqtt.WiggleEvent{
				Timestamp:    t,
				DX:           d.DX,
				DY:           d.DY,
				NextInterval: d.NextInterval,
				Suppressed:   !d.Illuminated,
			}
			if err := publisher.PublishWiggle(event); err != nil {
				log.Printf("wiggle publish error: %v", err)
			}
		}
	}
}

func publishLightEvent(publisher mqtt.Publisher, cy *logic.Cycle) {
	event := mqtt.LightEvent{
		Timestamp:     cy.Time,
		Verdict:       cy.Verdict,
		Sum:           cy.Sum,
		PriorSum:      cy.PriorSum,
		PercentChange: cy.PercentChange,
		RateOfChange:  cy.RateOfChange,
		Illuminated:   cy.Illuminated,
	}
	if err := publisher.PublishLight(event); err != nil {
		log.Printf("light publish error: %v", err)
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("%s: cannot parse %q, using %d", key, v, def)
		return def
	}
	return n
}

// resolveWSBroker converts the --ws-broker flag value into a concrete URL.
// "=broker" derives ws://host:9001 from the TCP broker address; empty disables.
func resolveWSBroker(ws, broker string) string {
	if ws == "off" {
		return ""
	}
	if ws != "=broker" {
		return ws
	}
	u, err := url.Parse(broker)
	if err != nil {
		log.Printf("ws-broker: cannot parse --broker %q: %v", broker, err)
		return ""
	}
	u.Scheme = "ws"
	u.Host = u.Hostname() + ":9001"
	return u.String()
}
