package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/pfarrell/lightwake/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Lightwake</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.lit { color: green; font-weight: bold; }
.dark { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Lightwake{{if .Config.WSBroker}}<span id="live-dot" class="live-dot pending" title="connecting"></span>{{end}}</h1>

<h2>State</h2>
<table>
<tr><th>Room</th><td id="light-state" class="{{if eq .LightState "LIT"}}lit{{else if eq .LightState "DARK"}}dark{{else}}unknown{{end}}">{{.LightState}}</td></tr>
<tr><th>Primed</th><td>{{if .Primed}}yes{{else}}no{{end}}</td></tr>
<tr><th>Wiggling</th><td>{{if .WiggleActive}}active{{else}}idle{{end}}</td></tr>
<tr><th>Next wiggle</th><td>{{.NextWiggleS}}s</td></tr>
</table>

{{if .LastCycle}}<h2>Last Cycle</h2>
<table>
<tr><th>Verdict</th><td>{{.LastCycle.Verdict}}</td></tr>
<tr><th>Sum</th><td>{{.LastCycle.Sum}}</td></tr>
<tr><th>Prior sum</th><td>{{.LastCycle.PriorSum}}</td></tr>
<tr><th>Change</th><td>{{.LastCycle.PercentChange}}%</td></tr>
<tr><th>Rate</th><td>{{.LastCycle.RateOfChange}}%/cycle</td></tr>
</table>{{end}}

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}} / {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Lights on</th><td>{{.Counts.LightsOn}}</td></tr>
<tr><th>Lights off</th><td>{{.Counts.LightsOff}}</td></tr>
<tr><th>Gradual ignored</th><td>{{.Counts.Gradual}}</td></tr>
<tr><th>Cycles skipped</th><td>{{.Counts.Skipped}}</td></tr>
<tr><th>Wiggles</th><td>{{.Wiggles}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Sample</th><td>{{.Config.SampleMs}}ms</td></tr>
<tr><th>Window</th><td>{{.Config.WindowSize}} samples, history {{.Config.HistoryDepth}}</td></tr>
<tr><th>Thresholds</th><td>sudden {{.Config.SuddenPct}}%, rate {{.Config.RatePct}}%, gradual {{.Config.GradualPct}}%</td></tr>
<tr><th>Wiggle</th><td>{{.Config.WigglePeriodS}}s &plusmn;{{.Config.WiggleJitterS}}s, min {{.Config.WiggleMinS}}s</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
{{if .Config.WSBroker}}
<script src="/mqtt.min.js"></script>
<script>
(function() {
  var broker = "{{.Config.WSBroker}}";
  var topic = "office/lightwake/light";
  var dot = document.getElementById("live-dot");
  var lightEl = document.getElementById("light-state");

  function setState(lit) {
    lightEl.textContent = lit ? "LIT" : "DARK";
    lightEl.className = lit ? "lit" : "dark";
  }

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  var client = mqtt.connect(broker, { reconnectPeriod: 5000 });

  client.on("connect", function() {
    setDot("ok", "live");
    client.subscribe(topic);
  });

  client.on("reconnect", function() {
    setDot("pending", "reconnecting");
  });

  client.on("offline", function() {
    setDot("err", "offline");
  });

  client.on("error", function() {
    setDot("err", "error");
  });

  client.on("message", function(t, payload) {
    try {
      var msg = JSON.parse(payload.toString());
      if (msg.light) {
        setState(msg.light.illuminated);
      }
    } catch (e) {}
  });
})();
</script>
{{end}}
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() and LightState() methods but the template
	// needs plain fields.
	data := struct {
		status.Snapshot
		Uptime     time.Duration
		LightState string
	}{
		Snapshot:   snap,
		Uptime:     snap.Uptime(),
		LightState: snap.LightState(),
	}
	indexTmpl.Execute(w, data)
}
