package visualization

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"net/url"
	"path"

	"github.com/shiftclock/internal/shift"
	"github.com/shiftclock/internal/tracker"
	"github.com/shiftclock/internal/work"
)

type Visualizer struct {
	assetBase string
	page      *template.Template
}

func New(assetBase string) *Visualizer {
	if assetBase == "" {
		assetBase = "/assets/gifs"
	}
	return &Visualizer{
		assetBase: assetBase,
		page:      template.Must(template.New("widget").Parse(widgetHTML)),
	}
}

// AssetPath maps an asset bucket to its image under the configured base.
func (v *Visualizer) AssetPath(a shift.Asset) string {
	return path.Join(v.assetBase, a.String()+".gif")
}

// StatusLine renders one terminal line for the snapshot.
func (v *Visualizer) StatusLine(s tracker.Snapshot) string {
	return fmt.Sprintf("Clock out: %s | %s | %s",
		s.FinishTime, s.Status.Message, describeAsset(s.Asset))
}

func describeAsset(a shift.Asset) string {
	switch a {
	case shift.WorkingA:
		return "working"
	case shift.WorkingB:
		return "working (snack time)"
	case shift.Travel:
		return "commuting"
	default:
		return "resting"
	}
}

// GenerateProgressSVG draws a ring filled to the elapsed fraction of the shift.
func (v *Visualizer) GenerateProgressSVG(s tracker.Snapshot) string {
	const (
		size   = 140
		radius = 60.0
	)
	circumference := 2 * math.Pi * radius
	filled := circumference * s.Progress

	color := "#4CAF50"
	if s.Status.Done() {
		color = shift.ColorDone
	}

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d">
  <circle cx="%d" cy="%d" r="%.0f" fill="none" stroke="#E0E0E0" stroke-width="10"/>
  <circle cx="%d" cy="%d" r="%.0f" fill="none" stroke="%s" stroke-width="10"
    stroke-dasharray="%.1f %.1f" transform="rotate(-90 %d %d)"/>
  <text x="%d" y="%d" text-anchor="middle" font-size="16" fill="#333">%.0f%%</text>
</svg>`,
		size, size, size, size,
		size/2, size/2, radius,
		size/2, size/2, radius, color,
		filled, circumference, size/2, size/2,
		size/2, size/2+6, s.Progress*100,
	)
}

// Page is the data behind one render of the widget.
type Page struct {
	Input          work.Input
	Snapshot       *tracker.Snapshot
	RefreshSeconds int
	Version        string
}

type pageView struct {
	Page
	HrMin       bool
	Query       template.URL
	StatusColor template.CSS
	AssetURL    string
	AssetAlt    string
	ProgressSVG template.HTML
}

// GenerateWidgetHTML renders the full page: form, clock-out time, countdown,
// image and progress ring.
func (v *Visualizer) GenerateWidgetHTML(p Page) (string, error) {
	view := pageView{
		Page:  p,
		HrMin: p.Input.Mode == work.ModeHrMin,
		Query: template.URL(EncodeQuery(p.Input)),
	}
	if p.Snapshot != nil {
		view.StatusColor = template.CSS(p.Snapshot.Status.Color)
		view.AssetURL = v.AssetPath(p.Snapshot.Asset)
		view.AssetAlt = describeAsset(p.Snapshot.Asset)
		view.ProgressSVG = template.HTML(v.GenerateProgressSVG(*p.Snapshot))
	}

	var buf bytes.Buffer
	if err := v.page.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render widget: %w", err)
	}
	return buf.String(), nil
}

// EncodeQuery turns the form into the query string the widget reloads with.
func EncodeQuery(in work.Input) string {
	v := url.Values{}
	v.Set("start", in.StartTime)
	v.Set("mode", string(in.Mode))
	v.Set("hours", in.ShiftHours)
	v.Set("h", in.ShiftH)
	v.Set("m", in.ShiftM)
	v.Set("break", in.BreakMinutes)
	return v.Encode()
}

const widgetHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{with .Snapshot}}{{.FinishTime}} · {{end}}Shift Clock</title>
  {{if .Snapshot}}<meta http-equiv="refresh" content="{{.RefreshSeconds}}; url=/?{{.Query}}">{{end}}
  <style>
    :root { --primary: #6366f1; }
    body { font-family: system-ui, sans-serif; margin: 0; padding: 24px; background: #f5f7fa; }
    .container { max-width: 480px; margin: 0 auto; }
    .card { background: #fff; border-radius: 12px; padding: 24px; margin-bottom: 16px; box-shadow: 0 2px 8px rgba(0,0,0,0.08); }
    .field { margin-bottom: 14px; }
    .field label { display: block; font-weight: 500; margin-bottom: 4px; }
    .field input { padding: 8px 10px; font-size: 1em; border: 1px solid #ccc; border-radius: 6px; width: 100%; max-width: 140px; }
    .toggle a { padding: 6px 12px; border: 1px solid #ccc; border-radius: 6px; text-decoration: none; color: #333; }
    .toggle a.active { background: var(--primary); border-color: var(--primary); color: #fff; }
    .finish { font-size: 48px; font-weight: 700; text-align: center; color: #2c3e50; }
    .countdown { text-align: center; font-size: 18px; margin-top: 8px; }
    .visual { display: flex; align-items: center; justify-content: space-around; }
    .visual img { max-width: 160px; }
    button { padding: 10px 20px; font-size: 1em; background: var(--primary); color: #fff; border: none; border-radius: 6px; cursor: pointer; }
    footer { color: #7f8c8d; font-size: 0.9em; text-align: center; }
  </style>
</head>
<body>
  <div class="container">
    <form class="card" method="POST" action="/calc">
      <input type="hidden" name="mode" value="{{.Input.Mode}}">
      <div class="field">
        <label for="start">Start time</label>
        <input id="start" name="start" type="time" value="{{.Input.StartTime}}" required>
      </div>
      <div class="field toggle">
        <a href="/toggle?{{.Query}}&to=decimal"{{if not .HrMin}} class="active"{{end}}>Decimal</a>
        <a href="/toggle?{{.Query}}&to=hrmin"{{if .HrMin}} class="active"{{end}}>Hr / Min</a>
      </div>
      {{if .HrMin}}
      <input type="hidden" name="hours" value="{{.Input.ShiftHours}}">
      <div class="field">
        <label for="h">Shift hours</label>
        <input id="h" name="h" type="number" min="0" step="1" value="{{.Input.ShiftH}}">
      </div>
      <div class="field">
        <label for="m">Shift minutes</label>
        <input id="m" name="m" type="number" min="0" max="59" step="1" value="{{.Input.ShiftM}}">
      </div>
      {{else}}
      <input type="hidden" name="h" value="{{.Input.ShiftH}}">
      <input type="hidden" name="m" value="{{.Input.ShiftM}}">
      <div class="field">
        <label for="hours">Shift length (hours)</label>
        <input id="hours" name="hours" type="number" min="0" step="0.01" value="{{.Input.ShiftHours}}">
      </div>
      {{end}}
      <div class="field">
        <label for="break">Break (minutes)</label>
        <input id="break" name="break" type="number" min="0" step="1" value="{{.Input.BreakMinutes}}">
      </div>
      <button type="submit">Calculate</button>
    </form>

    {{with .Snapshot}}
    <div class="card">
      <div class="finish">{{.FinishTime}}</div>
      <div class="countdown" style="color: {{$.StatusColor}}">{{.Status.Message}}</div>
    </div>
    {{end}}
    {{if .Snapshot}}
    <div class="card visual">
      <img src="{{.AssetURL}}" alt="{{.AssetAlt}}">
      {{.ProgressSVG}}
    </div>
    {{end}}
  </div>
  <footer>shiftclock v{{.Version}}</footer>
</body>
</html>`
