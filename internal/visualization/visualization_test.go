package visualization

import (
	"strings"
	"testing"
	"time"

	"github.com/shiftclock/internal/shift"
	"github.com/shiftclock/internal/tracker"
	"github.com/shiftclock/internal/work"
)

func snapshotAt(t *testing.T, h, m int) tracker.Snapshot {
	t.Helper()
	now := time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
	snap, ok := tracker.Compute(work.DefaultInput(), now)
	if !ok {
		t.Fatal("Compute(defaults) failed")
	}
	return snap
}

func TestAssetPath(t *testing.T) {
	v := New("assets/gifs")

	tests := []struct {
		asset    shift.Asset
		expected string
	}{
		{shift.WorkingA, "assets/gifs/working.gif"},
		{shift.WorkingB, "assets/gifs/working_eating.gif"},
		{shift.Travel, "assets/gifs/travel.gif"},
		{shift.Resting, "assets/gifs/sleeping.gif"},
	}

	for _, tt := range tests {
		t.Run(tt.asset.String(), func(t *testing.T) {
			if got := v.AssetPath(tt.asset); got != tt.expected {
				t.Errorf("AssetPath(%v) = %q, want %q", tt.asset, got, tt.expected)
			}
		})
	}

	if got := New("").AssetPath(shift.Travel); got != "/assets/gifs/travel.gif" {
		t.Errorf("default base AssetPath = %q", got)
	}
}

func TestStatusLine(t *testing.T) {
	v := New("")
	line := v.StatusLine(snapshotAt(t, 16, 15))

	want := "Clock out: 5:45 PM | 1h 30m remaining | working (snack time)"
	if line != want {
		t.Errorf("StatusLine = %q, want %q", line, want)
	}
}

func TestGenerateProgressSVG(t *testing.T) {
	v := New("")

	svg := v.GenerateProgressSVG(snapshotAt(t, 13, 15))
	assertContains(t, svg, "<svg")
	assertContains(t, svg, ">50%</text>")
	assertContains(t, svg, `stroke="#4CAF50"`)

	done := v.GenerateProgressSVG(snapshotAt(t, 20, 0))
	assertContains(t, done, ">100%</text>")
	assertContains(t, done, `stroke="`+shift.ColorDone+`"`)
}

func TestGenerateWidgetHTML(t *testing.T) {
	v := New("/assets/gifs")
	snap := snapshotAt(t, 17, 0)

	html, err := v.GenerateWidgetHTML(Page{
		Input:          work.DefaultInput(),
		Snapshot:       &snap,
		RefreshSeconds: 60,
		Version:        "test",
	})
	if err != nil {
		t.Fatalf("GenerateWidgetHTML: %v", err)
	}

	assertContains(t, html, "<!doctype html>")
	assertContains(t, html, `<div class="finish">5:45 PM</div>`)
	assertContains(t, html, "45m remaining")
	assertContains(t, html, "color: var(--primary)")
	assertContains(t, html, `src="/assets/gifs/working.gif"`)
	assertContains(t, html, `http-equiv="refresh" content="60;`)
	assertContains(t, html, `name="hours" type="number"`)
	assertContains(t, html, "shiftclock vtest")
}

func TestGenerateWidgetHTMLWorkingAsset(t *testing.T) {
	v := New("/assets/gifs")
	snap := snapshotAt(t, 10, 30)

	html, err := v.GenerateWidgetHTML(Page{Input: work.DefaultInput(), Snapshot: &snap, RefreshSeconds: 60})
	if err != nil {
		t.Fatalf("GenerateWidgetHTML: %v", err)
	}
	assertContains(t, html, `src="/assets/gifs/working_eating.gif"`)
}

func TestGenerateWidgetHTMLDone(t *testing.T) {
	v := New("")
	snap := snapshotAt(t, 18, 0)

	html, err := v.GenerateWidgetHTML(Page{Input: work.DefaultInput(), Snapshot: &snap, RefreshSeconds: 60})
	if err != nil {
		t.Fatalf("GenerateWidgetHTML: %v", err)
	}
	assertContains(t, html, "color: #10b981")
	assertContains(t, html, "travel.gif")
}

func TestGenerateWidgetHTMLWithoutResult(t *testing.T) {
	v := New("")
	in := work.DefaultInput()
	in.StartTime = ""
	in.Mode = work.ModeHrMin

	html, err := v.GenerateWidgetHTML(Page{Input: in, RefreshSeconds: 60})
	if err != nil {
		t.Fatalf("GenerateWidgetHTML: %v", err)
	}
	if strings.Contains(html, `class="finish"`) {
		t.Error("page without a snapshot should not show a finish time")
	}
	if strings.Contains(html, "http-equiv") {
		t.Error("page without a snapshot should not auto-refresh")
	}
	assertContains(t, html, `name="h" type="number"`)
	assertContains(t, html, `name="m" type="number"`)
}

func TestEncodeQuery(t *testing.T) {
	q := EncodeQuery(work.DefaultInput())
	want := "break=60&h=8&hours=8&m=0&mode=decimal&start=08%3A45"
	if q != want {
		t.Errorf("EncodeQuery = %q, want %q", q, want)
	}
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q", needle)
	}
}
