package styles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
)

func TestEscapeXML(t *testing.T) {
	if got := EscapeXML(`a<b & "c"`); got != "a&lt;b &amp; &#34;c&#34;" {
		t.Errorf("EscapeXML = %s", got)
	}
}

func TestDominantBaseline(t *testing.T) {
	tests := map[layout.Baseline]string{
		layout.BaselineTop:    "hanging",
		layout.BaselineBottom: "text-after-edge",
		layout.BaselineMiddle: "central",
	}
	for in, want := range tests {
		if got := DominantBaseline(in); got != want {
			t.Errorf("DominantBaseline(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestIntentAttrs(t *testing.T) {
	if IntentAttrs(nil) != "" {
		t.Error("nil intent rendered attributes")
	}
	got := IntentAttrs(intent.Select(1, model.ElementID{3, 4}))
	if got != ` data-intent="select" data-dim="1" data-id="3:4"` {
		t.Errorf("IntentAttrs = %s", got)
	}
}

func TestBarTitle(t *testing.T) {
	if got := BarTitle(layout.Bar{Group: "Jan", Series: "Jan", Value: 10}); got != "Jan: 10" {
		t.Errorf("one-dimensional title = %s", got)
	}
	if got := BarTitle(layout.Bar{Group: "Jan", Series: "East", Value: 2.5}); got != "Jan / East: 2.5" {
		t.Errorf("two-dimensional title = %s", got)
	}
}

func TestRenderBar(t *testing.T) {
	bar := layout.Bar{Group: "Q1", Series: "East", Value: 5, Color: "#123456",
		Rect: layout.Rect{X: 1, Y: 2, W: 3, H: 4}, Delay: 100}

	for _, s := range []Style{Simple{}, Outline{}} {
		var buf bytes.Buffer
		s.RenderBar(&buf, bar, true)
		out := buf.String()
		if !strings.Contains(out, `class="bar"`) || !strings.Contains(out, "url(#selected)") {
			t.Errorf("%T: %s", s, out)
		}

		buf.Reset()
		hidden := bar
		hidden.Placeholder = true
		s.RenderBar(&buf, hidden, false)
		if buf.Len() != 0 {
			t.Errorf("%T drew a placeholder: %s", s, buf.String())
		}
	}
}

func TestRenderArea(t *testing.T) {
	var buf bytes.Buffer
	Simple{}.RenderArea(&buf, "East", "#ff0000", []layout.Point{{X: 0, Y: 0}, {X: 1, Y: 1}})
	if buf.Len() != 0 {
		t.Error("degenerate area drawn")
	}
	Simple{}.RenderArea(&buf, "East", "#ff0000", []layout.Point{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 0}})
	if !strings.Contains(buf.String(), `points="0.00,0.00 1.00,1.00 2.00,0.00"`) {
		t.Errorf("area = %s", buf.String())
	}
}

func TestByName(t *testing.T) {
	if s, ok := ByName(""); !ok || s != (Simple{}) {
		t.Error("empty name should select Simple")
	}
	if _, ok := ByName(NameOutline); !ok {
		t.Error("outline missing")
	}
	if _, ok := ByName("handdrawn"); ok {
		t.Error("unknown style accepted")
	}
}
