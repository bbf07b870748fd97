package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/instance"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/chart/text"
)

func previewDataset() model.Dataset {
	cell := func(id int, s string) model.Cell { return model.Cell{ElemID: model.ElementID{id}, Text: s} }
	num := func(v float64, s string) model.Cell { return model.Cell{Num: v, Text: s} }
	return model.Dataset{
		Dimensions: []string{"Quarter", "Region"},
		Measures:   []string{"Revenue"},
		Rows: []model.RawRow{
			{cell(0, "Q1"), cell(0, "East"), num(100, "100")},
			{cell(0, "Q1"), cell(1, "West"), num(-20, "-20")},
			{cell(2, "Q2"), cell(0, "East"), num(80, "80")},
			{cell(2, "Q2"), cell(1, "West"), num(70, "70")},
		},
	}
}

func newTestPreview(t *testing.T) (previewModel, *instance.Instance) {
	t.Helper()
	inst := instance.New(config.Default(), 640, 400,
		instance.WithLayoutOptions(layout.WithMeasurer(text.FixedMeasurer{RuneWidth: 6, LineHeight: 12})))
	if err := inst.SetData(context.Background(), previewDataset()); err != nil {
		t.Fatal(err)
	}
	return newPreviewModel(context.Background(), inst), inst
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m
}

func TestPreviewNavigation(t *testing.T) {
	m, _ := newTestPreview(t)
	got := press(m, "down", "down", "down").(previewModel)
	if got.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped to the last group)", got.cursor)
	}
	got = press(got, "up", "up").(previewModel)
	if got.cursor != 0 {
		t.Errorf("cursor = %d, want 0", got.cursor)
	}
}

func TestPreviewSelection(t *testing.T) {
	m, inst := newTestPreview(t)

	press(m, "down", "enter")
	sel := inst.Snapshot().Selection
	if len(sel) != 1 || sel[0].DimensionIndex != 0 || sel[0].ElemID.String() != "2" {
		t.Fatalf("selection after enter = %v", sel)
	}

	press(m, "down", "enter")
	if sel := inst.Snapshot().Selection; len(sel) != 0 {
		t.Errorf("second enter did not toggle the selection off: %v", sel)
	}

	press(m, "enter", "esc")
	if sel := inst.Snapshot().Selection; len(sel) != 0 {
		t.Errorf("esc did not clear the selection: %v", sel)
	}
}

func TestPreviewNormalizeToggle(t *testing.T) {
	m, inst := newTestPreview(t)
	m = press(m, "n").(previewModel)
	if !inst.Config().Normalized || !inst.Snapshot().Model.Normalized {
		t.Fatal("n did not normalize the chart")
	}
	if !strings.Contains(m.View(), "(normalized)") {
		t.Error("view does not show the normalized state")
	}
}

func TestPreviewQuit(t *testing.T) {
	m, _ := newTestPreview(t)
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")}); cmd == nil {
		t.Error("q returned no command")
	}
}

func TestPreviewView(t *testing.T) {
	m, _ := newTestPreview(t)
	m = press(m, "enter").(previewModel)
	v := m.View()
	for _, want := range []string{"Revenue", "Q1", "Q2", "East", "West", "●", "│"} {
		if !strings.Contains(v, want) {
			t.Errorf("view lacks %q:\n%s", want, v)
		}
	}
}

func TestPreviewSVG(t *testing.T) {
	m, _ := newTestPreview(t)
	m.svgPath = filepath.Join(t.TempDir(), "chart.svg")
	press(m, "enter")

	svg, err := os.ReadFile(m.svgPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(svg), "<svg") {
		t.Errorf("unexpected svg prefix: %.40s", svg)
	}
}

func TestStackedBar(t *testing.T) {
	g := model.Group{Values: []model.DataPoint{
		{SeriesKey: "a", Value: 2},
		{SeriesKey: "b", Value: -1},
		{SeriesKey: "c", Value: 1, Placeholder: true},
	}}
	bar := stackedBar(g, map[string]string{}, 4, 8, 2)
	if got, want := strings.Count(bar, "█"), 6; got != want {
		t.Errorf("bar has %d cells, want %d: %q", got, want, bar)
	}
	if i, j := strings.Index(bar, "█"), strings.Index(bar, "│"); i > j {
		t.Errorf("negative slice not drawn left of zero: %q", bar)
	}
}
