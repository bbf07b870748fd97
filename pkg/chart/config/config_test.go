package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/stackchart/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"orientation", func(c *Config) { c.Orientation = "X" }},
		{"chart kind", func(c *Config) { c.Kind = "pie" }},
		{"legend position", func(c *Config) { c.LegendPosition = "C" }},
		{"show texts", func(c *Config) { c.ShowTexts = "Z" }},
		{"bar gap", func(c *Config) { c.BarGap = 1.5 }},
		{"outer gap", func(c *Config) { c.OuterGap = -0.1 }},
		{"grid height", func(c *Config) { c.GridHeight = 0 }},
		{"font size", func(c *Config) { c.FontSize = 0 }},
		{"negative duration", func(c *Config) { c.TransitionDuration = -1 }},
		{"custom without pattern", func(c *Config) { c.AxisFormat = NumberFormat{Kind: FormatCustom} }},
		{"format kind", func(c *Config) { c.TotalFormat.Kind = "Roman" }},
		{"text color", func(c *Config) { c.TextColor = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	cfg := Default()
	err := Decode(`
orientation = "H"
normalized = true
bar_gap = 0.1
palette = ["#ff0000", "#00ff00"]

[axis_format]
kind = "SI"
`, &cfg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Default()
	want.Orientation = Horizontal
	want.Normalized = true
	want.BarGap = 0.1
	want.Palette = []string{"#ff0000", "#00ff00"}
	want.AxisFormat = NumberFormat{Kind: FormatSI}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeUnknownKey(t *testing.T) {
	cfg := Default()
	err := Decode(`colour = "red"`, &cfg)
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Fatalf("Decode(unknown key) = %v, want INVALID_CONFIG", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.toml")
	if err := os.WriteFile(path, []byte("show_deltas = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.ShowDeltas || cfg.BarGap != Default().BarGap {
		t.Errorf("Load: ShowDeltas=%t BarGap=%v", cfg.ShowDeltas, cfg.BarGap)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Load(missing) = %v, want NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	in := Default()
	in.ShowDeltas = true
	in.LegendPosition = LegendBottom
	text, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := Default()
	if err := Decode(text, &out); err != nil {
		t.Fatalf("Decode(Encode()): %v", err)
	}
	if diff := cmp.Diff(in, out, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestHelpers(t *testing.T) {
	cfg := Default()
	cfg.Kind = KindArea
	if cfg.EffectiveBarGap() != 0 {
		t.Errorf("area EffectiveBarGap = %v, want 0", cfg.EffectiveBarGap())
	}
	cfg.Kind = KindBar
	cfg.BarGap = 1
	if !cfg.BarsHidden() {
		t.Error("BarsHidden() = false with bar_gap 1")
	}
	if Wide.Index() != 0 || Medium.Index() != 1 || Narrow.Index() != 2 {
		t.Error("Size.Index mismatch")
	}
	if !LabelsAndTitle.ShowLabels() || TitleOnly.ShowLabels() || !TitleOnly.ShowTitle() {
		t.Error("LabelTitle helpers mismatch")
	}
}
