package scale

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/model"
)

func TestNewBand(t *testing.T) {
	tests := []struct {
		name      string
		keys      []string
		r0, r1    float64
		padding   float64
		outer     float64
		want      map[string]float64
		bandwidth float64
	}{
		{
			name: "padded", keys: []string{"a", "b", "c"}, r0: 0, r1: 300, padding: 0.3, outer: 0.15,
			want: map[string]float64{"a": 15, "b": 115, "c": 215}, bandwidth: 70,
		},
		{
			name: "touching", keys: []string{"a", "b"}, r0: 0, r1: 100,
			want: map[string]float64{"a": 0, "b": 50}, bandwidth: 50,
		},
		{
			name: "reversed range", keys: []string{"c", "b", "a"}, r0: 300, r1: 0, padding: 0.3, outer: 0.15,
			want: map[string]float64{"a": 15, "b": 115, "c": 215}, bandwidth: 70,
		},
		{
			name: "hidden bars", keys: []string{"a"}, r0: 0, r1: 100, padding: 1,
			want: map[string]float64{"a": 50}, bandwidth: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBand(tt.keys, tt.r0, tt.r1, tt.padding, tt.outer)
			got := make(map[string]float64)
			for _, k := range tt.keys {
				p, ok := b.Pos(k)
				if !ok {
					t.Fatalf("Pos(%q) not found", k)
				}
				got[k] = p
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("positions mismatch (-want +got):\n%s", diff)
			}
			if b.Bandwidth() != tt.bandwidth {
				t.Errorf("Bandwidth() = %v, want %v", b.Bandwidth(), tt.bandwidth)
			}
		})
	}
}

func TestNewBandEmpty(t *testing.T) {
	b := NewBand(nil, 0, 100, 0.2, 0.1)
	if _, ok := b.Pos("x"); ok {
		t.Error("Pos on empty band reported a position")
	}
	if b.Bandwidth() != 0 || b.Len() != 0 {
		t.Errorf("empty band: bandwidth=%v len=%d", b.Bandwidth(), b.Len())
	}
}

func TestLinearNice(t *testing.T) {
	tests := []struct {
		name   string
		d0, d1 float64
		m      int
		want   [2]float64
	}{
		{"round up", 0, 97, 10, [2]float64{0, 100}},
		{"mixed signs", -5.25, 10.5, 4, [2]float64{-10, 15}},
		{"collapsed", 0, 0, 4, [2]float64{0, 0}},
		{"reversed", 97, 0, 10, [2]float64{100, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d0, d1 := NewLinear(tt.d0, tt.d1, 0, 1).Nice(tt.m).Domain()
			if diff := cmp.Diff(tt.want, [2]float64{d0, d1}, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Errorf("Nice domain mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLinearForward(t *testing.T) {
	l := NewLinear(0, 100, 200, 0)
	tests := []struct {
		v, want float64
	}{
		{0, 200},
		{50, 100},
		{100, 0},
		{math.NaN(), 200},
		{math.Inf(1), 200},
	}
	for _, tt := range tests {
		if got := l.Forward(tt.v); got != tt.want {
			t.Errorf("Forward(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
	if got := l.Invert(100); got != 50 {
		t.Errorf("Invert(100) = %v, want 50", got)
	}

	collapsed := NewLinear(0, 0, 200, 0)
	for _, v := range []float64{-1, 0, 5} {
		if got := collapsed.Forward(v); got != 200 {
			t.Errorf("collapsed Forward(%v) = %v, want 200", v, got)
		}
	}
}

func TestLinearTicks(t *testing.T) {
	tests := []struct {
		name   string
		d0, d1 float64
		m      int
		want   []float64
	}{
		{"tenths", 0, 1, 10, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1}},
		{"fives", -10, 15, 4, []float64{-10, -5, 0, 5, 10, 15}},
		{"collapsed", 3, 3, 5, []float64{3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewLinear(tt.d0, tt.d1, 0, 1).Ticks(tt.m)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Ticks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLinearTickFormat(t *testing.T) {
	tests := []struct {
		name    string
		d0, d1  float64
		m       int
		pattern string
		v       float64
		want    string
	}{
		{"default tenths", 0, 1, 10, "", 0.5, "0.5"},
		{"default hundreds", 0, 1000, 10, "", 1000, "1,000"},
		{"si", 0, 2e6, 4, "s", 1e6, "1.0M"},
		{"percent", 0, 1, 10, "%", 0.3, "30%"},
		{"grouped", 0, 1000, 10, ",f", 1000, "1,000"},
		{"invalid pattern", 0, 1000, 10, "??", 1000, "1,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewLinear(tt.d0, tt.d1, 0, 1).TickFormat(tt.m, tt.pattern)
			if got := f.Format(tt.v); got != tt.want {
				t.Errorf("TickFormat(%d, %q).Format(%v) = %q, want %q", tt.m, tt.pattern, tt.v, got, tt.want)
			}
		})
	}
}

func shape(t *testing.T, ds model.Dataset, cfg config.Config) *model.Model {
	t.Helper()
	m := model.Shape(ds, cfg)
	if m.IsEmpty() {
		t.Fatal("Shape returned an empty model")
	}
	return m
}

func oneDim(rows ...any) model.Dataset {
	ds := model.Dataset{Dimensions: []string{"Month"}, Measures: []string{"Sales"}}
	for i := 0; i < len(rows); i += 2 {
		v := rows[i+1].(float64)
		ds.Rows = append(ds.Rows, model.RawRow{
			{ElemID: model.ElementID{i / 2}, Text: rows[i].(string)},
			{Num: v},
		})
	}
	return ds
}

func TestBuildVertical(t *testing.T) {
	cfg := config.Default()
	m := shape(t, oneDim("Jan", 10.0, "Feb", -5.0, "Mar", 0.0), cfg)

	s := Build(m, cfg, Extent{Width: 300, Height: 200})
	if s.Horizontal {
		t.Fatal("default config built a horizontal chart")
	}
	if s.TickCount != 4 {
		t.Errorf("TickCount = %d, want 4", s.TickCount)
	}
	for key, want := range map[string]float64{"Jan": 15, "Feb": 115, "Mar": 215} {
		if got, _ := s.Dim.Pos(key); got != want {
			t.Errorf("Dim.Pos(%q) = %v, want %v", key, got, want)
		}
	}
	d0, d1 := s.Measure.Domain()
	if d0 != -10 || d1 != 15 {
		t.Errorf("Measure domain = [%v, %v], want [-10, 15]", d0, d1)
	}
	if got := s.Measure.Forward(0); got != 120 {
		t.Errorf("Measure.Forward(0) = %v, want 120", got)
	}
}

func TestBuildHorizontalFirstGroupOnTop(t *testing.T) {
	cfg := config.Default()
	cfg.Orientation = config.Horizontal
	m := shape(t, oneDim("Jan", 10.0, "Feb", 5.0, "Mar", 1.0), cfg)

	s := Build(m, cfg, Extent{Width: 300, Height: 200})
	jan, _ := s.Dim.Pos("Jan")
	feb, _ := s.Dim.Pos("Feb")
	mar, _ := s.Dim.Pos("Mar")
	if !(jan < feb && feb < mar) {
		t.Errorf("positions Jan=%v Feb=%v Mar=%v, want Jan on top", jan, feb, mar)
	}
	if r0, r1 := s.Measure.Range(); r0 != 0 || r1 != 300 {
		t.Errorf("Measure range = [%v, %v], want [0, 300]", r0, r1)
	}
}

func TestMeasureDomainNormalized(t *testing.T) {
	cfg := config.Default()
	cfg.Normalized = true
	ds := model.Dataset{
		Dimensions: []string{"Quarter", "Region"},
		Measures:   []string{"Sales"},
		Rows: []model.RawRow{
			{{Text: "Q1"}, {Text: "East"}, {Num: 100}},
			{{Text: "Q1"}, {Text: "West"}, {Num: 50}},
		},
	}
	m := shape(t, ds, cfg)
	d0, d1 := MeasureDomain(m, cfg.GridHeight)
	if d0 != 0 || d1 != cfg.GridHeight {
		t.Errorf("MeasureDomain = [%v, %v], want [0, %v]", d0, d1, cfg.GridHeight)
	}
}

func TestBuildDegenerate(t *testing.T) {
	cfg := config.Default()
	m := shape(t, oneDim("A", 0.0, "B", 0.0), cfg)

	s := Build(m, cfg, Extent{Width: 120, Height: 80})
	for _, v := range []float64{0, 1, -1} {
		if got := s.Measure.Forward(v); math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("Forward(%v) = %v on a collapsed domain", v, got)
		}
	}

	empty := Build(model.Empty(), cfg, Extent{Width: 120, Height: 80})
	if empty.Dim.Len() != 0 {
		t.Errorf("empty model produced %d bands", empty.Dim.Len())
	}
}

func TestTickCount(t *testing.T) {
	for px, want := range map[float64]int{0: 2, 60: 2, 200: 4, 510: 10, math.NaN(): 2} {
		if got := TickCount(px); got != want {
			t.Errorf("TickCount(%v) = %d, want %d", px, got, want)
		}
	}
}
