package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackchart/pkg/cache"
	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

const salesCSV = `Quarter,Region,Sales
Q1,East,100
Q1,West,50
Q2,East,80
Q2,West,"1,070"
`

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(salesCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ValidateFormats error = %v", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	for style, ok := range map[string]bool{"simple": true, "outline": true, "handdrawn": false, "": false} {
		if err := ValidateStyle(style); (err == nil) != ok {
			t.Errorf("ValidateStyle(%q) = %v", style, err)
		}
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{Input: "data.csv"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Width != DefaultWidth || opts.Height != DefaultHeight || opts.Style != DefaultStyle || opts.Scale != DefaultScale {
		t.Errorf("defaults not applied: %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG || opts.Config == nil || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}

	bad := config.Default()
	bad.LegendPosition = "X"
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"dims", Options{Input: "a.csv", Dims: 3}, errors.ErrCodeInvalidInput},
		{"canvas", Options{Input: "a.csv", Width: 10}, errors.ErrCodeInvalidInput},
		{"format", Options{Input: "a.csv", Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"config", Options{Input: "a.csv", Config: &bad}, errors.ErrCodeInvalidConfig},
		{"selection", Options{Input: "a.csv", Selection: []intent.Intent{{Kind: "hover"}}}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImport(t *testing.T) {
	inline := &model.Dataset{Dimensions: []string{"X"}, Measures: []string{"Y"}}
	ds, err := Import(Options{Input: "ignored.csv", Dataset: inline})
	if err != nil || ds.Dimensions[0] != "X" {
		t.Errorf("inline dataset not used: %+v, %v", ds, err)
	}

	ds, err = Import(Options{Input: writeCSV(t), Dims: 2})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(ds.Rows) != 4 || ds.Rows[3][2].Num != 1070 {
		t.Errorf("rows = %+v", ds.Rows)
	}

	if _, err := Import(Options{Input: filepath.Join(t.TempDir(), "missing.csv")}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Input:   writeCSV(t),
		Dims:    2,
		Formats: []string{FormatSVG, FormatJSON, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Rows != 4 || res.Stats.Groups != 2 || res.Stats.Series != 2 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Layout.Bars) != 4 {
		t.Errorf("bars = %d, want 4", len(res.Layout.Bars))
	}
	if !bytes.HasPrefix(res.Artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact missing")
	}
	if !bytes.Contains(res.Artifacts[FormatJSON], []byte(`"model"`)) {
		t.Error("json artifact lacks the model")
	}
	if !bytes.HasPrefix(res.Artifacts[FormatPNG], []byte("\x89PNG")) {
		t.Error("png artifact missing")
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Errorf("cache hit without a cache: %+v", res.CacheInfo)
	}
}

func TestExecuteUsesCache(t *testing.T) {
	mem := cache.NewMemoryCache(0, 0)
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()
	path := writeCSV(t)
	opts := Options{Input: path, Dims: 2, Formats: []string{FormatSVG, FormatJSON}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs from the rendered one")
	}
	if mem.Len() != 3 {
		t.Errorf("cache holds %d entries, want layout + 2 artifacts", mem.Len())
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh served from cache: %+v", third.CacheInfo)
	}

	opts.Refresh = false
	opts.Width = 640
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.LayoutHit {
		t.Error("layout for another canvas size served from cache")
	}
}

// readOnlyCache misses every read and rejects every write.
type readOnlyCache struct{ cache.NullCache }

func (*readOnlyCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New(errors.ErrCodeInternal, "backend is read-only")
}

func TestExecuteLogsCacheWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(&readOnlyCache{}, nil, log.New(&buf))

	res, err := r.Execute(context.Background(), Options{Input: writeCSV(t), Dims: 2, Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("a failing cache write must not fail the run: %v", err)
	}
	if len(res.Artifacts[FormatSVG]) == 0 {
		t.Error("svg artifact missing")
	}
	logged := buf.String()
	if got := strings.Count(logged, "cache write failed"); got != 2 {
		t.Errorf("logged %d write failures, want layout + artifact:\n%s", got, logged)
	}
	if !strings.Contains(logged, "artifact:") {
		t.Errorf("artifact write failure not logged:\n%s", logged)
	}
}

func TestSelectionIsNotCached(t *testing.T) {
	mem := cache.NewMemoryCache(0, 0)
	r := NewRunner(mem, nil, nil)
	ctx := context.Background()

	res, err := r.Execute(ctx, Options{Input: writeCSV(t), Dims: 2})
	if err != nil {
		t.Fatal(err)
	}
	sel := []intent.Intent{*res.Layout.Bars[0].Intent}
	before := mem.Len()

	res, err = r.Execute(ctx, Options{Input: writeCSV(t), Dims: 2, Selection: sel})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("selected rendering served from cache")
	}
	if mem.Len() != before {
		t.Errorf("selected rendering was cached (%d → %d entries)", before, mem.Len())
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "url(#selected)") {
		t.Error("selection not drawn")
	}
}

func TestRenderStyles(t *testing.T) {
	ctx := context.Background()
	ds, err := Import(Options{Input: writeCSV(t), Dims: 2})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{}
	m := Shape(ctx, ds, opts)
	l := GenerateLayout(ctx, m, opts)

	out, err := Render(ctx, l, m, Options{Style: "outline"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out[FormatSVG]), `stroke="#ffffff"`) {
		t.Error("outline style not applied")
	}
	if _, err := Render(ctx, l, m, Options{Style: "sketch"}); err == nil {
		t.Error("unknown style accepted")
	}
}
