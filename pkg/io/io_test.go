package io

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

const salesJSON = `{
  "dimensions": ["Quarter", "Region"],
  "measures": ["Sales"],
  "rows": [
    ["Q1", "East", 100],
    ["Q1", "West", 50.5],
    ["Q2", "East", null],
    [{"id": [9], "text": "Q3"}, "West", {"num": 7, "text": "7 units"}]
  ]
}`

func TestReadJSON(t *testing.T) {
	ds, err := ReadJSON(strings.NewReader(salesJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	want := model.Dataset{
		Dimensions: []string{"Quarter", "Region"},
		Measures:   []string{"Sales"},
		Rows: []model.RawRow{
			{{ElemID: model.ElementID{0}, Text: "Q1"}, {ElemID: model.ElementID{0}, Text: "East"}, {Num: 100, Text: "100"}},
			{{ElemID: model.ElementID{0}, Text: "Q1"}, {ElemID: model.ElementID{1}, Text: "West"}, {Num: 50.5, Text: "50.5"}},
			{{ElemID: model.ElementID{2}, Text: "Q2"}, {ElemID: model.ElementID{0}, Text: "East"}, {Num: math.NaN()}},
			{{ElemID: model.ElementID{9}, Text: "Q3", Num: math.NaN()}, {ElemID: model.ElementID{1}, Text: "West"}, {Num: 7, Text: "7 units"}},
		},
	}
	if diff := cmp.Diff(want, ds, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("dataset mismatch (-want +got):\n%s", diff)
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name, input string
	}{
		{"malformed", `{"rows": [`},
		{"ragged row", `{"dimensions": ["A"], "measures": ["B"], "rows": [["x"]]}`},
		{"bad cell", `{"dimensions": ["A"], "measures": ["B"], "rows": [["x", true]]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("error = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	ds, err := ReadJSON(strings.NewReader(salesJSON))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(ds, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	back, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON(WriteJSON): %v", err)
	}
	if diff := cmp.Diff(ds, back, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV(t *testing.T) {
	input := "Month,Sales,Cost\nJan,10,4\nFeb,\"1,200\",\nJan,3,1\n"
	ds, err := ReadCSV(strings.NewReader(input), 1)
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if diff := cmp.Diff([]string{"Sales", "Cost"}, ds.Measures); diff != "" {
		t.Errorf("measures mismatch (-want +got):\n%s", diff)
	}
	if got := ds.Rows[1][1].Num; got != 1200 {
		t.Errorf("grouped number parsed as %v", got)
	}
	if got := ds.Rows[1][2].Num; !math.IsNaN(got) {
		t.Errorf("empty field parsed as %v, want NaN", got)
	}
	if got := ds.Rows[2][0].ElemID; !cmp.Equal(got, model.ElementID{0}) {
		t.Errorf("repeated Jan id = %v, want [0]", got)
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		dims  int
	}{
		{"empty", "", 1},
		{"no measures", "A,B\nx,y\n", 2},
		{"too many dims", "A,B,C,D\n", 3},
		{"bad number", "A,B\nx,abc\n", 1},
		{"ragged", "A,B\nx,1,2\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), tt.dims)
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("error = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestImportFile(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "sales.csv")
	if err := os.WriteFile(csvPath, []byte("Month,Sales\nJan,1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ds, err := ImportFile(csvPath, 1)
	if err != nil || len(ds.Rows) != 1 {
		t.Fatalf("ImportFile(csv) = %+v, %v", ds, err)
	}

	jsonPath := filepath.Join(dir, "sales.json")
	if err := ExportJSON(ds, jsonPath); err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	back, err := ImportFile(jsonPath, 0)
	if err != nil {
		t.Fatalf("ImportFile(json): %v", err)
	}
	if diff := cmp.Diff(ds, back, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("file round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := ImportFile(filepath.Join(dir, "missing.csv"), 1); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	xlsx := filepath.Join(dir, "sales.xlsx")
	if err := os.WriteFile(xlsx, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportFile(xlsx, 1); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("xlsx error = %v, want UNSUPPORTED", err)
	}
}
