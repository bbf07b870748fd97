package io

import (
	"encoding/json"
	stdio "io"
	"math"
	"os"

	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

type outCell struct {
	ID   model.ElementID `json:"id,omitempty"`
	Num  *float64        `json:"num,omitempty"`
	Text string          `json:"text"`
}

type outDataset struct {
	Dimensions []string    `json:"dimensions"`
	Measures   []string    `json:"measures"`
	Rows       [][]outCell `json:"rows"`
}

// WriteJSON encodes ds in the object cell form, which keeps element ids and
// display texts. The output can be read back with [ReadJSON].
func WriteJSON(ds model.Dataset, w stdio.Writer) error {
	out := outDataset{Dimensions: ds.Dimensions, Measures: ds.Measures, Rows: make([][]outCell, len(ds.Rows))}
	for ri, row := range ds.Rows {
		cells := make([]outCell, len(row))
		for ci, c := range row {
			oc := outCell{ID: c.ElemID, Text: c.Text}
			if !math.IsNaN(c.Num) && !math.IsInf(c.Num, 0) {
				v := c.Num
				oc.Num = &v
			}
			cells[ci] = oc
		}
		out.Rows[ri] = cells
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode dataset")
	}
	return nil
}

// ExportJSON writes ds to a JSON file at path.
func ExportJSON(ds model.Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	defer f.Close()
	return WriteJSON(ds, f)
}
