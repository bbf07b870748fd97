package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	stdio "io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// cell decodes the scalar and object forms of a dataset cell.
type cell struct {
	model.Cell
	explicitID bool
}

func (c *cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		c.Num = math.NaN()
	case len(data) > 0 && data[0] == '{':
		var obj struct {
			ID   model.ElementID `json:"id"`
			Num  *float64        `json:"num"`
			Text string          `json:"text"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		c.ElemID, c.Text, c.explicitID = obj.ID, obj.Text, len(obj.ID) > 0
		c.Num = math.NaN()
		if obj.Num != nil {
			c.Num = *obj.Num
		}
	case len(data) > 0 && data[0] == '"':
		if err := json.Unmarshal(data, &c.Text); err != nil {
			return err
		}
	default:
		v, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidDataset, "invalid cell %s", data)
		}
		c.Num, c.Text = v, string(data)
	}
	return nil
}

type dataset struct {
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
	Rows       [][]cell `json:"rows"`
}

// ReadJSON decodes a dataset from r. It does not close r.
func ReadJSON(r stdio.Reader) (model.Dataset, error) {
	var data dataset
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return model.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode dataset")
	}
	ds := model.Dataset{Dimensions: data.Dimensions, Measures: data.Measures}
	ids := newIDAssigner(len(data.Dimensions))
	for ri, row := range data.Rows {
		if len(row) != ds.Width() {
			return model.Dataset{}, errors.New(errors.ErrCodeInvalidDataset,
				"row %d has %d cells, want %d", ri, len(row), ds.Width())
		}
		raw := make(model.RawRow, len(row))
		for ci, c := range row {
			if ci < len(ds.Dimensions) && !c.explicitID {
				c.ElemID = ids.id(ci, c.Text, ri)
			}
			raw[ci] = c.Cell
		}
		ds.Rows = append(ds.Rows, raw)
	}
	return ds, nil
}

// ReadCSV decodes a dataset whose first dims columns are dimensions.
func ReadCSV(r stdio.Reader, dims int) (model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return model.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "read csv")
	}
	if len(records) == 0 {
		return model.Dataset{}, errors.New(errors.ErrCodeInvalidDataset, "csv has no header row")
	}
	header := records[0]
	if dims < 0 || dims > 2 || dims >= len(header) {
		return model.Dataset{}, errors.New(errors.ErrCodeInvalidDataset,
			"cannot split %d columns into %d dimensions and at least one measure", len(header), dims)
	}

	ds := model.Dataset{Dimensions: header[:dims], Measures: header[dims:]}
	ids := newIDAssigner(dims)
	for ri, rec := range records[1:] {
		raw := make(model.RawRow, len(rec))
		for ci, field := range rec {
			if ci < dims {
				raw[ci] = model.Cell{ElemID: ids.id(ci, field, ri), Text: field}
				continue
			}
			num, err := parseMeasure(field)
			if err != nil {
				return model.Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err,
					"row %d column %q", ri+1, header[ci])
			}
			raw[ci] = model.Cell{Num: num, Text: field}
		}
		ds.Rows = append(ds.Rows, raw)
	}
	return ds, nil
}

func parseMeasure(field string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(strings.ReplaceAll(field, ",", ""), 64)
}

// ImportFile reads a .json or .csv dataset. dims is only used for CSV.
func ImportFile(path string, dims int) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.Dataset{}, errors.Wrap(errors.ErrCodeNotFound, err, "open %s", path)
		}
		return model.Dataset{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f, dims)
	default:
		return model.Dataset{}, errors.New(errors.ErrCodeUnsupported, "unsupported dataset format %q", filepath.Ext(path))
	}
}

// idAssigner hands out one element id per distinct value and column.
type idAssigner struct {
	seen []map[string]int
}

func newIDAssigner(columns int) *idAssigner {
	a := &idAssigner{seen: make([]map[string]int, columns)}
	for i := range a.seen {
		a.seen[i] = make(map[string]int)
	}
	return a
}

func (a *idAssigner) id(column int, value string, row int) model.ElementID {
	first, ok := a.seen[column][value]
	if !ok {
		first = row
		a.seen[column][value] = row
	}
	return model.ElementID{first}
}
