package sink

import (
	"encoding/json"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	model     *model.Model
	config    *config.Config
	selection []intent.Intent
}

// WithJSONModel includes the shaped data model, so consumers can map every
// bar back to its group, series and element id without re-shaping.
func WithJSONModel(m *model.Model) JSONOption { return func(r *jsonRenderer) { r.model = m } }

// WithJSONConfig records the configuration the layout was computed with.
func WithJSONConfig(cfg config.Config) JSONOption {
	return func(r *jsonRenderer) { r.config = &cfg }
}

// WithJSONSelection records the current selection.
func WithJSONSelection(sel []intent.Intent) JSONOption {
	return func(r *jsonRenderer) { r.selection = sel }
}

type jsonOutput struct {
	Config    *config.Config  `json:"config,omitempty"`
	Model     *model.Model    `json:"model,omitempty"`
	Layout    *layout.Layout  `json:"layout"`
	Selection []intent.Intent `json:"selection,omitempty"`
}

// RenderJSON exports the layout, optionally with its model and configuration,
// as a pretty-printed JSON document. This is the interchange format for
// hosts that draw the chart themselves.
func RenderJSON(l *layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if l == nil {
		l = &layout.Layout{}
	}
	out := jsonOutput{Config: r.config, Model: r.model, Layout: l, Selection: r.selection}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
	}
	return data, nil
}
