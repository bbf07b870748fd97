package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stackchart/pkg/chart/config"
	"github.com/matzehuels/stackchart/pkg/chart/instance"
	"github.com/matzehuels/stackchart/pkg/chart/intent"
	"github.com/matzehuels/stackchart/pkg/chart/layout"
	"github.com/matzehuels/stackchart/pkg/chart/model"
	"github.com/matzehuels/stackchart/pkg/errors"
	dataio "github.com/matzehuels/stackchart/pkg/io"
	"github.com/matzehuels/stackchart/pkg/pipeline"
	"github.com/matzehuels/stackchart/pkg/render/sink"
)

// =============================================================================
// Request decoding
// =============================================================================

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return data, nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	data, err := s.readBody(w, r)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request")
	}
	return nil
}

// readDataset parses a dataset in the JSON dataset format.
func readDataset(raw json.RawMessage) (*model.Dataset, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	ds, err := dataio.ReadJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateRowCount(len(ds.Rows)); err != nil {
		return nil, err
	}
	return &ds, nil
}

// =============================================================================
// Stateless rendering
// =============================================================================

type renderRequest struct {
	pipeline.Options
	Dataset json.RawMessage `json:"dataset"`
}

type renderResponse struct {
	Artifacts map[string][]byte `json:"artifacts"`
	Groups    int               `json:"groups"`
	Series    int               `json:"series"`
	Cached    bool              `json:"cached"`
}

// handleRender renders an inline dataset. A single requested format is
// returned as raw bytes; several formats come back base64-encoded in JSON.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	cfg := config.Default()
	req := renderRequest{Options: pipeline.Options{Config: &cfg}}
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Input != "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "input files are not accepted over HTTP; send the dataset inline"))
		return
	}
	ds, err := readDataset(req.Dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := req.Options
	opts.Dataset = ds

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(res.Artifacts) == 1 {
		for format, data := range res.Artifacts {
			writeBytes(w, contentType(format), data)
		}
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{
		Artifacts: res.Artifacts,
		Groups:    res.Stats.Groups,
		Series:    res.Stats.Series,
		Cached:    res.CacheInfo.RenderHit,
	})
}

// =============================================================================
// Live charts
// =============================================================================

type createRequest struct {
	Config  *config.Config  `json:"config"`
	Width   float64         `json:"width"`
	Height  float64         `json:"height"`
	Dataset json.RawMessage `json:"dataset"`
}

type chartResponse struct {
	ID         string         `json:"id"`
	Generation uint64         `json:"generation"`
	Width      float64        `json:"width"`
	Height     float64        `json:"height"`
	Groups     int            `json:"groups"`
	Series     int            `json:"series"`
	Bars       int            `json:"bars"`
	Skipped    int            `json:"skipped"`
	Selection  int            `json:"selection"`
	Stats      instance.Stats `json:"stats"`
}

func summarize(inst *instance.Instance) chartResponse {
	snap := inst.Snapshot()
	resp := chartResponse{
		ID:         inst.ID(),
		Generation: snap.Generation,
		Selection:  len(snap.Selection),
		Stats:      inst.Stats(),
	}
	if snap.Layout != nil {
		resp.Width, resp.Height = snap.Layout.Width, snap.Layout.Height
		resp.Bars, resp.Skipped = len(snap.Layout.Bars), len(snap.Layout.Skipped)
	}
	if snap.Model != nil {
		resp.Groups, resp.Series = len(snap.Model.Groups), len(snap.Model.SeriesKeys)
	}
	return resp
}

func (s *Server) handleCreateChart(w http.ResponseWriter, r *http.Request) {
	cfg := config.Default()
	req := createRequest{Config: &cfg}
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Config != nil {
		cfg = *req.Config
	}
	if req.Width == 0 {
		req.Width = pipeline.DefaultWidth
	}
	if req.Height == 0 {
		req.Height = pipeline.DefaultHeight
	}
	if err := cfg.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateCanvas(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := readDataset(req.Dataset)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	fm := &fontMeasurer{}
	inst := instance.New(cfg, req.Width, req.Height,
		instance.WithLogger(s.logger),
		instance.WithLayoutOptions(layout.WithMeasurer(fm)))
	fm.size = func() float64 { return inst.Config().FontSize }

	if ds != nil {
		if err := inst.SetData(r.Context(), *ds); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	if s.charts.add(inst) {
		s.logger.Info("registry full, least recently used chart evicted", "charts", s.charts.len())
	}
	s.logger.Info("chart created", "chart", inst.ID())
	w.Header().Set("Location", "/v1/charts/"+inst.ID())
	writeJSON(w, http.StatusCreated, summarize(inst))
}

// chart resolves the {id} route parameter, writing 404 when unknown.
func (s *Server) chart(w http.ResponseWriter, r *http.Request) (*instance.Instance, bool) {
	id := chi.URLParam(r, "id")
	inst, ok := s.charts.get(id)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "chart %q not found", id))
	}
	return inst, ok
}

func (s *Server) handleGetChart(w http.ResponseWriter, r *http.Request) {
	if inst, ok := s.chart(w, r); ok {
		writeJSON(w, http.StatusOK, summarize(inst))
	}
}

func (s *Server) handleDeleteChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !s.charts.remove(id) {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "chart %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetData(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.chart(w, r)
	if !ok {
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ds, err := readDataset(body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if ds == nil {
		ds = &model.Dataset{}
	}
	start := time.Now()
	if err := inst.SetData(r.Context(), *ds); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Debug("data delivered", "chart", inst.ID(), "rows", len(ds.Rows), "duration", time.Since(start))
	writeJSON(w, http.StatusOK, summarize(inst))
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.chart(w, r)
	if !ok {
		return
	}
	cfg := inst.Config()
	if err := s.decode(w, r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := inst.Configure(r.Context(), cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(inst))
}

type sizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.chart(w, r)
	if !ok {
		return
	}
	var req sizeRequest
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errors.ValidateCanvas(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := inst.Resize(r.Context(), req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summarize(inst))
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.chart(w, r)
	if !ok {
		return
	}
	snap := inst.Snapshot()
	data, err := sink.RenderJSON(snap.Layout,
		sink.WithJSONModel(snap.Model),
		sink.WithJSONConfig(inst.Config()),
		sink.WithJSONSelection(snap.Selection))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeBytes(w, contentType("json"), data)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.chart(w, r)
	if !ok {
		return
	}
	snap := inst.Snapshot()
	opts := []sink.SVGOption{sink.WithSelection(snap.Selection)}
	if r.URL.Query().Get("interactive") == "true" {
		opts = append(opts, sink.WithInteraction())
	}
	writeBytes(w, contentType("svg"), sink.RenderSVG(snap.Layout, opts...))
}

type selectResponse struct {
	Selection []intent.Intent `json:"selection"`
}

// handleSelect applies an intent. A body of {"clear": true} drops the
// selection.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	inst, ok := s.chart(w, r)
	if !ok {
		return
	}
	var req struct {
		intent.Intent
		Clear bool `json:"clear"`
	}
	if err := s.decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Clear {
		inst.ClearSelection()
		writeJSON(w, http.StatusOK, selectResponse{Selection: []intent.Intent{}})
		return
	}
	if req.Kind == "" {
		req.Kind = intent.KindSelect
	}
	if req.Mode == "" {
		req.Mode = intent.Replace
	}
	sel, err := inst.Select(req.Intent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if sel == nil {
		sel = []intent.Intent{}
	}
	writeJSON(w, http.StatusOK, selectResponse{Selection: sel})
}
