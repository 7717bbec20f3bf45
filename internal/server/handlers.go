package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/zephyrtronium/implicit"
	"github.com/zephyrtronium/implicit/internal/render"
	"github.com/zephyrtronium/implicit/plot"
)

// maxBody bounds request bodies.
const maxBody = 64 << 10

// decodeQuery decodes URL query parameters into v, which holds defaults.
// Values are converted from strings, and unknown parameters are errors.
func decodeQuery(q url.Values, v any) error {
	in := make(map[string]any, len(q))
	for k, vs := range q {
		if len(vs) > 0 {
			in[k] = vs[len(vs)-1]
		}
	}
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           v,
	})
	if err != nil {
		return err
	}
	return d.Decode(in)
}

type plotQuery struct {
	plot.Domain `mapstructure:",squash"`
	Resolution  int     `mapstructure:"resolution"`
	T           float64 `mapstructure:"t"`
	Context     bool    `mapstructure:"context"`
}

type framesQuery struct {
	plot.Domain         `mapstructure:",squash"`
	plot.ParameterRange `mapstructure:",squash"`
	Resolution          int  `mapstructure:"resolution"`
	Context             bool `mapstructure:"context"`
}

func (s *Server) checkResolution(res int) error {
	if !s.cfg.AllowedResolution(res) {
		return &plot.DomainError{Field: "resolution", Msg: fmt.Sprintf("must be one of %v", s.cfg.Resolutions)}
	}
	return nil
}

type sessionResponse struct {
	ID string `json:"id"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	id, _ := s.sessions.create(s.log)
	s.metrics.sessions.Set(float64(s.sessions.len()))
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id.String()})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := uuid.MustParse(chi.URLParam(r, "id"))
	s.sessions.remove(id)
	s.metrics.sessions.Set(float64(s.sessions.len()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r).Reset()
	w.WriteHeader(http.StatusNoContent)
}

type validateRequest struct {
	Equation string `json:"equation"`
}

type validateResponse struct {
	Valid bool     `json:"valid"`
	Text  string   `json:"text"`
	LaTeX string   `json:"latex"`
	Vars  []string `json:"vars"`
}

func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ex, err := sessionFrom(r).Validate(req.Equation)
	if err != nil {
		result := "invalid"
		if errors.Is(err, implicit.ErrEmpty) {
			result = "empty"
		}
		s.metrics.validations.WithLabelValues(result).Inc()
		writeError(w, statusOf(err), err.Error())
		return
	}
	s.metrics.validations.WithLabelValues("valid").Inc()
	writeJSON(w, http.StatusOK, validateResponse{
		Valid: true,
		Text:  ex.String(),
		LaTeX: "F(x, y, t) = " + ex.LaTeX() + " = 0",
		Vars:  ex.Vars(),
	})
}

type frameResponse struct {
	Index    int               `json:"index"`
	T        float64           `json:"t"`
	Error    string            `json:"error,omitempty"`
	Rows     int               `json:"rows,omitempty"`
	Cols     int               `json:"cols,omitempty"`
	Complex  int               `json:"complex"`
	Range    *[2]float64       `json:"range,omitempty"`
	NoCurve  bool              `json:"no_curve"`
	Hint     string            `json:"hint,omitempty"`
	Zero     []plot.Polyline   `json:"zero"`
	Metrics  *plot.Metrics     `json:"metrics,omitempty"`
	Context  []plot.ContourSet `json:"context,omitempty"`
	Duration float64           `json:"duration_seconds"`
}

func (s *Server) describe(p *plot.Plot, elapsed time.Duration) frameResponse {
	resp := frameResponse{
		T:        p.Field.T,
		Rows:     p.Field.Grid.Rows,
		Cols:     p.Field.Grid.Cols,
		Complex:  p.Field.Complex,
		NoCurve:  p.NoCurve(),
		Zero:     p.Zero,
		Context:  p.Context,
		Duration: elapsed.Seconds(),
	}
	if p.Field.Finite > 0 {
		lo, hi := p.Field.Range()
		resp.Range = &[2]float64{lo, hi}
	}
	if resp.Zero == nil {
		resp.Zero = []plot.Polyline{}
	}
	if p.NoCurve() {
		resp.Hint = plot.NoCurveHint
	} else {
		m := plot.Summarize(p.Primary())
		resp.Metrics = &m
	}
	return resp
}

func (s *Server) observe(p *plot.Plot, err error, elapsed time.Duration) {
	s.metrics.frameSeconds.Observe(elapsed.Seconds())
	switch {
	case err != nil:
		s.metrics.frames.WithLabelValues(outcomeError).Inc()
	case p.NoCurve():
		s.metrics.frames.WithLabelValues(outcomeNoCurve).Inc()
	default:
		s.metrics.frames.WithLabelValues(outcomeCurve).Inc()
	}
}

func (s *Server) plot(w http.ResponseWriter, r *http.Request) {
	q := plotQuery{
		Domain:     s.cfg.Domain,
		Resolution: s.cfg.Resolution,
		T:          s.cfg.Parameter.Initial(),
	}
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.checkResolution(q.Resolution); err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if pr := s.cfg.Parameter; !pr.Contains(q.T) {
		err := &plot.DomainError{Field: "t", Msg: fmt.Sprintf("must be within [%g, %g]", pr.Min, pr.Max)}
		writeError(w, statusOf(err), err.Error())
		return
	}
	var levels []float64
	if q.Context {
		levels = s.cfg.Levels.Static
	}
	start := time.Now()
	p, err := sessionFrom(r).Plot(q.Domain, q.Resolution, q.T, levels)
	elapsed := time.Since(start)
	if err != nil {
		if statusOf(err) == http.StatusUnprocessableEntity {
			s.observe(nil, err, elapsed)
		}
		writeError(w, statusOf(err), err.Error())
		return
	}
	s.observe(p, nil, elapsed)
	writeJSON(w, http.StatusOK, s.describe(p, elapsed))
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var b bytes.Buffer
	name, err := sessionFrom(r).Export(&b)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(b.Bytes())
}

func (s *Server) frames(w http.ResponseWriter, r *http.Request) {
	q := framesQuery{
		Domain:         s.cfg.Domain,
		ParameterRange: s.cfg.Parameter,
		Resolution:     s.cfg.Resolution,
	}
	if err := decodeQuery(r.URL.Query(), &q); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.checkResolution(q.Resolution); err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	if err := q.ParameterRange.Validate(); err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	prog, err := sessionFrom(r).Program()
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	g, err := plot.NewGrid(q.Domain, q.Resolution)
	if err != nil {
		writeError(w, statusOf(err), err.Error())
		return
	}
	var levels []float64
	if q.Context {
		levels = s.cfg.Levels.Animation
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)
	ctx := r.Context()
	last := time.Now()
	err = plot.Animate(prog, g, q.ParameterRange, plot.AnimateOptions{Levels: levels}, func(f *plot.Frame) bool {
		elapsed := time.Since(last)
		s.observe(f.Plot, f.Err, elapsed)
		var resp frameResponse
		if f.Err != nil {
			resp = frameResponse{T: f.T, Error: f.Err.Error(), Zero: []plot.Polyline{}}
		} else {
			resp = s.describe(f.Plot, elapsed)
		}
		resp.Index = f.Index
		if err := enc.Encode(resp); err != nil {
			s.log.Info("frame stream closed", zap.Error(err))
			return false
		}
		if flusher != nil {
			flusher.Flush()
		}
		last = time.Now()
		return ctx.Err() == nil
	})
	if err != nil {
		// The range was validated above.
		s.log.Error("sweep failed", zap.Error(err))
	}
}

type exampleResponse struct {
	Name     string `json:"name"`
	Equation string `json:"equation"`
}

func (s *Server) examples(w http.ResponseWriter, r *http.Request) {
	resp := make([]exampleResponse, 0, len(render.Examples))
	for _, e := range render.Examples {
		resp = append(resp, exampleResponse(e))
	}
	writeJSON(w, http.StatusOK, resp)
}
