package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zephyrtronium/implicit/internal/config"
	"github.com/zephyrtronium/implicit/plot"
)

type harness struct {
	t   *testing.T
	srv *Server
	h   http.Handler
}

func newHarness(t *testing.T) *harness {
	cfg := config.Default()
	srv := New(cfg, zaptest.NewLogger(t))
	return &harness{t: t, srv: srv, h: srv.Handler()}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.h.ServeHTTP(w, req)
	return w
}

func (h *harness) session() string {
	h.t.Helper()
	w := h.do(http.MethodPost, "/sessions", "")
	require.Equal(h.t, http.StatusCreated, w.Code)
	var resp sessionResponse
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &resp))
	_, err := uuid.Parse(resp.ID)
	require.NoError(h.t, err)
	return "/sessions/" + resp.ID
}

func (h *harness) validate(path, eq string) *httptest.ResponseRecorder {
	h.t.Helper()
	b, err := json.Marshal(validateRequest{Equation: eq})
	require.NoError(h.t, err)
	return h.do(http.MethodPost, path+"/validate", string(b))
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}

func TestUnknownSession(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{"/sessions/nope/plot", "/sessions/" + uuid.NewString() + "/plot"} {
		w := h.do(http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
}

func TestValidate(t *testing.T) {
	h := newHarness(t)
	s := h.session()

	w := h.validate(s, "x^2 + y^2 = 25")
	require.Equal(t, http.StatusOK, w.Code)
	var resp validateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Equal(t, []string{"x", "y"}, resp.Vars)
	assert.Equal(t, "F(x, y, t) = x^{2} + y^{2} - 25 = 0", resp.LaTeX)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.srv.metrics.validations.WithLabelValues("valid")))

	cases := []struct {
		eq   string
		code int
	}{
		{"", http.StatusBadRequest},
		{"x + q", http.StatusBadRequest},
		{"(x", http.StatusBadRequest},
	}
	for _, c := range cases {
		w := h.validate(s, c.eq)
		assert.Equal(t, c.code, w.Code, c.eq)
		var e errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		assert.NotEmpty(t, e.Error)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(h.srv.metrics.validations.WithLabelValues("empty")))
	assert.Equal(t, 2.0, testutil.ToFloat64(h.srv.metrics.validations.WithLabelValues("invalid")))

	w = h.do(http.MethodPost, s+"/validate", "{")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlot(t *testing.T) {
	h := newHarness(t)
	s := h.session()

	w := h.do(http.MethodGet, s+"/plot", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusOK, h.validate(s, "x^2 + y^2 - t^2").Code)
	q := url.Values{"t": {"5"}, "resolution": {"200"}, "context": {"true"}}
	w = h.do(http.MethodGet, s+"/plot?"+q.Encode(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp frameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 5.0, resp.T)
	assert.Equal(t, 200, resp.Cols)
	assert.Equal(t, 200, resp.Rows)
	assert.False(t, resp.NoCurve)
	require.Len(t, resp.Zero, 1)
	require.NotNil(t, resp.Metrics)
	assert.InDelta(t, 5, resp.Metrics.XMax, 0.1)
	assert.Len(t, resp.Context, len(plot.StaticLevels))
	assert.Equal(t, 1.0, testutil.ToFloat64(h.srv.metrics.frames.WithLabelValues(outcomeCurve)))

	w = h.do(http.MethodGet, s+"/plot?t=0&x_min=20", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodGet, s+"/plot?resolution=250", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodGet, s+"/plot?t=10.5", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodGet, s+"/plot?t=five", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodGet, s+"/plot?u=1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlotNoCurve(t *testing.T) {
	h := newHarness(t)
	s := h.session()
	require.Equal(t, http.StatusOK, h.validate(s, "x^2 + y^2 + 1").Code)
	w := h.do(http.MethodGet, s+"/plot?resolution=100", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp frameResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.NoCurve)
	assert.Equal(t, plot.NoCurveHint, resp.Hint)
	assert.Empty(t, resp.Zero)
	assert.Nil(t, resp.Metrics)

	w = h.do(http.MethodGet, s+"/export.csv", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	// Undefined at every point is still a plot with no curve.
	require.Equal(t, http.StatusOK, h.validate(s, "y = sqrt(-1 - x^2)").Code)
	w = h.do(http.MethodGet, s+"/plot?resolution=100", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = frameResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.NoCurve)
	assert.Nil(t, resp.Range)
}

func TestPlotUnevaluable(t *testing.T) {
	h := newHarness(t)
	s := h.session()
	require.Equal(t, http.StatusOK, h.validate(s, "1/0").Code)
	w := h.do(http.MethodGet, s+"/plot?resolution=100", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.srv.metrics.frames.WithLabelValues(outcomeError)))
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	s := h.session()
	require.Equal(t, http.StatusOK, h.validate(s, "x^2 + y^2 = t^2").Code)
	require.Equal(t, http.StatusOK, h.do(http.MethodGet, s+"/plot?t=2.5&resolution=100", "").Code)

	w := h.do(http.MethodGet, s+"/export.csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="curve_t=2.50.csv"`, w.Header().Get("Content-Disposition"))
	p, err := plot.ReadCSV(w.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, p)
	assert.True(t, p.Closed())
}

func TestFrames(t *testing.T) {
	h := newHarness(t)
	s := h.session()
	require.Equal(t, http.StatusOK, h.validate(s, "y + 1/(t - 1)^2").Code)
	q := url.Values{"t_min": {"0"}, "t_max": {"2"}, "t_step": {"0.5"}, "resolution": {"100"}}
	w := h.do(http.MethodGet, s+"/frames?"+q.Encode(), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/x-ndjson", w.Header().Get("Content-Type"))

	var frames []frameResponse
	sc := bufio.NewScanner(w.Body)
	sc.Buffer(nil, 1<<24)
	for sc.Scan() {
		var f frameResponse
		require.NoError(t, json.Unmarshal(sc.Bytes(), &f))
		frames = append(frames, f)
	}
	require.NoError(t, sc.Err())
	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
		assert.InDelta(t, 0.5*float64(i), f.T, 1e-12)
	}
	assert.NotEmpty(t, frames[2].Error)
	assert.Empty(t, frames[0].Error)
	assert.False(t, frames[0].NoCurve)
}

func TestFramesErrors(t *testing.T) {
	h := newHarness(t)
	s := h.session()
	w := h.do(http.MethodGet, s+"/frames", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, http.StatusOK, h.validate(s, "x - t").Code)
	w = h.do(http.MethodGet, s+"/frames?t_min=1&t_max=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = h.do(http.MethodGet, s+"/frames?t_step=0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetAndDelete(t *testing.T) {
	h := newHarness(t)
	s := h.session()
	require.Equal(t, http.StatusOK, h.validate(s, "x = y").Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodPost, s+"/reset", "").Code)
	assert.Equal(t, http.StatusConflict, h.do(http.MethodGet, s+"/plot", "").Code)
	assert.Equal(t, http.StatusNoContent, h.do(http.MethodDelete, s, "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, s+"/plot", "").Code)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.srv.metrics.sessions))
}

func TestSessionEviction(t *testing.T) {
	cfg := config.Default()
	cfg.Server.MaxSessions = 2
	srv := New(cfg, zaptest.NewLogger(t))
	h := &harness{t: t, srv: srv, h: srv.Handler()}
	first := h.session()
	h.session()
	h.session()
	assert.Equal(t, 2, srv.sessions.len())
	assert.Equal(t, http.StatusNotFound, h.validate(first, "x").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.session()
	w := h.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "implicit_sessions 1")
}

func TestExamples(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/examples", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp []exampleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp)
}

func TestListenAndServe(t *testing.T) {
	srv := New(config.Default(), zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, srv.ListenAndServe(ctx, "127.0.0.1:0"))
	assert.Error(t, srv.ListenAndServe(context.Background(), "127.0.0.1:no-port"))
}
