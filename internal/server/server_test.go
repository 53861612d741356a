package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/KaramelBytes/healthscope/internal/display"
	"github.com/KaramelBytes/healthscope/internal/explorer"
	"github.com/KaramelBytes/healthscope/internal/logger"
)

func writeDataset(t *testing.T, header string, rows int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString(header + "\n")
	for i := 0; i < rows; i++ {
		country := "Chad"
		if i%2 == 1 {
			country = "Peru"
		}
		fmt.Fprintf(&b, "%s,%d,%.1f\n", country, 2000+i, float64(i)+0.5)
	}
	p := filepath.Join(t.TempDir(), "world_health_data.csv")
	require.NoError(t, os.WriteFile(p, []byte(b.String()), 0o644))
	return p
}

func newTestServer(t *testing.T, path string) (*Server, *explorer.Session) {
	t.Helper()
	opt := explorer.DefaultOptions()
	opt.Path = path
	s := explorer.New(opt, logger.Discard())
	var rec display.Recorder
	s.Run(context.Background(), &rec)
	return New(s, logger.Discard()), s
}

func do(t *testing.T, h http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) PageResponse {
	t.Helper()
	var resp PageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestIndexServesPage(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	w := do(t, srv.Handler(), http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "plotly")
	assert.Contains(t, w.Body.String(), "api/threshold")
}

func TestHealthReportsStage(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	w := do(t, srv.Handler(), http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "rendered", body["stage"])
}

func TestPageReplaysWholePage(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	w := do(t, srv.Handler(), http.MethodGet, "/api/page", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodePage(t, w)
	assert.Equal(t, "rendered", resp.Stage)
	require.NotNil(t, resp.Filter)
	assert.Equal(t, "numeric_col", resp.Filter.Column)
	assert.InDelta(t, 10.0, resp.Filter.Value, 1e-9)
	require.NotEmpty(t, resp.Emissions)
	assert.Equal(t, display.KindText, resp.Emissions[0].Kind)
	assert.Equal(t, "# 🌍 Global Health Explorer", resp.Emissions[0].Text)
	assert.Equal(t, display.KindPlot, resp.Emissions[len(resp.Emissions)-1].Kind)
}

func TestThresholdChange(t *testing.T) {
	srv, s := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	w := do(t, srv.Handler(), http.MethodPost, "/api/threshold", `{"value": 15}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodePage(t, w)
	assert.Equal(t, "rendered", resp.Stage)
	require.NotNil(t, resp.Filter)
	assert.InDelta(t, 15.0, resp.Filter.Value, 1e-9)

	require.NotEmpty(t, resp.Emissions)
	assert.Equal(t, display.KindSlider, resp.Emissions[0].Kind)
	var texts []string
	for _, e := range resp.Emissions {
		if e.Kind == display.KindText {
			texts = append(texts, e.Text)
		}
	}
	assert.Contains(t, texts, "### Filtered View: numeric_col > 15.0")
	assert.Equal(t, 5, s.View().Rows())
}

func TestThresholdClampedToRange(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	w := do(t, srv.Handler(), http.MethodPost, "/api/threshold", `{"value": 1000}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodePage(t, w)
	require.NotNil(t, resp.Filter)
	assert.InDelta(t, 19.5, resp.Filter.Value, 1e-9)
}

func TestThresholdBadBody(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	for _, body := range []string{`not json`, `{}`, `{"value": "high"}`} {
		w := do(t, srv.Handler(), http.MethodPost, "/api/threshold", body, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		var e ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
		assert.NotEmpty(t, e.Error)
		assert.NotEmpty(t, e.RequestID)
	}
}

func TestThresholdConflictWhenNotFilterable(t *testing.T) {
	srv, s := newTestServer(t, filepath.Join(t.TempDir(), "missing.csv"))
	require.Equal(t, explorer.StageFailed, s.Stage())
	w := do(t, srv.Handler(), http.MethodPost, "/api/threshold", `{"value": 1}`, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	page := do(t, srv.Handler(), http.MethodGet, "/api/page", "", nil)
	require.Equal(t, http.StatusOK, page.Code)
	resp := decodePage(t, page)
	assert.Equal(t, "failed", resp.Stage)
	assert.Nil(t, resp.Filter)
	var texts []string
	for _, e := range resp.Emissions {
		texts = append(texts, e.Text)
	}
	assert.Contains(t, texts, "### ❌ Error loading or processing CSV")
}

func TestMsgpackNegotiation(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	for _, tc := range []struct {
		target string
		hdr    map[string]string
	}{
		{"/api/page", map[string]string{"Accept": "application/msgpack"}},
		{"/api/page?format=msgpack", nil},
	} {
		w := do(t, srv.Handler(), http.MethodGet, tc.target, "", tc.hdr)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, msgpackContentType, w.Header().Get("Content-Type"))
		var resp map[string]any
		require.NoError(t, msgpack.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp))
		assert.Equal(t, "rendered", resp["stage"])
		assert.NotEmpty(t, resp["emissions"])
	}
}

func TestRequestIDHeader(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))

	w := do(t, srv.Handler(), http.MethodGet, "/api/page", "", map[string]string{RequestIDHeader: "abc-123"})
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "abc-123", decodePage(t, w).RequestID)

	w = do(t, srv.Handler(), http.MethodGet, "/api/page", "", nil)
	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, decodePage(t, w).RequestID)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	w := do(t, srv.Handler(), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv.Handler(), http.MethodGet, "/api/threshold", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 20))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	require.NoError(t, <-done)
}

func TestPageWithInfiniteCell(t *testing.T) {
	p := filepath.Join(t.TempDir(), "inf.csv")
	require.NoError(t, os.WriteFile(p, []byte("country,year,v\nChad,2000,1\nPeru,2001,inf\nChad,2002,3\n"), 0o644))
	srv, _ := newTestServer(t, p)

	w := do(t, srv.Handler(), http.MethodGet, "/api/page", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodePage(t, w)
	require.NotNil(t, resp.Filter)
	assert.Equal(t, 1.0, resp.Filter.Min)
	assert.Equal(t, 3.0, resp.Filter.Max)
	assert.Equal(t, 2.0, resp.Filter.Value)
}

func TestEncodeFailureReturnsServerError(t *testing.T) {
	srv, _ := newTestServer(t, writeDataset(t, "country,year,numeric_col", 4))
	req := httptest.NewRequest(http.MethodGet, "/api/page", nil)
	w := httptest.NewRecorder()
	srv.write(w, req, http.StatusOK, map[string]float64{"x": math.Inf(1)})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	assert.Contains(t, e.Error, "encode response")
}
