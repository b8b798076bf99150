package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scalebar-service/internal/config"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.UploadDir = t.TempDir()
	cfg.OutputDir = t.TempDir()
	return newRouter(cfg)
}

func doJSON(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestScalebarEndpoint(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		name    string
		query   string
		label   string
		width   float64
		visible bool
	}{
		{"kilometers", "width=204&resolution=10", "2 km", 200, true},
		{"meters", "width=154&resolution=3", "300 m", 100, true},
		{"always fit", "width=154&resolution=3&fit=true", "500 m", 500.0 / 450 * 150, true},
		{"imperial", "width=104&resolution=120&unit=ft&system=imperial", "2 mi", 88, true},
		{"unit selects system", "width=104&resolution=120&unit=ft", "2 mi", 88, true},
		{"explicit system wins over unit", "width=204&resolution=32.8084&unit=ft&system=metric", "2 km", 2000 / (200 * 32.8084 * 0.3048) * 200, true},
		{"dual unit follows system", "width=104&resolution=120&unit=ft&system=imperial&style=dual-unit-line", "2 mi", 88, true},
		{"fit overflow", "width=1.5e306&resolution=100&fit=true", "", 0, false},
		{"missing resolution", "width=100", "", 0, false},
		{"zero width", "width=0&resolution=10", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/scalebar?"+tt.query, nil)
			w, body := doJSON(t, r, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.label, body["label"])
			assert.InDelta(t, tt.width, body["render_width"], 1e-9)
			assert.Equal(t, tt.visible, body["visible"])
		})
	}
}

func TestScalebarEndpointMatchesLayout(t *testing.T) {
	r := testRouter(t)
	for _, q := range []string{
		"width=200&resolution=10",
		"width=150&resolution=3&fit=true",
		"width=300&resolution=7&style=alternating-bar",
		"width=300&resolution=7&style=graduated-line&align=right",
		"width=250&resolution=3&style=bar&fit=true",
	} {
		w, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/scalebar?"+q, nil))
		require.Equal(t, http.StatusOK, w.Code, q)
		layout := body["layout"].(map[string]interface{})
		result := layout["result"].(map[string]interface{})
		assert.Equal(t, result["label"], body["label"], q)
		assert.Equal(t, result["render_width"], body["render_width"], q)
		assert.Equal(t, layout["width"], body["render_width"], q)
	}
}

func TestScalebarEndpointRejectsBadInput(t *testing.T) {
	r := testRouter(t)
	for _, q := range []string{"width=abc", "resolution=x", "unit=furlong", "system=nautical", "style=ruler", "align=top", "fit=maybe"} {
		req := httptest.NewRequest(http.MethodGet, "/scalebar?"+q, nil)
		w, body := doJSON(t, r, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, false, body["ok"], q)
	}
}

func TestZoomScalebarEndpoint(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/scalebar/zoom?lat=0&lon=0&zoom=12&width=104&style=alternating-bar", nil)
	w, body := doJSON(t, r, req)
	require.Equal(t, http.StatusOK, w.Code)
	// Segmented styles round 3818 m up.
	assert.Equal(t, "5 km", body["label"])
	assert.InDelta(t, 38.18, body["resolution"], 0.01)

	layout, ok := body["layout"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "alternating-bar", layout["style"])

	req = httptest.NewRequest(http.MethodGet, "/scalebar/zoom?zoom=far", nil)
	w, _ = doJSON(t, r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExtentScalebarEndpoint(t *testing.T) {
	r := testRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/scalebar/extent?minlon=0&minlat=-1&maxlon=1&maxlat=1&width=104", nil)
	w, body := doJSON(t, r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.InDelta(t, 111194.93/104, body["resolution"], 0.01)
	assert.Equal(t, "100 km", body["label"])
	assert.InDelta(t, 100000/(111194.93/104*100)*100, body["render_width"], 1e-3)

	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"missing corner", "minlon=0&minlat=-1&maxlon=1", http.StatusBadRequest},
		{"bad corner", "minlon=0&minlat=-1&maxlon=east&maxlat=1", http.StatusBadRequest},
		{"empty extent", "minlon=1&minlat=-1&maxlon=1&maxlat=1", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/scalebar/extent?"+tt.query, nil))
			assert.Equal(t, tt.code, w.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, false, body["visible"])
			}
		})
	}
}

func TestViewTracksChanges(t *testing.T) {
	r := testRouter(t)

	w, body := doJSON(t, r, httptest.NewRequest(http.MethodPost, "/view?width=200&resolution=10", nil))
	require.Equal(t, http.StatusOK, w.Code, body)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	viewID := body["view_id"]
	require.NotEmpty(t, viewID)
	assert.Equal(t, true, body["changed"])
	assert.EqualValues(t, 1, body["revision"])
	assert.Equal(t, "2 km", body["result"].(map[string]interface{})["label"])

	steps := []struct {
		name     string
		query    string
		label    string
		changed  bool
		revision float64
	}{
		{"label unchanged", "width=201", "2 km", true, 2},
		{"identical inputs", "width=201", "2 km", false, 2},
		{"resolution", "resolution=3&width=150", "300 m", true, 3},
		{"system", "system=imperial", "1,000 ft", true, 4},
		{"fit", "fit=true", "2,000 ft", true, 5},
	}
	for _, st := range steps {
		req := httptest.NewRequest(http.MethodPost, "/view?"+st.query, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w, body := doJSON(t, r, req)
		require.Equal(t, http.StatusOK, w.Code, st.name)
		assert.Equal(t, viewID, body["view_id"], st.name)
		assert.Equal(t, st.label, body["result"].(map[string]interface{})["label"], st.name)
		assert.Equal(t, st.changed, body["changed"], st.name)
		assert.EqualValues(t, st.revision, body["revision"], st.name)
	}

	req := httptest.NewRequest(http.MethodPost, "/view?width=abc", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w, _ = doJSON(t, r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/view", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w, _ = doJSON(t, r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	_, ok := GetView(viewID.(string))
	assert.False(t, ok)
}

func TestPreferencesPersistInSession(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader(`{"system":"imperial","style":"bar"}`))
	req.Header.Set("Content-Type", "application/json")
	w, body := doJSON(t, r, req)
	require.Equal(t, http.StatusOK, w.Code, body)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req = httptest.NewRequest(http.MethodGet, "/scalebar?width=104&resolution=120&unit=ft", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	_, body = doJSON(t, r, req)
	assert.Equal(t, "2 mi", body["label"])
	layout := body["layout"].(map[string]interface{})
	assert.Equal(t, "bar", layout["style"])

	req = httptest.NewRequest(http.MethodPost, "/preferences", strings.NewReader(`{"style":"ruler"}`))
	req.Header.Set("Content-Type", "application/json")
	w, _ = doJSON(t, r, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportJob(t *testing.T) {
	r := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader("lat=41&lon=29&width=250"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w, body := doJSON(t, r, req)
	require.Equal(t, http.StatusAccepted, w.Code, body)
	jobID, _ := body["job_id"].(string)
	require.NotEmpty(t, jobID)

	var status map[string]interface{}
	require.Eventually(t, func() bool {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status?job_id="+jobID, nil))
		status = nil
		if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
			return false
		}
		return status["status"] == string(StatusDone) || status["status"] == string(StatusError)
	}, 10*time.Second, 20*time.Millisecond)
	require.Equal(t, string(StatusDone), status["status"], status["error"])

	result := status["result"].(map[string]interface{})
	assert.EqualValues(t, 21, result["rows"])

	_, logs := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/logs?job_id="+jobID, nil))
	assert.NotEmpty(t, logs["logs"])
	assert.EqualValues(t, 100, logs["progress"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download-result/"+result["filename"].(string), nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotZero(t, w.Body.Len())
}

func TestUnknownJob(t *testing.T) {
	r := testRouter(t)
	for _, path := range []string{"/status?job_id=nope", "/logs?job_id=nope"} {
		w, _ := doJSON(t, r, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
	}
	w, _ := doJSON(t, r, httptest.NewRequest(http.MethodPost, "/cancel?job_id=nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, r, httptest.NewRequest(http.MethodGet, "/download-result/missing.xlsx", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadTemplate(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download-template", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "viewpoints_template.xlsx")
}
