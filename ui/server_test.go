package ui

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/internal/session"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

const telcoCSV = `Gender,SeniorCitizen,Partner,Dependents,tenure,InternetService,Contract,PaymentMethod,MonthlyCharges,Churn
Female,0,Yes,No,1,DSL,Month-to-month,Electronic check,29.85,No
Male,0,No,No,34,DSL,One year,Mailed check,56.95,No
Male,1,No,No,2,Fiber optic,Month-to-month,Electronic check,70.70,Yes
Female,0,Yes,Yes,45,No,Two year,Bank transfer (automatic),20.05,No
Male,0,No,No,8,Fiber optic,Month-to-month,Electronic check,99.65,Yes
`

func newTestServer() *Server {
	return NewServer(session.New(20), 16)
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestServer_UploadAndDashboard(t *testing.T) {
	srv := newTestServer()

	rec := do(srv.Router(), uploadRequest(t, "telco.csv", telcoCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	info := decode(t, rec)
	assert.Equal(t, float64(5), info["records"])
	assert.Equal(t, "telco.csv", info["source_file"])

	rec = do(srv.Router(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap := decode(t, rec)
	assert.Equal(t, float64(5), snap["total_records"])
	assert.Equal(t, float64(5), snap["filtered_records"])
	assert.Equal(t, false, snap["empty_result"])

	charts, ok := snap["charts"].(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, charts, 9)
	assert.Contains(t, charts, "churn_distribution")
	assert.Contains(t, charts, "correlation_matrix")

	kpis, ok := snap["kpis"].(map[string]interface{})
	require.True(t, ok)
	assert.InDelta(t, 40.0, kpis["churn_rate_pct"], 1e-9)
}

func TestServer_FilterLifecycle(t *testing.T) {
	srv := newTestServer()
	do(srv.Router(), uploadRequest(t, "telco.csv", telcoCSV))

	body := `{"categorical":{"Contract":["Month-to-month"]}}`
	req := httptest.NewRequest(http.MethodPut, "/api/filters", strings.NewReader(body))
	rec := do(srv.Router(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decode(t, rec)["active"])

	rec = do(srv.Router(), httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	kpis := decode(t, rec)
	assert.Equal(t, float64(3), kpis["total_customers"])
	assert.InDelta(t, 66.666, kpis["churn_rate_pct"], 0.01)

	rec = do(srv.Router(), httptest.NewRequest(http.MethodDelete, "/api/filters", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(srv.Router(), httptest.NewRequest(http.MethodGet, "/api/kpis", nil))
	assert.Equal(t, float64(5), decode(t, rec)["total_customers"])
}

func TestServer_SchemaErrorResponse(t *testing.T) {
	srv := newTestServer()
	broken := strings.ReplaceAll(telcoCSV, ",Churn", ",Outcome")

	rec := do(srv.Router(), uploadRequest(t, "telco.csv", broken))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "SCHEMA_ERROR", body["code"])
	assert.Contains(t, body["columns"], "Churn")

	// The failed upload must not have loaded anything.
	rec = do(srv.Router(), httptest.NewRequest(http.MethodGet, "/api/dataset/info", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_NoDatasetConflict(t *testing.T) {
	srv := newTestServer()
	for _, path := range []string{"/api/dashboard", "/api/kpis", "/api/dataset/info", "/report"} {
		rec := do(srv.Router(), httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusConflict, rec.Code, path)
	}
}

func TestServer_InvalidInputs(t *testing.T) {
	srv := newTestServer()
	do(srv.Router(), uploadRequest(t, "telco.csv", telcoCSV))

	tests := []struct {
		name string
		req  *http.Request
	}{
		{
			name: "malformed filter JSON",
			req:  httptest.NewRequest(http.MethodPut, "/api/filters", strings.NewReader(`{"categorical":`)),
		},
		{
			name: "unknown filter attribute",
			req:  httptest.NewRequest(http.MethodPut, "/api/filters", strings.NewReader(`{"categorical":{"TotalCharges":["x"]}}`)),
		},
		{
			name: "unknown chart id",
			req:  httptest.NewRequest(http.MethodGet, "/api/charts/nope", nil),
		},
		{
			name: "bad chart attribute",
			req:  httptest.NewRequest(http.MethodGet, "/api/dashboard?cat=tenure", nil),
		},
		{
			name: "identical heatmap axes",
			req:  httptest.NewRequest(http.MethodGet, "/api/dashboard?x=Contract&y=Contract", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(srv.Router(), tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "INVALID_INPUT", decode(t, rec)["code"])
		})
	}
}

func TestServer_SingleChart(t *testing.T) {
	srv := newTestServer()
	do(srv.Router(), uploadRequest(t, "telco.csv", telcoCSV))

	rec := do(srv.Router(), httptest.NewRequest(http.MethodGet, "/api/charts/tenure_cohorts", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "tenure_cohorts", body["chart_id"])
	assert.Equal(t, false, body["empty_result"])
	assert.NotNil(t, body["data"])
}

func TestServer_Report(t *testing.T) {
	srv := newTestServer()
	do(srv.Router(), uploadRequest(t, "telco.csv", telcoCSV))

	rec := do(srv.Router(), httptest.NewRequest(http.MethodGet, "/report", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Key Findings")
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer()

	rec := do(srv.Router(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["dataset_loaded"])

	do(srv.Router(), uploadRequest(t, "telco.csv", telcoCSV))
	rec = do(srv.Router(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, true, decode(t, rec)["dataset_loaded"])
}
