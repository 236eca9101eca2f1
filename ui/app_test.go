package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/internal/session"
)

// The headless API shares its handlers' semantics with the dashboard
// server; these tests pin the chi surface specifically.

func newTestApp() *App {
	return NewApp(session.New(20), 16)
}

func TestApp_UploadRoundtrip(t *testing.T) {
	app := newTestApp()

	rec := do(app.Router(), uploadRequest(t, "telco.csv", telcoCSV))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(app.Router(), httptest.NewRequest(http.MethodGet, "/api/dataset/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode(t, rec)
	assert.Equal(t, float64(5), info["records"])

	categories, ok := info["categories"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, categories, "Contract")
	ranges, ok := info["ranges"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, ranges, "tenure")
}

func TestApp_FiltersAndDashboard(t *testing.T) {
	app := newTestApp()
	do(app.Router(), uploadRequest(t, "telco.csv", telcoCSV))

	req := httptest.NewRequest(http.MethodPut, "/api/filters",
		strings.NewReader(`{"numeric":{"tenure":{"min":0,"max":10}}}`))
	rec := do(app.Router(), req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(app.Router(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decode(t, rec)
	assert.Equal(t, float64(3), snap["filtered_records"])
	assert.Equal(t, float64(5), snap["total_records"])
}

func TestApp_ErrorStatuses(t *testing.T) {
	app := newTestApp()

	rec := do(app.Router(), httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_DATASET", decode(t, rec)["code"])

	broken := strings.ReplaceAll(telcoCSV, "tenure,", "months,")
	rec = do(app.Router(), uploadRequest(t, "telco.csv", broken))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["columns"], "tenure")
}

func TestApp_Health(t *testing.T) {
	app := newTestApp()

	rec := do(app.Router(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["dataset_loaded"])
}
