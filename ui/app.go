package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"churnscope/adapters/ingest"
	"churnscope/internal"
	"churnscope/internal/errors"
	"churnscope/internal/session"
)

// App is the headless JSON API: the same session and endpoints as the
// dashboard server, minus the findings report, for clients that bring
// their own presentation.
type App struct {
	router         *chi.Mux
	session        *session.Session
	validator      *ingest.SchemaValidator
	maxUploadBytes int64
}

// NewApp creates the headless API around a session.
func NewApp(sess *session.Session, maxUploadMB int) *App {
	a := &App{
		router:         chi.NewRouter(),
		session:        sess,
		validator:      ingest.NewSchemaValidator(),
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Post("/api/dataset/upload", a.handleUpload)
	a.router.Get("/api/dataset/info", a.handleDatasetInfo)
	a.router.Put("/api/filters", a.handleSetFilters)
	a.router.Delete("/api/filters", a.handleResetFilters)
	a.router.Get("/api/dashboard", a.handleDashboard)
	a.router.Get("/api/kpis", a.handleKPIs)
	a.router.Get("/healthz", a.handleHealth)
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	log.Printf("Starting ChurnScope API on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// Router exposes the handler for tests.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	table, err := ingest.NewDataReader(header.Filename).Read(file)
	if err != nil {
		a.writeError(w, errors.InvalidInput(err.Error()))
		return
	}

	d, err := a.validator.Validate(table, header.Filename)
	if err != nil {
		a.writeError(w, err)
		return
	}

	a.session.Load(d)
	info, _ := a.session.Info()
	a.writeJSON(w, http.StatusCreated, info)
}

func (a *App) handleDatasetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := a.session.Info()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, info)
}

func (a *App) handleSetFilters(w http.ResponseWriter, r *http.Request) {
	fs, err := decodeFilterSet(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.session.SetFilters(fs); err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"filters": fs,
		"active":  fs.ActiveCount(),
	})
}

func (a *App) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	a.session.ResetFilters()
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"filters": a.session.Filters(),
		"active":  0,
	})
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.session.Recompute(r.Context(), chartOptionsFromQuery(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, snapshot)
}

func (a *App) handleKPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := a.session.KPIs(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, kpis)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"dataset_loaded": a.session.HasDataset(),
	})
}

func (a *App) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		internal.DefaultLogger.Error("[App] failed to encode response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		internal.DefaultLogger.Error("[App] unexpected error: %v", err)
		a.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"code":  errors.CodeInternalError,
			"error": "internal error",
		})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case errors.CodeSchemaError:
		status = http.StatusUnprocessableEntity
	case errors.CodeNoDataset:
		status = http.StatusConflict
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}

	body := map[string]interface{}{"code": appErr.Code, "error": appErr.Message}
	if len(appErr.Columns) > 0 {
		body["columns"] = appErr.Columns
	}
	a.writeJSON(w, status, body)
}
