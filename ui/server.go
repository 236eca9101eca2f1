package ui

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"churnscope/adapters/ingest"
	"churnscope/internal"
	"churnscope/internal/analysis"
	"churnscope/internal/errors"
	"churnscope/internal/report"
	"churnscope/internal/session"
)

// Server is the dashboard-facing HTTP surface. Every response is derived
// from a fresh recomputation pass over the session; the server holds no
// derived state of its own.
type Server struct {
	router         *gin.Engine
	session        *session.Session
	validator      *ingest.SchemaValidator
	findings       *report.FindingsBuilder
	maxUploadBytes int64
}

// NewServer creates a new dashboard server around a session.
func NewServer(sess *session.Session, maxUploadMB int) *Server {
	s := &Server{
		router:         gin.Default(),
		session:        sess,
		validator:      ingest.NewSchemaValidator(),
		findings:       report.NewFindingsBuilder(),
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.MaxMultipartMemory = s.maxUploadBytes

	s.router.POST("/api/dataset/upload", s.handleUpload)
	s.router.GET("/api/dataset/info", s.handleDatasetInfo)

	s.router.PUT("/api/filters", s.handleSetFilters)
	s.router.DELETE("/api/filters", s.handleResetFilters)

	s.router.GET("/api/dashboard", s.handleDashboard)
	s.router.GET("/api/kpis", s.handleKPIs)
	s.router.GET("/api/charts/:id", s.handleChart)

	s.router.GET("/report", s.handleReport)
	s.router.GET("/healthz", s.handleHealth)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting ChurnScope dashboard on http://%s", addr)
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// handleUpload accepts a multipart CSV/XLSX upload, validates it against
// the schema and atomically replaces the session dataset. On a schema
// error nothing is loaded and the offending columns are returned.
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, errors.InvalidInput("multipart field \"file\" is required"))
		return
	}
	if fileHeader.Size > s.maxUploadBytes {
		s.writeError(c, errors.InvalidInput("uploaded file exceeds the size limit"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		s.writeError(c, errors.Wrap(err, "failed to open uploaded file"))
		return
	}
	defer file.Close()

	table, err := ingest.NewDataReader(fileHeader.Filename).Read(file)
	if err != nil {
		s.writeError(c, errors.InvalidInput(err.Error()))
		return
	}

	d, err := s.validator.Validate(table, fileHeader.Filename)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.session.Load(d)
	info, _ := s.session.Info()
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleDatasetInfo(c *gin.Context) {
	info, err := s.session.Info()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleSetFilters(c *gin.Context) {
	fs, err := decodeFilterSet(c.Request)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.session.SetFilters(fs); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": fs, "active": fs.ActiveCount()})
}

func (s *Server) handleResetFilters(c *gin.Context) {
	s.session.ResetFilters()
	c.JSON(http.StatusOK, gin.H{"filters": s.session.Filters(), "active": 0})
}

// handleDashboard runs one full recomputation pass and returns the
// snapshot: KPIs plus every chart payload keyed by stable identifier.
func (s *Server) handleDashboard(c *gin.Context) {
	opts := chartOptionsFromQuery(c.Request)
	snapshot, err := s.session.Recompute(c.Request.Context(), opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) handleKPIs(c *gin.Context) {
	kpis, err := s.session.KPIs(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

// handleChart returns a single chart payload by its stable identifier.
// The pass still recomputes everything; partial recomputation is not a
// tradeoff worth taking at these dataset sizes.
func (s *Server) handleChart(c *gin.Context) {
	chartID := c.Param("id")
	opts := chartOptionsFromQuery(c.Request)
	snapshot, err := s.session.Recompute(c.Request.Context(), opts)
	if err != nil {
		s.writeError(c, err)
		return
	}
	payload, ok := snapshot.Charts[chartID]
	if !ok {
		s.writeError(c, errors.InvalidInput("unknown chart identifier: "+chartID))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chart_id":     chartID,
		"empty_result": snapshot.EmptyResult,
		"data":         payload,
	})
}

func (s *Server) handleReport(c *gin.Context) {
	snapshot, err := s.session.Recompute(c.Request.Context(), analysis.DefaultChartOptions())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.findings.HTML(snapshot))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"dataset_loaded": s.session.HasDataset(),
	})
}

// writeError maps application error codes onto HTTP statuses.
func (s *Server) writeError(c *gin.Context, err error) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		internal.DefaultLogger.Error("[Server] unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": errors.CodeInternalError, "error": "internal error"})
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

	body := gin.H{"code": appErr.Code, "error": appErr.Message}
	if len(appErr.Columns) > 0 {
		body["columns"] = appErr.Columns
	}
	c.JSON(status, body)
}
