package session

import (
	"context"
	"sync"
	"time"

	"churnscope/domain/dataset"
	"churnscope/domain/filter"
	"churnscope/internal"
	"churnscope/internal/analysis"
	"churnscope/internal/errors"
)

// Snapshot is the complete output of one recomputation pass: KPIs plus
// every chart payload keyed by its stable identifier, together with
// enough metadata for the presentation layer to label what it shows.
// Snapshots are always consistent with the filter set that produced them;
// nothing is cached across filter changes.
type Snapshot struct {
	DatasetID       string                 `json:"dataset_id"`
	SourceFile      string                 `json:"source_file"`
	GeneratedAt     time.Time              `json:"generated_at"`
	TotalRecords    int                    `json:"total_records"`
	FilteredRecords int                    `json:"filtered_records"`
	EmptyResult     bool                   `json:"empty_result"`
	Filters         filter.Set             `json:"filters"`
	KPIs            analysis.KPISet        `json:"kpis"`
	Charts          map[string]interface{} `json:"charts"`
}

// DatasetInfo describes the loaded dataset to the presentation layer so
// it can build its filter controls: category inventories for the
// multi-selects, observed ranges for the sliders.
type DatasetInfo struct {
	ID         string                          `json:"id"`
	SourceFile string                          `json:"source_file"`
	LoadedAt   time.Time                       `json:"loaded_at"`
	Records    int                             `json:"records"`
	Categories map[string][]string             `json:"categories"`
	Ranges     map[string]dataset.NumericRange `json:"ranges"`
}

// Session owns the single in-memory dataset and filter state of one
// interactive session. The dataset is only ever replaced atomically on a
// new upload, never mutated, and every derived view is recomputed from
// scratch per pass — the one RWMutex here is all the locking the system
// needs.
type Session struct {
	mu      sync.RWMutex
	dataset *dataset.Dataset
	filters filter.Set

	engine  *analysis.FilterEngine
	metrics *analysis.MetricsAggregator
	charts  *analysis.ChartDataBuilder
}

// New creates an empty session with the configured histogram bin count.
func New(histogramBins int) *Session {
	return &Session{
		filters: filter.AcceptAll(),
		engine:  analysis.NewFilterEngine(),
		metrics: analysis.NewMetricsAggregator(),
		charts:  analysis.NewChartDataBuilder(histogramBins),
	}
}

// Load swaps in a freshly validated dataset and resets filters to
// accept-all, so the first render never hits the empty-selection trap.
func (s *Session) Load(d *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dataset = d
	s.filters = filter.AcceptAll()
	internal.DefaultLogger.Info("[Session] dataset %s loaded (%d records), filters reset", d.ID, d.Size())
}

// HasDataset reports whether a validated dataset is loaded.
func (s *Session) HasDataset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset != nil
}

// Info returns dataset metadata for building filter controls.
func (s *Session) Info() (*DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dataset == nil {
		return nil, errors.NoDataset()
	}
	return &DatasetInfo{
		ID:         s.dataset.ID,
		SourceFile: s.dataset.SourceFile,
		LoadedAt:   s.dataset.LoadedAt,
		Records:    s.dataset.Size(),
		Categories: s.dataset.Categories,
		Ranges:     s.dataset.Ranges,
	}, nil
}

// SetFilters validates and stores a new filter set.
func (s *Session) SetFilters(fs filter.Set) error {
	if err := fs.Validate(); err != nil {
		return errors.InvalidInput(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dataset == nil {
		return errors.NoDataset()
	}
	s.filters = fs
	return nil
}

// ResetFilters restores the accept-all default.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filter.AcceptAll()
}

// Filters returns the current filter set.
func (s *Session) Filters() filter.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Recompute runs one full synchronous pass — filter, KPIs, every chart —
// and returns the resulting snapshot.
func (s *Session) Recompute(ctx context.Context, opts analysis.ChartOptions) (*Snapshot, error) {
	s.mu.RLock()
	d := s.dataset
	fs := s.filters
	s.mu.RUnlock()

	if d == nil {
		return nil, errors.NoDataset()
	}

	passStart := time.Now()
	view, err := s.engine.Apply(d, fs)
	if err != nil {
		return nil, err
	}

	kpis := s.metrics.Compute(view)
	charts, err := s.charts.BuildAll(ctx, view, opts)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		DatasetID:       d.ID,
		SourceFile:      d.SourceFile,
		GeneratedAt:     time.Now(),
		TotalRecords:    d.Size(),
		FilteredRecords: view.Size(),
		EmptyResult:     view.Size() == 0,
		Filters:         fs,
		KPIs:            kpis,
		Charts:          charts,
	}
	internal.DefaultLogger.Debug("[Session] recompute pass done in %.2fms (%d/%d records)",
		float64(time.Since(passStart).Nanoseconds())/1e6, view.Size(), d.Size())
	return snapshot, nil
}

// KPIs runs the filter and metrics stages only.
func (s *Session) KPIs(ctx context.Context) (*analysis.KPISet, error) {
	s.mu.RLock()
	d := s.dataset
	fs := s.filters
	s.mu.RUnlock()

	if d == nil {
		return nil, errors.NoDataset()
	}
	view, err := s.engine.Apply(d, fs)
	if err != nil {
		return nil, err
	}
	kpis := s.metrics.Compute(view)
	return &kpis, nil
}
