package core

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/config"
	"github.com/JonMunkholm/ameliadesk/internal/logging"
)

// Service is the main entry point for import and export operations.
type Service struct {
	api     *client.Client
	cfg     config.ImportConfig
	limiter *ImportLimiter

	mu      sync.RWMutex
	reports map[string]*storedReport
}

// storedReport keeps a finished import long enough to download its errors.
type storedReport struct {
	report *ImportReport
	table  *Table
}

// NewService creates a service over an API client.
func NewService(api *client.Client, cfg config.ImportConfig) *Service {
	return &Service{
		api:     api,
		cfg:     cfg,
		limiter: NewImportLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime),
		reports: make(map[string]*storedReport),
	}
}

// Client returns the underlying API client.
func (s *Service) Client() *client.Client {
	return s.api
}

// Limiter returns the import limiter, for status and shutdown draining.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// TestConnection probes the upstream API.
func (s *Service) TestConnection(ctx context.Context) bool {
	return s.api.TestConnection(ctx)
}

// Resource returns a handle for a configured resource.
func (s *Service) Resource(name string) (*client.ResourceClient, error) {
	r, ok := s.api.Resource(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return r, nil
}

// DefaultBulkOptions returns the configured import defaults.
func (s *Service) DefaultBulkOptions() BulkOptions {
	return BulkOptions{
		SkipErrors: s.cfg.SkipErrors,
		BatchSize:  s.cfg.BatchSize,
		BatchDelay: s.cfg.BatchDelay,
	}
}

// ValidateUpload parses and validates an appointment file without
// submitting anything.
func (s *Service) ValidateUpload(data []byte) (*Table, ValidationResult, error) {
	if len(data) == 0 {
		return nil, ValidationResult{}, ErrNoFile
	}
	if s.cfg.MaxFileSize > 0 && int64(len(data)) > s.cfg.MaxFileSize {
		return nil, ValidationResult{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, len(data), s.cfg.MaxFileSize)
	}

	t, err := ParseRows(data)
	if err != nil {
		return nil, ValidationResult{}, err
	}
	return t, ValidateAppointments(t), nil
}

// ImportAppointments validates the whole file, then creates one appointment
// per row. A file that fails validation returns a *ValidationFailure and
// nothing is submitted.
func (s *Service) ImportAppointments(ctx context.Context, fileName string, data []byte, opts BulkOptions) (*ImportReport, error) {
	t, result, err := s.ValidateUpload(data)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, &ValidationFailure{Result: result}
	}
	if result.Rows == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrEmptyFile)
	}

	appointments, err := s.Resource("appointments")
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	id := uuid.NewString()
	caller := RequestInfoFrom(ctx)
	log := logging.WithFields(ctx,
		"import_id", id,
		"file", fileName,
		"rows", result.Rows,
		"dry_run", opts.DryRun,
		"client_ip", caller.ClientIP,
		"user_agent", caller.UserAgent,
	)
	log.Info("import started")

	submit := func(ctx context.Context, p AppointmentPayload) client.Result {
		return appointments.Create(ctx, p)
	}
	report := BulkImport(ctx, t, submit, opts)
	report.ID = id

	log.Info("import finished",
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"halted", report.Halted,
		"duration_ms", report.Elapsed.Milliseconds(),
	)

	s.mu.Lock()
	s.reports[id] = &storedReport{report: report, table: t}
	s.mu.Unlock()
	s.cleanup(id, s.cfg.ReportTTL)

	return report, nil
}

// CreateAppointment submits one appointment.
func (s *Service) CreateAppointment(ctx context.Context, p AppointmentPayload) (client.Result, error) {
	appointments, err := s.Resource("appointments")
	if err != nil {
		return client.Result{}, err
	}
	return appointments.Create(ctx, p), nil
}

// Report returns a finished import report.
func (s *Service) Report(id string) (*ImportReport, error) {
	s.mu.RLock()
	stored, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrReportNotFound
	}
	return stored.report, nil
}

// WriteErrorReport writes the failed rows of an import as CSV.
func (s *Service) WriteErrorReport(w io.Writer, id string) error {
	s.mu.RLock()
	stored, ok := s.reports[id]
	s.mu.RUnlock()
	if !ok {
		return ErrReportNotFound
	}
	return WriteErrorReport(w, stored.report, stored.table)
}

// cleanup removes the report from tracking after a delay.
func (s *Service) cleanup(id string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.reports, id)
		s.mu.Unlock()
	})
}

// ExportFilter narrows an export. From and To apply only to date-filtered
// exports; Params are passed to the list endpoint as-is.
type ExportFilter struct {
	From   time.Time
	To     time.Time
	Params url.Values
}

// ExportResult is a flattened export ready to be written as CSV.
type ExportResult struct {
	Export Export
	Rows   [][]string
}

// WriteCSV writes the export with its header.
func (r *ExportResult) WriteCSV(w io.Writer) error {
	return WriteCSV(w, r.Export.Columns, r.Rows)
}

// ListExports returns the registered exports.
func (s *Service) ListExports() []Export {
	return All()
}

// Export lists the export's resource and flattens the collection.
func (s *Service) Export(ctx context.Context, key string, f ExportFilter) (*ExportResult, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownExport, key)
	}
	res, err := s.Resource(def.Resource)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	for k, v := range f.Params {
		params[k] = v
	}
	if def.DateFiltered && !f.From.IsZero() && !f.To.IsZero() {
		params.Set("dates", client.DateRange(f.From, f.To))
	}

	result := res.List(ctx, params)
	if !result.OK() {
		return nil, fmt.Errorf("list %s: %w", def.Resource, result.Err)
	}
	items, ok := res.Items(result)
	if !ok {
		return nil, fmt.Errorf("%w: no collection at %q", ErrUnexpectedResponse, res.Definition().ListKey)
	}

	logging.FromContext(ctx).Debug("export built", "export", key, "items", len(items))
	return &ExportResult{Export: def, Rows: def.Flatten(items)}, nil
}
