package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/config"
	"github.com/JonMunkholm/ameliadesk/internal/core"
	_ "github.com/JonMunkholm/ameliadesk/internal/core/exports"
)

const validCSV = "booking_start,service_id,provider_id,customer_id\n" +
	"2024-12-15 10:00,1,1,10\n" +
	"2024-12-15 11:00,1,1,11\n"

// upstream fakes the booking API.
type upstream struct {
	mu       sync.Mutex
	requests []string
	bodies   []map[string]any
	nextID   int
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, "/api/v1")

	u.mu.Lock()
	u.requests = append(u.requests, r.Method+" "+path+"?"+r.URL.RawQuery)
	if len(body) > 0 {
		var m map[string]any
		_ = json.Unmarshal(body, &m)
		u.bodies = append(u.bodies, m)
	}
	u.nextID++
	id := u.nextID
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && path == "/appointments":
		writeBody(w, `{"message":"Successfully added booking","data":{"appointment":{"id":%d}}}`, 500+id)
	case r.Method == http.MethodGet && path == "/categories":
		writeBody(w, `{"data":{"categories":[{"id":1,"name":"Spa","status":"visible","position":1,"color":"#fff"}]}}`)
	case r.Method == http.MethodGet && path == "/services/7":
		writeBody(w, `{"data":{"service":{"id":7,"name":"Massage"}}}`)
	case r.Method == http.MethodGet && path == "/appointments":
		writeBody(w, `{"data":{"appointments":[{"id":5,"bookingStart":"2024-12-15 10:00:00","serviceId":1,"providerId":2,"bookings":[{"id":50,"customerId":10,"persons":1,"status":"approved"}]}]}}`)
	case r.Method == http.MethodPost && strings.HasPrefix(path, "/appointments/status/"):
		writeBody(w, `{"message":"ok","data":{"status":"canceled"}}`)
	case r.Method == http.MethodPost && path == "/services/delete/7":
		writeBody(w, `{"message":"Successfully deleted service","data":{}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		writeBody(w, `{"message":"Not found"}`)
	}
}

func writeBody(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func (u *upstream) seen() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.requests...)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{RequestTimeout: time.Minute},
		Import: config.ImportConfig{
			MaxFileSize:   1 << 20,
			BatchSize:     10,
			SkipErrors:    true,
			MaxConcurrent: 1,
			MaxWaitTime:   time.Second,
			ReportTTL:     time.Minute,
		},
		Security: config.SecurityConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *upstream) {
	t.Helper()
	up := &upstream{}
	api := httptest.NewServer(up)
	t.Cleanup(api.Close)

	c := client.New(client.Options{BaseURL: api.URL + "/api/v1", Auth: client.APIKey("Amelia", "k")})
	s := NewServer(cfg, core.NewService(c, cfg.Import))
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })
	return s, up
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, path, csv string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if csv != "" {
		fw, err := mw.CreateFormFile("file", "appointments.csv")
		require.NoError(t, err)
		_, err = io.WriteString(fw, csv)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestConnection(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/connection", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeJSON[ConnectionResponse](t, rec).Connected)
	assert.Equal(t, []string{"GET /categories?"}, up.seen())
}

func TestImport(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	rec := do(t, s, upload(t, "/api/import/appointments", validCSV, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decodeJSON[core.ImportReport](t, rec)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 2, report.Succeeded)
	assert.NotEmpty(t, report.ID)
	assert.Len(t, up.seen(), 2)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/import/"+report.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.ID, decodeJSON[core.ImportReport](t, rec).ID)
}

func TestImport_DryRunSubmitsNothing(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	rec := do(t, s, upload(t, "/api/import/appointments", validCSV, map[string]string{"dry_run": "yes"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decodeJSON[core.ImportReport](t, rec)
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.Succeeded)
	assert.Empty(t, up.seen())
}

func TestImport_InvalidFileIsRejectedWhole(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	csv := validCSV + "tomorrow,1,1,12\n"

	rec := do(t, s, upload(t, "/api/import/appointments", csv, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeJSON[ErrorResponse](t, rec)
	assert.Equal(t, "VAL001", resp.Code)
	assert.Equal(t, []string{"Row 4: Invalid date format in booking_start"}, resp.Details)
	assert.Empty(t, up.seen())
}

func TestImport_BadOptions(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	for field, value := range map[string]string{"batch_size": "0", "batch_delay": "soon", "dry_run": "maybe"} {
		t.Run(field, func(t *testing.T) {
			rec := do(t, s, upload(t, "/api/import/appointments", validCSV, map[string]string{field: value}))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VAL008", decodeJSON[ErrorResponse](t, rec).Code)
		})
	}
}

func TestImport_NoFile(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := do(t, s, upload(t, "/api/import/appointments", "", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "FILE004", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestImport_TooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.Import.MaxFileSize = 20
	s, _ := newTestServer(t, cfg)

	rec := do(t, s, upload(t, "/api/import/appointments", validCSV, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "FILE001", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestImportErrors_CSV(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	csv := "booking_start,service_id,provider_id,customer_id,persons\n" +
		"2024-12-15 10:00,1,1,10,1\n" +
		"2024-12-15 11:00,1,1,11,0\n"

	rec := do(t, s, upload(t, "/api/import/appointments", csv, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decodeJSON[core.ImportReport](t, rec)
	require.Equal(t, 1, report.Failed)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/import/"+report.ID+"/errors", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "row_number,error_message,booking_start,service_id,provider_id,customer_id,persons", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], `3,"persons must be at least 1, got 0",2024-12-15 11:00`), lines[1])
}

func TestImportReport_NotFound(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	for _, path := range []string{"/api/import/nope", "/api/import/nope/errors"} {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "IMP002", decodeJSON[ErrorResponse](t, rec).Code)
	}
}

func TestValidate(t *testing.T) {
	s, up := newTestServer(t, testConfig())

	rec := do(t, s, upload(t, "/api/validate/appointments", "booking_start,service_id\n2024-12-15 10:00,1\n", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	result := decodeJSON[core.ValidationResult](t, rec)
	assert.False(t, result.Valid)
	assert.Equal(t, []string{"Missing required columns: provider_id, customer_id"}, result.Errors)
	assert.Empty(t, up.seen())
}

func TestTemplate(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/template/appointments", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "appointments_template.csv")
	assert.Equal(t, string(core.SampleAppointmentsCSV()), rec.Body.String())
}

func TestCreateAppointment(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	body := `{"booking_start":"12/15/2024 2:30 PM","service_id":1,"provider_id":2,"customer_id":3,"status":"pending"}`

	req := httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := do(t, s, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "501", decodeJSON[CreatedResponse](t, rec).ID)

	up.mu.Lock()
	sent := up.bodies[0]
	up.mu.Unlock()
	assert.Equal(t, "2024-12-15 14:30", sent["bookingStart"])
	assert.Equal(t, true, sent["notifyParticipants"])
	bookings := sent["bookings"].([]any)
	assert.Equal(t, "pending", bookings[0].(map[string]any)["status"])
}

func TestCreateAppointment_Invalid(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	tests := map[string]string{
		"missing ids": `{"booking_start":"2024-12-15 10:00"}`,
		"bad status":  `{"booking_start":"2024-12-15 10:00","service_id":1,"provider_id":2,"customer_id":3,"status":"done"}`,
		"bad date":    `{"booking_start":"soon","service_id":1,"provider_id":2,"customer_id":3}`,
		"not json":    `{`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
	assert.Empty(t, up.seen())

	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/appointments", strings.NewReader(tests["missing ids"])))
	assert.Contains(t, decodeJSON[ErrorResponse](t, rec).Details, "service_id is required")
}

func TestAppointmentStatus(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodPost, "/api/appointments/5/status", strings.NewReader(`{"status":"canceled"}`)))

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"POST /appointments/status/5?"}, up.seen())
}

func TestResources(t *testing.T) {
	s, up := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/resources", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	infos := decodeJSON[[]ResourceInfo](t, rec)
	assert.Len(t, infos, len(client.DefaultResources()))

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/resources/categories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeJSON[ListResponse](t, rec)
	assert.Equal(t, 1, list.Count)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/resources/services/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	item := decodeJSON[ItemResponse](t, rec)
	assert.Equal(t, "Massage", item.Item.(map[string]any)["name"])

	rec = do(t, s, httptest.NewRequest(http.MethodDelete, "/api/resources/services/7", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Successfully deleted service", decodeJSON[ItemResponse](t, rec).Message)

	assert.Equal(t, []string{"GET /categories?", "GET /services/7?", "POST /services/delete/7?"}, up.seen())
}

func TestResources_Errors(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/resources/rooms", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "IMP004", decodeJSON[ErrorResponse](t, rec).Code)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/resources/services/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "API003", decodeJSON[ErrorResponse](t, rec).Code)
}

func TestExport(t *testing.T) {
	s, up := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/export/appointments?from=2024-12-01&to=2024-12-31&status=approved", nil))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(core.AppointmentExportColumns, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "5,50,"), lines[1])
	assert.Equal(t, []string{"GET /appointments?dates=2024-12-01%3A2024-12-31&status=approved"}, up.seen())
}

func TestExport_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	tests := map[string]int{
		"/api/export/rooms":                                       http.StatusNotFound,
		"/api/export/appointments?from=2024-13-01&to=2024-12-31": http.StatusBadRequest,
		"/api/export/appointments?from=2024-12-01":                http.StatusBadRequest,
		"/api/export/appointments?from=2024-12-31&to=2024-12-01": http.StatusBadRequest,
	}
	for path, want := range tests {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestListExports(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/exports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	infos := decodeJSON[[]ExportInfo](t, rec)
	require.Len(t, infos, 6)
	assert.Equal(t, "appointments", infos[0].Key)
	assert.True(t, infos[0].DateFiltered)
}

func TestAPIKeyRequired(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s, _ := newTestServer(t, cfg)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/exports", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/exports", nil)
	req.Header.Set("X-API-Key", "secret")
	assert.Equal(t, http.StatusOK, do(t, s, req).Code)

	assert.Equal(t, http.StatusOK, do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}

func TestRateLimitApplied(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, Burst: 1}
	s, _ := newTestServer(t, cfg)

	assert.Equal(t, http.StatusOK, do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
}
