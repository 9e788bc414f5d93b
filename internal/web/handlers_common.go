package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/ameliadesk/internal/core"
)

// dateLayout is the format of from/to query parameters.
const dateLayout = "2006-01-02"

// jsonFieldName makes validator report json names instead of Go field names.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// decodeBody reads a JSON body into v and validates it when v is a struct.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return &requestError{"invalid request: body is empty"}
		}
		return &requestError{"invalid request: body is not valid JSON"}
	}

	if reflect.Indirect(reflect.ValueOf(v)).Kind() != reflect.Struct {
		return nil
	}
	if err := s.validate.Struct(v); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return fmt.Errorf("invalid request: %w", ve)
		}
		return err
	}
	return nil
}

// readUpload returns the bytes of the "file" form field.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	limit := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, limit+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", fmt.Errorf("%w: upload exceeds %d bytes", core.ErrFileTooLarge, limit)
		}
		return nil, "", core.ErrNoFile
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", core.ErrNoFile
	}
	defer file.Close()

	data, err := readAll(file, limit)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

func readAll(f multipart.File, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: upload exceeds %d bytes", core.ErrFileTooLarge, limit)
	}
	return data, nil
}

// bulkOptions overlays form values on the configured import defaults.
// batch_delay accepts a Go duration ("500ms") or seconds ("1.5").
func (s *Server) bulkOptions(r *http.Request) (core.BulkOptions, error) {
	opts := s.service.DefaultBulkOptions()

	if v := r.FormValue("dry_run"); v != "" {
		b, ok := core.ParseBool(v)
		if !ok {
			return opts, &requestError{"invalid request: dry_run must be true or false"}
		}
		opts.DryRun = b
	}
	if v := r.FormValue("skip_errors"); v != "" {
		b, ok := core.ParseBool(v)
		if !ok {
			return opts, &requestError{"invalid request: skip_errors must be true or false"}
		}
		opts.SkipErrors = b
	}
	if v := r.FormValue("batch_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, &requestError{"invalid request: batch_size must be a positive integer"}
		}
		opts.BatchSize = n
	}
	if v := r.FormValue("batch_delay"); v != "" {
		d, err := parseDelay(v)
		if err != nil {
			return opts, &requestError{"invalid request: batch_delay must be a duration such as 500ms or a number of seconds"}
		}
		opts.BatchDelay = d
	}
	return opts, nil
}

func parseDelay(v string) (time.Duration, error) {
	if d, err := time.ParseDuration(v); err == nil && d >= 0 {
		return d, nil
	}
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil || secs < 0 {
		return 0, errors.New("bad delay")
	}
	return time.Duration(secs * float64(time.Second)), nil
}

// parseDateParam parses an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, &requestError{fmt.Sprintf("invalid request: %s must be YYYY-MM-DD", name)}
	}
	return t, nil
}

// setDownload marks the response as a CSV attachment.
func setDownload(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ConnectionResponse reports whether the upstream API answered.
type ConnectionResponse struct {
	Connected bool   `json:"connected"`
	BaseURL   string `json:"base_url"`
}

func (s *Server) handleConnection(w http.ResponseWriter, r *http.Request) {
	resp := ConnectionResponse{
		Connected: s.service.TestConnection(r.Context()),
		BaseURL:   s.service.Client().BaseURL(),
	}
	status := http.StatusOK
	if !resp.Connected {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
