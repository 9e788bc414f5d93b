package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ameliadesk/internal/core"
	"github.com/JonMunkholm/ameliadesk/internal/logging"
)

// ExportInfo describes one registered export.
type ExportInfo struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Resource     string   `json:"resource"`
	Columns      []string `json:"columns"`
	DateFiltered bool     `json:"date_filtered"`
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	exports := s.service.ListExports()
	out := make([]ExportInfo, 0, len(exports))
	for _, e := range exports {
		out = append(out, ExportInfo{
			Key:          e.Key,
			Label:        e.Label,
			Resource:     e.Resource,
			Columns:      e.Columns,
			DateFiltered: e.DateFiltered,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleExport streams a CSV export. from and to (YYYY-MM-DD) filter
// date-aware exports; every other query parameter goes to the list call.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	from, err := parseDateParam(r, "from")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if from.IsZero() != to.IsZero() {
		s.badRequest(w, r, "invalid request: from and to must be given together")
		return
	}
	if !from.IsZero() && to.Before(from) {
		s.badRequest(w, r, "invalid request: to is before from")
		return
	}

	result, err := s.service.Export(r.Context(), key, core.ExportFilter{
		From:   from,
		To:     to,
		Params: listParams(r.URL.Query(), "from", "to"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	setDownload(w, key+"_export_"+time.Now().Format("20060102")+".csv")
	if err := result.WriteCSV(w); err != nil {
		s.logWriteError(r, err)
	}
}

func (s *Server) logWriteError(r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("write response", "path", r.URL.Path, "error", err)
}
