package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ameliadesk/internal/core"
)

func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	setDownload(w, "appointments_template.csv")
	_, _ = w.Write(core.SampleAppointmentsCSV())
}

func (s *Server) handleTemplateHelp(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.TemplateHelp())
}

// handleValidate checks an uploaded file without submitting anything.
// An invalid file is still a 200: the result lists what is wrong.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	data, _, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	_, result, err := s.service.ValidateUpload(data)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, result)
}

// handleImport runs a bulk import synchronously and returns the report.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, name, err := s.readUpload(w, r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	opts, err := s.bulkOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := core.WithRequestInfo(r.Context(), core.RequestInfo{ClientIP: r.RemoteAddr, UserAgent: r.UserAgent()})
	report, err := s.service.ImportAppointments(ctx, name, data, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleImportQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Limiter().Status())
}

func (s *Server) handleImportReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.service.Report(chi.URLParam(r, "importID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleImportErrors downloads the failed rows with their original cells.
func (s *Server) handleImportErrors(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "importID")
	if _, err := s.service.Report(id); err != nil {
		s.respondError(w, r, err)
		return
	}

	setDownload(w, "import_"+id+"_errors.csv")
	if err := s.service.WriteErrorReport(w, id); err != nil {
		// Headers are gone; all that is left is to log.
		s.logWriteError(r, err)
	}
}
