package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/ameliadesk/internal/client"
	"github.com/JonMunkholm/ameliadesk/internal/core"
	"github.com/JonMunkholm/ameliadesk/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
// Details carries per-row validation messages when a file was rejected.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message"`
	Action    string   `json:"action,omitempty"`
	Code      string   `json:"code"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

// respondError logs the technical error and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := core.MapError(err)

	logging.FromContext(r.Context()).Log(r.Context(), logging.LevelForStatus(status), "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	resp := ErrorResponse{
		Error:     msg.Message,
		Message:   msg.Message,
		Action:    msg.Action,
		Code:      msg.Code,
		RequestID: middleware.GetReqID(r.Context()),
	}

	var vf *core.ValidationFailure
	if errors.As(err, &vf) {
		resp.Details = vf.Result.Errors
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		resp.Details = fieldErrors(ve)
	}

	if status == http.StatusServiceUnavailable || status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "10")
	}
	writeJSON(w, status, resp)
}

// badRequest reports a malformed request parameter.
func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, message string) {
	s.respondError(w, r, &requestError{message})
}

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

// statusFor maps an error to the HTTP status returned to the caller.
// Upstream failures keep client-side statuses and become 502 otherwise.
func statusFor(err error) int {
	var (
		reqErr  *requestError
		vf      *core.ValidationFailure
		ve      validator.ValidationErrors
		csvErr  *csv.ParseError
		failure *client.Failure
	)

	switch {
	case errors.As(err, &reqErr), errors.As(err, &ve), errors.As(err, &csvErr):
		return http.StatusBadRequest
	case errors.As(err, &vf):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoFile), errors.Is(err, core.ErrEmptyFile):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnknownResource), errors.Is(err, core.ErrUnknownExport), errors.Is(err, core.ErrReportNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrUnexpectedResponse):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &failure):
		return upstreamStatus(failure)
	}
	return http.StatusInternalServerError
}

func upstreamStatus(f *client.Failure) int {
	switch f.Kind {
	case client.FailureRequest:
		return http.StatusBadRequest
	case client.FailureTransport:
		if strings.Contains(f.Message, "timed out") {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case client.FailureHTTP:
		switch f.StatusCode {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusTooManyRequests:
			return f.StatusCode
		}
	}
	return http.StatusBadGateway
}

func fieldErrors(ve validator.ValidationErrors) []string {
	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		switch fe.Tag() {
		case "required":
			out = append(out, fe.Field()+" is required")
		case "oneof":
			out = append(out, fe.Field()+" must be one of: "+fe.Param())
		default:
			out = append(out, fe.Field()+" failed "+fe.Tag()+" "+fe.Param())
		}
	}
	return out
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(context.Background()).Error("json encode error", "error", err)
	}
}
