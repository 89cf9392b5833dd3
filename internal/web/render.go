package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hpungsan/memnotes/internal/errors"
)

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	Status  int
	Code    string
	Message string
	Version string
}

// renderDocument writes a rendered note document.
func renderDocument(w http.ResponseWriter, doc string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// renderError renders an error response with content negotiation: JSON for
// API clients and non-GET requests, the error page otherwise.
func (h *Handlers) renderError(w http.ResponseWriter, req *http.Request, err error) {
	if strings.Contains(req.Header.Get("Accept"), "application/json") || req.Method != http.MethodGet {
		h.renderJSONError(w, req, err)
		return
	}

	nErr, status := h.publicError(req, err)

	var buf bytes.Buffer
	if err := errorPage.Execute(&buf, ErrorPageData{
		Status:  status,
		Code:    string(nErr.Code),
		Message: nErr.Message,
		Version: h.version,
	}); err != nil {
		h.logger.Error("template execution error", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderJSONError writes err as a JSON error object.
func (h *Handlers) renderJSONError(w http.ResponseWriter, req *http.Request, err error) {
	nErr, status := h.publicError(req, err)
	errorObj := map[string]any{
		"code":    string(nErr.Code),
		"message": nErr.Message,
		"status":  status,
	}
	if nErr.Details != nil {
		errorObj["details"] = nErr.Details
	}
	renderJSON(w, status, map[string]any{"error": errorObj})
}

// publicError converts err for a response. Internal errors are logged and
// reported without their cause.
func (h *Handlers) publicError(req *http.Request, err error) (*errors.NoteError, int) {
	nErr := errors.As(err)
	if nErr.Code == errors.ErrInternal {
		h.logger.Error("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		nErr = &errors.NoteError{
			Code:    errors.ErrInternal,
			Status:  http.StatusInternalServerError,
			Message: "an internal error occurred",
		}
	}
	status := nErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return nErr, status
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
