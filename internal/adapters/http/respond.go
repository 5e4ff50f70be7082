package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"gymtrack/internal/application/listutil"
	"gymtrack/internal/application/orchestrators"
	domainMember "gymtrack/internal/domain/member"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// envelope is the response shape for every JSON endpoint.
type envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Details    []string           `json:"details,omitempty"`
	Data       any                `json:"data,omitempty"`
	Pagination *listutil.PageInfo `json:"pagination,omitempty"`
}

// errBadRequest marks malformed input caught before the use-case runs.
var errBadRequest = errors.New("bad request")

type badRequest struct {
	msg     string
	details []string
}

func (e *badRequest) Error() string { return e.msg }

func (e *badRequest) Is(target error) bool { return target == errBadRequest }

func newBadRequest(msg string, details ...string) error {
	return &badRequest{msg: msg, details: details}
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("response_encode_failed", "error", err)
	}
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string, details []string) {
	writeJSON(w, status, envelope{Success: false, Error: msg, Details: details})
}

// internalError logs err and writes a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "method", r.Method, "path", r.URL.Path, "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error", nil)
}

// respondError maps an error kind onto a status code and envelope.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var br *badRequest
	switch {
	case errors.As(err, &br):
		writeError(w, http.StatusBadRequest, br.msg, br.details)
	case errors.Is(err, domainMember.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation failed", domainMember.ValidationMessages(err))
	case errors.Is(err, domainMember.ErrDuplicatePhone):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, domainMember.ErrNotFound):
		writeError(w, http.StatusNotFound, domainMember.ErrNotFound.Error(), nil)
	case errors.Is(err, orchestrators.ErrNoReportRecipient):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		internalError(w, r, err)
	}
}

// strictDecode decodes JSON from the request body, rejecting unknown fields
// and trailing data.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return newBadRequest("invalid request body", "body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		if strings.HasPrefix(typeErr.Type.String(), "int") {
			return newBadRequest("invalid request body", fmt.Sprintf("%s must be a whole number", typeErr.Field))
		}
		return newBadRequest("invalid request body", fmt.Sprintf("%s has the wrong type", typeErr.Field))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return newBadRequest("invalid request body", "malformed JSON")
	case errors.Is(err, io.EOF):
		return newBadRequest("invalid request body", "body is empty")
	case errors.As(err, &maxErr):
		return newBadRequest("invalid request body", "body is too large")
	case strings.HasPrefix(err.Error(), "json: unknown field"):
		return newBadRequest("invalid request body", strings.TrimPrefix(err.Error(), "json: "))
	}
	return newBadRequest("invalid request body", err.Error())
}

// splitJoined turns an errors.Join result into one message per line.
func splitJoined(err error) []string {
	return strings.Split(err.Error(), "\n")
}
