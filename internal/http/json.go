package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/target/grailed-admin/internal/domain/job"
	apperrors "github.com/target/grailed-admin/internal/errors"
)

// WriteJSON writes v as JSON with status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}

// ErrorParams groups the parts of a JSON error response.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes a JSON error body {"error": code, "message": text}.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := map[string]string{"error": p.ErrCode, "message": p.Err.Error()}
	if field := apperrors.GetField(p.Err); field != "" {
		body["field"] = field
	}
	WriteJSON(w, p.Code, body)
}

// statusFor maps an error onto an HTTP status and a machine-readable code.
func statusFor(err error) (int, string) {
	if errors.Is(err, job.ErrUnknownKind) {
		return http.StatusNotFound, "unknown_job"
	}
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound, "not_found"
	case apperrors.ErrCodeValidation:
		return http.StatusUnprocessableEntity, "validation_failed"
	case apperrors.ErrCodeConflict:
		return http.StatusConflict, "conflict"
	case apperrors.ErrCodeUnavailable:
		return http.StatusServiceUnavailable, "unavailable"
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout, "timeout"
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized, "authentication_required"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeAppError writes err with the status derived from its AppError code.
func writeAppError(w http.ResponseWriter, err error) {
	code, errCode := statusFor(err)
	WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err})
}
