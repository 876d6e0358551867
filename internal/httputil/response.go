package httputil

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/therapyassist/dashboard-go/internal/errors"
)

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// DetailResponse is the error body the dashboard backend sends.
type DetailResponse struct {
	Detail any `json:"detail"`
}

// FieldError is one entry of a request validation failure.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// WriteError writes an AppError as an HTTP response with appropriate status code
func WriteError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = apperrors.Internal("An unexpected error occurred")
	}
	WriteDetail(w, statusFromCode(appErr.Code), appErr.Message)
}

func WriteDetail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, DetailResponse{Detail: detail})
}

// WriteValidation reports a single invalid body field with status 422.
func WriteValidation(w http.ResponseWriter, field, msg string) {
	WriteJSON(w, http.StatusUnprocessableEntity, DetailResponse{Detail: []FieldError{{
		Loc:  []string{"body", field},
		Msg:  msg,
		Type: "value_error",
	}}})
}

// statusFromCode maps ErrorCode to HTTP status code
func statusFromCode(code apperrors.ErrorCode) int {
	switch code {
	// 400 Bad Request
	case apperrors.ErrCodeValidation,
		apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodePreconditionFailed:
		return http.StatusBadRequest

	// 401 Unauthorized
	case apperrors.ErrCodeUnauthorized:
		return http.StatusUnauthorized

	// 403 Forbidden
	case apperrors.ErrCodeForbidden:
		return http.StatusForbidden

	// 404 Not Found
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound

	// 409 Conflict
	case apperrors.ErrCodeConflict:
		return http.StatusConflict

	// 422 Unprocessable Entity
	case apperrors.ErrCodeMissingRequired:
		return http.StatusUnprocessableEntity

	// 502 Bad Gateway
	case apperrors.ErrCodeExternal:
		return http.StatusBadGateway

	// 504 Gateway Timeout
	case apperrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout

	// 500 Internal Server Error
	case apperrors.ErrCodeInternal:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
