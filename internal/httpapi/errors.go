package httpapi

import (
	"encoding/json"
	"net/http"

	"sharingd/internal/adapter"
	"sharingd/pkg/types"
)

// statusFor maps a sharing error to the HTTP status it is served with.
func statusFor(err error) int {
	if adapter.IsUnmappedValue(err) {
		return http.StatusInternalServerError
	}
	be, ok := types.AsBusinessError(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch be.Code {
	case types.CodeParameterError, types.CodeInvalidParameter:
		return http.StatusBadRequest
	case types.CodePermissionDenied, types.CodeNonSystemApp:
		return http.StatusForbidden
	case types.CodeDuplicateRegistration:
		return http.StatusConflict
	case types.CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// writeError writes err as an ErrorResponse with its mapped status.
func writeError(w http.ResponseWriter, err error) int {
	status := statusFor(err)
	if be, ok := types.AsBusinessError(err); ok {
		writeJSON(w, status, types.ErrorResponse{Code: be.Code, Message: be.Message})
		return status
	}
	writeJSON(w, status, types.ErrorResponse{Code: types.CodeInternalError, Message: err.Error()})
	return status
}

// writeJSONError writes a request validation failure.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Code: types.CodeParameterError, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
