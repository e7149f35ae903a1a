package config

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every JSON error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is the body of JSON success replies.
type SuccessResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// RespondJSON is a helper function to send JSON responses
func RespondJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// RespondError sends an error body and logs it when a logger is given.
func RespondError(w http.ResponseWriter, statusCode int, message string, details string, logger *slog.Logger) {
	if logger != nil {
		logger.Error("responding with error",
			"status_code", statusCode,
			"message", message,
			"details", details,
		)
	}

	RespondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Details: details,
	})
}

// RespondSuccess is a helper function to send success responses
func RespondSuccess(w http.ResponseWriter, statusCode int, message string, data map[string]any) {
	RespondJSON(w, statusCode, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondInternalError is a helper for 500 errors. The error is logged,
// never sent.
func RespondInternalError(w http.ResponseWriter, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Error("internal server error", "error", err)
	}

	RespondJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "Internal Server Error",
		Message: "An unexpected error occurred",
	})
}

// RespondBadRequest is a helper for 400 errors
func RespondBadRequest(w http.ResponseWriter, message string, details string) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:   "Bad Request",
		Message: message,
		Details: details,
	})
}

// RespondUnauthorized is a helper for 401 errors
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "Unauthorized",
		Message: message,
	})
}

// RespondBadGateway is used when the SouP API fails us.
func RespondBadGateway(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadGateway, ErrorResponse{
		Error:   "Bad Gateway",
		Message: message,
	})
}

// RespondCreated is a helper for 201 responses
func RespondCreated(w http.ResponseWriter, message string, data map[string]any) {
	RespondSuccess(w, http.StatusCreated, message, data)
}
