package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// TimestampFormat is the layout of the envelope timestamp
const TimestampFormat = "2006-01-02T15:04:05.000Z07:00"

// Response is the envelope wrapped around every API payload.
type Response struct {
	Success    bool            `json:"success"`
	Data       interface{}     `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Pagination *PaginationMeta `json:"pagination,omitempty"`
	Stats      interface{}     `json:"stats,omitempty"`
	Error      *ErrorBody      `json:"error,omitempty"`
	Timestamp  string          `json:"timestamp"`
}

// ErrorBody is the error block of a failed response.
type ErrorBody struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func now() string {
	return time.Now().UTC().Format(TimestampFormat)
}

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Warn("failed to encode JSON response", zap.Error(err))
		}
	}
}

// RespondSuccess wraps data in a success envelope.
func RespondSuccess(w http.ResponseWriter, status int, data interface{}) {
	RespondJSON(w, status, Response{Success: true, Data: data, Timestamp: now()})
}

// RespondList writes one page of results with its pagination metadata and
// optional summary statistics.
func RespondList(w http.ResponseWriter, data interface{}, meta PaginationMeta, stats interface{}) {
	RespondJSON(w, http.StatusOK, Response{
		Success:    true,
		Data:       data,
		Pagination: &meta,
		Stats:      stats,
		Timestamp:  now(),
	})
}

// RespondMessage writes a success envelope carrying only a message.
func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: true, Message: message, Timestamp: now()})
}

// RespondError writes a standard error response.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{
		Success:   false,
		Error:     &ErrorBody{Message: message},
		Timestamp: now(),
	})
}

// RespondValidationError writes field-level validation errors as a 400 response.
func RespondValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	RespondJSON(w, http.StatusBadRequest, Response{
		Success:   false,
		Error:     &ErrorBody{Message: "Validation failed", Details: fieldErrors},
		Timestamp: now(),
	})
}
