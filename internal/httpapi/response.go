package httpapi

import (
	"encoding/json"
	"net/http"
)

// Response and ErrorResponse are the envelope used for every JSON
// reply on the control plane, which is a thin introspection surface,
// not this project's core concern.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func WriteSuccess(w http.ResponseWriter, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Response{Success: true, Message: message, Data: data})
}

func WriteError(w http.ResponseWriter, statusCode int, reason string, err error) {
	resp := ErrorResponse{Success: false, Error: reason}
	if err != nil {
		resp.Message = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	resp := ErrorResponse{Success: false, Error: "unauthorized", Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(resp)
}

func WriteInternalError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusInternalServerError, "internal_error", err)
}
