package utils

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every error the gateway returns.
type ErrorResponse struct {
	Detail  string            `json:"detail"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, data)
}

// WriteBadRequest writes a 400 Bad Request response with optional field details
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) error {
	if message == "" {
		message = "Bad request."
	}
	return WriteJSON(w, http.StatusBadRequest, ErrorResponse{Detail: message, Details: details})
}

// WriteUnauthorized writes a 401 Unauthorized response
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Unauthorized."
	}
	return WriteJSON(w, http.StatusUnauthorized, ErrorResponse{Detail: message})
}

// WriteForbidden writes a 403 Forbidden response
func WriteForbidden(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Forbidden."
	}
	return WriteJSON(w, http.StatusForbidden, ErrorResponse{Detail: message})
}

// WriteNotFound writes a 404 Not Found response
func WriteNotFound(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Not found."
	}
	return WriteJSON(w, http.StatusNotFound, ErrorResponse{Detail: message})
}

// WriteBadGateway writes a 502 response for upstream identity provider failures
func WriteBadGateway(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Upstream identity provider error."
	}
	return WriteJSON(w, http.StatusBadGateway, ErrorResponse{Detail: message})
}

// WriteInternalServerError writes a 500 Internal Server Error response
func WriteInternalServerError(w http.ResponseWriter, message string) error {
	if message == "" {
		message = "Internal server error."
	}
	return WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: message})
}
