package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/etnz/tradebook"
)

// Machine-readable error codes exposed by the API.
const (
	codeValidation   = "VALIDATION_ERROR"
	codeNotFound     = "NOT_FOUND"
	codeInsufficient = "INSUFFICIENT_QUANTITY"
	codeInvalidTrade = "INVALID_TRADE"
	codeInternal     = "INTERNAL"
)

type envelope struct {
	Success bool      `json:"success"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Message: "success", Data: data})
}

// fail maps a ledger error to its HTTP status and machine-readable code.
// Unrecognized errors become opaque 500s; their message leaks only in dev
// mode.
func (s *Server) fail(w http.ResponseWriter, err error) {
	var (
		status int
		code   string
		msg    string
	)
	switch {
	case errors.Is(err, tradebook.ErrNotFound):
		status, code, msg = http.StatusNotFound, codeNotFound, err.Error()
	case errors.Is(err, tradebook.ErrInsufficientQuantity):
		status, code, msg = http.StatusBadRequest, codeInsufficient, err.Error()
	case errors.Is(err, tradebook.ErrInvalidTrade):
		status, code, msg = http.StatusBadRequest, codeInvalidTrade, err.Error()
	default:
		status, code, msg = http.StatusInternalServerError, codeInternal, "internal server error"
		log.Printf("internal error: %v", err)
	}

	e := &apiError{Code: code, Message: msg}
	if s.dev {
		e.Details = err.Error()
	}
	writeJSON(w, status, envelope{Success: false, Error: e})
}

// failValidation reports a malformed or schema-invalid request body.
func (s *Server) failValidation(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, envelope{
		Success: false,
		Error:   &apiError{Code: codeValidation, Message: msg},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
