package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/studentcouncil/portal/pkg/validator"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{
		"error": {Code: code, Message: message},
	})
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": errorBody{Code: "VALIDATION_FAILED", Message: "One or more fields are invalid"},
		"fields": errs,
	})
}
