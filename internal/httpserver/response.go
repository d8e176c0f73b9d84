package httpserver

import (
	"encoding/json"
	"net/http"

	domain "supermarket/backend/internal/domain/product"
)

type errorResponse struct {
	Error string `json:"error"`
}

type rejectionResponse struct {
	Message string                       `json:"message"`
	Kind    domain.Kind                  `json:"kind"`
	Errors  map[string]domain.FieldError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeRejection reports a refused mutation as 422 with per-field reasons.
func writeRejection(w http.ResponseWriter, rej *domain.Rejection) {
	message := "The given data was invalid."
	switch rej.Kind {
	case domain.KindDuplicateName:
		message = "A product with that name already exists."
	case domain.KindDuplicateSKU:
		message = "A product with that SKU already exists."
	}
	writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
		Message: message,
		Kind:    rej.Kind,
		Errors:  rej.FieldErrors,
	})
}
