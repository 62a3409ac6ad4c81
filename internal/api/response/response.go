package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edvin/drtrack/internal/core"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// ListResponse wraps a list with its item count.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// WriteList writes a list JSON response.
func WriteList(w http.ResponseWriter, items any, count int) {
	WriteJSON(w, http.StatusOK, ListResponse{Items: items, Count: count})
}

// StatusFor maps a service error to its HTTP status. Conflicts are checked
// first because they also wrap the validation kind.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteServiceError writes err with the status its kind maps to. Unclassified
// errors are reported without their details.
func WriteServiceError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		WriteError(w, status, "internal server error")
		return
	}
	WriteError(w, status, err.Error())
}
