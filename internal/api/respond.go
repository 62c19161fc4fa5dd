package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/vietddude/algowatch/internal/core/domain"
)

type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

// ERROR maps err to a status code and writes it as an error body.
func ERROR(w http.ResponseWriter, err error) {
	JSON(w, statusFor(err), errorBody{Error: err.Error(), Retryable: domain.IsRetryable(err)})
}

func statusFor(err error) int {
	var vErr *domain.ValidationError
	var apiErr *domain.APIError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: err.Error()}
	}
	return nil
}
