package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"route-optimizer/internal/domain"
	"route-optimizer/internal/platform/obs"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeServiceError maps a use-case error to a status code and a message that
// is safe to show to the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var inputErr *domain.InputError
	switch {
	case errors.As(err, &inputErr):
		writeError(w, r, http.StatusBadRequest, inputErr.Reason)
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("req_id=%s %s timed out: %v", obs.RequestID(r.Context()), op, err)
		writeError(w, r, http.StatusGatewayTimeout, op+" timed out")
	case errors.Is(err, context.Canceled):
		// Client went away; nobody is listening for the body.
		log.Printf("req_id=%s %s canceled: %v", obs.RequestID(r.Context()), op, err)
	default:
		log.Printf("req_id=%s %s failed: %v", obs.RequestID(r.Context()), op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeBody decodes exactly one JSON object from the request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
