package http

import (
	"encoding/json"
	"net/http"

	"github.com/mind-engage/growthreport/internal/apperr"
	auth "github.com/mind-engage/growthreport/internal/auth/middleware"
	"github.com/mind-engage/growthreport/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes. Internal error text
// is logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if v, ok := apperr.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": v.FieldMap(),
		})
		return
	}
	if du, ok := apperr.AsDataUnavailable(err); ok {
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error":       du.Message,
			"studentCode": du.StudentCode,
		})
		return
	}
	switch {
	case apperr.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case apperr.IsForbidden(err):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	default:
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return false
	}
	return true
}

// teacherKey returns the API key from the token, answering 401 when the
// caller has none.
func teacherKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	k := auth.APIKeyFromContext(r.Context())
	if k == "" {
		http.Error(w, "api key required", http.StatusUnauthorized)
		return "", false
	}
	return k, true
}
