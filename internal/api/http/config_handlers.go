package http

import (
	"net/http"

	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/settings"
)

// GET /config
func GetConfigHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		cfg, fromDefault, err := svc.LoadOrDefault(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"config": cfg, "fromDefault": fromDefault})
	}
}

// PUT /config
func PutConfigHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		var cfg report.Config
		if !decodeJSON(w, r, &cfg) {
			return
		}
		summary, err := svc.Save(r.Context(), key, cfg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "summary": summary})
	}
}

// DELETE /config
func DeleteConfigHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), key); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /config/meta
func ConfigMetaHandler(svc *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		meta, err := svc.Metadata(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, meta)
	}
}
