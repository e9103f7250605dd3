package http

import (
	"net/http"
	"strconv"

	"github.com/mind-engage/growthreport/internal/audit"
	"github.com/mind-engage/growthreport/internal/counsel"
)

// GET /admin/api-keys
func ListAPIKeysHandler(svc *counsel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := svc.UniqueAPIKeys(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		masked := make([]string, len(keys))
		for i, k := range keys {
			masked[i] = counsel.MaskKey(k)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(masked), "keys": masked})
	}
}

// GET /admin/exports?limit=N
func RecentExportsHandler(log *audit.ExportLog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := log.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
