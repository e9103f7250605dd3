package http

import (
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	auth "github.com/mind-engage/growthreport/internal/auth/middleware"
	"github.com/mind-engage/growthreport/internal/export"
	"github.com/mind-engage/growthreport/internal/rbac"
	"github.com/mind-engage/growthreport/internal/storage"

	"github.com/go-chi/chi/v5"
)

// MountAssets serves exported reports. A teacher sees only the exports made
// with their own API key; admins see everything under reports/.
func MountAssets(r chi.Router, bs storage.BlobStore) {
	// GET /assets/*   -> returns the blob at whatever follows /assets/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := path.Clean("/" + chi.URLParam(r, "*"))[1:]
		if !canReadAsset(r, key) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		defer rc.Close()
		if strings.HasSuffix(key, ".pdf") {
			w.Header().Set("Content-Type", "application/pdf")
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.Header().Set("Content-Disposition", `attachment; filename*=UTF-8''`+url.PathEscape(path.Base(key)))
		_, _ = io.Copy(w, rc)
	})
}

func canReadAsset(r *http.Request, key string) bool {
	if !strings.HasPrefix(key, "reports/") {
		return false
	}
	if rbac.RoleFromContext(r.Context()) == rbac.RoleAdmin {
		return true
	}
	apiKey := auth.APIKeyFromContext(r.Context())
	return apiKey != "" && strings.HasPrefix(key, export.OwnerPrefix(apiKey))
}
