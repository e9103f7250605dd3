package http

import (
	"net/http"

	"github.com/mind-engage/growthreport/internal/counsel"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/settings"

	"github.com/go-chi/chi/v5"
)

// ownerless hides the owner key from responses.
func ownerless(c counsel.Counsel) counsel.Counsel {
	c.APIKey = ""
	return c
}

// POST /counsels  { "title": "...", "config": {...} }
// Without a config the teacher's saved (or default) configuration is used.
func CreateCounselHandler(svc *counsel.Service, cfgs *settings.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		var req struct {
			Title  string         `json:"title"`
			Config *report.Config `json:"config"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		var cfg report.Config
		if req.Config != nil {
			cfg = *req.Config
		} else {
			saved, _, err := cfgs.LoadOrDefault(r.Context(), key)
			if err != nil {
				writeError(w, r, err)
				return
			}
			cfg = saved
		}
		c, err := svc.Create(r.Context(), key, req.Title, cfg)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, ownerless(c))
	}
}

// GET /counsels
func ListCounselsHandler(svc *counsel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		list, err := svc.List(r.Context(), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		for i := range list {
			list[i] = ownerless(list[i])
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /counsels/{id}
func GetCounselHandler(svc *counsel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		c, err := svc.GetOwned(r.Context(), chi.URLParam(r, "id"), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ownerless(c))
	}
}

// PATCH /counsels/{id}
func UpdateCounselHandler(svc *counsel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		var u counsel.Update
		if !decodeJSON(w, r, &u) {
			return
		}
		c, err := svc.Update(r.Context(), chi.URLParam(r, "id"), key, u)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ownerless(c))
	}
}

// DELETE /counsels/{id}
func DeleteCounselHandler(svc *counsel.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id"), key); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /counsels/{id}/submissions
func ListCounselSubmissionsHandler(svc *counsel.Service, subs *counsel.Submissions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := teacherKey(w, r)
		if !ok {
			return
		}
		c, err := svc.GetOwned(r.Context(), chi.URLParam(r, "id"), key)
		if err != nil {
			writeError(w, r, err)
			return
		}
		list, err := subs.ListByCounsel(r.Context(), c.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
