package http

import (
	"context"

	"github.com/mind-engage/growthreport/internal/audit"
	auth "github.com/mind-engage/growthreport/internal/auth/middleware"
	"github.com/mind-engage/growthreport/internal/counsel"
	"github.com/mind-engage/growthreport/internal/export"
	"github.com/mind-engage/growthreport/internal/rbac"
	"github.com/mind-engage/growthreport/internal/settings"
	"github.com/mind-engage/growthreport/internal/storage"

	"github.com/go-chi/chi/v5"
)

// Deps are the services behind the routes.
type Deps struct {
	Auth        *auth.AuthService
	Settings    *settings.Service
	Counsels    *counsel.Service
	Submissions *counsel.Submissions
	Export      *export.Service
	Blobs       storage.BlobStore
	ExportLog   *audit.ExportLog
}

func (d Deps) counselExists(ctx context.Context, id string) error {
	_, err := d.Counsels.Get(ctx, id)
	return err
}

// Mount registers the login endpoints and the protected API on r.
func Mount(r chi.Router, d Deps) {
	r.Post("/auth/teacher/login", auth.TeacherLoginHandler(d.Auth))
	r.Post("/auth/student/login", auth.StudentLoginHandler(d.Auth, d.counselExists))
	r.Post("/auth/admin/login", auth.AdminLoginHandler(d.Auth))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.Route("/config", func(cr chi.Router) {
			cr.Use(rbac.Require(rbac.PermConfig))
			cr.Get("/", GetConfigHandler(d.Settings))
			cr.Put("/", PutConfigHandler(d.Settings))
			cr.Delete("/", DeleteConfigHandler(d.Settings))
			cr.Get("/meta", ConfigMetaHandler(d.Settings))
		})

		pr.Route("/counsels", func(cr chi.Router) {
			cr.With(rbac.Require(rbac.PermCounsel)).Post("/", CreateCounselHandler(d.Counsels, d.Settings))
			cr.With(rbac.Require(rbac.PermCounsel)).Get("/", ListCounselsHandler(d.Counsels))
			cr.With(rbac.Require(rbac.PermCounsel)).Get("/{id}", GetCounselHandler(d.Counsels))
			cr.With(rbac.Require(rbac.PermCounsel)).Patch("/{id}", UpdateCounselHandler(d.Counsels))
			cr.With(rbac.Require(rbac.PermCounsel)).Delete("/{id}", DeleteCounselHandler(d.Counsels))
			cr.With(rbac.Require(rbac.PermSubmissionViewAll)).
				Get("/{id}/submissions", ListCounselSubmissionsHandler(d.Counsels, d.Submissions))
		})

		pr.Route("/submissions/{id}", func(sr chi.Router) {
			sr.Use(rbac.Require(rbac.PermSubmissionViewAll))
			sr.Get("/", GetSubmissionHandler(d.Counsels, d.Submissions))
			sr.Get("/report", SubmissionReportHandler(d.Counsels, d.Submissions))
			sr.Get("/report.pdf", SubmissionPDFHandler(d.Counsels, d.Submissions, d.Export))
		})

		pr.With(rbac.Require(rbac.PermReportGenerate)).
			Post("/reports/preview", PreviewReportsHandler(d.Export, d.Settings))
		pr.With(rbac.Require(rbac.PermReportExport)).
			Post("/reports/export", ExportReportsHandler(d.Export, d.Settings))

		pr.With(rbac.Require(rbac.PermReportViewOwn)).
			Get("/me/report", MyReportHandler(d.Counsels, d.Submissions, d.Export))
		pr.With(rbac.Require(rbac.PermReportViewOwn)).
			Get("/me/report.pdf", MyReportPDFHandler(d.Counsels, d.Submissions, d.Export))
		pr.With(rbac.Require(rbac.PermSubmissionCreate)).
			Post("/me/submission", SubmitMyReportHandler(d.Counsels, d.Submissions, d.Export))

		pr.Route("/assets", func(ar chi.Router) {
			ar.Use(rbac.Require(rbac.PermAssetRead))
			MountAssets(ar, d.Blobs)
		})

		pr.Route("/admin", func(ar chi.Router) {
			ar.With(rbac.Require(rbac.PermAPIKeysList)).Get("/api-keys", ListAPIKeysHandler(d.Counsels))
			if d.ExportLog != nil {
				ar.With(rbac.Require(rbac.PermExportLog)).Get("/exports", RecentExportsHandler(d.ExportLog))
			}
		})
	})
}
