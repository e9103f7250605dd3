package rbac

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Permission names checked by the HTTP routes.
const (
	PermConfig            = "config:manage"
	PermCounsel           = "counsel:manage"
	PermSubmissionViewAll = "submission:view-all"
	PermSubmissionCreate  = "submission:create"
	PermReportGenerate    = "report:generate"
	PermReportExport      = "report:export"
	PermReportViewOwn     = "report:view-own"
	PermAssetRead         = "asset:read"
	PermAPIKeysList       = "api-keys:list"
	PermExportLog         = "export-log:read"
)

var RolePermissions = map[string][]string{
	RoleTeacher: {
		"config:*",
		"counsel:*",
		PermSubmissionViewAll,
		PermReportGenerate,
		PermReportExport,
		PermAssetRead,
	},
	RoleStudent: {
		PermReportViewOwn,
		PermSubmissionCreate,
	},
	RoleAdmin: {
		"*",
	},
}
