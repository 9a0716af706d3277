package http

import (
	"net/http"
	"slices"

	"github.com/syedsanaulhaq/scl/internal/auth/domain"
	"github.com/syedsanaulhaq/scl/pkg/authsdk"
	"github.com/syedsanaulhaq/scl/pkg/httpx"
)

var dashboards = map[domain.Role]authsdk.DashboardResponse{
	domain.RoleAdmin: {
		View:     "admin",
		Sections: []string{"overview", "users", "professors", "students", "courses", "library", "analytics"},
	},
	domain.RoleFaculty: {
		View:     "faculty",
		Sections: []string{"overview", "courses", "students", "events"},
	},
	domain.RoleTeacher: {
		View:     "teacher",
		Sections: []string{"overview", "courses", "students", "events"},
	},
	domain.RoleStudent: {
		View:     "student",
		Sections: []string{"overview", "courses", "library", "events"},
	},
}

var publicDashboard = authsdk.DashboardResponse{
	View:     "public",
	Sections: []string{"overview", "events"},
}

// DashboardHandler godoc
//
//	@Summary		Dashboard descriptor
//	@Description	Returns the landing view for the caller's role. Missing or invalid tokens get the public view.
//	@Tags			Dashboard
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.DashboardResponse
//	@Router			/v1/dashboard [get].
func DashboardHandler(w http.ResponseWriter, r *http.Request) {
	resp := publicDashboard
	if role := httpx.RoleFromContext(r.Context()); role != "" {
		if d, ok := dashboards[domain.Role(role)]; ok {
			resp = d
			resp.Role = role
		}
	}
	resp.Sections = slices.Clone(resp.Sections)
	httpx.WriteJSON(w, http.StatusOK, resp)
}
