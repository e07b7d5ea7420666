package backoffice

import (
	"net/http"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/pkg/enums/role"
)

// RequireRole lets a request through only when its session holds one of
// roles: 401 without a session, 403 with the wrong role.
func RequireRole(roles ...role.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := sessionFrom(r.Context())
			if s == nil {
				aqm.RespondError(w, http.StatusUnauthorized, msgSessionRequired)
				return
			}
			if !s.HasRole(roles...) {
				aqm.RespondError(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// currentSession returns the request's session, answering 401 when there is
// none.
func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	s := sessionFrom(r.Context())
	if s == nil {
		aqm.RespondError(w, http.StatusUnauthorized, msgSessionRequired)
		return nil, false
	}
	return s, true
}
