package backoffice

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
	"github.com/google/uuid"
)

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"notblank"`
}

// sessionUser is what clients see of a session.
type sessionUser struct {
	UserID   string   `json:"userId"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	HomePath string   `json:"homePath"`
}

func userOf(s *Session) sessionUser {
	roles := make([]string, 0, len(s.Roles))
	for _, r := range s.Roles {
		roles = append(roles, r.Code())
	}
	return sessionUser{
		UserID:   s.UserID,
		Name:     s.Name,
		Email:    s.Email,
		Roles:    roles,
		HomePath: s.HomePath(),
	}
}

// HandleSignIn handles POST /signin
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.HandleSignIn")
	defer finish()
	log := h.log(r)
	ctx := r.Context()

	var req signInRequest
	if !h.decodePayload(w, r, &req, log) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if err := validation.Struct(req); err != nil {
		h.respondValidationErrors(w, http.StatusBadRequest, msgValidationFailed, validation.Fields(err))
		return
	}

	tokens, err := h.backend.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, edumeal.ErrUnauthorized) || isClientError(err) {
			log.Debug("sign in refused", "email", req.Email, "error", err)
			aqm.RespondError(w, http.StatusUnauthorized, withServerMessage(err, msgInvalidCredentials))
			return
		}
		h.respondError(w, r, err, msgGenericFailure)
		return
	}

	identity, err := ParseIdentity(tokens.AccessToken, h.jwtSecret)
	if err != nil {
		if errors.Is(err, ErrNoRole) {
			log.Info("sign in without a known role", "email", req.Email)
			aqm.RespondError(w, http.StatusForbidden, msgNoRole)
			return
		}
		log.Error("cannot read access token", "error", err)
		aqm.RespondError(w, http.StatusBadGateway, msgGenericFailure)
		return
	}

	now := time.Now()
	session := &Session{
		ID:          uuid.New().String(),
		UserID:      identity.UserID,
		Name:        identity.Name,
		Email:       firstNonEmpty(identity.Email, req.Email),
		Roles:       identity.Roles,
		Credentials: edumeal.NewCredentials(tokens),
		CreatedAt:   now,
		ExpiresAt:   now.Add(h.sessions.TTL()),
	}

	if err := h.sessions.Save(session); err != nil {
		log.Error("failed to save session", "error", err)
		aqm.RespondError(w, http.StatusInternalServerError, msgGenericFailure)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.sessions.TTL().Seconds()),
	})

	h.audit.LogLogin(ctx, session.UserID)
	aqm.RespondSuccess(w, userOf(session))
}

// HandleSignOut handles POST /signout
func (h *Handler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.HandleSignOut")
	defer finish()

	if s := sessionFrom(r.Context()); s != nil {
		h.endSession(w, s)
		h.audit.LogLogout(r.Context(), s.UserID)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.HandleMe")
	defer finish()

	s := sessionFrom(r.Context())
	if s == nil {
		aqm.RespondError(w, http.StatusUnauthorized, msgSessionRequired)
		return
	}
	aqm.RespondSuccess(w, userOf(s))
}

// SessionMiddleware resolves the session cookie for protected routes.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.sessionName)
		if err != nil || cookie.Value == "" {
			aqm.RespondError(w, http.StatusUnauthorized, msgSessionRequired)
			return
		}

		session, err := h.sessions.Get(cookie.Value)
		if err != nil {
			msg := msgSessionRequired
			if errors.Is(err, ErrSessionExpired) {
				msg = msgSessionExpired
				h.sessions.Delete(cookie.Value)
				h.drafts.Delete(cookie.Value)
			}
			aqm.RespondError(w, http.StatusUnauthorized, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session)))
	})
}

// endSession drops the session with its draft and clears the cookie.
func (h *Handler) endSession(w http.ResponseWriter, s *Session) {
	h.sessions.Delete(s.ID)
	h.drafts.Delete(s.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     h.sessionName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func isClientError(err error) bool {
	var apiErr *edumeal.APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
