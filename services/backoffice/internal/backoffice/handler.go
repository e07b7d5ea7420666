package backoffice

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aquamarinepk/aqm"
	"github.com/aquamarinepk/aqm/events"
	"github.com/aquamarinepk/aqm/telemetry"
	"github.com/edumeal/backoffice/pkg/enums/role"
	"github.com/edumeal/backoffice/services/backoffice/internal/edumeal"
	"github.com/edumeal/backoffice/services/backoffice/internal/validation"
	"github.com/go-chi/chi/v5"
)

const (
	MaxBodyBytes = 1 << 20

	defaultSessionName = "edumeal_session"
)

type Handler struct {
	backend     Backend
	sessions    *SessionStore
	drafts      *DraftStore
	selections  SelectionRepo
	planner     *MenuPlanner
	notifier    *WorkflowNotifier
	audit       *AuditLogger
	jwtSecret   []byte
	sessionName string
	logger      aqm.Logger
	config      *aqm.Config
	tlm         *telemetry.HTTP
}

// HandlerDeps groups the collaborators of a Handler. Nil stores and repos
// are replaced with in-memory defaults.
type HandlerDeps struct {
	Backend    Backend
	Sessions   *SessionStore
	Drafts     *DraftStore
	Selections SelectionRepo
	Publisher  events.Publisher
	Config     *aqm.Config
	Logger     aqm.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}

	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewSessionStore(configDuration(deps.Config, "auth.session.ttl", 8*time.Hour))
	}
	drafts := deps.Drafts
	if drafts == nil {
		drafts = NewDraftStore(configDuration(deps.Config, "planner.draft.ttl", 8*time.Hour))
	}
	selections := deps.Selections
	if selections == nil {
		selections = NewMemorySelectionRepo()
	}

	sessionName := configString(deps.Config, "auth.session.name", defaultSessionName)
	secret := configString(deps.Config, "auth.jwt.secret", "")

	notifier := NewWorkflowNotifier(deps.Publisher, logger)
	audit := NewAuditLogger(logger)

	return &Handler{
		backend:     deps.Backend,
		sessions:    sessions,
		drafts:      drafts,
		selections:  selections,
		planner:     NewMenuPlanner(deps.Backend, notifier, audit, logger),
		notifier:    notifier,
		audit:       audit,
		jwtSecret:   []byte(secret),
		sessionName: sessionName,
		logger:      logger,
		config:      deps.Config,
		tlm:         telemetry.NewHTTP(),
	}
}

// Sessions and Drafts are exposed so the app can bind their sweepers to the
// service lifecycle.
func (h *Handler) Sessions() *SessionStore {
	return h.sessions
}

func (h *Handler) Drafts() *DraftStore {
	return h.drafts
}

// RegisterRoutes registers all routes of the back-office service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	admin, manager, kitchen := role.Roles.Admin, role.Roles.Manager, role.Roles.KitchenStaff

	r.Post("/signin", h.HandleSignIn)

	r.Group(func(r chi.Router) {
		r.Use(h.SessionMiddleware)

		r.Post("/signout", h.HandleSignOut)
		r.Get("/me", h.HandleMe)

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(admin, manager, kitchen))

			r.Route("/planner", func(r chi.Router) {
				r.Get("/", h.GetPlanner)
				r.Put("/week", h.SetPlannerWeek)
				r.Post("/offdays/refresh", h.RefreshOffDays)
				r.Post("/dishes", h.AddDish)
				r.Delete("/dishes/{day}/{mealType}/{foodId}", h.RemoveDish)
				r.Delete("/dishes", h.ClearPlanner)
				r.Post("/templates/{menuId}/apply", h.ApplyTemplate)
				r.Post("/suggestions", h.ApplySuggestions)
				r.With(RequireRole(admin, manager)).Post("/submit", h.SubmitPlanner)
			})

			r.Get("/foods", h.ListFoods)
			r.Get("/templates", h.ListTemplates)
			r.Get("/templates/{menuId}", h.GetTemplate)
			r.Get("/schedules", h.GetScheduleByWeek)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(admin, manager))

			r.Route("/purchase-plans", func(r chi.Router) {
				r.Get("/", h.GetPlanByDate)
				r.Post("/from-schedule/{scheduleMealId}", h.DerivePlan)
				r.Get("/{planId}", h.GetPlan)
				r.Put("/{planId}", h.UpdatePlan)
				r.Delete("/{planId}", h.DeletePlan)
				r.Post("/{planId}/confirm", h.ConfirmPlan)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(manager))

			r.Post("/purchase-orders/{orderId}/receive", h.ReceiveOrder)
			r.Post("/purchase-orders/{orderId}/reject", h.RejectOrder)
		})

		r.Group(func(r chi.Router) {
			r.Use(RequireRole(role.Roles.Parent))

			r.Get("/parent/selected-child", h.GetSelectedChild)
			r.Put("/parent/selected-child", h.SelectChild)
			r.Delete("/parent/selected-child", h.ClearSelectedChild)
		})

		r.With(RequireRole(role.Roles.Parent, role.Roles.Warden, admin)).
			Get("/students/{studentId}/bmi-series", h.GetBMISeries)
	})
}

func (h *Handler) log(r *http.Request) aqm.Logger {
	return h.logger.With("request_id", aqm.RequestIDFrom(r.Context()))
}

// parseIntParam reads a positive integer URL parameter.
func (h *Handler) parseIntParam(w http.ResponseWriter, r *http.Request, name string, log aqm.Logger) (int, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		log.Debug("missing url parameter", "param", name)
		aqm.RespondError(w, http.StatusBadRequest, "Missing "+name+" parameter")
		return 0, false
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		log.Debug("invalid url parameter", "param", name, "value", raw)
		aqm.RespondError(w, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

// decodePayload reads a bounded JSON body into v.
func (h *Handler) decodePayload(w http.ResponseWriter, r *http.Request, v any, log aqm.Logger) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("error reading request body", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, msgInvalidPayload)
		return false
	}

	if err := json.Unmarshal(body, v); err != nil {
		log.Debug("error decoding JSON", "error", err)
		aqm.RespondError(w, http.StatusBadRequest, msgInvalidPayload)
		return false
	}
	return true
}

// respondError classifies err and answers with the user-facing message.
// A backend that refuses the session's tokens ends the session.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, msg := classify(err, fallback)
	log := h.log(r)

	if status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err, "status", status)
	} else {
		log.Debug("request rejected", "error", err, "status", status)
	}

	if errors.Is(err, edumeal.ErrUnauthorized) {
		if s := sessionFrom(r.Context()); s != nil {
			h.endSession(w, s)
		}
	}

	if fields := validation.Fields(err); fields != nil {
		h.respondValidationErrors(w, status, msg, fields)
		return
	}
	aqm.RespondError(w, status, msg)
}

func (h *Handler) respondValidationErrors(w http.ResponseWriter, status int, msg string, errs []validation.FieldError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":  msg,
		"errors": errs,
	})
}

func configString(config *aqm.Config, key, def string) string {
	if config == nil {
		return def
	}
	if v, ok := config.GetString(key); ok && v != "" {
		return v
	}
	return def
}

func configDuration(config *aqm.Config, key string, def time.Duration) time.Duration {
	raw := configString(config, key, "")
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
