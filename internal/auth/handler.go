package auth

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odyssey-erp/storefront/internal/platform/httpx"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    *Gate
	cookies CookieWriter
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate *Gate, cookies CookieWriter) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, cookies: cookies}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.gate.Protect)
		r.Get("/me", h.handleMe)
		r.Get("/getUsers", h.handleListUsers)
		r.Get("/getUser/{id}", h.handleGetUser)
		r.Patch("/update/{id}", h.handleUpdateProfile)
		r.Patch("/updatingPassword", h.handleChangePassword)
	})
}

type userData struct {
	User Identity `json:"user"`
}

type sessionResponse struct {
	Status string   `json:"status"`
	Token  string   `json:"token"`
	Data   userData `json:"data"`
}

type userResponse struct {
	Status string   `json:"status"`
	Data   userData `json:"data"`
}

type usersResponse struct {
	Status  string     `json:"status"`
	Results int        `json:"results"`
	Total   int        `json:"total"`
	Data    []Identity `json:"data"`
}

type profileResponse struct {
	Status     string   `json:"status"`
	Message    string   `json:"message"`
	UserDetail Identity `json:"userDetail"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in SignupInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	session, err := h.service.Signup(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.sendSession(w, r, http.StatusCreated, session)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	session, err := h.service.Login(r.Context(), in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.sendSession(w, r, http.StatusOK, session)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": httpx.StatusSuccess})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	identity, err := h.service.Me(r.Context(), caller)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{Status: httpx.StatusSuccess, Data: userData{User: *identity}})
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page := Page{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 100),
	}
	identities, total, err := h.service.ListUsers(r.Context(), page)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	if identities == nil {
		identities = []Identity{}
	}
	httpx.JSON(w, http.StatusOK, usersResponse{
		Status:  httpx.StatusSuccess,
		Results: len(identities),
		Total:   total,
		Data:    identities,
	})
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, httpx.Validation("Invalid user ID").Wrap(err))
		return
	}
	identity, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userResponse{Status: httpx.StatusSuccess, Data: userData{User: *identity}})
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	target, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, r, h.logger, httpx.Validation("Invalid user ID").Wrap(err))
		return
	}
	var in UpdateProfileInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	identity, err := h.service.UpdateProfile(r.Context(), caller, target, in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profileResponse{
		Status:     httpx.StatusSuccess,
		Message:    "User is updated to:",
		UserDetail: *identity,
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	var in ChangePasswordInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	session, err := h.service.ChangePassword(r.Context(), caller, in)
	if err != nil {
		httpx.RespondError(w, r, h.logger, err)
		return
	}
	h.sendSession(w, r, http.StatusOK, session)
}

func (h *Handler) sendSession(w http.ResponseWriter, r *http.Request, status int, session *Session) {
	h.cookies.Set(w, r, session.Token)
	httpx.JSON(w, status, sessionResponse{
		Status: httpx.StatusSuccess,
		Token:  session.Token,
		Data:   userData{User: session.Identity},
	})
}

// caller reads the identity stored by the gate.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, r, h.logger, httpx.Authentication(msgNotLoggedIn))
		return Identity{}, false
	}
	return identity, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
