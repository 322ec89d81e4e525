// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package httpapi exposes the auth operations as a JSON HTTP API with
// cookie-bound sessions.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/authcore/authcore/internal/auth"
	authredis "github.com/authcore/authcore/internal/auth/redis"
	"github.com/authcore/authcore/internal/observability"
	"github.com/authcore/authcore/pkg/errutil"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "qid"

// Session extends auth.Session with the cookie lifecycle signals the
// transport needs after an operation ran.
type Session interface {
	auth.Session
	ID() string
	Started() bool
	Ended() bool
}

// SessionSource loads the per-request session for a cookie value. An
// empty value means no cookie was presented.
type SessionSource interface {
	Load(id string) Session
}

// RedisSessions adapts the Redis session store to SessionSource.
func RedisSessions(store *authredis.SessionStore) SessionSource {
	return redisSessions{store: store}
}

type redisSessions struct {
	store *authredis.SessionStore
}

func (s redisSessions) Load(id string) Session { return s.store.Load(id) }

// Options configures optional handler behavior.
type Options struct {
	// CookieSecure marks the session cookie Secure. Enable behind TLS.
	CookieSecure bool
	// Metrics records per-operation outcomes when non-nil.
	Metrics *observability.Metrics
}

// Handler serves the auth endpoints.
type Handler struct {
	svc      *auth.Service
	sessions SessionSource
	logger   *slog.Logger
	opts     Options
}

// NewHandler creates a Handler over the auth service and session store.
func NewHandler(svc *auth.Service, sessions SessionSource, logger *slog.Logger, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, sessions: sessions, logger: logger, opts: opts}
}

// Router returns the mux with all auth routes registered.
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", h.handleRegister)
	mux.HandleFunc("POST /login", h.handleLogin)
	mux.HandleFunc("GET /me", h.handleMe)
	mux.HandleFunc("POST /logout", h.handleLogout)
	mux.HandleFunc("POST /forgot-password", h.handleForgotPassword)
	mux.HandleFunc("POST /change-password", h.handleChangePassword)
	return mux
}

// session loads the request's session handle from the cookie, if any.
func (h *Handler) session(r *http.Request) Session {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return h.sessions.Load("")
	}
	return h.sessions.Load(cookie.Value)
}

// syncCookie reflects the session's lifecycle onto the response cookie.
// Must run before the body is written.
func (h *Handler) syncCookie(w http.ResponseWriter, sess Session) {
	switch {
	case sess.Started():
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID(),
			Path:     "/",
			MaxAge:   int(auth.SessionTTL / time.Second),
			HttpOnly: true,
			Secure:   h.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		if h.opts.Metrics != nil {
			h.opts.Metrics.SessionsStartedTotal.Inc()
		}
	case sess.Ended():
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type changePasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type meResponse struct {
	User *auth.User `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess := h.session(r)
	result, err := h.svc.Register(r.Context(), sess, auth.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
	})
	if err != nil {
		h.fail(w, "register", err)
		return
	}

	h.recordResult("register", result)
	h.syncCookie(w, sess)
	h.respond(w, http.StatusOK, result)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess := h.session(r)
	result, err := h.svc.Login(r.Context(), sess, req.Username, req.Password)
	if err != nil {
		h.fail(w, "login", err)
		return
	}

	h.recordResult("login", result)
	h.syncCookie(w, sess)
	h.respond(w, http.StatusOK, result)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	user, err := h.svc.Me(r.Context(), sess)
	if err != nil {
		h.fail(w, "me", err)
		return
	}

	h.record("me", observability.OutcomeOK)
	h.respond(w, http.StatusOK, meResponse{User: user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	ok := h.svc.Logout(r.Context(), sess)

	if ok {
		h.record("logout", observability.OutcomeOK)
	} else {
		h.record("logout", observability.OutcomeError)
	}
	h.syncCookie(w, sess)
	h.respond(w, http.StatusOK, okResponse{OK: ok})
}

func (h *Handler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	ok, err := h.svc.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		h.fail(w, "forgot_password", err)
		return
	}

	h.record("forgot_password", observability.OutcomeOK)
	h.respond(w, http.StatusOK, okResponse{OK: ok})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	sess := h.session(r)
	result, err := h.svc.ChangePassword(r.Context(), sess, req.Token, req.NewPassword)
	if err != nil {
		h.fail(w, "change_password", err)
		return
	}

	h.recordResult("change_password", result)
	h.syncCookie(w, sess)
	h.respond(w, http.StatusOK, result)
}

// decode parses the JSON request body, answering 400 on malformed input.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": "malformed request body"})
		return false
	}
	return true
}

// fail reports an infrastructure fault: log with full context, answer
// an opaque 500.
func (h *Handler) fail(w http.ResponseWriter, operation string, err error) {
	errutil.LogError(h.logger, operation+" failed", err)
	h.record(operation, observability.OutcomeError)
	h.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("response write failed", "error", err.Error())
	}
}

func (h *Handler) record(operation, outcome string) {
	if h.opts.Metrics != nil {
		h.opts.Metrics.RecordOperation(operation, outcome)
	}
}

func (h *Handler) recordResult(operation string, result *auth.Result) {
	if len(result.Errors) > 0 {
		h.record(operation, observability.OutcomeFieldError)
		return
	}
	h.record(operation, observability.OutcomeOK)
}
