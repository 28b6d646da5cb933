package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"moodlog/internal/auth"
	"moodlog/internal/http/respond"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Users auth.UserStore
	JWT   *auth.JWT
	Log   *zap.Logger
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionDTO struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < auth.MinPasswordLen {
		respond.Fail(w, http.StatusBadRequest, "invalid input")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		respond.Internal(w)
		return
	}

	u := auth.User{Email: req.Email, PasswordHash: hash}
	if err := h.Users.Create(r.Context(), &u); err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respond.Fail(w, http.StatusConflict, "email already used")
			return
		}
		h.Log.Error("create user", zap.Error(err))
		respond.Internal(w)
		return
	}

	h.issue(w, http.StatusCreated, u)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		respond.Fail(w, http.StatusBadRequest, "invalid input")
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, auth.ErrNotFound) {
			h.Log.Error("find user", zap.Error(err))
			respond.Internal(w)
			return
		}
		respond.Fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		respond.Fail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issue(w, http.StatusOK, u)
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, u auth.User) {
	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		h.Log.Error("sign token", zap.Error(err))
		respond.Internal(w)
		return
	}
	respond.OK(w, status, sessionDTO{Token: token, User: u})
}
