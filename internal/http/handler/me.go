package handler

import (
	"net/http"

	"moodlog/internal/auth"
	"moodlog/internal/http/respond"
)

type MeHandler struct{}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	respond.OK(w, http.StatusOK, map[string]any{
		"userId": uid,
	})
}
