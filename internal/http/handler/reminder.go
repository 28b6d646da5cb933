package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"moodlog/internal/auth"
	"moodlog/internal/http/respond"
	"moodlog/internal/jobs"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReminderHandler struct {
	Jobs jobs.Repo
	Log  *zap.Logger
}

type createReminderReq struct {
	UserID   string  `json:"userId"`
	RemindAt *string `json:"remindAt"` // RFC3339
	Message  string  `json:"message"`
}

type reminderDTO struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	RemindAt time.Time `json:"remindAt"`
	Status   string    `json:"status"`
}

func actingUser(r *http.Request, explicit string) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	id, _ := auth.UserIDFromContext(r.Context())
	return id
}

func (h *ReminderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReminderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Fail(w, http.StatusBadRequest, "bad json")
		return
	}

	userID := actingUser(r, req.UserID)
	if userID == "" {
		respond.Fail(w, http.StatusBadRequest, "userId is required")
		return
	}
	if req.RemindAt == nil || strings.TrimSpace(*req.RemindAt) == "" {
		respond.Fail(w, http.StatusBadRequest, "remindAt is required")
		return
	}
	runAt, err := time.Parse(time.RFC3339, strings.TrimSpace(*req.RemindAt))
	if err != nil {
		respond.Fail(w, http.StatusBadRequest, "invalid remindAt (RFC3339)")
		return
	}

	job, err := jobs.NewReminder(userID, runAt, strings.TrimSpace(req.Message))
	if err != nil {
		h.Log.Error("build reminder", zap.Error(err))
		respond.Internal(w)
		return
	}
	if err := h.Jobs.Enqueue(r.Context(), job); err != nil {
		h.Log.Error("enqueue reminder", zap.String("user_id", userID), zap.Error(err))
		respond.Internal(w)
		return
	}

	respond.OK(w, http.StatusCreated, reminderDTO{
		ID:       job.ID,
		UserID:   job.UserID,
		RemindAt: job.RunAt,
		Status:   job.Status,
	})
}

func (h *ReminderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := actingUser(r, r.URL.Query().Get("userId"))
	if userID == "" {
		respond.Fail(w, http.StatusBadRequest, "userId is required")
		return
	}

	ok, err := h.Jobs.CancelPending(r.Context(), userID, id)
	if err != nil {
		h.Log.Error("cancel reminder", zap.String("job_id", id), zap.Error(err))
		respond.Internal(w)
		return
	}
	if !ok {
		respond.Fail(w, http.StatusNotFound, "not found")
		return
	}

	respond.OK(w, http.StatusOK, map[string]any{"id": id, "status": jobs.StatusCancelled})
}
