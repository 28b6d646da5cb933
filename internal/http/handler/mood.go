package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moodlog/internal/auth"
	"moodlog/internal/http/respond"
	"moodlog/internal/mood"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MoodHandler struct {
	Svc *mood.Service
	Log *zap.Logger
}

type createMoodReq struct {
	UserID string     `json:"userId"`
	Mood   *float64   `json:"mood"`
	Tags   []string   `json:"tags"`
	Notes  string     `json:"notes"`
	Date   *time.Time `json:"date"`
}

func (h *MoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMoodReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		badBody(w, err)
		return
	}

	// body wins; otherwise the acting user from a bearer token, if any
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID, _ = auth.UserIDFromContext(r.Context())
	}

	e, err := h.Svc.Record(r.Context(), mood.Candidate{
		UserID: userID,
		Mood:   req.Mood,
		Tags:   req.Tags,
		Notes:  req.Notes,
		Date:   req.Date,
	})
	if err != nil {
		var verr *mood.ValidationError
		if errors.As(err, &verr) {
			respond.Invalid(w, verr.Code, verr.Message)
			return
		}
		h.Log.Error("record mood entry", zap.String("user_id", userID), zap.Error(err))
		respond.Internal(w)
		return
	}

	respond.OK(w, http.StatusCreated, e)
}

func (h *MoodHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	days := parseDays(r)

	entries, err := h.Svc.History(r.Context(), userID, days)
	if err != nil {
		h.Log.Error("mood history", zap.String("user_id", userID), zap.Int("days", days), zap.Error(err))
		respond.Internal(w)
		return
	}

	respond.OK(w, http.StatusOK, entries)
}

func (h *MoodHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	days := parseDays(r)

	sum, err := h.Svc.Summary(r.Context(), userID, days)
	if err != nil {
		h.Log.Error("mood summary", zap.String("user_id", userID), zap.Int("days", days), zap.Error(err))
		respond.Internal(w)
		return
	}

	respond.OK(w, http.StatusOK, sum)
}

// parseDays falls back to the default for missing, unparsable or negative values.
func parseDays(r *http.Request) int {
	v := strings.TrimSpace(r.URL.Query().Get("days"))
	if v == "" {
		return mood.DefaultHistoryDays
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return mood.DefaultHistoryDays
	}
	return n
}

func badBody(w http.ResponseWriter, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		switch {
		case typeErr.Field == "mood":
			reject(w, mood.CodeInvalidMood, "mood must be an integer between 1 and 10")
			return
		case strings.HasPrefix(typeErr.Field, "tags"):
			reject(w, mood.CodeInvalidTag, "tags must be a list of strings")
			return
		case typeErr.Field == "userId":
			reject(w, mood.CodeMissingUserID, "userId must be a string")
			return
		}
	}
	respond.Fail(w, http.StatusBadRequest, "bad json")
}

func reject(w http.ResponseWriter, code, message string) {
	mood.CountRejection(code)
	respond.Invalid(w, code, message)
}
