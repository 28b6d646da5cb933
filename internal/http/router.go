package http

import (
	"net/http"

	"moodlog/internal/auth"
	"moodlog/internal/config"
	"moodlog/internal/http/handler"
	mw "moodlog/internal/http/middleware"
	"moodlog/internal/http/respond"
	"moodlog/internal/jobs"
	"moodlog/internal/metrics"
	"moodlog/internal/mood"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Config config.Config
	Log    *zap.Logger
	Moods  *mood.Service
	Users  auth.UserStore
	Jobs   jobs.Repo
	JWT    *auth.JWT
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger(d.Log))
	r.Use(chimw.Recoverer)

	if len(d.Config.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(d.Config.CORSAllowedOrigins, d.Config.CORSAllowCredentials))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respond.Fail(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respond.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	ah := &handler.AuthHandler{Users: d.Users, JWT: d.JWT, Log: d.Log}
	me := &handler.MeHandler{}
	moodH := &handler.MoodHandler{Svc: d.Moods, Log: d.Log}
	remH := &handler.ReminderHandler{Jobs: d.Jobs, Log: d.Log}

	r.Route("/api", func(r chi.Router) {
		if d.Config.RateLimitRPS > 0 {
			r.Use(mw.NewRateLimiter(d.Config.RateLimitRPS, d.Config.RateLimitBurst).Handler)
		}

		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.With(auth.RequireAuth(d.JWT)).Get("/me", me.Me)

		r.Group(func(r chi.Router) {
			r.Use(auth.Identify(d.JWT))

			r.Post("/mood", moodH.Create)
			r.Get("/mood/{userId}", moodH.History)
			r.Get("/mood/{userId}/summary", moodH.Summary)

			r.Post("/reminders", remH.Create)
			r.Delete("/reminders/{id}", remH.Cancel)
		})
	})

	return r
}
