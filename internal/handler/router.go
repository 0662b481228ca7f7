package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/BuzzLyutic/todo-api/internal/middleware"
)

// NewRouter собирает все маршруты. Вынесено из main, чтобы e2e-тесты
// поднимали тот же роутер, что и прод.
func NewRouter(todos *TodoHandler, authH *AuthHandler, authn func(http.Handler) http.Handler, rl *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authn)
			r.Use(rl.Handler)
			r.Post("/logout", authH.Logout)
			r.Get("/me", authH.Me)
		})
	})

	r.Route("/api/todos", func(r chi.Router) {
		r.Use(authn)
		r.Use(rl.Handler)

		r.Post("/", todos.Create)
		r.Get("/", todos.List)
		r.Get("/{id}", todos.Get)
		r.Put("/{id}", todos.Update)
		r.Patch("/{id}", todos.Patch)
		r.Delete("/{id}", todos.Delete)
	})

	return r
}
