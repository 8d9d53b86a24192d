package routers

import (
	"github.com/go-chi/chi/v5"

	"prepwise/interview/internal/handlers"
	"prepwise/interview/internal/middleware"
)

// ActionRoutes mounts the action endpoint under both paths the clients use.
func ActionRoutes(router *chi.Mux, actionHandler *handlers.ActionHandler) {
	router.Method("POST", "/api/vapi", actionHandler)
	router.Method("POST", "/api/vapi/generate", actionHandler)
}

func InterviewRoutes(router *chi.Mux, interviewHandler *handlers.InterviewHandler, jwtSecret string) {
	router.Route("/api/interviews", func(r chi.Router) {
		r.Use(middleware.RequireUser(jwtSecret))
		r.Get("/", interviewHandler.List)
		r.Get("/{id}", interviewHandler.Get)
	})
}

func CallRoutes(router *chi.Mux, callHandler *handlers.CallHandler, jwtSecret string) {
	router.Route("/api/calls", func(r chi.Router) {
		r.Use(middleware.RequireUser(jwtSecret))
		r.Get("/", callHandler.List)
	})
}
