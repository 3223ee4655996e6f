package api

import (
	"net/http"
	"time"

	"algoarena/internal/api/handler"
	"algoarena/internal/api/middleware"
	"algoarena/internal/app/service"
	"algoarena/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
	blacklist *security.TokenBlacklist,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(180 * time.Second))

	// Verifies the token if present and puts claims in context. Routes that
	// require auth additionally run the authenticator below.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	authenticate := middleware.NewAuthenticator(blacklist)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", func(auth chi.Router) {
			authHandler.RegisterRoutes(auth)
			auth.Group(func(protected chi.Router) {
				protected.Use(authenticate)
				authHandler.RegisterProtectedRoutes(protected)
			})
			auth.Group(func(admin chi.Router) {
				admin.Use(authenticate)
				admin.Use(middleware.AdminOnly)
				authHandler.RegisterAdminRoutes(admin)
			})
		})

		problemHandler := handler.NewProblemHandler(problemService, authenticate)
		submissionHandler := handler.NewSubmissionHandler(submissionService, authenticate)
		v1.Route("/problems", func(problems chi.Router) {
			problemHandler.RegisterRoutes(problems)
			submissionHandler.RegisterRoutes(problems)
		})

		v1.Route("/leaderboard", submissionHandler.RegisterLeaderboardRoutes)
	})

	return r
}
