package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"reviewd/internal/bootstrap/config"
	"reviewd/internal/usecase/auth"
	reviewuc "reviewd/internal/usecase/review"
)

const version = "1.0.0"

// Server wires the HTTP surface over the auth and review use cases.
type Server struct {
	cfg           config.Config
	auth          *auth.Service
	authenticator *auth.Authenticator
	reviews       *reviewuc.Service
}

func NewServer(cfg config.Config, authSvc *auth.Service, reviewSvc *reviewuc.Service) *Server {
	return &Server{
		cfg:           cfg,
		auth:          authSvc,
		authenticator: authSvc.Authenticator(),
		reviews:       reviewSvc,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors(s.cfg.HTTP.AllowOrigins))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/logout", s.handleLogout)
	})

	r.Route("/reviews", func(r chi.Router) {
		r.Use(s.requireUser)
		r.Get("/", s.handleListReviews)
		r.Post("/", s.handleCreateReview)
		r.Get("/{id}", s.handleGetReview)
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to " + s.cfg.App.Name,
		"version": version,
		"status":  "running",
		"health":  "/health",
		"auth":    "/auth/login",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.cfg.App.Name,
		"version": version,
	})
}
