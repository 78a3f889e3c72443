// Package httpapi exposes the authentication service over HTTP. Routing is
// built on chi; handlers translate between JSON payloads and the service
// layer, and every service error is mapped through the shared taxonomy.
package httpapi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jrafaels/test-fauth/internal/logging"
	"github.com/jrafaels/test-fauth/internal/server/models"
	"github.com/jrafaels/test-fauth/internal/server/notifications"
	"github.com/jrafaels/test-fauth/internal/server/services"
)

// AuthFlows is the slice of the auth service the handlers use.
type AuthFlows interface {
	Login(ctx context.Context, email, password, ip string) (*services.LoginResult, error)
	Logout(ctx context.Context, userID, accessToken, refreshToken, ip string) (string, error)
	RecoverPassword(ctx context.Context, email, ip string) (*models.User, string, error)
	ResetPassword(ctx context.Context, controlSecret, newPassword, ip string) (*models.User, error)
}

// TokenFlows exchanges refresh tokens for access tokens.
type TokenFlows interface {
	Refresh(ctx context.Context, refreshToken, ip string) (string, string, error)
}

// UserDirectory is the slice of the user service the handlers use.
type UserDirectory interface {
	Create(ctx context.Context, in *services.CreateUserInput, ip string) (*models.User, error)
	Update(ctx context.Context, id string, in *services.UpdateUserInput) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id string) error
}

// Server wires the handlers into a chi router.
type Server struct {
	auth       AuthFlows
	tokens     TokenFlows
	users      UserDirectory
	dispatcher notifications.Dispatcher
	logger     logging.Logger
	router     chi.Router
}

func NewServer(auth AuthFlows, tokens TokenFlows, users UserDirectory, dispatcher notifications.Dispatcher, logger logging.Logger) *Server {
	s := &Server{
		auth:       auth,
		tokens:     tokens,
		users:      users,
		dispatcher: dispatcher,
		logger:     logger.With("module", "httpapi"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
			r.Post("/recover", s.handleRecover)
			r.Post("/reset", s.handleReset)
		})
		r.Post("/token", s.handleRefreshToken)
		r.Route("/user", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Get("/email", s.handleGetUserByEmail)
			r.Get("/{id}", s.handleGetUser)
			r.Put("/{id}", s.handleUpdateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})
	})

	return r
}

// Handler returns the root handler for mounting into an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}
