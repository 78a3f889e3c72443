package httpapi

import (
	"context"
	"net/http"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/server/services"
)

type signupRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Country   string `json:"country"`
	City      string `json:"city"`
	BirthDate string `json:"birth_date"`
	Password  string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ip := clientIP(r)
	user, err := s.users.Create(r.Context(), &services.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Country:   req.Country,
		City:      req.City,
		BirthDate: req.BirthDate,
		Password:  req.Password,
	}, ip)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.notify(r.Context(), func(ctx context.Context) error {
		return s.dispatcher.SendWelcome(ctx, user, ip)
	})
	s.writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.auth.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, loginResponse{
		UserID:       result.UserID,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

type logoutRequest struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, err := s.auth.Logout(r.Context(), req.UserID, req.AccessToken, req.RefreshToken, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"user_id": userID})
}

type recoverRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleRecover(w http.ResponseWriter, r *http.Request) {
	var req recoverRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Email == "" {
		s.writeError(w, r, common.Validation("Email is required.",
			common.FieldError{Field: "email", Message: "Email is required."}))
		return
	}

	ip := clientIP(r)
	user, controlSecret, err := s.auth.RecoverPassword(r.Context(), req.Email, ip)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// The control secret only travels through the notification channel,
	// never in the HTTP response.
	s.notify(r.Context(), func(ctx context.Context) error {
		return s.dispatcher.SendRecovery(ctx, user, controlSecret, ip)
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"user_id": user.ID})
}

type resetRequest struct {
	ControlPassword string `json:"control_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ip := clientIP(r)
	user, err := s.auth.ResetPassword(r.Context(), req.ControlPassword, req.NewPassword, ip)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.notify(r.Context(), func(ctx context.Context) error {
		return s.dispatcher.SendResetConfirmation(ctx, user, ip)
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"user_id": user.ID})
}

// notify runs a dispatcher call in the background. Delivery failures are
// logged and never surface to the client; the triggering operation already
// committed.
func (s *Server) notify(ctx context.Context, send func(ctx context.Context) error) {
	requestID := RequestIDFrom(ctx)
	go func() {
		if err := send(context.Background()); err != nil {
			s.logger.Warn(context.Background(), "notification not delivered",
				"request_id", requestID, "error", err.Error())
		}
	}()
}
