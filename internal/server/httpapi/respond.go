package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/jrafaels/test-fauth/internal/common"
	"github.com/jrafaels/test-fauth/internal/server/models"
)

type errorResponse struct {
	Message string              `json:"message"`
	Fields  []common.FieldError `json:"fields,omitempty"`
}

type userResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toUserResponse(u *models.User) *userResponse {
	resp := &userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Country:   u.Country,
		City:      u.City,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.BirthDate != nil {
		resp.BirthDate = u.BirthDate.Format("2006-01-02")
	}
	return resp
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeError maps a taxonomy error to its HTTP status. Internal failures are
// logged with their cause but answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)

	resp := errorResponse{Message: "Internal server error."}
	var e *common.Error
	if errors.As(err, &e) && e.Kind != common.KindInternal {
		resp.Message = e.Message
		resp.Fields = e.Fields
	}
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
	}

	s.writeJSON(w, status, resp)
}

// decodeJSON reads the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.Validation("Invalid request body.")
	}
	return nil
}

// clientIP prefers the first X-Forwarded-For hop and falls back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if _, err := netip.ParseAddr(first); err == nil {
			return first
		}
	}
	if addrPort, err := netip.ParseAddrPort(r.RemoteAddr); err == nil {
		return addrPort.Addr().String()
	}
	return r.RemoteAddr
}
