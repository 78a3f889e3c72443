package httpapi

import "net/http"

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	UserID      string `json:"user_id"`
	AccessToken string `json:"access_token"`
}

func (s *Server) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	userID, access, err := s.tokens.Refresh(r.Context(), req.RefreshToken, clientIP(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, refreshResponse{UserID: userID, AccessToken: access})
}
