package api

import (
	"net/http"

	"example.com/agenda/internal/auth"
)

// login exchanges credentials for a bearer token whose subject is the
// account email.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := a.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	token, err := auth.Sign(user.Email, a.authCfg)
	if err != nil {
		a.log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Email:       user.Email,
	})
}

// logout exists for client symmetry. Tokens are stateless, so there is
// nothing to revoke server-side.
func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"detail": "session closed"})
}

// verifyToken reports whether a token is currently valid without
// requiring the Authorization header round trip.
func (a *API) verifyToken(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.Parse(r.URL.Query().Get("token"), a.authCfg)
	if err != nil {
		writeJSON(w, http.StatusOK, verifyResponse{Valid: false})
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Valid: true, Subject: claims.Subject})
}
