package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"example.com/agenda/internal/domain"
)

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List(r.Context())
	if err != nil {
		a.log.Error().Err(err).Msg("list users")
		writeDomainError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation", "email and password are required")
		return
	}

	user, err := a.users.Create(r.Context(), domain.UserInput{
		Name:     req.Name,
		Email:    req.Email,
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(*user))
}

func (a *API) updateUser(w http.ResponseWriter, r *http.Request) {
	var req userUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := a.users.Update(r.Context(), mux.Vars(r)["id"], domain.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Active:   req.Active,
		Password: req.Password,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (a *API) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.users.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) toggleUserActive(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.ToggleActive(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}
