package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"example.com/agenda/internal/auth"
	"example.com/agenda/internal/domain"
)

func (a *API) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	who, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing or invalid credentials")
		return domain.Identity{}, false
	}
	return who, true
}

func (a *API) listActivities(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	acts, err := a.activities.List(r.Context(), who)
	if err != nil {
		a.log.Error().Err(err).Msg("list activities")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponses(acts))
}

func (a *API) getActivity(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	act, err := a.activities.Get(r.Context(), who, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(*act))
}

func (a *API) createActivity(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation", "name is required")
		return
	}

	act, err := a.activities.Create(r.Context(), who, req.toInput())
	if err != nil {
		a.log.Error().Err(err).Msg("create activity")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResponse(*act))
}

func (a *API) updateActivity(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	var req activityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	act, err := a.activities.Update(r.Context(), who, mux.Vars(r)["id"], req.toInput())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(*act))
}

func (a *API) deleteActivity(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	if err := a.activities.Delete(r.Context(), who, mux.Vars(r)["id"]); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) toggleActivityStatus(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	act, err := a.activities.ToggleStatus(r.Context(), who, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(*act))
}

func (a *API) verifyActivityEncryption(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	report, err := a.activities.VerifyEncryption(r.Context(), who, mux.Vars(r)["id"])
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, encryptionResponse{
		ActivityID:           report.ActivityID,
		DescriptionEncrypted: report.DescriptionEncrypted,
		ContactsEncrypted:    report.ContactsEncrypted,
		EncryptedRoleValues:  report.EncryptedRoleValues,
	})
}

// reorderActivities recomputes the caller's priority ranking and returns
// the reconciled list, ranked items first.
func (a *API) reorderActivities(w http.ResponseWriter, r *http.Request) {
	who, ok := a.identity(w, r)
	if !ok {
		return
	}

	acts, err := a.activities.Reconcile(r.Context(), who)
	if err != nil {
		a.log.Error().Err(err).Str("owner_id", who.ID).Msg("reconcile priorities")
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponses(acts))
}
