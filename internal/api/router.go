package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"example.com/agenda/internal/auth"
	"example.com/agenda/internal/domain"
)

// Pinger reports backing-store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// API holds handler dependencies.
type API struct {
	activities *domain.Service
	users      *domain.UserService
	resolver   *auth.Resolver
	authCfg    auth.Config
	health     Pinger
	log        zerolog.Logger
}

// New constructs the API.
func New(activities *domain.Service, users *domain.UserService, resolver *auth.Resolver, authCfg auth.Config, health Pinger, log zerolog.Logger) *API {
	return &API{
		activities: activities,
		users:      users,
		resolver:   resolver,
		authCfg:    authCfg,
		health:     health,
		log:        log,
	}
}

// Router wires all routes. Activity routes sit behind the bearer
// middleware; session and account routes do not, since registration and
// login have to work without a token.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", a.healthz).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/session", a.login).Methods(http.MethodPost)
	v1.HandleFunc("/session", a.logout).Methods(http.MethodDelete)
	v1.HandleFunc("/session/verify", a.verifyToken).Methods(http.MethodGet)

	v1.HandleFunc("/users", a.listUsers).Methods(http.MethodGet)
	v1.HandleFunc("/users", a.createUser).Methods(http.MethodPost)
	v1.HandleFunc("/users/{id}", a.getUser).Methods(http.MethodGet)
	v1.HandleFunc("/users/{id}", a.updateUser).Methods(http.MethodPut)
	v1.HandleFunc("/users/{id}", a.deleteUser).Methods(http.MethodDelete)
	v1.HandleFunc("/users/{id}/toggle-status", a.toggleUserActive).Methods(http.MethodPatch)

	activities := v1.PathPrefix("/activities").Subrouter()
	activities.Use(auth.Middleware(a.resolver, a.log))
	activities.HandleFunc("", a.listActivities).Methods(http.MethodGet)
	activities.HandleFunc("", a.createActivity).Methods(http.MethodPost)
	activities.HandleFunc("/reorder", a.reorderActivities).Methods(http.MethodPost)
	activities.HandleFunc("/{id}", a.getActivity).Methods(http.MethodGet)
	activities.HandleFunc("/{id}", a.updateActivity).Methods(http.MethodPut)
	activities.HandleFunc("/{id}", a.deleteActivity).Methods(http.MethodDelete)
	activities.HandleFunc("/{id}/toggle-status", a.toggleActivityStatus).Methods(http.MethodPatch)
	activities.HandleFunc("/{id}/encryption", a.verifyActivityEncryption).Methods(http.MethodGet)

	return r
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	if a.health != nil {
		if err := a.health.Ping(r.Context()); err != nil {
			a.log.Error().Err(err).Msg("health check failed")
			writeError(w, http.StatusServiceUnavailable, "unavailable", "backing store unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
