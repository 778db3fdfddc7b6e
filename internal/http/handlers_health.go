package httpx

import (
	"context"
	"net/http"
)

// healthHandler answers liveness probes. It says the process is up, nothing
// about its dependencies.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "dispatch",
	})
}

// Pinger is the dependency probe used by the readiness endpoint. *sql.DB
// satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// readyHandler answers readiness probes by pinging the database. A replica
// that cannot reach Postgres cannot run a replan and should be pulled from
// rotation.
func readyHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
			return
		}
		if err := db.PingContext(r.Context()); err != nil {
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
