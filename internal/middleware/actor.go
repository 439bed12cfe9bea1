package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const actorKey contextKey = "actor_id"

// ActorHeader carries the authenticated party identifier. Authentication
// itself happens upstream; this service trusts the header as resolved identity.
const ActorHeader = "X-Actor-ID"

// Actor extracts the acting party from the request header and stores it
// in the request context. Requests without an actor still pass through;
// operations that require one reject later with an authorization error.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := r.Header.Get(ActorHeader); id != "" {
			r = r.WithContext(context.WithValue(r.Context(), actorKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

// ActorID returns the acting party stored in the context, or "" when the
// request carried no identity.
func ActorID(ctx context.Context) string {
	id, _ := ctx.Value(actorKey).(string)
	return id
}
